package massbank

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seven files run as a batch of five followed by a batch of two; every
// result comes back at its input position.
func TestValidateFiles_BatchesOfFiveInOrder(t *testing.T) {
	var (
		active, peak, finished atomic.Int32
		mu                     sync.Mutex
		finishedAtStart        = map[int]int32{}
	)

	inputs := make([]Input, 7)
	for i := range inputs {
		i := i
		inputs[i] = Input{
			Name: fmt.Sprintf("MSBNK-Test-TS00000%d.txt", i),
			Load: func(context.Context) ([]byte, error) {
				mu.Lock()
				finishedAtStart[i] = finished.Load()
				mu.Unlock()

				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				active.Add(-1)
				finished.Add(1)
				return []byte(fmt.Sprintf("ACCESSION: file-%d\n//\n", i)), nil
			},
		}
	}

	out := ValidateFiles(context.Background(), inputs)

	require.Len(t, out, 7)
	for i, f := range out {
		assert.Equal(t, inputs[i].Name, f.OriginalName)
		assert.Contains(t, f.Content, fmt.Sprintf("file-%d", i))
		assert.NotEmpty(t, f.ID)
	}
	assert.LessOrEqual(t, peak.Load(), int32(BatchSize))
	assert.GreaterOrEqual(t, finishedAtStart[5], int32(5))
	assert.GreaterOrEqual(t, finishedAtStart[6], int32(5))
}

func TestValidateFiles_LoadFailureBecomesInvalidFile(t *testing.T) {
	out := ValidateFiles(context.Background(), []Input{
		{Name: "ok.txt", Load: func(context.Context) ([]byte, error) { return []byte(validRecord), nil }},
		{Name: "broken.txt", Load: func(context.Context) ([]byte, error) { return nil, errors.New("permission denied") }},
	})

	require.Len(t, out, 2)
	assert.Empty(t, out[0].Errors)
	assert.True(t, out[0].IsValid)

	assert.False(t, out[1].IsValid)
	assert.Empty(t, out[1].Content)
	require.Len(t, out[1].Errors, 1)
	assert.Equal(t, "permission denied", out[1].Errors[0].Message)
	assert.Equal(t, TypeOther, out[1].Errors[0].Type)
}

func TestValidateFiles_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := ValidateFiles(ctx, []Input{{Name: "a.txt", Load: func(context.Context) ([]byte, error) {
		t.Error("load must not run")
		return nil, nil
	}}})
	require.Len(t, out, 1)
	assert.False(t, out[0].IsValid)
	assert.Equal(t, TypeOther, out[0].Errors[0].Type)
}

func TestValidateFiles_Empty(t *testing.T) {
	assert.Empty(t, ValidateFiles(context.Background(), nil))
}
