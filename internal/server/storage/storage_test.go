package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/nobs/internal/filex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryID = "3F2b8c0e-5d1a-4c7e-9b6f-0a1d2e3f4a5b"

func TestLocalStore_SaveShardsByLowercasedPrefix(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	s, err := NewLocalStore(root)
	require.NoError(t, err)

	p, err := s.Save(context.Background(), entryID, KindNmr, "sample.nmrium.zip", strings.NewReader("PK"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "3f", entryID, "nmr", "sample.nmrium.zip"), p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(b))

	p2, err := s.Save(context.Background(), entryID, KindMassbank, `C:\Users\me\MSBNK-1.txt`, strings.NewReader("ACCESSION: X"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "3f", entryID, "massbank", "MSBNK-1.txt"), p2)
}

func TestLocalStore_RejectsUnsafeNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "../evil", KindNmr, "a.zip", strings.NewReader(""))
	assert.ErrorIs(t, err, filex.ErrUnsafeName)

	_, err = s.Save(context.Background(), entryID, KindNmr, "..", strings.NewReader(""))
	assert.ErrorIs(t, err, filex.ErrUnsafeName)

	assert.ErrorIs(t, s.DeleteEntry(context.Background(), "a/b"), filex.ErrUnsafeName)
}

func TestLocalStore_DeleteEntryIsIdempotent(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Save(ctx, entryID, KindNmr, "a.zip", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = s.Save(ctx, entryID, KindMassbank, "b.txt", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteEntry(ctx, entryID))
	_, err = os.Stat(s.EntryDir(entryID))
	assert.True(t, os.IsNotExist(err))

	// second delete and delete of something never stored
	require.NoError(t, s.DeleteEntry(ctx, entryID))
	require.NoError(t, s.DeleteEntry(ctx, "aa000000-0000-4000-8000-000000000000"))
}

func TestLocalStore_SaveHonoursCancelledContext(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, entryID, KindNmr, "a.zip", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(s.EntryDir(entryID))
	assert.True(t, os.IsNotExist(statErr))
}
