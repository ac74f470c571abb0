package drafts

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/form"
	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/nobs/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newSQLiteMeta(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at TEXT NOT NULL DEFAULT '')`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}

// countingMeta is an in-memory metadata store that counts writes.
type countingMeta struct {
	mu   sync.Mutex
	data map[string][]byte
	sets atomic.Int32
}

func newCountingMeta() *countingMeta { return &countingMeta{data: map[string][]byte{}} }

func (m *countingMeta) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *countingMeta) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets.Add(1)
	return nil
}

func (m *countingMeta) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *countingMeta) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func TestRepository_SaveLoadClear(t *testing.T) {
	orig := nowFn
	t.Cleanup(func() { nowFn = orig })
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	nowFn = func() time.Time { return fixed }

	r := NewRepository(newSQLiteMeta(t))
	ctx := context.Background()

	d, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
	ok, err := r.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	in := models.Draft{
		EntryID: "e-1",
		Title:   form.RichTextFromPlain("Caffeine"),
		Authors: []models.Author{{ID: "a", FirstName: "Jane", Order: 0}},
	}
	require.NoError(t, r.Save(ctx, in))

	d, err = r.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "e-1", d.EntryID)
	assert.Equal(t, "Caffeine", form.PlainText(d.Title))
	assert.Equal(t, fixed, d.SavedAt)
	assert.Equal(t, "Jane", d.Authors[0].FirstName)

	require.NoError(t, r.Clear(ctx))
	ok, err = r.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func newSaver(t *testing.T, delay time.Duration) (*form.Store, *countingMeta, *AutoSaver) {
	t.Helper()
	store := form.NewStore()
	store.Initialize(nil)
	meta := newCountingMeta()
	a := NewAutoSaver(store, NewRepository(meta), delay, logging.Nop())
	a.Start()
	t.Cleanup(a.Stop)
	return store, meta, a
}

func TestAutoSaver_DebouncesBurst(t *testing.T) {
	store, meta, _ := newSaver(t, 50*time.Millisecond)

	for i := 0; i < 5; i++ {
		store.SetTitle(form.RichTextFromPlain("t"))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return meta.sets.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), meta.sets.Load())
}

func TestAutoSaver_IgnoresUnwatchedFields(t *testing.T) {
	store, meta, _ := newSaver(t, 10*time.Millisecond)

	store.SetNmr(&models.NmrBundle{FileName: "x.zip"})
	store.SetSubmitting(true)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), meta.sets.Load())
}

func TestAutoSaver_ReinitializeCancelsPendingSave(t *testing.T) {
	store, meta, _ := newSaver(t, 30*time.Millisecond)

	store.SetTitle(form.RichTextFromPlain("t"))
	store.Initialize(nil)
	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, int32(0), meta.sets.Load())
}

func TestAutoSaver_FlushAndStop(t *testing.T) {
	store, meta, a := newSaver(t, time.Hour)

	store.SetTitle(form.RichTextFromPlain("now"))
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, int32(1), meta.sets.Load())

	d, err := NewRepository(meta).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "now", form.PlainText(d.Title))

	a.Stop()
	store.SetTitle(form.RichTextFromPlain("later"))
	assert.Equal(t, int32(1), meta.sets.Load())
}
