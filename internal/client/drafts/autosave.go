package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/form"
	"github.com/dmitrijs2005/nobs/internal/logging"
)

const DefaultDelay = 2 * time.Second

// fields whose change re-arms the autosave timer
var watched = []form.Field{
	form.FieldEntryID,
	form.FieldTitle,
	form.FieldDescription,
	form.FieldAuthors,
	form.FieldMolecule,
}

// AutoSaver writes the form's draft after edits settle. Every qualifying
// change pushes the single pending save back by the full delay.
type AutoSaver struct {
	store  *form.Store
	drafts *Repository
	delay  time.Duration
	logger logging.Logger

	mu      sync.Mutex
	timer   *time.Timer
	unsub   func()
	stopped bool

	saveMu sync.Mutex
}

func NewAutoSaver(store *form.Store, drafts *Repository, delay time.Duration, l logging.Logger) *AutoSaver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &AutoSaver{
		store:  store,
		drafts: drafts,
		delay:  delay,
		logger: l.With("module", "autosave"),
	}
}

// Start subscribes to the store. Calling it twice is a no-op.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unsub != nil || a.stopped {
		return
	}
	a.unsub = a.store.Subscribe(a.onChange)
}

func (a *AutoSaver) onChange(c form.Change) {
	if !c.Snapshot.Dirty {
		// a fresh or reset form has nothing to save
		a.cancel()
		return
	}
	for _, f := range watched {
		if c.Has(f) {
			a.arm()
			return
		}
	}
}

func (a *AutoSaver) arm() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
		return
	}
	a.timer.Stop()
	a.timer.Reset(a.delay)
}

func (a *AutoSaver) cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
}

func (a *AutoSaver) fire() {
	if !a.store.Snapshot().Dirty {
		return
	}
	if err := a.save(context.Background()); err != nil {
		a.logger.Error(context.Background(), "autosave failed", "error", err)
	}
}

func (a *AutoSaver) save(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	d := a.store.DraftSnapshot()
	if err := a.drafts.Save(ctx, d); err != nil {
		return err
	}
	a.logger.Debug(ctx, "draft saved", "entry_id", d.EntryID)
	return nil
}

// Flush cancels the pending timer and saves right away.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.cancel()
	return a.save(ctx)
}

// Stop unsubscribes and drops any pending save.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
	if a.timer != nil {
		a.timer.Stop()
	}
}
