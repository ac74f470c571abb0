// Package form holds the state of the entry being composed: its fields,
// the submit flags, and a pure derivation of submit-readiness. Observers
// subscribe to changes; the autosaver and the CLI are the two consumers.
package form

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/google/uuid"
)

// Field identifies a piece of form state in a Change.
type Field string

const (
	FieldEntryID     Field = "entryId"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldAuthors     Field = "authors"
	FieldMolecule    Field = "molecule"
	FieldNmr         Field = "nmr"
	FieldMassSpec    Field = "massSpec"
	FieldDirty       Field = "dirty"
	FieldSubmitting  Field = "submitting"
	FieldAttempted   Field = "attemptedSubmit"
)

// Snapshot is a deep copy of the form state.
type Snapshot struct {
	EntryID         string
	Title           models.RichText
	Description     models.RichText
	Authors         []models.Author
	Molecule        *models.Molecule
	Nmr             *models.NmrBundle
	MassSpec        *models.MassSpecBundle
	Dirty           bool
	Submitting      bool
	AttemptedSubmit bool
}

// Change is published after every mutation.
type Change struct {
	Fields   []Field
	Snapshot Snapshot
}

// Has reports whether f is among the changed fields.
func (c Change) Has(f Field) bool {
	for _, x := range c.Fields {
		if x == f {
			return true
		}
	}
	return false
}

type Store struct {
	mu    sync.Mutex
	state Snapshot

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int

	newID func() string
}

func NewStore() *Store {
	return &Store{subs: map[int]func(Change){}, newID: uuid.NewString}
}

// Subscribe registers fn for every future change and returns a function
// that removes it. fn runs on the mutating goroutine, outside the lock.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Derived recomputes readiness from the current state.
func (s *Store) Derived() Derived {
	return Derive(s.Snapshot())
}

// update applies fn under the lock and publishes the fields it reports.
// fn returning no fields means nothing changed.
func (s *Store) update(fn func(st *Snapshot) []Field) {
	s.mu.Lock()
	fields := fn(&s.state)
	snap := s.state.clone()
	s.mu.Unlock()

	if len(fields) == 0 {
		return
	}
	s.publish(Change{Fields: fields, Snapshot: snap})
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

var allFields = []Field{
	FieldEntryID, FieldTitle, FieldDescription, FieldAuthors, FieldMolecule,
	FieldNmr, FieldMassSpec, FieldDirty, FieldSubmitting, FieldAttempted,
}

// Initialize starts a fresh entry: a new id, and the signed-in user as the
// only author. With no user the author list is empty.
func (s *Store) Initialize(user *models.UserProfile) {
	s.update(func(st *Snapshot) []Field {
		*st = Snapshot{EntryID: s.newID(), Authors: []models.Author{}}
		if user != nil {
			st.Authors = append(st.Authors, s.authorFromProfile(user))
		}
		return allFields
	})
}

func (s *Store) authorFromProfile(u *models.UserProfile) models.Author {
	var name string
	if u.Name != nil {
		name = *u.Name
	}
	first, last, _ := strings.Cut(name, " ")

	a := models.Author{
		ID:            s.newID(),
		FirstName:     first,
		LastName:      last,
		Affiliations:  []models.Affiliation{},
		IsCurrentUser: true,
		Order:         0,
	}
	if u.Orcid != "" {
		orcid := u.Orcid
		a.Orcid = &orcid
	}
	if u.Institution != nil && *u.Institution != "" {
		a.Affiliations = append(a.Affiliations, models.Affiliation{ID: s.newID(), Name: *u.Institution})
	}
	return a
}

// Reset clears every field to its empty value.
func (s *Store) Reset() {
	s.update(func(st *Snapshot) []Field {
		*st = Snapshot{}
		return allFields
	})
}

func (s *Store) SetTitle(rt models.RichText) {
	s.update(func(st *Snapshot) []Field {
		st.Title = cloneBytes(rt)
		st.Dirty = true
		return []Field{FieldTitle, FieldDirty}
	})
}

func (s *Store) SetDescription(rt models.RichText) {
	s.update(func(st *Snapshot) []Field {
		st.Description = cloneBytes(rt)
		st.Dirty = true
		return []Field{FieldDescription, FieldDirty}
	})
}

func (s *Store) SetMolecule(m *models.Molecule) {
	s.update(func(st *Snapshot) []Field {
		st.Molecule = cloneMolecule(m)
		st.Dirty = true
		return []Field{FieldMolecule, FieldDirty}
	})
}

func (s *Store) SetNmr(b *models.NmrBundle) {
	s.update(func(st *Snapshot) []Field {
		st.Nmr = cloneNmr(b)
		st.Dirty = true
		return []Field{FieldNmr, FieldDirty}
	})
}

func (s *Store) SetMassSpec(b *models.MassSpecBundle) {
	s.update(func(st *Snapshot) []Field {
		st.MassSpec = cloneMassSpec(b)
		st.Dirty = true
		return []Field{FieldMassSpec, FieldDirty}
	})
}

// AddMassSpecFiles appends validated files to the bundle, creating it if
// needed.
func (s *Store) AddMassSpecFiles(files ...models.MassSpecFile) {
	if len(files) == 0 {
		return
	}
	s.update(func(st *Snapshot) []Field {
		if st.MassSpec == nil {
			st.MassSpec = &models.MassSpecBundle{}
		}
		for _, f := range files {
			st.MassSpec.Files = append(st.MassSpec.Files, cloneMassSpecFile(f))
		}
		st.Dirty = true
		return []Field{FieldMassSpec, FieldDirty}
	})
}

// RemoveMassSpecFile drops the file with the given id. Removing the last
// file clears the bundle.
func (s *Store) RemoveMassSpecFile(id string) bool {
	removed := false
	s.update(func(st *Snapshot) []Field {
		if st.MassSpec == nil {
			return nil
		}
		kept := st.MassSpec.Files[:0]
		for _, f := range st.MassSpec.Files {
			if f.ID == id {
				removed = true
				continue
			}
			kept = append(kept, f)
		}
		if !removed {
			return nil
		}
		st.MassSpec.Files = kept
		if len(kept) == 0 {
			st.MassSpec = nil
		}
		st.Dirty = true
		return []Field{FieldMassSpec, FieldDirty}
	})
	return removed
}

func (s *Store) ClearMassSpec() {
	s.SetMassSpec(nil)
}

func (s *Store) SetSubmitting(v bool) {
	s.update(func(st *Snapshot) []Field {
		if st.Submitting == v {
			return nil
		}
		st.Submitting = v
		return []Field{FieldSubmitting}
	})
}

func (s *Store) SetAttemptedSubmit(v bool) {
	s.update(func(st *Snapshot) []Field {
		st.AttemptedSubmit = v
		return []Field{FieldAttempted}
	})
}

// RestoreDraft loads the persisted fields of d. Spectral data and flags are
// left as they are.
func (s *Store) RestoreDraft(d models.Draft) {
	s.update(func(st *Snapshot) []Field {
		st.EntryID = d.EntryID
		st.Title = cloneBytes(d.Title)
		st.Description = cloneBytes(d.Description)
		st.Authors = cloneAuthors(d.Authors)
		if st.Authors == nil {
			st.Authors = []models.Author{}
		}
		renumber(st.Authors)
		st.Molecule = cloneMolecule(d.Molecule)
		return []Field{FieldEntryID, FieldTitle, FieldDescription, FieldAuthors, FieldMolecule}
	})
}

// DraftSnapshot returns the persistable subset of the form.
func (s *Store) DraftSnapshot() models.Draft {
	snap := s.Snapshot()
	return models.Draft{
		EntryID:     snap.EntryID,
		Title:       snap.Title,
		Description: snap.Description,
		Authors:     snap.Authors,
		Molecule:    snap.Molecule,
		SavedAt:     time.Now().UTC(),
	}
}

func (st Snapshot) clone() Snapshot {
	c := st
	c.Title = cloneBytes(st.Title)
	c.Description = cloneBytes(st.Description)
	c.Authors = cloneAuthors(st.Authors)
	c.Molecule = cloneMolecule(st.Molecule)
	c.Nmr = cloneNmr(st.Nmr)
	c.MassSpec = cloneMassSpec(st.MassSpec)
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func cloneAuthors(in []models.Author) []models.Author {
	if in == nil {
		return nil
	}
	out := make([]models.Author, len(in))
	for i, a := range in {
		out[i] = cloneAuthor(a)
	}
	return out
}

func cloneAuthor(a models.Author) models.Author {
	if a.Affiliations != nil {
		a.Affiliations = append([]models.Affiliation(nil), a.Affiliations...)
	}
	if a.Orcid != nil {
		v := *a.Orcid
		a.Orcid = &v
	}
	return a
}

func cloneMolecule(m *models.Molecule) *models.Molecule {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneNmr(b *models.NmrBundle) *models.NmrBundle {
	if b == nil {
		return nil
	}
	c := *b
	c.Archive = cloneBytes(b.Archive)
	return &c
}

func cloneMassSpec(b *models.MassSpecBundle) *models.MassSpecBundle {
	if b == nil {
		return nil
	}
	c := &models.MassSpecBundle{Files: make([]models.MassSpecFile, len(b.Files))}
	for i, f := range b.Files {
		c.Files[i] = cloneMassSpecFile(f)
	}
	return c
}

func cloneMassSpecFile(f models.MassSpecFile) models.MassSpecFile {
	f.Errors = append([]models.ValidationMessage(nil), f.Errors...)
	f.Warnings = append([]models.ValidationMessage(nil), f.Warnings...)
	return f
}
