package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/filex"
	"github.com/dmitrijs2005/nobs/internal/logging"
	"github.com/dmitrijs2005/nobs/internal/server/config"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/nobs/internal/server/storage"
	"github.com/google/uuid"
)

// Upload is one file of a multipart submission.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// CreateEntryInput is the decoded form of POST /api/entries. Authors and
// Molecule are the JSON strings the client sent.
type CreateEntryInput struct {
	EntryID       string   `json:"entryId" validate:"required,uuid"`
	Title         string   `json:"title" validate:"required,min=1"`
	Description   *string  `json:"description"`
	Authors       string   `json:"authors" validate:"required,min=1"`
	Molecule      *string  `json:"molecule"`
	NmrArchive    *Upload  `json:"-"`
	MassbankFiles []Upload `json:"-"`
}

type EntryService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	store               storage.Store
	maxNmrArchiveSize   int64
	maxMassbankFileSize int64
	log                 logging.Logger
	created, deleted    Counter
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store, cfg *config.Config, log logging.Logger) *EntryService {
	return &EntryService{
		db:                  db,
		repomanager:         m,
		store:               store,
		maxNmrArchiveSize:   cfg.MaxNmrArchiveSize,
		maxMassbankFileSize: cfg.MaxMassbankFileSize,
		log:                 log.With("module", "services.entries"),
		created:             nopCounter{},
		deleted:             nopCounter{},
	}
}

// SetCounters installs counters for created and deleted entries.
func (s *EntryService) SetCounters(created, deleted Counter) {
	s.created, s.deleted = created, deleted
}

// Create validates the payload and every upload, stores the files and then
// writes the row. Files and row are not written atomically: a failure after
// the files are stored leaves them on disk.
func (s *EntryService) Create(ctx context.Context, userID int64, in CreateEntryInput) (*models.Entry, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	authors, err := decodeAuthors(in.Authors)
	if err != nil {
		return nil, err
	}
	molecule, err := decodeMolecule(in.Molecule)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Entries(s.db)

	exists, err := repo.ExistsByEntryID(ctx, in.EntryID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrAlreadyExists
	}

	if in.NmrArchive != nil {
		if err := checkUpload(*in.NmrArchive, "zip", s.maxNmrArchiveSize); err != nil {
			return nil, common.NewValidationError("Invalid NMR file: %s", err)
		}
	}
	for _, f := range in.MassbankFiles {
		if err := checkUpload(f, "txt", s.maxMassbankFileSize); err != nil {
			return nil, common.NewValidationError("Invalid MassBank file: %s", err)
		}
	}

	entry := &models.Entry{
		EntryID:     in.EntryID,
		UserID:      userID,
		Title:       in.Title,
		Description: nonEmptyPtr(in.Description),
		Authors:     authors,
		Molecule:    molecule,
		Status:      models.StatusSubmitted,
	}

	if in.NmrArchive != nil {
		p, err := s.save(ctx, in.EntryID, storage.KindNmr, *in.NmrArchive)
		if err != nil {
			return nil, err
		}
		entry.NmrArchivePath = &p
		s.log.Debug(ctx, "saved nmr archive", "entry_id", in.EntryID, "path", p)
	}
	for _, f := range in.MassbankFiles {
		p, err := s.save(ctx, in.EntryID, storage.KindMassbank, f)
		if err != nil {
			return nil, err
		}
		name, _ := filex.BaseName(f.Filename)
		entry.MassbankFiles = append(entry.MassbankFiles, models.StoredFile{Filename: name, Path: p})
		s.log.Debug(ctx, "saved massbank file", "entry_id", in.EntryID, "path", p)
	}

	created, err := repo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.created.Inc()
	s.log.Info(ctx, "entry created", "entry_id", created.EntryID, "user_id", userID)
	return created, nil
}

func (s *EntryService) save(ctx context.Context, entryID string, kind storage.Kind, u Upload) (string, error) {
	rc, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", u.Filename, err)
	}
	defer rc.Close()

	p, err := s.store.Save(ctx, entryID, kind, u.Filename, rc)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", u.Filename, err)
	}
	return p, nil
}

func (s *EntryService) List(ctx context.Context, userID int64) ([]*models.Entry, error) {
	return s.repomanager.Entries(s.db).ListByUser(ctx, userID)
}

// Get returns the caller's entry. Ids that are not UUIDs cannot name an
// entry and are common.ErrorNotFound.
func (s *EntryService) Get(ctx context.Context, userID int64, entryID string) (*models.Entry, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Entries(s.db).GetByEntryIDForUser(ctx, entryID, userID)
}

// Delete removes the entry's files and then its row. Entries that do not
// exist or belong to someone else are common.ErrorNotFound and nothing is
// touched.
func (s *EntryService) Delete(ctx context.Context, userID int64, entryID string) error {
	repo := s.repomanager.Entries(s.db)

	entry, err := s.Get(ctx, userID, entryID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEntry(ctx, entry.EntryID); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	s.log.Debug(ctx, "deleted entry files", "entry_id", entry.EntryID)

	if err := repo.DeleteByEntryIDForUser(ctx, entry.EntryID, userID); err != nil {
		return err
	}

	s.deleted.Inc()
	s.log.Info(ctx, "entry deleted", "entry_id", entry.EntryID, "user_id", userID)
	return nil
}

func decodeAuthors(raw string) ([]models.Author, error) {
	var authors []models.Author
	if err := json.Unmarshal([]byte(raw), &authors); err != nil {
		return nil, common.NewValidationError("authors must be a JSON array of authors")
	}
	if len(authors) == 0 {
		return nil, common.NewValidationError("At least one author is required")
	}
	for i := range authors {
		authors[i].Order = i
		if authors[i].Affiliations == nil {
			authors[i].Affiliations = []models.Affiliation{}
		}
	}
	return authors, nil
}

func decodeMolecule(raw *string) (*models.Molecule, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" || v == "null" {
		return nil, nil
	}
	m := &models.Molecule{}
	if err := json.Unmarshal([]byte(v), m); err != nil {
		return nil, common.NewValidationError("molecule must be a JSON object")
	}
	return m, nil
}

func checkUpload(u Upload, ext string, limit int64) error {
	if got := filex.Ext(u.Filename); got != ext {
		if got == "" {
			return fmt.Errorf("Invalid file extension. Only %s is allowed", ext)
		}
		return fmt.Errorf("Invalid file extension %s. Only %s is allowed", got, ext)
	}
	if limit > 0 && u.Size > limit {
		return fmt.Errorf("File size should be less than %s", formatSize(limit))
	}
	return nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func nonEmptyPtr(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
