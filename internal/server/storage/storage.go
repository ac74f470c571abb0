// Package storage keeps uploaded entry files on disk under a tree sharded by
// the first two characters of the entry id:
//
//	<root>/<prefix>/<entryId>/{nmr,massbank}/<filename>
//
// An optional S3 mirror copies every saved file to a bucket under the same
// relative key.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/nobs/internal/filex"
)

type Kind string

const (
	KindNmr      Kind = "nmr"
	KindMassbank Kind = "massbank"
)

type Store interface {
	// Save writes r as filename under the entry's kind directory and returns
	// the final path.
	Save(ctx context.Context, entryID string, kind Kind, filename string, r io.Reader) (string, error)
	// DeleteEntry removes the entry directory recursively. A missing
	// directory is not an error.
	DeleteEntry(ctx context.Context, entryID string) error
	EntryDir(entryID string) string
}

type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if _, err := filex.EnsureDir(root); err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) EntryDir(entryID string) string {
	return filepath.Join(s.root, filex.ShardPrefix(entryID), entryID)
}

func (s *LocalStore) Save(ctx context.Context, entryID string, kind Kind, filename string, r io.Reader) (string, error) {
	if err := checkEntryID(entryID); err != nil {
		return "", err
	}
	name, err := filex.BaseName(filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return filex.WriteAtomic(filepath.Join(s.EntryDir(entryID), string(kind)), name, r)
}

func (s *LocalStore) DeleteEntry(ctx context.Context, entryID string) error {
	if err := checkEntryID(entryID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.EntryDir(entryID)); err != nil {
		return fmt.Errorf("remove entry %s: %w", entryID, err)
	}
	return nil
}

// relKey is path relative to the store root in slash form.
func (s *LocalStore) relKey(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func checkEntryID(entryID string) error {
	base, err := filex.BaseName(entryID)
	if err != nil || base != entryID {
		return fmt.Errorf("entry id %q: %w", entryID, filex.ErrUnsafeName)
	}
	return nil
}
