// Package nmr accepts NMR archives for an entry. Archives are stored as
// uploaded; only their container format is checked.
package nmr

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/models"
)

var (
	ErrNoFile       = errors.New("No file selected")
	ErrExtension    = errors.New("Please upload a .nmrium.zip file")
	ErrNotAnArchive = errors.New("file is not a readable zip archive")
)

// ProcessArchive wraps data as the form's NMR bundle. name must end in .zip
// (.nmrium.zip included) and data must open as a zip archive.
func ProcessArchive(name string, data []byte) (*models.NmrBundle, error) {
	if name == "" && len(data) == 0 {
		return nil, ErrNoFile
	}
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return nil, ErrExtension
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnArchive, err)
	}
	return &models.NmrBundle{
		Archive:      data,
		FileName:     name,
		SpectraCount: 1,
	}, nil
}
