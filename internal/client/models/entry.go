// Package models defines the client-side data shapes of a compound entry:
// authors, the molecule descriptor, spectral bundles, drafts and the server
// view of a submitted entry.
package models

import (
	"strings"
	"time"
)

type Affiliation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Author is embedded in an entry. Order always equals the author's index in
// the list it belongs to.
type Author struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Affiliations  []Affiliation `json:"affiliations"`
	Orcid         *string       `json:"orcid,omitempty"`
	IsCurrentUser bool          `json:"isCurrentUser"`
	Order         int           `json:"order"`
}

func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Molecule is the descriptor derived from a drawn or pasted structure.
type Molecule struct {
	MolfileV3        string  `json:"molfileV3"`
	IDCode           string  `json:"idCode"`
	Smiles           string  `json:"smiles"`
	MolecularFormula string  `json:"molecularFormula"`
	MolecularWeight  float64 `json:"molecularWeight"`
	MonoisotopicMass float64 `json:"monoisotopicMass"`
}

// HasSmiles reports whether m is present with a non-blank SMILES string.
func (m *Molecule) HasSmiles() bool {
	return m != nil && strings.TrimSpace(m.Smiles) != ""
}

// StoredFile is one MassBank file as recorded by the server.
type StoredFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Entry is the server's view of a submitted entry.
type Entry struct {
	ID             int64        `json:"id"`
	EntryID        string       `json:"entryId"`
	UserID         int64        `json:"userId"`
	Title          string       `json:"title"`
	Description    *string      `json:"description"`
	Authors        []Author     `json:"authors"`
	Molecule       *Molecule    `json:"molecule"`
	NmrArchivePath *string      `json:"nmrArchivePath"`
	MassbankFiles  []StoredFile `json:"massbankFiles"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// UserProfile is the signed-in researcher as returned by the server.
type UserProfile struct {
	ID          int64   `json:"id"`
	Orcid       string  `json:"orcid"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Institution *string `json:"institution"`
}
