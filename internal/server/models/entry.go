package models

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPublished = "published"
)

type Affiliation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Author struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Affiliations  []Affiliation `json:"affiliations"`
	Orcid         *string       `json:"orcid"`
	IsCurrentUser bool          `json:"isCurrentUser"`
	Order         int           `json:"order"`
}

type Molecule struct {
	MolfileV3        string  `json:"molfileV3"`
	IDCode           string  `json:"idCode"`
	Smiles           *string `json:"smiles"`
	MolecularFormula string  `json:"molecularFormula"`
	MolecularWeight  float64 `json:"molecularWeight"`
	MonoisotopicMass float64 `json:"monoisotopicMass"`
}

// StoredFile is one MassBank file kept on disk for an entry.
type StoredFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Entry is a submitted compound entry. EntryID is the client-generated UUID;
// ID is the database surrogate key. Title and Description hold the
// serialized rich-text state exactly as the client sent it.
type Entry struct {
	ID             int64
	EntryID        string
	UserID         int64
	Title          string
	Description    *string
	Authors        []Author
	Molecule       *Molecule
	NmrArchivePath *string
	MassbankFiles  []StoredFile
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
