package models

import (
	"encoding/json"
	"time"
)

// RichText is the serialized state of a rich-text editor, kept verbatim.
type RichText = json.RawMessage

// Draft is the persisted subset of the form. Spectral data is excluded.
type Draft struct {
	EntryID     string    `json:"entryId"`
	Title       RichText  `json:"title,omitempty"`
	Description RichText  `json:"description,omitempty"`
	Authors     []Author  `json:"authors"`
	Molecule    *Molecule `json:"molecule,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}
