package models

// NmrBundle is the NMR archive attached to the form. It is never part of a
// draft.
type NmrBundle struct {
	Archive      []byte
	FileName     string
	SpectraCount int
}

// ValidationMessage is one finding of the MassBank validator. Line and
// Column are 1-based; zero means unknown.
type ValidationMessage struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Type    string `json:"type"`
}

// MassSpecFile is one MassBank record attached to the form together with its
// validation result.
type MassSpecFile struct {
	ID           string
	OriginalName string
	Content      string
	IsValid      bool
	Errors       []ValidationMessage
	Warnings     []ValidationMessage
}

type MassSpecBundle struct {
	Files []MassSpecFile
}

// HasErrors reports whether any file in the bundle is invalid.
func (b *MassSpecBundle) HasErrors() bool {
	if b == nil {
		return false
	}
	for _, f := range b.Files {
		if !f.IsValid {
			return true
		}
	}
	return false
}

func (b *MassSpecBundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Files)
}
