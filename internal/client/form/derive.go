package form

// Derived is the submit-readiness of a Snapshot. It is never stored; every
// read recomputes it.
type Derived struct {
	HasTitle                  bool
	HasSmiles                 bool
	HasMassSpecErrors         bool
	HasNmrData                bool
	HasAtLeastOneSpectralFile bool
	IsValid                   bool
	AuthorCount               int
}

// Derive computes Derived from s.
func Derive(s Snapshot) Derived {
	d := Derived{
		HasTitle:          HasText(s.Title),
		HasSmiles:         s.Molecule.HasSmiles(),
		HasMassSpecErrors: s.MassSpec.HasErrors(),
		HasNmrData:        s.Nmr != nil && s.Nmr.Archive != nil,
		AuthorCount:       len(s.Authors),
	}
	d.HasAtLeastOneSpectralFile = d.HasNmrData || s.MassSpec.Len() > 0
	d.IsValid = s.EntryID != "" &&
		d.HasTitle &&
		d.AuthorCount > 0 &&
		d.HasSmiles &&
		!d.HasMassSpecErrors &&
		d.HasAtLeastOneSpectralFile
	return d
}

// Section names a part of the form a failed submit points the user to.
type Section string

const (
	SectionNone     Section = "none"
	SectionTitle    Section = "title"
	SectionAuthors  Section = "authors"
	SectionMolecule Section = "molecule"
	SectionMassbank Section = "massbank"
	SectionSpectra  Section = "spectra"
)

// FirstInvalidSection returns the first section, in display priority, that
// keeps the form from being valid. A valid form yields SectionNone.
func FirstInvalidSection(d Derived) Section {
	switch {
	case d.IsValid:
		return SectionNone
	case !d.HasTitle:
		return SectionTitle
	case d.AuthorCount == 0:
		return SectionAuthors
	case !d.HasSmiles:
		return SectionMolecule
	case d.HasMassSpecErrors:
		return SectionMassbank
	case !d.HasAtLeastOneSpectralFile:
		return SectionSpectra
	}
	return SectionNone
}
