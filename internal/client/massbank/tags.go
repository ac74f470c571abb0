package massbank

// mandatory tags in record order; AC$MASS_SPECTROMETRY subtags are checked
// separately
var mandatoryTags = []string{
	"ACCESSION",
	"RECORD_TITLE",
	"DATE",
	"AUTHORS",
	"LICENSE",
	"CH$NAME",
	"CH$COMPOUND_CLASS",
	"CH$FORMULA",
	"CH$EXACT_MASS",
	"CH$SMILES",
	"CH$IUPAC",
	"AC$INSTRUMENT",
	"AC$INSTRUMENT_TYPE",
	"PK$NUM_PEAK",
	"PK$PEAK",
}

var mandatoryMSSubtags = []string{"MS_TYPE", "ION_MODE"}

var optionalTags = []string{
	"DEPRECATED",
	"COPYRIGHT",
	"PUBLICATION",
	"PROJECT",
	"COMMENT",
	"CH$LINK",
	"SP$SCIENTIFIC_NAME",
	"SP$LINEAGE",
	"SP$LINK",
	"SP$SAMPLE",
	"AC$MASS_SPECTROMETRY",
	"AC$CHROMATOGRAPHY",
	"AC$GENERAL",
	"AC$ION_MOBILITY",
	"MS$FOCUSED_ION",
	"MS$DATA_PROCESSING",
	"PK$SPLASH",
	"PK$ANNOTATION",
}

var repeatable = map[string]bool{
	"COMMENT":              true,
	"CH$NAME":              true,
	"CH$LINK":              true,
	"SP$LINK":              true,
	"SP$SAMPLE":            true,
	"AC$MASS_SPECTROMETRY": true,
	"AC$CHROMATOGRAPHY":    true,
	"AC$GENERAL":           true,
	"AC$ION_MOBILITY":      true,
	"MS$FOCUSED_ION":       true,
	"MS$DATA_PROCESSING":   true,
}

// tags whose value continues on following lines indented by two spaces
var multiline = map[string]bool{
	"PK$PEAK":       true,
	"PK$ANNOTATION": true,
}

var knownTags = func() map[string]bool {
	m := map[string]bool{}
	for _, t := range mandatoryTags {
		m[t] = true
	}
	for _, t := range optionalTags {
		m[t] = true
	}
	return m
}()
