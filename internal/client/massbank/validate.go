// Package massbank validates MassBank record files before they are attached
// to an entry.
package massbank

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/models"
)

// Message types reported in models.ValidationMessage.Type.
const (
	TypeSyntax    = "syntax"
	TypeMissing   = "missing"
	TypeValue     = "value"
	TypeDuplicate = "duplicate"
	TypeStructure = "structure"
	TypeUnknown   = "unknown"
	TypeOther     = "other"
)

const peakHeader = "m/z int. rel.int."

type Result struct {
	Success  bool
	Errors   []models.ValidationMessage
	Warnings []models.ValidationMessage
}

var tagLine = regexp.MustCompile(`^([A-Z][A-Z0-9_]*(?:\$[A-Z0-9_]+)?): (.*)$`)

type validator struct {
	filename string
	res      Result
	seen     map[string]int
	msSub    map[string]bool
	numPeak  int
	peakLine int
	peaks    int
}

// ValidateContent checks one MassBank record. filename is used only to
// cross-check the accession.
func ValidateContent(content, filename string) Result {
	v := &validator{filename: filename, seen: map[string]int{}, msSub: map[string]bool{}, numPeak: -1}
	v.run(content)
	v.res.Success = len(v.res.Errors) == 0
	return v.res
}

func (v *validator) errorf(line, col int, typ, format string, args ...any) {
	v.res.Errors = append(v.res.Errors, models.ValidationMessage{
		Message: fmt.Sprintf(format, args...), Line: line, Column: col, Type: typ,
	})
}

func (v *validator) warnf(line, col int, typ, format string, args ...any) {
	v.res.Warnings = append(v.res.Warnings, models.ValidationMessage{
		Message: fmt.Sprintf(format, args...), Line: line, Column: col, Type: typ,
	})
}

func (v *validator) run(content string) {
	if strings.TrimSpace(content) == "" {
		v.errorf(0, 0, TypeStructure, "File is empty")
		return
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	current := ""
	terminated := false

	for i, line := range lines {
		n := i + 1
		if terminated {
			if strings.TrimSpace(line) != "" {
				v.errorf(n, 1, TypeStructure, "Unexpected content after '//'")
				return
			}
			continue
		}
		switch {
		case line == "//":
			terminated = true
		case strings.TrimSpace(line) == "":
			if i == len(lines)-1 {
				continue
			}
			v.errorf(n, 1, TypeSyntax, "Empty line inside record")
		case strings.HasPrefix(line, "  "):
			if !multiline[current] {
				v.errorf(n, 1, TypeSyntax, "Unexpected continuation line")
				continue
			}
			if current == "PK$PEAK" {
				v.peakRow(n, line)
			}
		default:
			m := tagLine.FindStringSubmatch(line)
			if m == nil {
				v.errorf(n, 1, TypeSyntax, "Invalid line format, expected 'TAG: value'")
				current = ""
				continue
			}
			current = m[1]
			v.tag(n, m[1], m[2])
		}
	}

	if !terminated {
		v.errorf(len(lines), 1, TypeStructure, "Record must end with '//'")
	}
	v.finish()
}

func (v *validator) tag(line int, tag, value string) {
	col := len(tag) + 3
	if !knownTags[tag] {
		v.warnf(line, 1, TypeUnknown, "Unknown tag %s", tag)
		return
	}
	if prev, dup := v.seen[tag]; dup && !repeatable[tag] {
		v.errorf(line, 1, TypeDuplicate, "Duplicate tag %s (first seen on line %d)", tag, prev)
		return
	}
	if _, ok := v.seen[tag]; !ok {
		v.seen[tag] = line
	}
	if strings.TrimSpace(value) == "" {
		v.errorf(line, col, TypeValue, "Empty value for %s", tag)
		return
	}

	switch tag {
	case "ACCESSION":
		base := strings.TrimSuffix(path.Base(v.filename), path.Ext(v.filename))
		if v.filename != "" && base != value {
			v.warnf(line, col, "accession", "ACCESSION %s does not match file name %s", value, v.filename)
		}
	case "CH$EXACT_MASS":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			v.errorf(line, col, TypeValue, "CH$EXACT_MASS must be a number, got %q", value)
		}
	case "AC$MASS_SPECTROMETRY":
		sub, _, _ := strings.Cut(value, " ")
		v.msSub[sub] = true
	case "PK$NUM_PEAK":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			v.errorf(line, col, TypeValue, "PK$NUM_PEAK must be a non-negative integer, got %q", value)
			return
		}
		v.numPeak = n
	case "PK$PEAK":
		v.peakLine = line
		if value != peakHeader && value != "N/A" {
			v.errorf(line, col, TypeValue, "PK$PEAK header must be %q", peakHeader)
		}
	}
}

func (v *validator) peakRow(line int, row string) {
	v.peaks++
	f := strings.Fields(row)
	if len(f) != 3 {
		v.errorf(line, 3, TypeValue, "Peak must have 3 columns (m/z int. rel.int.), got %d", len(f))
		return
	}
	col := 3
	for i, s := range f {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			v.errorf(line, col, TypeValue, "Peak column %d is not a number: %q", i+1, s)
			return
		}
		col += len(s) + 1
	}
}

func (v *validator) finish() {
	for _, t := range mandatoryTags {
		if _, ok := v.seen[t]; !ok {
			v.errorf(0, 0, TypeMissing, "Missing mandatory field %s", t)
		}
	}
	for _, s := range mandatoryMSSubtags {
		if !v.msSub[s] {
			v.errorf(0, 0, TypeMissing, "Missing mandatory field AC$MASS_SPECTROMETRY: %s", s)
		}
	}
	if _, ok := v.seen["PK$SPLASH"]; !ok {
		v.warnf(0, 0, TypeMissing, "PK$SPLASH is missing")
	}
	if v.numPeak >= 0 && v.peakLine > 0 && v.numPeak != v.peaks {
		v.errorf(v.peakLine, 1, TypeValue, "PK$NUM_PEAK is %d but %d peaks were found", v.numPeak, v.peaks)
	}
}

// AcceptedName reports whether name looks like a MassBank record file.
func AcceptedName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".mb")
}
