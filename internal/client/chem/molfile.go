package chem

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMolfile reads an MDL molfile in V2000 or V3000 format. Hydrogens not
// drawn as atoms are added from default valences.
func ParseMolfile(s string) (*Graph, error) {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return nil, fmt.Errorf("molfile: missing header or counts line")
	}

	var (
		g   *Graph
		err error
	)
	if strings.Contains(lines[3], "V3000") {
		g, err = parseV3000(lines[4:])
	} else {
		g, err = parseV2000(lines[3:])
	}
	if err != nil {
		return nil, err
	}
	if len(g.Atoms) == 0 {
		return nil, ErrEmptyMolecule
	}
	g.markAromatic()
	if err := g.resolveHydrogens(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) markAromatic() {
	for _, b := range g.Bonds {
		if b.Order == Aromatic {
			g.Atoms[b.A].Aromatic = true
			g.Atoms[b.B].Aromatic = true
		}
	}
}

func molfileBondOrder(t int) (BondOrder, error) {
	switch t {
	case 1:
		return Single, nil
	case 2:
		return Double, nil
	case 3:
		return Triple, nil
	case 4:
		return Aromatic, nil
	}
	return 0, fmt.Errorf("molfile: unsupported bond type %d", t)
}

func fixedInt(line string, from, to int) (int, error) {
	if len(line) < to {
		if len(line) <= from {
			return 0, fmt.Errorf("molfile: line too short: %q", line)
		}
		to = len(line)
	}
	return strconv.Atoi(strings.TrimSpace(line[from:to]))
}

func parseV2000(lines []string) (*Graph, error) {
	counts := lines[0]
	na, err := fixedInt(counts, 0, 3)
	if err != nil {
		return nil, fmt.Errorf("molfile: bad atom count: %w", err)
	}
	nb, err := fixedInt(counts, 3, 6)
	if err != nil {
		return nil, fmt.Errorf("molfile: bad bond count: %w", err)
	}
	if len(lines) < 1+na+nb {
		return nil, fmt.Errorf("molfile: expected %d atom and %d bond lines", na, nb)
	}

	g := &Graph{}
	for i := 0; i < na; i++ {
		f := strings.Fields(lines[1+i])
		if len(f) < 4 {
			return nil, fmt.Errorf("molfile: atom %d: malformed line", i+1)
		}
		a := Atom{Symbol: f[3], explicitH: -1}
		if _, ok := elements[a.Symbol]; !ok {
			return nil, fmt.Errorf("molfile: atom %d: unknown element %q", i+1, a.Symbol)
		}
		if len(f) > 5 {
			a.Charge = v2000Charge(f[5])
		}
		g.addAtom(a)
	}

	for i := 0; i < nb; i++ {
		line := lines[1+na+i]
		a1, err1 := fixedInt(line, 0, 3)
		a2, err2 := fixedInt(line, 3, 6)
		t, err3 := fixedInt(line, 6, 9)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("molfile: bond %d: malformed line", i+1)
		}
		if err := g.addMolfileBond(a1, a2, t); err != nil {
			return nil, fmt.Errorf("molfile: bond %d: %w", i+1, err)
		}
	}

	// property block: M  CHG and M  ISO override the atom block
	for _, line := range lines[1+na+nb:] {
		switch {
		case strings.HasPrefix(line, "M  END"):
			return g, nil
		case strings.HasPrefix(line, "M  CHG"):
			applyPairs(g, line, func(a *Atom, v int) { a.Charge = v })
		case strings.HasPrefix(line, "M  ISO"):
			applyPairs(g, line, func(a *Atom, v int) { a.Isotope = v })
		}
	}
	return g, nil
}

// v2000Charge decodes the atom block charge code.
func v2000Charge(code string) int {
	switch code {
	case "1":
		return 3
	case "2":
		return 2
	case "3":
		return 1
	case "5":
		return -1
	case "6":
		return -2
	case "7":
		return -3
	}
	return 0
}

func applyPairs(g *Graph, line string, set func(*Atom, int)) {
	f := strings.Fields(line)
	// M  CHG n a1 v1 a2 v2 ...
	for k := 3; k+1 < len(f); k += 2 {
		idx, err1 := strconv.Atoi(f[k])
		v, err2 := strconv.Atoi(f[k+1])
		if err1 != nil || err2 != nil || idx < 1 || idx > len(g.Atoms) {
			continue
		}
		set(&g.Atoms[idx-1], v)
	}
}

func (g *Graph) addMolfileBond(a1, a2, t int) error {
	if a1 < 1 || a1 > len(g.Atoms) || a2 < 1 || a2 > len(g.Atoms) || a1 == a2 {
		return fmt.Errorf("atom index out of range")
	}
	o, err := molfileBondOrder(t)
	if err != nil {
		return err
	}
	g.addBond(a1-1, a2-1, o)
	return nil
}

func parseV3000(lines []string) (*Graph, error) {
	g := &Graph{}
	section := ""
	for _, raw := range lines {
		if strings.HasPrefix(raw, "M  END") {
			break
		}
		if !strings.HasPrefix(raw, "M  V30 ") {
			continue
		}
		f := strings.Fields(strings.TrimPrefix(raw, "M  V30 "))
		if len(f) == 0 {
			continue
		}
		switch {
		case f[0] == "BEGIN" && len(f) > 1:
			section = f[1]
			continue
		case f[0] == "END":
			section = ""
			continue
		}

		switch section {
		case "ATOM":
			if len(f) < 2 {
				return nil, fmt.Errorf("molfile: malformed V3000 atom line %q", raw)
			}
			a := Atom{Symbol: f[1], explicitH: -1}
			if _, ok := elements[a.Symbol]; !ok {
				return nil, fmt.Errorf("molfile: unknown element %q", a.Symbol)
			}
			for _, kv := range f[2:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					continue
				}
				n, err := strconv.Atoi(v)
				if err != nil {
					continue
				}
				switch k {
				case "CHG":
					a.Charge = n
				case "MASS":
					a.Isotope = n
				}
			}
			g.addAtom(a)
		case "BOND":
			if len(f) < 4 {
				return nil, fmt.Errorf("molfile: malformed V3000 bond line %q", raw)
			}
			t, err1 := strconv.Atoi(f[1])
			a1, err2 := strconv.Atoi(f[2])
			a2, err3 := strconv.Atoi(f[3])
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("molfile: malformed V3000 bond line %q", raw)
			}
			if err := g.addMolfileBond(a1, a2, t); err != nil {
				return nil, fmt.Errorf("molfile: %w", err)
			}
		}
	}
	return g, nil
}

// MolfileV3 renders g as a V3000 molfile with zero coordinates.
func (g *Graph) MolfileV3() string {
	var sb strings.Builder
	sb.WriteString("\n  nobs\n\n")
	sb.WriteString("  0  0  0     0  0            999 V3000\n")
	sb.WriteString("M  V30 BEGIN CTAB\n")
	fmt.Fprintf(&sb, "M  V30 COUNTS %d %d 0 0 0\n", len(g.Atoms), len(g.Bonds))
	sb.WriteString("M  V30 BEGIN ATOM\n")
	for i, a := range g.Atoms {
		fmt.Fprintf(&sb, "M  V30 %d %s 0 0 0 0", i+1, a.Symbol)
		if a.Charge != 0 {
			fmt.Fprintf(&sb, " CHG=%d", a.Charge)
		}
		if a.Isotope != 0 {
			fmt.Fprintf(&sb, " MASS=%d", a.Isotope)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("M  V30 END ATOM\n")
	if len(g.Bonds) > 0 {
		sb.WriteString("M  V30 BEGIN BOND\n")
		for i, b := range g.Bonds {
			t := int(b.Order)
			if b.Order == Aromatic {
				t = 4
			}
			fmt.Fprintf(&sb, "M  V30 %d %d %d %d\n", i+1, t, b.A+1, b.B+1)
		}
		sb.WriteString("M  V30 END BOND\n")
	}
	sb.WriteString("M  V30 END CTAB\n")
	sb.WriteString("M  END\n")
	return sb.String()
}
