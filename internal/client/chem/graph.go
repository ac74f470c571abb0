// Package chem turns SMILES strings and MDL molfiles into the molecule
// descriptor attached to an entry: Hill formula, average and monoisotopic
// mass, a V3000 molfile, SMILES and an identifier code.
package chem

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/models"
)

var (
	ErrEmptyMolecule = errors.New("molecule has no atoms")
	ErrValence       = errors.New("explicit valence exceeds the maximum allowed")
)

type BondOrder int

const (
	Single BondOrder = iota + 1
	Double
	Triple
	Quadruple
	Aromatic
)

// valence contribution of a bond; aromatic bonds count once here and the
// extra electron is accounted per atom
func (o BondOrder) valence() int {
	switch o {
	case Double:
		return 2
	case Triple:
		return 3
	case Quadruple:
		return 4
	default:
		return 1
	}
}

type Atom struct {
	Symbol   string
	Aromatic bool
	Charge   int
	Isotope  int
	// explicitH is the bracket or molfile hydrogen count; -1 means implicit
	explicitH int
	// H is the resolved number of attached hydrogens not present as atoms
	H int
}

type Bond struct {
	A, B  int
	Order BondOrder
}

// Graph is a molecule as atoms and bonds; indexes in Bond refer to Atoms.
type Graph struct {
	Atoms []Atom
	Bonds []Bond
}

func (g *Graph) addAtom(a Atom) int {
	g.Atoms = append(g.Atoms, a)
	return len(g.Atoms) - 1
}

func (g *Graph) addBond(a, b int, o BondOrder) {
	g.Bonds = append(g.Bonds, Bond{A: a, B: b, Order: o})
}

// resolveHydrogens fills H for every atom whose count is implicit. Atoms
// bonded beyond their highest valence are rejected; elements without a
// valence table are not checked.
func (g *Graph) resolveHydrogens() error {
	used := make([]int, len(g.Atoms))
	for _, b := range g.Bonds {
		used[b.A] += b.Order.valence()
		used[b.B] += b.Order.valence()
	}
	for i := range g.Atoms {
		a := &g.Atoms[i]
		explicit := used[i]
		if a.explicitH > 0 {
			explicit += a.explicitH
		}
		if vals := chargedValences(a.Symbol, a.Charge); len(vals) > 0 && explicit > vals[len(vals)-1] {
			return fmt.Errorf("%w: atom %d (%s) has valence %d, maximum is %d",
				ErrValence, i+1, a.Symbol, explicit, vals[len(vals)-1])
		}
		if a.explicitH >= 0 {
			a.H = a.explicitH
			continue
		}
		a.H = implicitHydrogens(a.Symbol, a.Charge, used[i], a.Aromatic)
	}
	return nil
}

// Formula returns the Hill-order molecular formula: C then H then the rest
// alphabetically, or purely alphabetical when there is no carbon.
func (g *Graph) Formula() string {
	counts := map[string]int{}
	for _, a := range g.Atoms {
		counts[a.Symbol]++
		if a.H > 0 {
			counts["H"] += a.H
		}
	}

	var symbols []string
	for s := range counts {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	if counts["C"] > 0 {
		rest := symbols[:0:0]
		for _, s := range symbols {
			if s != "C" && s != "H" {
				rest = append(rest, s)
			}
		}
		symbols = append([]string{"C"}, rest...)
		if counts["H"] > 0 {
			symbols = append([]string{"C", "H"}, rest...)
		}
	}

	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(s)
		if n := counts[s]; n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	return sb.String()
}

// Masses returns the average molecular weight and the monoisotopic mass.
func (g *Graph) Masses() (avg, mono float64) {
	hAvg, hMono := atomMasses("H", 0)
	for _, a := range g.Atoms {
		av, mo := atomMasses(a.Symbol, a.Isotope)
		avg += av + float64(a.H)*hAvg
		mono += mo + float64(a.H)*hMono
	}
	return round(avg, 4), round(mono, 6)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// IDCode is a stable identifier of the structure as written by this package:
// 16 bytes of SHA-256 over formula and SMILES, hex encoded.
func (g *Graph) IDCode() string {
	sum := sha256.Sum256([]byte(g.Formula() + "|" + g.Smiles()))
	return hex.EncodeToString(sum[:16])
}

// Describe builds the entry molecule descriptor for g.
func Describe(g *Graph) *models.Molecule {
	avg, mono := g.Masses()
	return &models.Molecule{
		MolfileV3:        g.MolfileV3(),
		IDCode:           g.IDCode(),
		Smiles:           g.Smiles(),
		MolecularFormula: g.Formula(),
		MolecularWeight:  avg,
		MonoisotopicMass: mono,
	}
}

// MoleculeFromSmiles parses s and describes it. The original input is kept
// as the descriptor's SMILES.
func MoleculeFromSmiles(s string) (*models.Molecule, error) {
	g, err := ParseSmiles(s)
	if err != nil {
		return nil, err
	}
	m := Describe(g)
	m.Smiles = strings.TrimSpace(s)
	return m, nil
}

func MoleculeFromMolfile(s string) (*models.Molecule, error) {
	g, err := ParseMolfile(s)
	if err != nil {
		return nil, err
	}
	return Describe(g), nil
}

// IsValidSmiles reports whether s parses to at least one atom.
func IsValidSmiles(s string) bool {
	g, err := ParseSmiles(s)
	return err == nil && len(g.Atoms) > 0
}

// IsValidMolfile reports whether s parses to at least one atom.
func IsValidMolfile(s string) bool {
	g, err := ParseMolfile(s)
	return err == nil && len(g.Atoms) > 0
}
