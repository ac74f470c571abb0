package chem

import (
	"fmt"
	"strconv"
	"strings"
)

type neighbor struct {
	atom int
	bond int
}

func (g *Graph) adjacency() [][]neighbor {
	adj := make([][]neighbor, len(g.Atoms))
	for i, b := range g.Bonds {
		adj[b.A] = append(adj[b.A], neighbor{atom: b.B, bond: i})
		adj[b.B] = append(adj[b.B], neighbor{atom: b.A, bond: i})
	}
	return adj
}

// Smiles writes g depth-first from the lowest-numbered atom of each
// fragment. The output is deterministic for a given atom order.
func (g *Graph) Smiles() string {
	w := &smilesWriter{
		g:        g,
		adj:      g.adjacency(),
		visited:  make([]bool, len(g.Atoms)),
		isTree:   make([]bool, len(g.Bonds)),
		isRing:   make([]bool, len(g.Bonds)),
		closures: make([][]int, len(g.Atoms)),
		children: make([][]neighbor, len(g.Atoms)),
		ringNum:  map[int]int{},
		inUse:    map[int]bool{},
	}

	var roots []int
	for i := range g.Atoms {
		if !w.visited[i] {
			roots = append(roots, i)
			w.classify(i, -1)
		}
	}
	for i, r := range roots {
		if i > 0 {
			w.sb.WriteByte('.')
		}
		w.emit(r)
	}
	return w.sb.String()
}

type smilesWriter struct {
	g        *Graph
	adj      [][]neighbor
	visited  []bool
	isTree   []bool
	isRing   []bool
	closures [][]int
	children [][]neighbor
	ringNum  map[int]int
	inUse    map[int]bool
	sb       strings.Builder
}

// classify splits bonds into spanning-tree edges and ring closures.
func (w *smilesWriter) classify(atom, parentBond int) {
	w.visited[atom] = true
	for _, n := range w.adj[atom] {
		if n.bond == parentBond || w.isTree[n.bond] || w.isRing[n.bond] {
			continue
		}
		if w.visited[n.atom] {
			w.isRing[n.bond] = true
			w.closures[n.atom] = append(w.closures[n.atom], n.bond)
			w.closures[atom] = append(w.closures[atom], n.bond)
			continue
		}
		w.isTree[n.bond] = true
		w.children[atom] = append(w.children[atom], n)
		w.classify(n.atom, n.bond)
	}
}

func (w *smilesWriter) emit(atom int) {
	w.sb.WriteString(w.atomToken(atom))

	for _, b := range w.closures[atom] {
		if num, open := w.ringNum[b]; open {
			w.sb.WriteString(ringLabel(num))
			delete(w.ringNum, b)
			delete(w.inUse, num)
			continue
		}
		num := w.freeRingNumber()
		w.ringNum[b] = num
		w.inUse[num] = true
		bond := w.g.Bonds[b]
		w.sb.WriteString(w.bondToken(bond))
		w.sb.WriteString(ringLabel(num))
	}

	kids := w.children[atom]
	for i, n := range kids {
		last := i == len(kids)-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondToken(w.g.Bonds[n.bond]))
		w.emit(n.atom)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func (w *smilesWriter) freeRingNumber() int {
	for n := 1; ; n++ {
		if !w.inUse[n] {
			return n
		}
	}
}

func ringLabel(n int) string {
	if n < 10 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%%%02d", n)
}

func (w *smilesWriter) bondToken(b Bond) string {
	bothAromatic := w.g.Atoms[b.A].Aromatic && w.g.Atoms[b.B].Aromatic
	switch b.Order {
	case Double:
		return "="
	case Triple:
		return "#"
	case Quadruple:
		return "$"
	case Aromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

func (w *smilesWriter) atomToken(i int) string {
	a := w.g.Atoms[i]
	symbol := a.Symbol
	if a.Aromatic {
		symbol = strings.ToLower(symbol)
	}
	if w.bare(i) {
		return symbol
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(symbol)
	switch {
	case a.H == 1:
		sb.WriteByte('H')
	case a.H > 1:
		sb.WriteString("H" + strconv.Itoa(a.H))
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	sb.WriteByte(']')
	return sb.String()
}

// bare reports whether atom i reads back identically without brackets.
func (w *smilesWriter) bare(i int) bool {
	a := w.g.Atoms[i]
	if !organic[a.Symbol] || a.Charge != 0 || a.Isotope != 0 {
		return false
	}
	used := 0
	for _, n := range w.adj[i] {
		used += w.g.Bonds[n.bond].Order.valence()
	}
	return implicitHydrogens(a.Symbol, 0, used, a.Aromatic) == a.H
}
