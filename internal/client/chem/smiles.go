package chem

import (
	"fmt"
	"strings"
)

type ringOpen struct {
	atom int
	bond byte
}

type smilesParser struct {
	s        string
	i        int
	g        *Graph
	prev     int
	bond     byte
	branches []int
	rings    map[int]ringOpen
}

// ParseSmiles reads a SMILES string: organic-subset and bracket atoms,
// bonds, branches, ring closures (including %nn) and dot-separated parts.
// Stereo marks are accepted and ignored.
func ParseSmiles(s string) (*Graph, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyMolecule
	}
	p := &smilesParser{s: s, g: &Graph{}, prev: -1, rings: map[int]ringOpen{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if err := p.g.resolveHydrogens(); err != nil {
		return nil, err
	}
	return p.g, nil
}

func (p *smilesParser) errorf(format string, args ...any) error {
	return fmt.Errorf("smiles: position %d: %s", p.i+1, fmt.Sprintf(format, args...))
}

func (p *smilesParser) parse() error {
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf("branch without a preceding atom")
			}
			p.branches = append(p.branches, p.prev)
			p.i++
		case c == ')':
			if len(p.branches) == 0 {
				return p.errorf("unbalanced ')'")
			}
			if p.bond != 0 {
				return p.errorf("bond before ')'")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.i++
		case strings.IndexByte(`-=#$:/\`, c) >= 0:
			if p.bond != 0 {
				return p.errorf("two bonds in a row")
			}
			p.bond = c
			p.i++
		case c == '.':
			if p.bond != 0 {
				return p.errorf("bond before '.'")
			}
			p.prev = -1
			p.i++
		case c == '%' || (c >= '0' && c <= '9'):
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			a, err := p.bracketAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		default:
			a, err := p.organicAtom()
			if err != nil {
				return err
			}
			p.attach(a)
		}
	}

	switch {
	case len(p.g.Atoms) == 0:
		return ErrEmptyMolecule
	case len(p.branches) > 0:
		return fmt.Errorf("smiles: unbalanced '('")
	case len(p.rings) > 0:
		return fmt.Errorf("smiles: unclosed ring bond")
	case p.bond != 0:
		return fmt.Errorf("smiles: dangling bond at end of input")
	}
	return nil
}

func (p *smilesParser) attach(a Atom) {
	idx := p.g.addAtom(a)
	if p.prev >= 0 {
		p.g.addBond(p.prev, idx, p.bondOrder(p.bond, p.prev, idx))
	}
	p.bond = 0
	p.prev = idx
}

func (p *smilesParser) bondOrder(sym byte, a, b int) BondOrder {
	switch sym {
	case '=':
		return Double
	case '#':
		return Triple
	case '$':
		return Quadruple
	case ':':
		return Aromatic
	case 0:
		if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
			return Aromatic
		}
	}
	return Single
}

func (p *smilesParser) ringClosure() error {
	if p.prev < 0 {
		return p.errorf("ring bond without a preceding atom")
	}
	var n int
	if p.s[p.i] == '%' {
		if p.i+2 >= len(p.s) || !isDigit(p.s[p.i+1]) || !isDigit(p.s[p.i+2]) {
			return p.errorf("'%%' must be followed by two digits")
		}
		n = int(p.s[p.i+1]-'0')*10 + int(p.s[p.i+2]-'0')
		p.i += 3
	} else {
		n = int(p.s[p.i] - '0')
		p.i++
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.bond}
		p.bond = 0
		return nil
	}
	delete(p.rings, n)
	if open.atom == p.prev {
		return p.errorf("ring bond %d closes on its own atom", n)
	}
	sym := p.bond
	if sym == 0 {
		sym = open.bond
	}
	p.g.addBond(open.atom, p.prev, p.bondOrder(sym, open.atom, p.prev))
	p.bond = 0
	return nil
}

func (p *smilesParser) organicAtom() (Atom, error) {
	rest := p.s[p.i:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.i += 2
			return Atom{Symbol: two, explicitH: -1}, nil
		}
	}
	c := rest[0]
	switch c {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.i++
		return Atom{Symbol: string(c), explicitH: -1}, nil
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.i++
		return Atom{Symbol: strings.ToUpper(string(c)), Aromatic: true, explicitH: -1}, nil
	}
	return Atom{}, p.errorf("unexpected character %q", c)
}

// bracketAtom reads [isotope symbol chirality hcount charge class].
func (p *smilesParser) bracketAtom() (Atom, error) {
	end := strings.IndexByte(p.s[p.i:], ']')
	if end < 0 {
		return Atom{}, p.errorf("unterminated bracket atom")
	}
	body := p.s[p.i+1 : p.i+end]
	start := p.i
	p.i += end + 1

	a := Atom{explicitH: 0}
	j := 0
	for j < len(body) && isDigit(body[j]) {
		a.Isotope = a.Isotope*10 + int(body[j]-'0')
		j++
	}

	sym, aromatic, n := bracketSymbol(body[j:])
	if n == 0 {
		p.i = start
		return Atom{}, p.errorf("unknown element in [%s]", body)
	}
	a.Symbol, a.Aromatic = sym, aromatic
	j += n

	if j < len(body) && body[j] == '@' {
		for j < len(body) && body[j] == '@' {
			j++
		}
		// extended chirality classes such as @TH1 or @OH12
		for _, cls := range []string{"TH", "AL", "SP", "TB", "OH"} {
			if strings.HasPrefix(body[j:], cls) {
				j += len(cls)
				for j < len(body) && isDigit(body[j]) {
					j++
				}
				break
			}
		}
	}

	if j < len(body) && body[j] == 'H' {
		j++
		a.explicitH = 1
		if j < len(body) && isDigit(body[j]) {
			a.explicitH = 0
			for j < len(body) && isDigit(body[j]) {
				a.explicitH = a.explicitH*10 + int(body[j]-'0')
				j++
			}
		}
	}

	if j < len(body) && (body[j] == '+' || body[j] == '-') {
		sign := 1
		if body[j] == '-' {
			sign = -1
		}
		ch := body[j]
		j++
		mag := 1
		if j < len(body) && isDigit(body[j]) {
			mag = 0
			for j < len(body) && isDigit(body[j]) {
				mag = mag*10 + int(body[j]-'0')
				j++
			}
		} else {
			for j < len(body) && body[j] == ch {
				mag++
				j++
			}
		}
		a.Charge = sign * mag
	}

	if j < len(body) && body[j] == ':' {
		j++
		for j < len(body) && isDigit(body[j]) {
			j++
		}
	}
	if j != len(body) {
		p.i = start
		return Atom{}, p.errorf("malformed bracket atom [%s]", body)
	}
	return a, nil
}

func bracketSymbol(s string) (symbol string, aromatic bool, n int) {
	if s == "" {
		return "", false, 0
	}
	for _, ar := range []string{"se", "as"} {
		if strings.HasPrefix(s, ar) {
			return strings.ToUpper(ar[:1]) + ar[1:], true, 2
		}
	}
	if strings.ContainsRune("bcnops", rune(s[0])) {
		return strings.ToUpper(s[:1]), true, 1
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return "", false, 0
	}
	if len(s) > 1 && s[1] >= 'a' && s[1] <= 'z' {
		if _, ok := elements[s[:2]]; ok {
			return s[:2], false, 2
		}
	}
	if _, ok := elements[s[:1]]; ok {
		return s[:1], false, 1
	}
	return "", false, 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
