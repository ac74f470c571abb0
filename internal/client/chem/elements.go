package chem

type element struct {
	avg      float64
	mono     float64
	valences []int
}

// Average masses follow IUPAC conventional values; monoisotopic masses are
// those of the most abundant isotope.
var elements = map[string]element{
	"H":  {1.008, 1.00782503207, []int{1}},
	"Li": {6.94, 7.01600455, nil},
	"B":  {10.81, 11.0093054, []int{3}},
	"C":  {12.011, 12.0, []int{4}},
	"N":  {14.007, 14.0030740048, []int{3, 5}},
	"O":  {15.999, 15.99491461956, []int{2}},
	"F":  {18.998, 18.99840322, []int{1}},
	"Na": {22.990, 22.9897692809, nil},
	"Mg": {24.305, 23.985041700, nil},
	"Al": {26.982, 26.98153863, nil},
	"Si": {28.085, 27.9769265325, []int{4}},
	"P":  {30.974, 30.97376163, []int{3, 5}},
	"S":  {32.06, 31.97207100, []int{2, 4, 6}},
	"Cl": {35.45, 34.96885268, []int{1}},
	"K":  {39.098, 38.96370668, nil},
	"Ca": {40.078, 39.96259098, nil},
	"Mn": {54.938, 54.9380451, nil},
	"Fe": {55.845, 55.9349375, nil},
	"Co": {58.933, 58.9331950, nil},
	"Ni": {58.693, 57.9353429, nil},
	"Cu": {63.546, 62.9295975, nil},
	"Zn": {65.38, 63.9291422, nil},
	"As": {74.922, 74.9215965, []int{3, 5}},
	"Se": {78.971, 79.9165213, []int{2, 4, 6}},
	"Br": {79.904, 78.9183371, []int{1}},
	"Pt": {195.08, 194.9647911, nil},
	"I":  {126.90, 126.904473, []int{1}},
}

var isotopeMasses = map[string]map[int]float64{
	"H": {2: 2.01410177812, 3: 3.0160492779},
	"C": {13: 13.00335483507, 14: 14.0032419884},
	"N": {15: 15.00010889888},
	"O": {17: 16.99913175650, 18: 17.99915961286},
}

// organic subset atoms may be written without brackets
var organic = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true,
	"F": true, "Cl": true, "Br": true, "I": true,
}

// atomMasses returns the average and monoisotopic mass of one atom. An
// isotope label pins both to that isotope's mass when it is known.
func atomMasses(symbol string, isotope int) (avg, mono float64) {
	el := elements[symbol]
	if isotope > 0 {
		if m, ok := isotopeMasses[symbol][isotope]; ok {
			return m, m
		}
	}
	return el.avg, el.mono
}

// chargedValences adjusts the default valence list of symbol for charge.
func chargedValences(symbol string, charge int) []int {
	if charge == 0 {
		return elements[symbol].valences
	}
	switch symbol {
	case "N", "P", "As":
		switch charge {
		case 1:
			return []int{4}
		case -1:
			return []int{2}
		}
	case "O", "S", "Se":
		switch charge {
		case 1:
			return []int{3}
		case -1:
			return []int{1}
		}
	case "C":
		if charge == 1 || charge == -1 {
			return []int{3}
		}
	case "B":
		if charge == -1 {
			return []int{4}
		}
	}
	return nil
}

// implicitHydrogens is the number of hydrogens needed to bring an atom with
// the given bond-order sum up to its lowest fitting valence.
func implicitHydrogens(symbol string, charge, used int, aromatic bool) int {
	vals := chargedValences(symbol, charge)
	if len(vals) == 0 {
		return 0
	}
	if aromatic {
		if h := vals[0] - used - 1; h > 0 {
			return h
		}
		return 0
	}
	for _, v := range vals {
		if v >= used {
			return v - used
		}
	}
	return 0
}
