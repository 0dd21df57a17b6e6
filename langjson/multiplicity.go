package langjson

import "github.com/malspec/langspec/ident"

type multiplicityWire struct {
	Min int  `json:"min"`
	Max *int `json:"max,omitempty"`
}

func multiplicityToWire(m ident.Multiplicity) multiplicityWire {
	w := multiplicityWire{Min: m.Min}
	if v, ok := m.MaxJSON(); ok {
		w.Max = &v
	}
	return w
}

func (w multiplicityWire) toMultiplicity() (ident.Multiplicity, error) {
	max := ident.Infinite
	if w.Max != nil {
		max = *w.Max
	}
	return ident.NewMultiplicity(w.Min, max)
}
