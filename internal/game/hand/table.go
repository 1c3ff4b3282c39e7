package hand

import (
	"fmt"
	"strings"
)

// Entry is the scoring row of one hand type.
type Entry struct {
	// Base is the base score before multipliers.
	Base int `yaml:"base"`
	// Mono is the modifier added when the held dice are monochrome.
	Mono float64 `yaml:"mono"`
	// Rainbow is the modifier added when the held dice are rainbow.
	Rainbow float64 `yaml:"rainbow"`
}

// ColorMod returns the modifier this entry grants for grouping k.
func (e Entry) ColorMod(k ColorKind) float64 {
	switch k {
	case ColorMonochrome:
		return e.Mono
	case ColorRainbow:
		return e.Rainbow
	default:
		return 0
	}
}

// Table maps every hand type to its scoring row.
type Table map[Type]Entry

// StandardTable returns the default base-score table.
//
// Postcondition: Validate() returns nil.
func StandardTable() Table {
	return Table{
		Nothing:       {Base: 0},
		Pair:          {Base: 10, Mono: 0.5, Rainbow: 0.25},
		TwoPair:       {Base: 25, Mono: 1, Rainbow: 0.5},
		ThreeOfAKind:  {Base: 40, Mono: 1, Rainbow: 0.5},
		SmallStraight: {Base: 60, Mono: 2, Rainbow: 1},
		LargeStraight: {Base: 100, Mono: 3, Rainbow: 2},
		FullHouse:     {Base: 80, Mono: 2, Rainbow: 1.5},
		FourOfAKind:   {Base: 150, Mono: 2, Rainbow: 1},
		FiveOfAKind:   {Base: 250, Mono: 3, Rainbow: 2},
	}
}

// Validate checks that every hand type has a row with non-negative values.
func (t Table) Validate() error {
	var errs []string
	for _, h := range All {
		e, ok := t[h]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing row for %s", h))
			continue
		}
		if e.Base < 0 || e.Mono < 0 || e.Rainbow < 0 {
			errs = append(errs, fmt.Sprintf("row %s has negative values", h))
		}
	}
	for h := range t {
		if !h.Valid() {
			errs = append(errs, fmt.Sprintf("unknown hand type %q", h))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("hand table invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
