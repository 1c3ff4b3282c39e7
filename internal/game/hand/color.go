package hand

import "github.com/cory-johannsen/dicebound/internal/game/dice"

// ColorKind is the color grouping of a held set.
type ColorKind string

const (
	ColorNone       ColorKind = "none"
	ColorMonochrome ColorKind = "monochrome"
	ColorRainbow    ColorKind = "rainbow"
)

// Grouping classifies the colors of held dice. wild[i] marks die i as
// matching any color; wild dice are left out of the comparison.
//
// Monochrome: at least two dice and every non-wild color identical (or all
// wild). Rainbow: at least two non-wild dice, all colors distinct. Monochrome
// is decided first, so the two are mutually exclusive.
//
// Precondition: len(wild) == len(colors) or wild is nil.
func Grouping(colors []dice.Color, wild []bool) ColorKind {
	if len(colors) < 2 {
		return ColorNone
	}
	var fixed []dice.Color
	for i, c := range colors {
		if i < len(wild) && wild[i] {
			continue
		}
		fixed = append(fixed, c)
	}
	mono := true
	for _, c := range fixed {
		if c != fixed[0] {
			mono = false
			break
		}
	}
	if mono {
		return ColorMonochrome
	}
	if len(fixed) < 2 {
		return ColorNone
	}
	seen := make(map[dice.Color]bool, len(fixed))
	for _, c := range fixed {
		if seen[c] {
			return ColorNone
		}
		seen[c] = true
	}
	return ColorRainbow
}
