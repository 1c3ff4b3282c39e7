// Package dice provides the randomness abstraction and the Die entity for the
// dicebound scoring engine.
package dice

import (
	"fmt"

	"github.com/google/uuid"
)

// Source is the randomness provider for every probabilistic rule in the engine.
//
// A GameSession owns exactly one Source; seeded sources make draws, rerolls,
// and trigger outcomes reproducible.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Color is the color of a die.
type Color string

const (
	Red     Color = "red"
	Blue    Color = "blue"
	Green   Color = "green"
	Purple  Color = "purple"
	Yellow  Color = "yellow"
	Gold    Color = "gold"
	Silver  Color = "silver"
	Glass   Color = "glass"
	Rainbow Color = "rainbow"
)

// BaseColors lists the five non-special colors in canonical order.
var BaseColors = []Color{Red, Blue, Green, Purple, Yellow}

var validColors = map[Color]bool{
	Red: true, Blue: true, Green: true, Purple: true, Yellow: true,
	Gold: true, Silver: true, Glass: true, Rainbow: true,
}

// Valid reports whether c is a known color.
func (c Color) Valid() bool { return validColors[c] }

// Special reports whether c is one of Gold, Silver, Glass, or Rainbow.
func (c Color) Special() bool {
	switch c {
	case Gold, Silver, Glass, Rainbow:
		return true
	default:
		return false
	}
}

// Enhancement is a tag attached to a die that alters its scoring behavior.
type Enhancement string

const (
	Lucky       Enhancement = "lucky"
	Mult        Enhancement = "mult"
	Bonus       Enhancement = "bonus"
	Steel       Enhancement = "steel"
	Fragile     Enhancement = "fragile"
	Stone       Enhancement = "stone"
	GoldTag     Enhancement = "gold"
	SilverTag   Enhancement = "silver"
	Wild        Enhancement = "wild"
	Foil        Enhancement = "foil"
	Holographic Enhancement = "holographic"
	Polychrome  Enhancement = "polychrome"
)

var validEnhancements = map[Enhancement]bool{
	Lucky: true, Mult: true, Bonus: true, Steel: true, Fragile: true, Stone: true,
	GoldTag: true, SilverTag: true, Wild: true,
	Foil: true, Holographic: true, Polychrome: true,
}

// Valid reports whether e is a known enhancement.
func (e Enhancement) Valid() bool { return validEnhancements[e] }

// StandardFaces is the face sequence of a freshly created die.
var StandardFaces = [6]int{1, 2, 3, 4, 5, 6}

// Die is an identity-stable die owned by the bag store.
//
// Invariant: every entry of Faces is in [1, 6]; Enhancements has no duplicates.
type Die struct {
	ID           string        `json:"id"`
	Color        Color         `json:"color"`
	Faces        [6]int        `json:"faces"`
	Enhancements []Enhancement `json:"enhancements,omitempty"`
	ScoreBonus   int           `json:"score_bonus,omitempty"`
}

// NewDie creates a standard die of the given color with a fresh unique ID.
//
// Precondition: c.Valid().
// Postcondition: returned die has StandardFaces and no enhancements.
func NewDie(c Color) *Die {
	return &Die{
		ID:    uuid.New().String(),
		Color: c,
		Faces: StandardFaces,
	}
}

// Clone returns a deep copy of d.
func (d *Die) Clone() *Die {
	cp := *d
	cp.Enhancements = append([]Enhancement(nil), d.Enhancements...)
	return &cp
}

// Has reports whether d carries enhancement e.
func (d *Die) Has(e Enhancement) bool {
	for _, x := range d.Enhancements {
		if x == e {
			return true
		}
	}
	return false
}

// AddEnhancement attaches e to d. Adding an existing tag is a no-op.
//
// Postcondition: d.Has(e) is true.
func (d *Die) AddEnhancement(e Enhancement) {
	if d.Has(e) {
		return
	}
	d.Enhancements = append(d.Enhancements, e)
}

// Roll returns a uniformly random face of d.
//
// Postcondition: result is one of d.Faces.
func (d *Die) Roll(src Source) int {
	return d.Faces[src.Intn(len(d.Faces))]
}

// ShuffleFaces permutes the face order of d in place.
func (d *Die) ShuffleFaces(src Source) {
	for i := len(d.Faces) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		d.Faces[i], d.Faces[j] = d.Faces[j], d.Faces[i]
	}
}

// Validate checks the die invariants.
func (d *Die) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dice: die id must not be empty")
	}
	if !d.Color.Valid() {
		return fmt.Errorf("dice: die %s has unknown color %q", d.ID, d.Color)
	}
	for _, f := range d.Faces {
		if f < 1 || f > 6 {
			return fmt.Errorf("dice: die %s has face %d outside [1,6]", d.ID, f)
		}
	}
	seen := make(map[Enhancement]bool, len(d.Enhancements))
	for _, e := range d.Enhancements {
		if !e.Valid() {
			return fmt.Errorf("dice: die %s has unknown enhancement %q", d.ID, e)
		}
		if seen[e] {
			return fmt.Errorf("dice: die %s has duplicate enhancement %q", d.ID, e)
		}
		seen[e] = true
	}
	return nil
}

// String returns a compact label such as "red[1 2 3 4 5 6]".
func (d *Die) String() string {
	return fmt.Sprintf("%s%v", d.Color, d.Faces)
}

// Chance reports a success with probability 1/denom. A denom <= 0 never succeeds.
func Chance(src Source, denom int) bool {
	if denom <= 0 {
		return false
	}
	return src.Intn(denom) == 0
}

// Shuffle performs a Fisher-Yates shuffle of n elements using swap.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, src.Intn(i+1))
	}
}
