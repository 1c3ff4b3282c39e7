// Package enhance implements the rune catalogue and the enhancement engine
// that applies a rune to its selected dice.
package enhance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

// ErrSelection is returned when the selected dice do not fit the rune.
var ErrSelection = errors.New("invalid rune selection")

// Kind selects the effect of a rune.
type Kind string

const (
	Tag       Kind = "tag"
	StoneFace Kind = "stone"
	Strength  Kind = "strength"
	Recolor   Kind = "recolor"
	Sacrifice Kind = "sacrifice"
	Transmute Kind = "transmute"
	Hermit    Kind = "hermit"
	Judgement Kind = "judgement"
	Seer      Kind = "seer"
	Fool      Kind = "fool"
	Oracle    Kind = "oracle"
)

// StoneValue is the face every side of a Stone-runed die shows.
const StoneValue = 5

// Def is a rune definition loaded from YAML.
type Def struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Kind        Kind             `yaml:"kind"`
	MinDice     int              `yaml:"min_dice"`
	MaxDice     int              `yaml:"max_dice"`
	Tag         dice.Enhancement `yaml:"tag"`
	Color       dice.Color       `yaml:"color"`
	// Coins is the per-die payout of Sacrifice and the cap of Hermit.
	Coins int `yaml:"coins"`
	// SpecialCoins is the Sacrifice payout for special-colored dice.
	SpecialCoins int `yaml:"special_coins"`
	// Count is the number of runes Seer grants.
	Count int `yaml:"count"`
	// Level is the hand multiplier Oracle adds.
	Level float64 `yaml:"level"`
}

// NeedsDice reports whether the rune targets dice.
func (d *Def) NeedsDice() bool { return d.MaxDice > 0 }

// Validate checks the definition invariants for its kind.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if d.MaxDice < 0 || d.MaxDice > 3 {
		errs = append(errs, fmt.Sprintf("max_dice must be in [0,3], got %d", d.MaxDice))
	}
	if d.MinDice < 0 || d.MinDice > d.MaxDice {
		errs = append(errs, fmt.Sprintf("min_dice must be in [0,max_dice], got %d", d.MinDice))
	}
	targets := func(ok bool) {
		if !ok {
			errs = append(errs, "kind requires max_dice >= 1")
		}
	}
	noTargets := func() {
		if d.MaxDice != 0 {
			errs = append(errs, "kind requires max_dice = 0")
		}
	}
	switch d.Kind {
	case Tag:
		targets(d.MaxDice >= 1)
		if !d.Tag.Valid() {
			errs = append(errs, fmt.Sprintf("unknown tag %q", d.Tag))
		}
	case StoneFace, Strength:
		targets(d.MaxDice >= 1)
	case Recolor:
		targets(d.MaxDice >= 1)
		if !d.Color.Valid() {
			errs = append(errs, fmt.Sprintf("unknown color %q", d.Color))
		}
	case Sacrifice:
		targets(d.MaxDice >= 1)
		if d.Coins < 0 || d.SpecialCoins < 0 {
			errs = append(errs, "coins must be >= 0")
		}
	case Transmute:
		if d.MinDice != 2 || d.MaxDice != 2 {
			errs = append(errs, "transmute requires exactly 2 dice")
		}
	case Hermit:
		noTargets()
		if d.Coins <= 0 {
			errs = append(errs, "coins must be > 0")
		}
	case Judgement, Fool:
		noTargets()
	case Seer:
		noTargets()
		if d.Count <= 0 {
			errs = append(errs, "count must be > 0")
		}
	case Oracle:
		noTargets()
		if d.Level <= 0 {
			errs = append(errs, "level must be > 0")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown kind %q", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("rune %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Outcome is what a rune application asks its caller to do beyond the die
// mutations it performed itself.
type Outcome struct {
	// Destroyed lists die ids to remove permanently.
	Destroyed []string
	// Coins is the coin delta.
	Coins int
	// GrantCharm requests a random Common charm.
	GrantCharm bool
	// GrantRunes is the number of random runes requested.
	GrantRunes int
	// CopyLast requests a copy of the last used rune.
	CopyLast bool
	// LevelHand is the multiplier to add to the last scored hand type.
	LevelHand float64
}

// CheckSelection reports whether n selected dice fit d.
//
// Postcondition: returns an error wrapping ErrSelection on mismatch.
func CheckSelection(d *Def, n int) error {
	switch {
	case d.MaxDice == 0 && n > 0:
		return fmt.Errorf("%w: %s does not target dice", ErrSelection, d.Name)
	case d.MinDice == d.MaxDice && n != d.MaxDice:
		return fmt.Errorf("%w: %s needs exactly %d %s", ErrSelection, d.Name, d.MaxDice, plural(d.MaxDice))
	case n < max(d.MinDice, 1) && d.MaxDice > 0:
		return fmt.Errorf("%w: select at least %d %s for %s", ErrSelection, max(d.MinDice, 1), plural(max(d.MinDice, 1)), d.Name)
	case n > d.MaxDice:
		return fmt.Errorf("%w: %s accepts at most %d %s", ErrSelection, d.Name, d.MaxDice, plural(d.MaxDice))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "die"
	}
	return "dice"
}

// Apply applies rune d to targets. Die-targeting runes mutate targets in
// place; economy runes only describe their effect in the Outcome. coins is the
// current coin balance, read by Hermit.
//
// Precondition: targets contains distinct dice.
// Postcondition: on error no die is mutated.
func Apply(d *Def, targets []*dice.Die, coins int) (Outcome, error) {
	if err := CheckSelection(d, len(targets)); err != nil {
		return Outcome{}, err
	}
	var out Outcome
	switch d.Kind {
	case Tag:
		for _, t := range targets {
			t.AddEnhancement(d.Tag)
		}
	case StoneFace:
		for _, t := range targets {
			for i := range t.Faces {
				t.Faces[i] = StoneValue
			}
			t.AddEnhancement(dice.Stone)
		}
	case Strength:
		for _, t := range targets {
			strengthen(t)
		}
	case Recolor:
		for _, t := range targets {
			t.Color = d.Color
		}
	case Sacrifice:
		for _, t := range targets {
			out.Destroyed = append(out.Destroyed, t.ID)
			if t.Color.Special() {
				out.Coins += d.SpecialCoins
			} else {
				out.Coins += d.Coins
			}
		}
	case Transmute:
		targets[0].Color = targets[1].Color
		targets[0].Faces = targets[1].Faces
	case Hermit:
		out.Coins = min(max(coins, 0), d.Coins)
	case Judgement:
		out.GrantCharm = true
	case Seer:
		out.GrantRunes = d.Count
	case Fool:
		out.CopyLast = true
	case Oracle:
		out.LevelHand = d.Level
	default:
		panic(fmt.Sprintf("enhance: unhandled kind %q", d.Kind))
	}
	return out, nil
}

// strengthen replaces every face below 3 with the face three pips higher, so
// a standard die becomes [4 5 3 4 5 6].
func strengthen(d *dice.Die) {
	for i, f := range d.Faces {
		if f < 3 {
			d.Faces[i] = f + 3
		}
	}
}
