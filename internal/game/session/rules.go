package session

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/scoring"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

// Blind is a round tier within a stake.
type Blind string

const (
	Small Blind = "small"
	Big   Blind = "big"
	Boss  Blind = "boss"
)

// Next returns the blind after b and whether the stake advances.
func (b Blind) Next() (Blind, bool) {
	switch b {
	case Small:
		return Big, false
	case Big:
		return Boss, false
	default:
		return Small, true
	}
}

// Valid reports whether b is a known blind.
func (b Blind) Valid() bool { return b == Small || b == Big || b == Boss }

// RainbowPolicy selects what Rainbow Restriction pins.
type RainbowPolicy string

const (
	// ColorOnly pins the color of color-wild dice for the color modifier only.
	ColorOnly RainbowPolicy = "color_only"
	// HandAndColor also strips value-wildness from Wild dice.
	HandAndColor RainbowPolicy = "hand_and_color"
)

// Rules are the tunable rule constants of a session.
type Rules struct {
	HandSize  int
	MaxCharms int
	Hands     int
	Discards  int
	// Rerolls is the per-hand reroll allowance; -1 means unlimited.
	Rerolls       int
	StartingCoins int
	// StartingDice is the number of dice of each base color in a new bag.
	StartingDice int
	InterestStep int
	InterestCap  int
	Targets      map[Blind]int
	Rewards      map[Blind]int
	// StakeStep is the target growth per stake above the first.
	StakeStep float64
	// SpecialDieChance is the 1-in-N chance a Dice Pack yields a special color.
	SpecialDieChance int
	Chances          scoring.Chances
	Dagger           charm.DaggerRules
	Shop             shop.Rules
	RainbowPolicy    RainbowPolicy
}

// DefaultRules returns the standard rule set.
//
// Postcondition: Validate() returns nil.
func DefaultRules() Rules {
	return Rules{
		HandSize:         5,
		MaxCharms:        5,
		Hands:            4,
		Discards:         3,
		Rerolls:          2,
		StartingCoins:    4,
		StartingDice:     3,
		InterestStep:     5,
		InterestCap:      5,
		Targets:          map[Blind]int{Small: 300, Big: 450, Boss: 600},
		Rewards:          map[Blind]int{Small: 3, Big: 4, Boss: 5},
		StakeStep:        0.5,
		SpecialDieChance: 10,
		Chances:          scoring.DefaultChances(),
		Dagger:           charm.DaggerRules{PerCost: 0.1, Cap: 3},
		Shop:             shop.DefaultRules(),
		RainbowPolicy:    ColorOnly,
	}
}

// Validate checks the rule invariants.
//
// Postcondition: Returns nil if r is usable, or an error describing all violations.
func (r Rules) Validate() error {
	var errs []string
	if r.HandSize < 1 || r.HandSize > 5 {
		errs = append(errs, fmt.Sprintf("hand_size must be 1-5, got %d", r.HandSize))
	}
	if r.MaxCharms < 0 {
		errs = append(errs, fmt.Sprintf("max_charms must be >= 0, got %d", r.MaxCharms))
	}
	if r.Hands < 1 {
		errs = append(errs, fmt.Sprintf("hands must be >= 1, got %d", r.Hands))
	}
	if r.Discards < 0 {
		errs = append(errs, fmt.Sprintf("discards must be >= 0, got %d", r.Discards))
	}
	if r.Rerolls < -1 {
		errs = append(errs, fmt.Sprintf("rerolls must be >= -1, got %d", r.Rerolls))
	}
	if r.StartingDice < 1 {
		errs = append(errs, fmt.Sprintf("starting_dice must be >= 1, got %d", r.StartingDice))
	}
	if r.InterestStep < 1 {
		errs = append(errs, fmt.Sprintf("interest_step must be >= 1, got %d", r.InterestStep))
	}
	for _, b := range []Blind{Small, Big, Boss} {
		if r.Targets[b] < 1 {
			errs = append(errs, fmt.Sprintf("target for %s blind must be >= 1", b))
		}
		if r.Rewards[b] < 0 {
			errs = append(errs, fmt.Sprintf("reward for %s blind must be >= 0", b))
		}
	}
	if r.Shop.Offers < 0 || r.Shop.RerollCost < 0 {
		errs = append(errs, "shop offers and reroll cost must be >= 0")
	}
	if r.RainbowPolicy != ColorOnly && r.RainbowPolicy != HandAndColor {
		errs = append(errs, fmt.Sprintf("rainbow_policy must be one of [color_only, hand_and_color], got %q", r.RainbowPolicy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid rules: %s", strings.Join(errs, "; "))
	}
	return nil
}
