// Package boss implements the per-round boss effect modifier: a catalogue of
// effect definitions and the hook points each active effect intercepts.
package boss

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

// Kind selects the rule an effect overrides.
type Kind string

const (
	TargetRaise        Kind = "target_raise"
	DisableOne         Kind = "disable_one"
	DisableAll         Kind = "disable_all"
	RainbowRestriction Kind = "rainbow_restriction"
	Scramble           Kind = "scramble"
	FewerHands         Kind = "fewer_hands"
	FewerDiscards      Kind = "fewer_discards"
	FewerRerolls       Kind = "fewer_rerolls"
	Toll               Kind = "toll"
	EscalatingToll     Kind = "escalating_toll"
	Slippery           Kind = "slippery"
	Sabotage           Kind = "sabotage"
	HoldLimit          Kind = "hold_limit"
	NoHolds            Kind = "no_holds"
	Jitter             Kind = "jitter"
	NarrowDiscard      Kind = "narrow_discard"
	Halved             Kind = "halved"
	Colorblind         Kind = "colorblind"
	Muted              Kind = "muted"
	Ceiling            Kind = "ceiling"
	Dull               Kind = "dull"
	HoldBan            Kind = "hold_ban"
	Bottleneck         Kind = "bottleneck"
)

// Def is an immutable boss effect definition loaded from YAML.
type Def struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Difficulty  int        `yaml:"difficulty"`
	Kind        Kind       `yaml:"kind"`
	Amount      int        `yaml:"amount"`
	Multiplier  float64    `yaml:"multiplier"`
	Chance      int        `yaml:"chance"`
	Color       dice.Color `yaml:"color"`
}

// Validate checks the definition invariants for its kind.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if d.Difficulty < 1 {
		errs = append(errs, fmt.Sprintf("difficulty must be >= 1, got %d", d.Difficulty))
	}
	need := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}
	switch d.Kind {
	case TargetRaise:
		need(d.Multiplier > 1, "multiplier must be > 1")
	case Halved, Muted:
		need(d.Multiplier > 0 && d.Multiplier < 1, "multiplier must be in (0,1)")
	case Ceiling:
		need(d.Multiplier > 0, "multiplier must be > 0")
	case FewerHands, FewerDiscards, FewerRerolls, Toll, HoldLimit, NarrowDiscard:
		need(d.Amount > 0, "amount must be > 0")
	case Jitter:
		need(d.Chance > 0, "chance must be > 0")
	case HoldBan:
		need(d.Color.Valid(), "color must be a known color")
	case DisableOne, DisableAll, RainbowRestriction, Scramble, EscalatingToll,
		Slippery, Sabotage, NoHolds, Colorblind, Dull, Bottleneck:
	default:
		errs = append(errs, fmt.Sprintf("unknown kind %q", d.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("boss %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Pick chooses a boss definition uniformly at random, avoiding exclude when
// another choice exists.
//
// Precondition: len(defs) > 0.
func Pick(defs []*Def, src dice.Source, exclude string) *Def {
	pool := defs
	if len(defs) > 1 && exclude != "" {
		pool = make([]*Def, 0, len(defs))
		for _, d := range defs {
			if d.ID != exclude {
				pool = append(pool, d)
			}
		}
	}
	return pool[src.Intn(len(pool))]
}
