package boss

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

// ErrBlocked is returned by a hook that rejects the requested action.
var ErrBlocked = errors.New("blocked by boss")

// State is the mutable, persisted part of an active effect.
type State struct {
	RainbowColor  dice.Color `json:"rainbow_color,omitempty"`
	ShuffledFaces bool       `json:"shuffled_faces,omitempty"`
	RerollCount   int        `json:"reroll_count,omitempty"`
}

// Round is the round setup handed to on_round_start. Hooks adjust it in place.
type Round struct {
	Charms   []*charm.Charm
	Dice     []*dice.Die
	Hands    int
	Discards int
	// Rerolls is the per-hand reroll allowance; -1 means unlimited.
	Rerolls int
	Src     dice.Source
	State   *State
}

// Reroll is a proposed reroll handed to on_reroll. A hook that returns an
// error must leave it untouched.
type Reroll struct {
	Held []bool
	// Force marks held dice that reroll anyway and stay held.
	Force []bool
	Coins int
	// Replace is the hand slot whose die is swapped for a fresh draw, or -1.
	Replace int
	Src     dice.Source
	State   *State
}

// ScoreRules are the on_score adjustments applied by the scoring engine.
type ScoreRules struct {
	BaseScale    float64
	MonoScale    float64
	RainbowScale float64
	// Ceiling caps the total modifier; 0 means no cap.
	Ceiling        float64
	SilenceSpecial bool
}

// DefaultScoreRules returns rules that change nothing.
func DefaultScoreRules() ScoreRules {
	return ScoreRules{BaseScale: 1, MonoScale: 1, RainbowScale: 1}
}

// RoundStartHook runs once when the boss round begins.
type RoundStartHook interface {
	OnRoundStart(r *Round)
}

// RerollHook intercepts every reroll.
type RerollHook interface {
	OnReroll(r *Reroll) error
}

// DiscardHook intercepts a discard of n dice.
type DiscardHook interface {
	OnDiscard(n int) error
}

// HoldHook intercepts holding a die of color c, with held dice already held.
type HoldHook interface {
	OnHold(c dice.Color, held int) error
}

// ScoreHook adjusts scoring rules.
type ScoreHook interface {
	OnScore(r *ScoreRules)
}

// RefillHook overrides the bag refill policy.
type RefillHook interface {
	Refill() bag.RefillPolicy
}

// TargetHook scales the round target.
type TargetHook interface {
	TargetMultiplier() float64
}

// Effect is the boss effect active for a round. Each variant implements only
// the hooks it needs; the methods on Effect are safe on a nil receiver and do
// nothing when no boss is active.
type Effect struct {
	Def   *Def
	State State
	impl  any
}

// Activate builds the active effect for def with fresh state.
//
// Precondition: def must be non-nil and valid.
func Activate(def *Def) *Effect {
	return Restore(def, State{})
}

// Restore rebuilds an active effect from persisted state.
//
// Precondition: def must be non-nil and valid.
func Restore(def *Def, st State) *Effect {
	return &Effect{Def: def, State: st, impl: variant(def)}
}

func variant(d *Def) any {
	switch d.Kind {
	case TargetRaise:
		return targetRaise{mult: d.Multiplier}
	case DisableOne:
		return disableCharms{}
	case DisableAll:
		return disableCharms{all: true}
	case RainbowRestriction:
		return rainbowRestriction{}
	case Scramble:
		return scramble{}
	case FewerHands, FewerDiscards, FewerRerolls:
		return reducer{kind: d.Kind, amount: d.Amount}
	case Toll:
		return toll{amount: d.Amount}
	case EscalatingToll:
		return toll{escalating: true}
	case Slippery:
		return slippery{}
	case Sabotage:
		return sabotage{}
	case HoldLimit:
		return holdLimit{max: d.Amount}
	case NoHolds:
		return holdLimit{max: 0}
	case Jitter:
		return jitter{chance: d.Chance}
	case NarrowDiscard:
		return narrowDiscard{max: d.Amount}
	case Halved:
		return scoreMod{base: d.Multiplier}
	case Colorblind:
		return scoreMod{colorblind: true}
	case Muted:
		return scoreMod{rainbow: d.Multiplier}
	case Ceiling:
		return scoreMod{ceiling: d.Multiplier}
	case Dull:
		return scoreMod{silence: true}
	case HoldBan:
		return holdBan{color: d.Color}
	case Bottleneck:
		return bottleneck{}
	default:
		panic(fmt.Sprintf("boss: unhandled kind %q", d.Kind))
	}
}

// Name returns the effect name, or "" with no boss.
func (e *Effect) Name() string {
	if e == nil {
		return ""
	}
	return e.Def.Name
}

// OnRoundStart applies the round-start hook.
func (e *Effect) OnRoundStart(r *Round) {
	if e == nil {
		return
	}
	r.State = &e.State
	if h, ok := e.impl.(RoundStartHook); ok {
		h.OnRoundStart(r)
	}
}

// OnReroll applies the reroll hook. On success the boss reroll count advances.
//
// Postcondition: on error, r is unchanged.
func (e *Effect) OnReroll(r *Reroll) error {
	if e == nil {
		return nil
	}
	r.State = &e.State
	if h, ok := e.impl.(RerollHook); ok {
		if err := h.OnReroll(r); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBlocked, e.Def.Name, err)
		}
	}
	e.State.RerollCount++
	return nil
}

// OnDiscard applies the discard hook for a batch of n dice.
func (e *Effect) OnDiscard(n int) error {
	if e == nil {
		return nil
	}
	if h, ok := e.impl.(DiscardHook); ok {
		if err := h.OnDiscard(n); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBlocked, e.Def.Name, err)
		}
	}
	return nil
}

// OnHold applies the hold hook for holding a die of color c while held dice
// are already held.
func (e *Effect) OnHold(c dice.Color, held int) error {
	if e == nil {
		return nil
	}
	if h, ok := e.impl.(HoldHook); ok {
		if err := h.OnHold(c, held); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrBlocked, e.Def.Name, err)
		}
	}
	return nil
}

// ScoreRules returns the scoring adjustments of the effect.
func (e *Effect) ScoreRules() ScoreRules {
	r := DefaultScoreRules()
	if e == nil {
		return r
	}
	if h, ok := e.impl.(ScoreHook); ok {
		h.OnScore(&r)
	}
	return r
}

// RefillPolicy returns the bag refill policy while the effect is active.
func (e *Effect) RefillPolicy() bag.RefillPolicy {
	if e == nil {
		return bag.RefillFull
	}
	if h, ok := e.impl.(RefillHook); ok {
		return h.Refill()
	}
	return bag.RefillFull
}

// TargetMultiplier returns the factor applied to the round target.
//
// Postcondition: Returns >= 1.
func (e *Effect) TargetMultiplier() float64 {
	if e == nil {
		return 1
	}
	if h, ok := e.impl.(TargetHook); ok {
		return h.TargetMultiplier()
	}
	return 1
}

// WildColor returns the fixed color that substitutes for wild colors, if the
// effect pins one.
func (e *Effect) WildColor() (dice.Color, bool) {
	if e == nil || e.State.RainbowColor == "" {
		return "", false
	}
	return e.State.RainbowColor, true
}
