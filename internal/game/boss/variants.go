package boss

import (
	"fmt"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

type targetRaise struct{ mult float64 }

func (t targetRaise) TargetMultiplier() float64 { return t.mult }

type disableCharms struct{ all bool }

func (d disableCharms) OnRoundStart(r *Round) {
	var candidates []int
	for i, c := range r.Charms {
		if c.Active() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	if d.all {
		for _, i := range candidates {
			r.Charms[i].Disabled = true
		}
		return
	}
	r.Charms[candidates[r.Src.Intn(len(candidates))]].Disabled = true
}

type rainbowRestriction struct{}

func (rainbowRestriction) OnRoundStart(r *Round) {
	if r.State.RainbowColor == "" {
		r.State.RainbowColor = dice.BaseColors[r.Src.Intn(len(dice.BaseColors))]
	}
}

type scramble struct{}

func (scramble) OnRoundStart(r *Round) {
	if r.State.ShuffledFaces {
		return
	}
	for _, d := range r.Dice {
		d.ShuffleFaces(r.Src)
	}
	r.State.ShuffledFaces = true
}

type reducer struct {
	kind   Kind
	amount int
}

func (x reducer) OnRoundStart(r *Round) {
	switch x.kind {
	case FewerHands:
		r.Hands = max(1, r.Hands-x.amount)
	case FewerDiscards:
		r.Discards = max(0, r.Discards-x.amount)
	case FewerRerolls:
		if r.Rerolls >= 0 {
			r.Rerolls = max(0, r.Rerolls-x.amount)
		}
	}
}

type toll struct {
	amount     int
	escalating bool
}

func (t toll) OnReroll(r *Reroll) error {
	cost := t.amount
	if t.escalating {
		cost = r.State.RerollCount + 1
	}
	if r.Coins < cost {
		return fmt.Errorf("rerolling costs %d coins", cost)
	}
	r.Coins -= cost
	return nil
}

type slippery struct{}

func (slippery) OnReroll(r *Reroll) error {
	var held []int
	for i, h := range r.Held {
		if h {
			held = append(held, i)
		}
	}
	if len(held) > 0 {
		r.Held[held[r.Src.Intn(len(held))]] = false
	}
	return nil
}

type sabotage struct{}

func (sabotage) OnReroll(r *Reroll) error {
	if len(r.Held) > 0 {
		r.Replace = r.Src.Intn(len(r.Held))
		r.Held[r.Replace] = false
	}
	return nil
}

type holdLimit struct{ max int }

func (h holdLimit) OnHold(_ dice.Color, held int) error {
	if held >= h.max {
		return h.err()
	}
	return nil
}

func (h holdLimit) OnReroll(r *Reroll) error {
	n := 0
	for _, x := range r.Held {
		if x {
			n++
		}
	}
	if n > h.max {
		return h.err()
	}
	return nil
}

func (h holdLimit) err() error {
	if h.max == 0 {
		return fmt.Errorf("holding dice is not allowed")
	}
	return fmt.Errorf("at most %d dice may be held", h.max)
}

type jitter struct{ chance int }

func (j jitter) OnReroll(r *Reroll) error {
	if len(r.Force) < len(r.Held) {
		r.Force = make([]bool, len(r.Held))
	}
	for i, h := range r.Held {
		if h && dice.Chance(r.Src, j.chance) {
			r.Force[i] = true
		}
	}
	return nil
}

type narrowDiscard struct{ max int }

func (n narrowDiscard) OnDiscard(k int) error {
	if k > n.max {
		return fmt.Errorf("at most %d dice may be discarded at once", n.max)
	}
	return nil
}

type scoreMod struct {
	base       float64
	rainbow    float64
	ceiling    float64
	colorblind bool
	silence    bool
}

func (s scoreMod) OnScore(r *ScoreRules) {
	if s.base > 0 {
		r.BaseScale = s.base
	}
	if s.rainbow > 0 {
		r.RainbowScale = s.rainbow
	}
	if s.ceiling > 0 {
		r.Ceiling = s.ceiling
	}
	if s.colorblind {
		r.MonoScale, r.RainbowScale = 0, 0
	}
	if s.silence {
		r.SilenceSpecial = true
	}
}

type holdBan struct{ color dice.Color }

func (h holdBan) OnHold(c dice.Color, _ int) error {
	if c == h.color {
		return fmt.Errorf("%s dice cannot be held", h.color)
	}
	return nil
}

type bottleneck struct{}

func (bottleneck) Refill() bag.RefillPolicy { return bag.RefillHalf }
