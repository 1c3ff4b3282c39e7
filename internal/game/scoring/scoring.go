// Package scoring turns held dice, equipped charms, and the active boss rules
// into a hand score. Evaluate is pure and serves both preview and commit;
// Commit applies the side effects a committed hand earns.
package scoring

import (
	"math"

	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

// Per-die enhancement values.
const (
	BonusChips     = 30
	StoneChips     = 50
	SilverTagChips = 15
	FoilChips      = 50
	SilverDieChips = 25
	MultAdd        = 0.5
	SteelAdd       = 1.0
	FragileAdd     = 1.5
	HolographicAdd = 1.0
	PolychromeAdd  = 1.5
	GoldTagCoins   = 1
	GoldDieCoins   = 3
	GlassBase      = 3
)

// Chances are the 1-in-N odds of the probabilistic die effects.
type Chances struct {
	Lucky   int
	Fragile int
	Glass   int
}

// DefaultChances returns the standard odds.
func DefaultChances() Chances {
	return Chances{Lucky: 5, Fragile: 4, Glass: 4}
}

// Input is everything a hand evaluation reads.
type Input struct {
	Held   []charm.Held
	Table  hand.Table
	Charms []*charm.Charm
	// HandMultipliers scales the base score per hand; missing entries are 1.
	HandMultipliers map[hand.Type]float64
	Rules           boss.ScoreRules
	// WildColor, when set, is the color that color-wild dice count as.
	WildColor dice.Color
	// RestrictValues also strips value-wildness from Wild dice while
	// WildColor is set.
	RestrictValues bool
	// ScoreMult is the persistent modifier earned by Dagger sacrifices.
	ScoreMult float64
	Chances   Chances

	Coins        int
	DiscardsUsed int
	BagSize      int
	EmptySlots   int
	// LastHand and Streak describe the run of previously scored hands.
	LastHand hand.Type
	Streak   int
}

// Break is a pending break roll for one die.
type Break struct {
	DieID  string
	Chance int
}

// Pending lists the side effects that are rolled or applied only on commit.
type Pending struct {
	// Lucky holds one entry per Lucky roll; Mime doubles a die's entries.
	Lucky       []string
	LuckyChance int
	Breaks      []Break
	Growth      []charm.Growth
}

// Result is an evaluated hand.
type Result struct {
	Hand  hand.Type
	Facts hand.Facts
	Color hand.ColorKind
	// Base is the table score after hand multipliers and boss scaling.
	Base     int
	Chips    int
	ColorMod float64
	Glass    float64
	// Modifier is the total modifier after the boss ceiling.
	Modifier float64
	Final    int
	// Coins is the deterministic coin grant of a commit.
	Coins      int
	CharmLines []charm.Line
	Pending    Pending
}

// Evaluate scores in. It never mutates dice, charms, or any other input.
//
// Postcondition: an empty held set yields the zero Result with Hand Nothing;
// Final == floor((Base + Chips) * (1 + Modifier)).
func Evaluate(in Input) Result {
	res := Result{Hand: hand.Nothing, Color: hand.ColorNone}
	if len(in.Held) == 0 {
		res.Facts = hand.Facts{Type: hand.Nothing}
		return res
	}
	silence := in.Rules.SilenceSpecial
	mime := charm.HasMime(in.Charms)

	n := len(in.Held)
	values := make([]int, n)
	valueWild := make([]bool, n)
	colors := make([]dice.Color, n)
	colorWild := make([]bool, n)
	for i, h := range in.Held {
		d := h.Die
		values[i] = h.Value
		tagged := d.Has(dice.Wild)
		valueWild[i] = tagged && !(in.WildColor != "" && in.RestrictValues)
		colors[i] = d.Color
		colorWild[i] = tagged || (d.Color == dice.Rainbow && !silence)
		if colorWild[i] && in.WildColor != "" {
			colors[i] = in.WildColor
			colorWild[i] = false
		}
	}

	res.Facts = hand.Classify(values, valueWild, charm.HandOptions(in.Charms))
	res.Hand = res.Facts.Type
	res.Color = hand.Grouping(colors, colorWild)

	entry := in.Table[res.Hand]
	hm := 1.0
	if m, ok := in.HandMultipliers[res.Hand]; ok {
		hm = m
	}
	res.Base = int(math.Floor(float64(entry.Base) * hm * in.Rules.BaseScale))

	colorScale := 1.0
	switch res.Color {
	case hand.ColorMonochrome:
		colorScale = in.Rules.MonoScale
	case hand.ColorRainbow:
		colorScale = in.Rules.RainbowScale
	}

	res.Pending.LuckyChance = in.Chances.Lucky
	var chips, coins, glassCount int
	var mult float64
	for _, h := range in.Held {
		d := h.Die
		chips += d.ScoreBonus
		rolls := 1
		if mime {
			rolls = 2
		}
		for _, e := range d.Enhancements {
			switch e {
			case dice.Bonus:
				chips += BonusChips
			case dice.Stone:
				chips += StoneChips
			case dice.SilverTag:
				chips += SilverTagChips
			case dice.Foil:
				chips += FoilChips
			case dice.Mult:
				mult += MultAdd
			case dice.Steel:
				mult += SteelAdd
			case dice.Fragile:
				mult += FragileAdd
				res.Pending.Breaks = append(res.Pending.Breaks, Break{DieID: d.ID, Chance: in.Chances.Fragile})
			case dice.Holographic:
				mult += HolographicAdd
			case dice.Polychrome:
				mult += PolychromeAdd
			case dice.GoldTag:
				coins += GoldTagCoins * rolls
			case dice.Lucky:
				for r := 0; r < rolls; r++ {
					res.Pending.Lucky = append(res.Pending.Lucky, d.ID)
				}
			case dice.Wild:
			}
		}
		if silence {
			continue
		}
		switch d.Color {
		case dice.Gold:
			coins += GoldDieCoins * rolls
		case dice.Silver:
			chips += SilverDieChips
		case dice.Glass:
			glassCount++
			glassChance := charm.GlassBreakChance(in.Charms, in.Chances.Glass)
			res.Pending.Breaks = append(res.Pending.Breaks, Break{DieID: d.ID, Chance: glassChance})
		}
	}
	if glassCount > 0 {
		res.Glass = float64(GlassBase + glassCount)
		if mime {
			res.Glass *= 2
		}
	}

	streak := 0
	if in.LastHand == res.Hand {
		streak = in.Streak
	}
	contrib := charm.Resolve(in.Charms, charm.Context{
		Held:         in.Held,
		Facts:        res.Facts,
		Color:        res.Color,
		Coins:        in.Coins,
		DiscardsUsed: in.DiscardsUsed,
		Streak:       streak,
		BagSize:      in.BagSize,
		EmptySlots:   in.EmptySlots,
	})
	res.CharmLines = contrib.Lines
	res.Pending.Growth = contrib.Growth

	res.Chips = chips + contrib.Chips
	res.ColorMod = (entry.ColorMod(res.Color) + contrib.ColorMultAdd) * colorScale
	res.Modifier = res.ColorMod + mult + contrib.MultAdd + res.Glass + in.ScoreMult
	if c := in.Rules.Ceiling; c > 0 && res.Modifier > c {
		res.Modifier = c
	}
	res.Coins = coins + contrib.Coins
	res.Final = int(math.Floor(float64(res.Base+res.Chips) * (1 + res.Modifier)))
	return res
}

// Committed is the outcome of the probabilistic side of a committed hand.
type Committed struct {
	Coins         int
	LuckyTriggers int
	// Broken lists die ids that broke, without duplicates.
	Broken []string
}

// Commit rolls the pending Lucky and break effects of res and applies charm
// growth to charms. Lucky rolls are made first, then break rolls, each in
// held order.
//
// Postcondition: Committed.Coins >= res.Coins.
func Commit(res Result, charms []*charm.Charm, src dice.Source) Committed {
	out := Committed{Coins: res.Coins}
	for range res.Pending.Lucky {
		if dice.Chance(src, res.Pending.LuckyChance) {
			out.Coins++
			out.LuckyTriggers++
		}
	}
	broken := make(map[string]bool)
	for _, b := range res.Pending.Breaks {
		if broken[b.DieID] {
			continue
		}
		if dice.Chance(src, b.Chance) {
			broken[b.DieID] = true
			out.Broken = append(out.Broken, b.DieID)
		}
	}
	growth := append(append([]charm.Growth(nil), res.Pending.Growth...), charm.LuckyGrowthFor(charms, out.LuckyTriggers)...)
	charm.ApplyGrowth(charms, growth)
	return out
}
