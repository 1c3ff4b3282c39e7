package charm

import (
	"fmt"

	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

// Held is one held die with its rolled value.
type Held struct {
	Die   *dice.Die
	Value int
}

// Context is the scoring situation the resolver reads from.
type Context struct {
	Held  []Held
	Facts hand.Facts
	Color hand.ColorKind
	// Coins is the coin balance before this hand is committed.
	Coins int
	// DiscardsUsed counts discards spent this round.
	DiscardsUsed int
	// Streak counts consecutive previously scored hands of Facts.Type.
	Streak int
	// BagSize is the number of dice left in the draw pool.
	BagSize int
	// EmptySlots is the number of free charm slots.
	EmptySlots int
}

// Growth is a permanent bonus a charm earns when a hand is committed.
type Growth struct {
	InstanceID string
	Chips      int
	Mult       float64
}

// Line records one charm's share of a resolution, for score breakdowns.
type Line struct {
	Name  string
	Chips int
	Mult  float64
	Coins int
}

// Contribution is the folded output of every active charm.
type Contribution struct {
	Chips        int
	ColorMultAdd float64
	MultAdd      float64
	// Coins is granted only when the hand is committed.
	Coins int
	// Growth is applied only when the hand is committed.
	Growth []Growth
	Lines  []Line
}

// Resolve folds the contributions of every active charm, in equip order.
// It never mutates the charms.
//
// Postcondition: Contribution.Coins >= 0.
func Resolve(charms []*Charm, ctx Context) Contribution {
	var out Contribution
	for _, c := range charms {
		if !c.Active() {
			continue
		}
		l := resolveOne(c, ctx, &out)
		out.Chips += l.Chips
		out.Coins += l.Coins
		if l.Chips != 0 || l.Mult != 0 || l.Coins != 0 {
			l.Name = c.Def.Name
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

// resolveOne returns the chip/coin line of c and adds multipliers to out.
func resolveOne(c *Charm, ctx Context, out *Contribution) Line {
	d := c.Def
	var l Line
	mult := func(m float64) {
		l.Mult += m
		out.MultAdd += m
	}
	switch d.Kind {
	case FlatChips:
		l.Chips = d.Chips
	case FlatMult:
		mult(d.Mult)
	case HandChips:
		if d.MatchesHand(ctx.Facts.Type) {
			l.Chips = d.Chips
		}
	case HandMult:
		if d.MatchesHand(ctx.Facts.Type) {
			mult(d.Mult)
		}
	case ColorChips:
		l.Chips = d.Chips * countColor(ctx.Held, d.Color)
	case ColorMult:
		if n := countColor(ctx.Held, d.Color); n > 0 {
			mult(d.Mult * float64(n))
		}
	case FaceChips:
		for _, h := range ctx.Held {
			if h.Value == d.Face {
				l.Chips += d.Chips
			}
		}
	case EvenChips:
		for _, h := range ctx.Held {
			if h.Value%2 == 0 {
				l.Chips += d.Chips
			}
		}
	case OddMult:
		n := 0
		for _, h := range ctx.Held {
			if h.Value%2 == 1 {
				n++
			}
		}
		if n > 0 {
			mult(d.Mult * float64(n))
		}
	case MonoBoost:
		if ctx.Color == hand.ColorMonochrome {
			l.Mult += d.Mult
			out.ColorMultAdd += d.Mult
		}
	case RainbowBoost:
		if ctx.Color == hand.ColorRainbow {
			l.Mult += d.Mult
			out.ColorMultAdd += d.Mult
		}
	case CoinPerHand:
		l.Coins = d.Coins
	case CoinOnHand:
		if d.MatchesHand(ctx.Facts.Type) {
			l.Coins = d.Coins
		}
	case RichMult:
		if n := ctx.Coins / d.Threshold; n > 0 {
			mult(d.Mult * float64(n))
		}
	case DiscardMult:
		if ctx.DiscardsUsed > 0 {
			mult(d.Mult * float64(ctx.DiscardsUsed))
		}
	case StreakMult:
		if ctx.Streak > 0 {
			mult(d.Mult * float64(ctx.Streak))
		}
	case BagChips:
		l.Chips = d.Chips * ctx.BagSize
	case SumChips:
		for _, h := range ctx.Held {
			l.Chips += d.Chips * h.Value
		}
	case FewDiceMult:
		if n := len(ctx.Held); n > 0 && n <= d.Threshold {
			mult(d.Mult)
		}
	case FourDiceGrowth:
		l.Chips = c.Bonus
		if len(ctx.Held) == d.Threshold {
			out.Growth = append(out.Growth, Growth{InstanceID: c.InstanceID, Chips: d.Chips})
		}
	case LuckyGrowth:
		if c.BonusMult > 0 {
			mult(c.BonusMult)
		}
	case Stencil:
		if ctx.EmptySlots > 0 {
			mult(d.Mult * float64(ctx.EmptySlots))
		}
	case Mime, Dagger, ShortStraight, WildFace, GlassCutter,
		RerollRecycler, ExtraHand, ExtraDiscard, InterestBoost, Trinket:
		// Handled by the option helpers or at round advance.
	default:
		panic(fmt.Sprintf("charm: unhandled kind %q", d.Kind))
	}
	return l
}

func countColor(held []Held, c dice.Color) int {
	n := 0
	for _, h := range held {
		if h.Die.Color == c {
			n++
		}
	}
	return n
}

// ApplyGrowth adds earned growth to the matching charms.
//
// Postcondition: growth for instance ids not present in charms is ignored.
func ApplyGrowth(charms []*Charm, growth []Growth) {
	for _, g := range growth {
		for _, c := range charms {
			if c.InstanceID == g.InstanceID {
				c.Bonus += g.Chips
				c.BonusMult += g.Mult
			}
		}
	}
}

// LuckyGrowthFor returns the growth earned by LuckyGrowth charms for the given
// number of Lucky triggers.
func LuckyGrowthFor(charms []*Charm, triggers int) []Growth {
	if triggers <= 0 {
		return nil
	}
	var out []Growth
	for _, c := range charms {
		if c.Active() && c.Def.Kind == LuckyGrowth {
			out = append(out, Growth{InstanceID: c.InstanceID, Mult: c.Def.Mult * float64(triggers)})
		}
	}
	return out
}
