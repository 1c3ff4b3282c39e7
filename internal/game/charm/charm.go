// Package charm defines charm definitions, equipped charm instances, and the
// resolver that folds their contributions into a scored hand.
package charm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

// Kind selects the behavior of a charm. The set is closed; every switch over
// Kind in this package is exhaustive.
type Kind string

const (
	FlatChips      Kind = "flat_chips"
	FlatMult       Kind = "flat_mult"
	HandChips      Kind = "hand_chips"
	HandMult       Kind = "hand_mult"
	ColorChips     Kind = "color_chips"
	ColorMult      Kind = "color_mult"
	FaceChips      Kind = "face_chips"
	EvenChips      Kind = "even_chips"
	OddMult        Kind = "odd_mult"
	MonoBoost      Kind = "mono_boost"
	RainbowBoost   Kind = "rainbow_boost"
	CoinPerHand    Kind = "coin_per_hand"
	CoinOnHand     Kind = "coin_on_hand"
	RichMult       Kind = "rich_mult"
	DiscardMult    Kind = "discard_mult"
	StreakMult     Kind = "streak_mult"
	BagChips       Kind = "bag_chips"
	SumChips       Kind = "sum_chips"
	FewDiceMult    Kind = "few_dice_mult"
	FourDiceGrowth Kind = "four_dice_growth"
	LuckyGrowth    Kind = "lucky_growth"
	Stencil        Kind = "stencil"
	Mime           Kind = "mime"
	Dagger         Kind = "dagger"
	ShortStraight  Kind = "short_straight"
	WildFace       Kind = "wild_face"
	GlassCutter    Kind = "glass_cutter"
	RerollRecycler Kind = "reroll_recycler"
	ExtraHand      Kind = "extra_hand"
	ExtraDiscard   Kind = "extra_discard"
	InterestBoost  Kind = "interest_boost"
	Trinket        Kind = "trinket"
)

// Kinds lists every charm kind.
var Kinds = []Kind{
	FlatChips, FlatMult, HandChips, HandMult, ColorChips, ColorMult, FaceChips,
	EvenChips, OddMult, MonoBoost, RainbowBoost, CoinPerHand, CoinOnHand,
	RichMult, DiscardMult, StreakMult, BagChips, SumChips, FewDiceMult,
	FourDiceGrowth, LuckyGrowth, Stencil, Mime, Dagger, ShortStraight, WildFace,
	GlassCutter, RerollRecycler, ExtraHand, ExtraDiscard, InterestBoost, Trinket,
}

// Rarity weights a charm in the shop.
type Rarity string

const (
	Common   Rarity = "common"
	Uncommon Rarity = "uncommon"
	Rare     Rarity = "rare"
)

// Def is the static definition of a charm, loaded from YAML.
//
// Which payload fields are meaningful depends on Kind; Validate enforces the
// fields each kind requires.
type Def struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Cost        int         `yaml:"cost"`
	Rarity      Rarity      `yaml:"rarity"`
	Kind        Kind        `yaml:"kind"`
	Chips       int         `yaml:"chips"`
	Mult        float64     `yaml:"mult"`
	Coins       int         `yaml:"coins"`
	Amount      int         `yaml:"amount"`
	Threshold   int         `yaml:"threshold"`
	Face        int         `yaml:"face"`
	Chance      int         `yaml:"chance"` // 1-in-N; 0 means never
	Color       dice.Color  `yaml:"color"`
	Hands       []hand.Type `yaml:"hands"`
}

// SellValue returns the coins granted for selling a charm of this definition.
//
// Postcondition: Returns >= 1.
func (d *Def) SellValue() int {
	if v := d.Cost / 2; v > 1 {
		return v
	}
	return 1
}

// MatchesHand reports whether h is one of the definition's target hands.
func (d *Def) MatchesHand(h hand.Type) bool {
	for _, x := range d.Hands {
		if x == h {
			return true
		}
	}
	return false
}

// Validate checks the definition invariants for its kind.
//
// Postcondition: Returns nil if def is usable, or an error naming every violation.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if d.Cost < 0 {
		errs = append(errs, fmt.Sprintf("cost must be >= 0, got %d", d.Cost))
	}
	switch d.Rarity {
	case Common, Uncommon, Rare:
	default:
		errs = append(errs, fmt.Sprintf("unknown rarity %q", d.Rarity))
	}
	for _, h := range d.Hands {
		if !h.Valid() {
			errs = append(errs, fmt.Sprintf("unknown hand %q", h))
		}
	}

	need := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}
	switch d.Kind {
	case FlatChips, BagChips, SumChips, EvenChips:
		need(d.Chips > 0, "chips must be > 0")
	case FlatMult, OddMult, MonoBoost, RainbowBoost, DiscardMult, StreakMult, Stencil:
		need(d.Mult > 0, "mult must be > 0")
	case HandChips:
		need(d.Chips > 0, "chips must be > 0")
		need(len(d.Hands) > 0, "hands must not be empty")
	case HandMult:
		need(d.Mult > 0, "mult must be > 0")
		need(len(d.Hands) > 0, "hands must not be empty")
	case ColorChips:
		need(d.Chips > 0, "chips must be > 0")
		need(d.Color.Valid(), "color must be a known color")
	case ColorMult:
		need(d.Mult > 0, "mult must be > 0")
		need(d.Color.Valid(), "color must be a known color")
	case FaceChips:
		need(d.Chips > 0, "chips must be > 0")
		need(d.Face >= 1 && d.Face <= 6, "face must be in [1,6]")
	case CoinPerHand:
		need(d.Coins > 0, "coins must be > 0")
	case CoinOnHand:
		need(d.Coins > 0, "coins must be > 0")
		need(len(d.Hands) > 0, "hands must not be empty")
	case RichMult:
		need(d.Mult > 0, "mult must be > 0")
		need(d.Threshold > 0, "threshold must be > 0")
	case FewDiceMult:
		need(d.Mult > 0, "mult must be > 0")
		need(d.Threshold > 0, "threshold must be > 0")
	case FourDiceGrowth:
		need(d.Chips > 0, "chips must be > 0")
		need(d.Threshold > 0, "threshold must be > 0")
	case LuckyGrowth:
		need(d.Mult > 0, "mult must be > 0")
	case WildFace:
		need(d.Face >= 1 && d.Face <= 6, "face must be in [1,6]")
	case GlassCutter:
		need(d.Chance >= 0, "chance must be >= 0")
	case RerollRecycler, ExtraHand, ExtraDiscard, InterestBoost:
		need(d.Amount > 0, "amount must be > 0")
	case Mime, Dagger, ShortStraight, Trinket:
	default:
		errs = append(errs, fmt.Sprintf("unknown kind %q", d.Kind))
	}

	if len(errs) > 0 {
		return fmt.Errorf("charm %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Charm is an equipped or offered charm instance.
//
// Disabled lives on the instance so it survives reordering; boss effects set it
// at round start and the round end clears it.
type Charm struct {
	InstanceID string  `json:"instance_id"`
	DefID      string  `json:"def_id"`
	Disabled   bool    `json:"disabled,omitempty"`
	Bonus      int     `json:"bonus,omitempty"`
	BonusMult  float64 `json:"bonus_mult,omitempty"`

	Def *Def `json:"-"`
}

// Instantiate creates a fresh charm instance of def with a unique instance id.
//
// Precondition: def must be non-nil.
func Instantiate(def *Def) *Charm {
	return &Charm{InstanceID: uuid.New().String(), DefID: def.ID, Def: def}
}

// Active reports whether c participates in resolution.
func (c *Charm) Active() bool { return c != nil && c.Def != nil && !c.Disabled }

// String returns the charm's display name, marked when disabled.
func (c *Charm) String() string {
	if c.Disabled {
		return c.Def.Name + " (disabled)"
	}
	return c.Def.Name
}

// Enable clears the disabled flag of every charm.
func Enable(charms []*Charm) {
	for _, c := range charms {
		c.Disabled = false
	}
}

// DisabledIDs returns the instance ids of disabled charms, in equip order.
func DisabledIDs(charms []*Charm) []string {
	var ids []string
	for _, c := range charms {
		if c.Disabled {
			ids = append(ids, c.InstanceID)
		}
	}
	return ids
}

// Move relocates the charm at from to position to, shifting the others.
// Disabled state travels with the instance.
//
// Precondition: 0 <= from, to < len(charms).
func Move(charms []*Charm, from, to int) []*Charm {
	c := charms[from]
	out := append(append([]*Charm(nil), charms[:from]...), charms[from+1:]...)
	out = append(out[:to], append([]*Charm{c}, out[to:]...)...)
	return out
}
