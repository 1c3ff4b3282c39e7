// Package shop implements the between-round shop economy: weighted charm
// offers, packs, and reroll cost escalation.
package shop

import (
	"fmt"

	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
)

// PackKind identifies a pack sold in the shop.
type PackKind string

const (
	RunePack PackKind = "rune_pack"
	DicePack PackKind = "dice_pack"
)

// Rules are the shop's economic constants.
type Rules struct {
	Offers     int
	RerollCost int
	RerollStep int
	RunePrice  int
	DicePrice  int
	Weights    map[charm.Rarity]int
}

// DefaultRules returns the standard shop economy.
func DefaultRules() Rules {
	return Rules{
		Offers:     3,
		RerollCost: 5,
		RerollStep: 1,
		RunePrice:  4,
		DicePrice:  5,
		Weights:    map[charm.Rarity]int{charm.Common: 70, charm.Uncommon: 25, charm.Rare: 5},
	}
}

// Offer is a charm for sale. A sold offer keeps its slot with Def nil.
type Offer struct {
	Def *charm.Def
}

// Pack is a pack for sale.
type Pack struct {
	Kind  PackKind `json:"kind"`
	Price int      `json:"price"`
	Sold  bool     `json:"sold,omitempty"`
}

// Shop is one shop visit.
type Shop struct {
	Offers  []Offer
	Packs   []Pack
	Rerolls int
	rules   Rules
}

// Generate opens a shop visit with fresh offers. Charms whose definition id is
// in exclude are never offered.
//
// Postcondition: len(Offers) <= rules.Offers; offers have distinct definitions.
func Generate(defs []*charm.Def, exclude map[string]bool, src dice.Source, rules Rules) *Shop {
	s := &Shop{rules: rules}
	s.Packs = []Pack{
		{Kind: RunePack, Price: rules.RunePrice},
		{Kind: DicePack, Price: rules.DicePrice},
	}
	s.Offers = roll(defs, exclude, src, rules)
	return s
}

// Restore rebuilds a shop visit from persisted offers.
func Restore(offers []*charm.Def, packs []Pack, rerolls int, rules Rules) *Shop {
	s := &Shop{Packs: packs, Rerolls: rerolls, rules: rules}
	for _, d := range offers {
		s.Offers = append(s.Offers, Offer{Def: d})
	}
	return s
}

func roll(defs []*charm.Def, exclude map[string]bool, src dice.Source, rules Rules) []Offer {
	taken := make(map[string]bool, len(exclude))
	for id := range exclude {
		taken[id] = true
	}
	var offers []Offer
	for len(offers) < rules.Offers {
		d := Pick(defs, taken, src, rules.Weights)
		if d == nil {
			break
		}
		taken[d.ID] = true
		offers = append(offers, Offer{Def: d})
	}
	return offers
}

// Pick chooses a definition by rarity weight, skipping exclude. A rarity with
// no remaining definitions is dropped from the draw.
//
// Postcondition: returns nil only when every definition is excluded.
func Pick(defs []*charm.Def, exclude map[string]bool, src dice.Source, weights map[charm.Rarity]int) *charm.Def {
	byRarity := make(map[charm.Rarity][]*charm.Def)
	for _, d := range defs {
		if !exclude[d.ID] {
			byRarity[d.Rarity] = append(byRarity[d.Rarity], d)
		}
	}
	order := []charm.Rarity{charm.Common, charm.Uncommon, charm.Rare}
	total := 0
	for _, r := range order {
		if len(byRarity[r]) > 0 {
			total += weights[r]
		}
	}
	if total <= 0 {
		for _, r := range order {
			if pool := byRarity[r]; len(pool) > 0 {
				return pool[src.Intn(len(pool))]
			}
		}
		return nil
	}
	n := src.Intn(total)
	for _, r := range order {
		pool := byRarity[r]
		if len(pool) == 0 {
			continue
		}
		if n < weights[r] {
			return pool[src.Intn(len(pool))]
		}
		n -= weights[r]
	}
	return nil
}

// PickRarity chooses uniformly among definitions of rarity r, or nil.
func PickRarity(defs []*charm.Def, r charm.Rarity, exclude map[string]bool, src dice.Source) *charm.Def {
	var pool []*charm.Def
	for _, d := range defs {
		if d.Rarity == r && !exclude[d.ID] {
			pool = append(pool, d)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[src.Intn(len(pool))]
}

// RerollCost returns the price of the next reroll this visit.
func (s *Shop) RerollCost() int {
	return s.rules.RerollCost + s.rules.RerollStep*s.Rerolls
}

// Reroll replaces the unsold and sold offers with fresh ones and raises the
// next reroll cost. The caller charges RerollCost beforehand.
func (s *Shop) Reroll(defs []*charm.Def, exclude map[string]bool, src dice.Source) {
	s.Offers = roll(defs, exclude, src, s.rules)
	s.Rerolls++
}

// Take marks offer i sold and returns its definition.
//
// Postcondition: returns an error if i is out of range or already sold.
func (s *Shop) Take(i int) (*charm.Def, error) {
	if i < 0 || i >= len(s.Offers) || s.Offers[i].Def == nil {
		return nil, fmt.Errorf("no charm offer %d", i+1)
	}
	d := s.Offers[i].Def
	s.Offers[i].Def = nil
	return d, nil
}

// TakePack marks pack i sold and returns it.
func (s *Shop) TakePack(i int) (Pack, error) {
	if i < 0 || i >= len(s.Packs) || s.Packs[i].Sold {
		return Pack{}, fmt.Errorf("no pack %d", i+1)
	}
	s.Packs[i].Sold = true
	return s.Packs[i], nil
}

// OfferIDs returns the definition id of each offer slot, "" for sold slots.
func (s *Shop) OfferIDs() []string {
	ids := make([]string, len(s.Offers))
	for i, o := range s.Offers {
		if o.Def != nil {
			ids[i] = o.Def.ID
		}
	}
	return ids
}
