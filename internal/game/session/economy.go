package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

// specialColors are the Dice Pack colors rolled on a special hit.
var specialColors = []dice.Color{dice.Gold, dice.Silver, dice.Glass, dice.Rainbow}

// GenerateShop opens a new shop visit, replacing any open one.
//
// Precondition: shop phase.
func (s *GameSession) GenerateShop() error {
	if err := s.inPhase(PhaseShop); err != nil {
		return err
	}
	s.openShop()
	return nil
}

func (s *GameSession) openShop() {
	s.shop = shop.Generate(s.content.CharmList(), s.equippedDefIDs(), s.src, s.rules.Shop)
}

// RerollShop charges the escalating reroll cost and replaces the offers.
func (s *GameSession) RerollShop() error {
	if err := s.inPhase(PhaseShop); err != nil {
		return err
	}
	cost := s.shop.RerollCost()
	if s.coins < cost {
		return invalid("rerolling the shop costs %d coins", cost)
	}
	s.coins -= cost
	s.shop.Reroll(s.content.CharmList(), s.equippedDefIDs(), s.src)
	return nil
}

// BuyCharm buys charm offer i.
//
// Postcondition: on error no state changes.
func (s *GameSession) BuyCharm(i int) error {
	if err := s.inPhase(PhaseShop); err != nil {
		return err
	}
	if i < 0 || i >= len(s.shop.Offers) || s.shop.Offers[i].Def == nil {
		return invalid("no charm offer %d", i+1)
	}
	def := s.shop.Offers[i].Def
	if len(s.charms) >= s.rules.MaxCharms {
		return invalid("no free charm slot")
	}
	if s.coins < def.Cost {
		return invalid("%s costs %d coins", def.Name, def.Cost)
	}
	if _, err := s.shop.Take(i); err != nil {
		return rejected(err)
	}
	s.coins -= def.Cost
	s.charms = append(s.charms, charm.Instantiate(def))
	s.logger.Debug("charm bought", zap.String("charm", def.ID), zap.Int("coins", s.coins))
	return nil
}

// SellCharm sells equipped charm i for its sell value.
func (s *GameSession) SellCharm(i int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.charms) {
		return invalid("no charm in slot %d", i+1)
	}
	c := s.charms[i]
	s.coins += c.Def.SellValue()
	s.charms = append(append([]*charm.Charm(nil), s.charms[:i]...), s.charms[i+1:]...)
	s.logger.Debug("charm sold", zap.String("charm", c.DefID), zap.Int("coins", s.coins))
	return nil
}

// ReorderCharm moves equipped charm from to position to. Disabled charms stay
// disabled wherever they move.
func (s *GameSession) ReorderCharm(from, to int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if from < 0 || from >= len(s.charms) || to < 0 || to >= len(s.charms) {
		return invalid("charm positions must be between 1 and %d", len(s.charms))
	}
	s.charms = charm.Move(s.charms, from, to)
	return nil
}

// BuyPack buys pack i. A Rune Pack needs a free tray slot; a Dice Pack adds a
// die to the bag, with a special color on a 1 in SpecialDieChance roll.
//
// Postcondition: on error no state changes.
func (s *GameSession) BuyPack(i int) error {
	if err := s.inPhase(PhaseShop); err != nil {
		return err
	}
	if i < 0 || i >= len(s.shop.Packs) || s.shop.Packs[i].Sold {
		return invalid("no pack %d", i+1)
	}
	p := s.shop.Packs[i]
	if s.coins < p.Price {
		return invalid("the pack costs %d coins", p.Price)
	}
	if p.Kind == shop.RunePack && !s.freeTraySlot() {
		return invalid("the rune tray is full")
	}
	if _, err := s.shop.TakePack(i); err != nil {
		return rejected(err)
	}
	s.coins -= p.Price
	switch p.Kind {
	case shop.RunePack:
		s.trayRune(s.randomRune())
	case shop.DicePack:
		c := dice.BaseColors[s.src.Intn(len(dice.BaseColors))]
		if dice.Chance(s.src, s.rules.SpecialDieChance) {
			c = specialColors[s.src.Intn(len(specialColors))]
		}
		s.addDie(c)
	}
	return nil
}

func (s *GameSession) addDie(c dice.Color) {
	d := dice.NewDie(c)
	if err := s.bag.Add(d); err != nil {
		s.logger.Warn("die not added", zap.Error(err))
		return
	}
	s.logger.Debug("die acquired", zap.String("die", d.ID), zap.String("color", string(c)))
}

// ApplyPouch applies the starting pouch id. The pouch may be chosen once, and
// only before the first action of the game.
//
// Postcondition: on error no state changes.
func (s *GameSession) ApplyPouch(id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.pouch != "" || s.acted || s.stake != 1 || s.blind != Small {
		return invalid("a pouch can only be chosen before the first action")
	}
	p := s.content.Pouches[id]
	if p == nil {
		return invalid("unknown pouch %q", id)
	}
	s.pouch = id
	s.coins += p.Coins
	s.handsLeft += p.Hands
	s.discardsLeft += p.Discards
	for _, g := range p.Dice {
		for n := 0; n < g.Count; n++ {
			s.addDie(g.Color)
		}
	}
	for n := 0; n < p.RandomDice; n++ {
		s.addDie(dice.BaseColors[s.src.Intn(len(dice.BaseColors))])
	}
	for n := 0; n < p.Charms && len(s.charms) < s.rules.MaxCharms; n++ {
		if d := s.randomCommon(); d != nil {
			s.charms = append(s.charms, charm.Instantiate(d))
		}
	}
	s.logger.Info("pouch applied", zap.String("pouch", id), zap.Int("dice", s.bag.FullLen()))
	return nil
}
