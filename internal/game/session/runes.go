package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/enhance"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
)

// ApplyRuneEffect uses the rune in tray slot with the hand dice at diceIdx.
// Die-targeting runes need dice in hand, so they work only during the discard
// and roll phases.
//
// Postcondition: on error no state changes; on success the slot is consumed.
func (s *GameSession) ApplyRuneEffect(slot int, diceIdx []int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if slot < 0 || slot >= TraySize || s.tray[slot] == nil {
		return invalid("rune slot %d is empty", slot+1)
	}
	def := s.tray[slot]
	if err := enhance.CheckSelection(def, len(diceIdx)); err != nil {
		return rejected(err)
	}
	if def.NeedsDice() && s.phase != PhaseDiscard && s.phase != PhaseRoll {
		return invalid("%s needs dice in hand", def.Name)
	}
	targets, err := s.targets(diceIdx)
	if err != nil {
		return err
	}
	var grant *charm.Def
	switch def.Kind {
	case enhance.Judgement:
		if len(s.charms) >= s.rules.MaxCharms {
			return invalid("no free charm slot for %s", def.Name)
		}
		grant = s.randomCommon()
		if grant == nil {
			return invalid("no charm left for %s to grant", def.Name)
		}
	case enhance.Fool:
		if s.lastRune == nil {
			return invalid("no rune has been used yet")
		}
	case enhance.Oracle:
		if s.lastHand == "" || s.lastHand == hand.Nothing {
			return invalid("no hand has been scored yet")
		}
	}

	out, err := enhance.Apply(def, targets, s.coins)
	if err != nil {
		return rejected(err)
	}
	s.tray[slot] = nil
	s.coins += out.Coins
	for _, id := range out.Destroyed {
		s.destroy(id)
	}
	if grant != nil {
		s.charms = append(s.charms, charm.Instantiate(grant))
	}
	if out.CopyLast {
		s.tray[slot] = s.lastRune
	}
	for i := 0; i < out.GrantRunes; i++ {
		if !s.trayRune(s.randomRune()) {
			break
		}
	}
	if out.LevelHand > 0 {
		s.handMultipliers[s.lastHand] = s.HandMultiplier(s.lastHand) + out.LevelHand
	}
	if def.Kind != enhance.Fool {
		s.lastRune = def
	}
	s.acted = true
	s.logger.Debug("rune applied",
		zap.String("rune", def.ID),
		zap.Int("targets", len(targets)),
		zap.Int("coins", out.Coins),
		zap.Strings("destroyed", out.Destroyed),
	)
	if len(s.slots) == 0 && (s.phase == PhaseDiscard || s.phase == PhaseRoll) {
		s.newTurn()
	}
	return nil
}

func (s *GameSession) targets(idx []int) ([]*dice.Die, error) {
	seen := make(map[int]bool, len(idx))
	out := make([]*dice.Die, 0, len(idx))
	for _, i := range idx {
		if err := s.slot(i); err != nil {
			return nil, err
		}
		if seen[i] {
			return nil, invalid("die %d selected twice", i+1)
		}
		seen[i] = true
		out = append(out, s.slots[i].Die)
	}
	return out, nil
}

// destroy removes a die from the game, including its hand slot.
func (s *GameSession) destroy(id string) {
	s.bag.Remove(id)
	for i := 0; i < len(s.slots); i++ {
		if s.slots[i].Die.ID != id {
			continue
		}
		s.slots = append(s.slots[:i], s.slots[i+1:]...)
		s.held = append(s.held[:i], s.held[i+1:]...)
		s.discardSel = append(s.discardSel[:i], s.discardSel[i+1:]...)
		i--
	}
}

// trayRune places r into the first empty tray slot.
func (s *GameSession) trayRune(r *enhance.Def) bool {
	if r == nil {
		return false
	}
	for i := range s.tray {
		if s.tray[i] == nil {
			s.tray[i] = r
			return true
		}
	}
	return false
}

func (s *GameSession) freeTraySlot() bool {
	for _, r := range s.tray {
		if r == nil {
			return true
		}
	}
	return false
}

func (s *GameSession) randomRune() *enhance.Def {
	runes := s.content.RuneList()
	if len(runes) == 0 {
		return nil
	}
	return runes[s.src.Intn(len(runes))]
}

func (s *GameSession) randomCommon() *charm.Def {
	var pool []*charm.Def
	equipped := s.equippedDefIDs()
	for _, d := range s.content.CharmsByRarity(charm.Common) {
		if !equipped[d.ID] {
			pool = append(pool, d)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[s.src.Intn(len(pool))]
}
