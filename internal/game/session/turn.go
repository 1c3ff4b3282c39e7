package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/scoring"
)

// Report describes a committed hand.
type Report struct {
	Result    scoring.Result
	Committed scoring.Committed
	// Cleared is set when the hand reached the round target.
	Cleared  bool
	GameOver bool
}

// newTurn draws a fresh hand into the discard phase. Drawn dice show face 1
// until the roll phase starts.
func (s *GameSession) newTurn() {
	drawn, err := s.bag.Draw(s.rules.HandSize)
	if errors.Is(err, bag.ErrExhausted) || len(drawn) == 0 {
		s.slots, s.held, s.discardSel = nil, nil, nil
		s.gameOver("bag exhausted")
		return
	}
	s.slots = make([]Slot, len(drawn))
	for i, d := range drawn {
		s.slots[i] = Slot{Die: d, Value: 1}
	}
	s.held = make([]bool, len(drawn))
	s.discardSel = make([]bool, len(drawn))
	s.rerollsLeft = s.rerollAllowance
	s.phase = PhaseDiscard
}

// releaseHand returns every hand die to the spent state.
func (s *GameSession) releaseHand() {
	for _, sl := range s.slots {
		s.bag.Release(sl.Die.ID)
	}
	s.slots, s.held, s.discardSel = nil, nil, nil
}

func (s *GameSession) slot(i int) error {
	if i < 0 || i >= len(s.slots) {
		return invalid("no die in slot %d", i+1)
	}
	return nil
}

// ToggleHold flips the hold flag of slot i.
//
// Precondition: roll phase.
// Postcondition: on error the hold flags are unchanged.
func (s *GameSession) ToggleHold(i int) error {
	if err := s.inPhase(PhaseRoll); err != nil {
		return err
	}
	if err := s.slot(i); err != nil {
		return err
	}
	if !s.held[i] {
		if err := s.currentBoss.OnHold(s.slots[i].Die.Color, s.heldCount()); err != nil {
			return rejected(err)
		}
	}
	s.held[i] = !s.held[i]
	return nil
}

func (s *GameSession) heldCount() int {
	n := 0
	for _, h := range s.held {
		if h {
			n++
		}
	}
	return n
}

// ToggleDiscard flips the discard selection of slot i.
//
// Precondition: discard phase.
func (s *GameSession) ToggleDiscard(i int) error {
	if err := s.inPhase(PhaseDiscard); err != nil {
		return err
	}
	if err := s.slot(i); err != nil {
		return err
	}
	s.discardSel[i] = !s.discardSel[i]
	return nil
}

// Discard replaces every selected die with a fresh draw. The replacements are
// drawn before the discarded dice are released, so a discard never hands back
// a die it just threw away. Replaced slots show face 1. The batch costs one
// discard regardless of size.
//
// Precondition: discard phase with at least one discard left and a non-empty
// selection.
// Postcondition: on error no state changes.
func (s *GameSession) Discard() error {
	if err := s.inPhase(PhaseDiscard); err != nil {
		return err
	}
	if s.discardsLeft <= 0 {
		return invalid("no discards left")
	}
	var picked []int
	for i, sel := range s.discardSel {
		if sel {
			picked = append(picked, i)
		}
	}
	if len(picked) == 0 {
		return invalid("select dice to discard first")
	}
	if err := s.currentBoss.OnDiscard(len(picked)); err != nil {
		return rejected(err)
	}
	if !s.bag.CanDraw(len(picked)) {
		return invalid("not enough dice left in the bag")
	}
	drawn, err := s.bag.Draw(len(picked))
	if err != nil {
		s.gameOver("bag exhausted")
		return ErrGameOver
	}
	for k, i := range picked {
		s.discardSel[i] = false
		s.bag.Release(s.slots[i].Die.ID)
		s.slots[i] = Slot{Die: drawn[k], Value: 1}
	}
	s.discardsLeft--
	s.discardsUsed++
	if s.rerollsLeft >= 0 {
		s.rerollsLeft += charm.Sum(s.charms, charm.RerollRecycler)
	}
	s.acted = true
	s.logger.Debug("discard",
		zap.Int("dice", len(picked)),
		zap.Int("discards_left", s.discardsLeft),
	)
	return nil
}

// StartRollPhase ends the discard phase and rolls every die in hand.
//
// Precondition: discard phase.
// Postcondition: Phase() == PhaseRoll; no die is held.
func (s *GameSession) StartRollPhase() error {
	if err := s.inPhase(PhaseDiscard); err != nil {
		return err
	}
	for i := range s.slots {
		s.slots[i].Value = s.roller.Roll(s.slots[i].Die)
		s.held[i] = false
		s.discardSel[i] = false
	}
	s.phase = PhaseRoll
	s.acted = true
	return nil
}

// Reroll rerolls every die not held. With no rerolls left it commits the held
// dice instead and returns the committed Report; otherwise the Report is nil.
//
// Precondition: roll phase.
// Postcondition: on error no state changes.
func (s *GameSession) Reroll() (*Report, error) {
	if err := s.inPhase(PhaseRoll); err != nil {
		return nil, err
	}
	if s.rerollsLeft == 0 {
		return s.commitScore(), nil
	}
	prop := &boss.Reroll{
		Held:    append([]bool(nil), s.held...),
		Force:   make([]bool, len(s.held)),
		Coins:   s.coins,
		Replace: -1,
		Src:     s.src,
	}
	if err := s.currentBoss.OnReroll(prop); err != nil {
		return nil, rejected(err)
	}
	s.coins = prop.Coins
	s.held = prop.Held
	if prop.Replace >= 0 {
		s.replaceSlot(prop.Replace)
	}
	for i := range s.slots {
		if !s.held[i] || prop.Force[i] {
			s.slots[i].Value = s.roller.Roll(s.slots[i].Die)
		}
	}
	if s.rerollsLeft > 0 {
		s.rerollsLeft--
	}
	return nil, nil
}

// replaceSlot swaps the die in slot i for a fresh draw. The slot keeps its die
// when the bag has nothing else to give.
func (s *GameSession) replaceSlot(i int) {
	drawn, err := s.bag.Draw(1)
	if err != nil || len(drawn) == 0 {
		return
	}
	s.bag.Release(s.slots[i].Die.ID)
	s.slots[i] = Slot{Die: drawn[0], Value: 1}
	s.held[i] = false
}

// ScoreAndNewTurn commits the held dice.
//
// Precondition: roll phase.
func (s *GameSession) ScoreAndNewTurn() (*Report, error) {
	if err := s.inPhase(PhaseRoll); err != nil {
		return nil, err
	}
	return s.commitScore(), nil
}

// commitScore evaluates and commits the held dice, then clears the round,
// starts the next turn, or ends the game.
func (s *GameSession) commitScore() *Report {
	res := scoring.Evaluate(s.scoringInput())
	com := scoring.Commit(res, s.charms, s.src)
	s.coins += com.Coins
	s.luckyTriggers += com.LuckyTriggers

	if res.Hand == s.lastHand {
		s.streak++
	} else {
		s.lastHand, s.streak = res.Hand, 1
	}
	s.roundScore += res.Final
	s.handsLeft--
	s.logger.Debug("hand scored",
		zap.String("hand", string(res.Hand)),
		zap.String("color", string(res.Color)),
		zap.Int("base", res.Base),
		zap.Int("chips", res.Chips),
		zap.Float64("modifier", res.Modifier),
		zap.Int("final", res.Final),
		zap.Int("coins", com.Coins),
		zap.Strings("broken", com.Broken),
	)

	s.releaseHand()
	for _, id := range com.Broken {
		s.bag.Remove(id)
	}

	rep := &Report{Result: res, Committed: com}
	switch {
	case s.roundScore >= s.Target():
		s.clearRound()
		rep.Cleared = true
	case s.handsLeft <= 0:
		s.gameOver("target missed")
	default:
		s.newTurn()
	}
	rep.GameOver = s.phase == PhaseGameOver
	return rep
}
