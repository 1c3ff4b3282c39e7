package session

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
)

// RoundSummary itemises the payout of a cleared round.
type RoundSummary struct {
	Blind    Blind
	Stake    int
	Score    int
	Target   int
	Reward   int
	Hands    int
	Discards int
	Interest int
	// Total is the sum of every payout line.
	Total int
}

// AdvanceBlind leaves the shop and starts the next round. Daggers resolve
// first, then the blind cycles Small, Big, Boss and the stake rises after
// each Boss blind.
//
// Precondition: shop phase.
// Postcondition: Phase() == PhaseDiscard, or PhaseGameOver when no die is left.
func (s *GameSession) AdvanceBlind() error {
	if err := s.inPhase(PhaseShop); err != nil {
		return err
	}
	dr := charm.ResolveDaggers(s.charms, s.scoreMult, s.rules.Dagger)
	for _, c := range dr.Consumed {
		s.logger.Info("charm consumed by dagger", zap.String("charm", c.Def.Name), zap.Float64("score_mult", dr.ScoreMult))
	}
	s.charms, s.scoreMult = dr.Charms, dr.ScoreMult

	next, up := s.blind.Next()
	s.blind = next
	if up {
		s.stake++
	}
	s.shop = nil
	s.startRound()
	s.logger.Info("blind advanced",
		zap.Int("stake", s.stake),
		zap.String("blind", string(s.blind)),
		zap.Int("target", s.Target()),
		zap.String("boss", s.currentBoss.Name()),
	)
	return nil
}

// startRound resets the bag and round counters, activates or previews the
// boss, and draws the first hand.
func (s *GameSession) startRound() {
	s.bag.Reset()
	if s.blind == Boss {
		if s.upcomingBoss == nil {
			s.upcomingBoss = s.pickBoss()
		}
		if s.upcomingBoss != nil {
			s.currentBoss = boss.Activate(s.upcomingBoss)
			s.lastBoss = s.upcomingBoss.ID
		}
		s.upcomingBoss = nil
	} else if s.upcomingBoss == nil {
		s.upcomingBoss = s.pickBoss()
	}

	hands, discards := s.rules.Hands, s.rules.Discards
	if p := s.content.Pouches[s.pouch]; p != nil {
		hands += p.Hands
		discards += p.Discards
	}
	r := &boss.Round{
		Charms:   s.charms,
		Dice:     s.bag.Full(),
		Hands:    hands + charm.Sum(s.charms, charm.ExtraHand),
		Discards: discards + charm.Sum(s.charms, charm.ExtraDiscard),
		Rerolls:  s.rules.Rerolls,
		Src:      s.src,
	}
	s.currentBoss.OnRoundStart(r)
	s.handsLeft, s.discardsLeft, s.rerollAllowance = r.Hands, r.Discards, r.Rerolls
	s.roundScore, s.discardsUsed = 0, 0
	s.bag.SetRefillPolicy(s.currentBoss.RefillPolicy())
	s.newTurn()
}

func (s *GameSession) pickBoss() *boss.Def {
	defs := s.content.BossList()
	if len(defs) == 0 {
		return nil
	}
	return boss.Pick(defs, s.src, s.lastBoss)
}

// clearRound pays out the round and opens the shop. Interest is computed on
// the balance before the reward is added.
func (s *GameSession) clearRound() {
	sum := &RoundSummary{
		Blind:    s.blind,
		Stake:    s.stake,
		Score:    s.roundScore,
		Target:   s.Target(),
		Reward:   s.rules.Rewards[s.blind],
		Hands:    max(0, s.handsLeft),
		Discards: max(0, s.discardsLeft),
	}
	limit := s.rules.InterestCap + charm.Sum(s.charms, charm.InterestBoost)
	sum.Interest = min(max(s.coins, 0)/s.rules.InterestStep, limit)
	sum.Total = sum.Reward + sum.Hands + sum.Discards + sum.Interest
	s.coins += sum.Total
	s.summary = sum

	charm.Enable(s.charms)
	s.currentBoss = nil
	s.bag.SetRefillPolicy(bag.RefillFull)
	s.releaseHand()
	s.phase = PhaseShop
	s.openShop()
	s.logger.Info("round cleared",
		zap.Int("stake", s.stake),
		zap.String("blind", string(s.blind)),
		zap.Int("score", sum.Score),
		zap.Int("target", sum.Target),
		zap.Int("payout", sum.Total),
		zap.Int("coins", s.coins),
	)
}
