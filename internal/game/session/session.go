// Package session implements the GameSession: the turn and round state
// machine that drives the bag, runes, boss effect, charms, and scoring in
// response to one player command at a time.
package session

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/enhance"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
	"github.com/cory-johannsen/dicebound/internal/game/scoring"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

// Phase is the state of the turn machine.
type Phase string

const (
	PhaseDiscard  Phase = "discard"
	PhaseRoll     Phase = "roll"
	PhaseShop     Phase = "shop"
	PhaseGameOver Phase = "game_over"
)

// TraySize is the number of rune tray slots.
const TraySize = 2

// Slot is one hand position: a die checked out of the bag and its face.
type Slot struct {
	Die   *dice.Die
	Value int
}

// Deps are the collaborators of a session.
type Deps struct {
	Content *content.Catalogue
	Source  dice.Source
	Logger  *zap.Logger
	Rules   Rules
}

// GameSession owns all game state. It is not safe for concurrent use; every
// command runs to completion before the next one.
type GameSession struct {
	rules   Rules
	content *content.Catalogue
	src     dice.Source
	roller  *dice.Roller
	logger  *zap.Logger

	bag    *bag.Store
	coins  int
	charms []*charm.Charm
	tray   [TraySize]*enhance.Def

	stake        int
	blind        Blind
	roundScore   int
	handsLeft    int
	discardsLeft int
	rerollsLeft  int
	// rerollAllowance is the per-hand reroll allowance after boss reducers.
	rerollAllowance int
	discardsUsed    int

	slots      []Slot
	held       []bool
	discardSel []bool
	phase      Phase

	currentBoss  *boss.Effect
	upcomingBoss *boss.Def
	lastBoss     string

	shop            *shop.Shop
	handMultipliers map[hand.Type]float64
	scoreMult       float64
	pouch           string
	acted           bool

	lastHand      hand.Type
	streak        int
	lastRune      *enhance.Def
	luckyTriggers int
	summary       *RoundSummary
}

// New starts a game at stake 1, Small blind, with a fresh starting bag and
// the first hand drawn.
//
// Precondition: deps.Content, deps.Source, and deps.Logger must be non-nil.
// Postcondition: Phase() == PhaseDiscard.
func New(deps Deps) (*GameSession, error) {
	if err := deps.Rules.Validate(); err != nil {
		return nil, err
	}
	s := newSession(deps)
	var owned []*dice.Die
	for _, c := range dice.BaseColors {
		for i := 0; i < deps.Rules.StartingDice; i++ {
			owned = append(owned, dice.NewDie(c))
		}
	}
	s.bag = bag.New(owned, s.src, s.logger)
	s.coins = deps.Rules.StartingCoins
	s.stake = 1
	s.blind = Small
	s.startRound()
	s.logger.Info("game started", zap.Int("dice", s.bag.FullLen()), zap.Int("coins", s.coins))
	return s, nil
}

func newSession(deps Deps) *GameSession {
	return &GameSession{
		rules:           deps.Rules,
		content:         deps.Content,
		src:             deps.Source,
		roller:          dice.NewLoggedRoller(deps.Source, deps.Logger),
		logger:          deps.Logger,
		handMultipliers: make(map[hand.Type]float64),
	}
}

// Phase returns the current phase.
func (s *GameSession) Phase() Phase { return s.phase }

// Coins returns the coin balance.
func (s *GameSession) Coins() int { return s.coins }

// Stake returns the current stake.
func (s *GameSession) Stake() int { return s.stake }

// Blind returns the current blind.
func (s *GameSession) Blind() Blind { return s.blind }

// RoundScore returns the score accumulated this round.
func (s *GameSession) RoundScore() int { return s.roundScore }

// HandsLeft returns the hands remaining this round.
func (s *GameSession) HandsLeft() int { return s.handsLeft }

// DiscardsLeft returns the discards remaining this round.
func (s *GameSession) DiscardsLeft() int { return s.discardsLeft }

// RerollsLeft returns the rerolls remaining this hand; -1 means unlimited.
func (s *GameSession) RerollsLeft() int { return s.rerollsLeft }

// DiscardsUsed returns the discards spent this round.
func (s *GameSession) DiscardsUsed() int { return s.discardsUsed }

// Hand returns a snapshot of the hand slots.
func (s *GameSession) Hand() []Slot { return append([]Slot(nil), s.slots...) }

// Held returns a snapshot of the hold flags.
func (s *GameSession) Held() []bool { return append([]bool(nil), s.held...) }

// DiscardSelected returns a snapshot of the discard selection.
func (s *GameSession) DiscardSelected() []bool { return append([]bool(nil), s.discardSel...) }

// Charms returns the equipped charms in equip order.
func (s *GameSession) Charms() []*charm.Charm { return append([]*charm.Charm(nil), s.charms...) }

// MaxCharms returns the charm slot count.
func (s *GameSession) MaxCharms() int { return s.rules.MaxCharms }

// RuneTray returns the rune tray slots; empty slots are nil.
func (s *GameSession) RuneTray() [TraySize]*enhance.Def { return s.tray }

// Shop returns the open shop visit, or nil outside the shop.
func (s *GameSession) Shop() *shop.Shop { return s.shop }

// CurrentBoss returns the active boss effect, or nil.
func (s *GameSession) CurrentBoss() *boss.Effect { return s.currentBoss }

// UpcomingBoss returns the previewed boss of the next Boss blind, or nil.
func (s *GameSession) UpcomingBoss() *boss.Def { return s.upcomingBoss }

// Summary returns the last round-clear summary, or nil.
func (s *GameSession) Summary() *RoundSummary { return s.summary }

// Bag returns the bag store.
func (s *GameSession) Bag() *bag.Store { return s.bag }

// ScoreMult returns the persistent Dagger modifier.
func (s *GameSession) ScoreMult() float64 { return s.scoreMult }

// HandMultiplier returns the base score multiplier of h.
func (s *GameSession) HandMultiplier(h hand.Type) float64 {
	if m, ok := s.handMultipliers[h]; ok {
		return m
	}
	return 1
}

// Pouch returns the applied pouch id, or "".
func (s *GameSession) Pouch() string { return s.pouch }

// LuckyTriggers returns the number of Lucky triggers this game.
func (s *GameSession) LuckyTriggers() int { return s.luckyTriggers }

// Streak returns the last scored hand type and how many times in a row it
// was scored.
func (s *GameSession) Streak() (hand.Type, int) { return s.lastHand, s.streak }

// Target returns the score needed to clear the current round:
// base(blind) x (1 + step x (stake-1)) x boss multiplier, rounded down.
func (s *GameSession) Target() int {
	return targetFor(s.rules, s.blind, s.stake, s.currentBoss.TargetMultiplier())
}

func targetFor(r Rules, b Blind, stake int, bossMult float64) int {
	t := float64(r.Targets[b]) * (1 + r.StakeStep*float64(stake-1)) * bossMult
	return int(math.Floor(t))
}

// Preview evaluates the held dice without changing any state.
func (s *GameSession) Preview() scoring.Result {
	return scoring.Evaluate(s.scoringInput())
}

func (s *GameSession) scoringInput() scoring.Input {
	var held []charm.Held
	if s.phase == PhaseRoll {
		for i, sl := range s.slots {
			if s.held[i] {
				held = append(held, charm.Held{Die: sl.Die, Value: sl.Value})
			}
		}
	}
	in := scoring.Input{
		Held:            held,
		Table:           s.content.Hands,
		Charms:          s.charms,
		HandMultipliers: s.handMultipliers,
		Rules:           s.currentBoss.ScoreRules(),
		ScoreMult:       s.scoreMult,
		Chances:         s.rules.Chances,
		Coins:           s.coins,
		DiscardsUsed:    s.discardsUsed,
		BagSize:         s.bag.Len(),
		EmptySlots:      max(0, s.rules.MaxCharms-len(s.charms)),
		LastHand:        s.lastHand,
		Streak:          s.streak,
	}
	if c, ok := s.currentBoss.WildColor(); ok {
		in.WildColor = c
		in.RestrictValues = s.rules.RainbowPolicy == HandAndColor
	}
	return in
}

// guard rejects every command once the game is over.
func (s *GameSession) guard() error {
	if s.phase == PhaseGameOver {
		return ErrGameOver
	}
	return nil
}

func (s *GameSession) inPhase(p Phase) error {
	if err := s.guard(); err != nil {
		return err
	}
	if s.phase != p {
		return fmt.Errorf("%w: not available during the %s phase", ErrIllegalAction, s.phase)
	}
	return nil
}

func (s *GameSession) gameOver(reason string) {
	s.phase = PhaseGameOver
	s.logger.Info("game over",
		zap.String("reason", reason),
		zap.Int("stake", s.stake),
		zap.String("blind", string(s.blind)),
		zap.Int("round_score", s.roundScore),
	)
}

func (s *GameSession) equippedDefIDs() map[string]bool {
	ids := make(map[string]bool, len(s.charms))
	for _, c := range s.charms {
		ids[c.DefID] = true
	}
	return ids
}
