package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
	"github.com/cory-johannsen/dicebound/internal/game/session"
	"github.com/cory-johannsen/dicebound/internal/testutil"
)

func testDeps(t testing.TB, seed uint64) session.Deps {
	t.Helper()
	cat, err := content.Default()
	require.NoError(t, err)
	return session.Deps{
		Content: cat,
		Source:  dice.NewSeededSource(seed),
		Logger:  zap.NewNop(),
		Rules:   session.DefaultRules(),
	}
}

func newGame(t testing.TB, seed uint64) *session.GameSession {
	t.Helper()
	s, err := session.New(testDeps(t, seed))
	require.NoError(t, err)
	return s
}

// fixed returns a die of color c that always rolls face.
func fixed(c dice.Color, face int) *dice.Die {
	d := dice.NewDie(c)
	d.Faces = [6]int{face, face, face, face, face, face}
	return d
}

// rollState builds a small-blind roll-phase save with hand in the hand and
// pool in the draw pool. Each hand die shows its first face.
func rollState(hand []*dice.Die, pool ...*dice.Die) *session.SaveState {
	st := &session.SaveState{
		Version:         session.SaveVersion,
		CurrentStake:    1,
		CurrentBlind:    session.Small,
		HandsLeft:       4,
		RerollsLeft:     2,
		RerollAllowance: 2,
		DiscardsLeft:    3,
		Phase:           session.PhaseRoll,
		Held:            make([]bool, len(hand)),
		DiscardSel:      make([]bool, len(hand)),
	}
	for _, d := range hand {
		st.FullBag = append(st.FullBag, d)
		st.Hand = append(st.Hand, d.ID)
		st.Rolls = append(st.Rolls, d.Faces[0])
	}
	for _, d := range pool {
		st.FullBag = append(st.FullBag, d)
		st.Bag = append(st.Bag, d.ID)
	}
	return st
}

// shopState builds a shop-phase save owning five red dice.
func shopState(blind session.Blind, charms ...*charm.Charm) *session.SaveState {
	var owned []*dice.Die
	for i := 0; i < 5; i++ {
		owned = append(owned, dice.NewDie(dice.Red))
	}
	st := rollState(nil, owned...)
	st.Phase = session.PhaseShop
	st.CurrentBlind = blind
	st.EquippedCharms = charms
	return st
}

func restore(t testing.TB, st *session.SaveState, deps session.Deps) *session.GameSession {
	t.Helper()
	s, err := session.Restore(st, deps)
	require.NoError(t, err)
	return s
}

func fiveSixes(c dice.Color) []*dice.Die {
	out := make([]*dice.Die, 5)
	for i := range out {
		out[i] = fixed(c, 6)
	}
	return out
}

func holdAll(t *testing.T, s *session.GameSession) {
	t.Helper()
	for i := range s.Hand() {
		require.NoError(t, s.ToggleHold(i))
	}
}

// checkBag asserts the bag invariants against the hand.
func checkBag(t require.TestingT, s *session.GameSession) {
	full := make(map[string]bool)
	for _, d := range s.Bag().Full() {
		full[d.ID] = true
	}
	pool := make(map[string]bool)
	for _, id := range s.Bag().PoolIDs() {
		require.True(t, full[id], "pool die %s not owned", id)
		require.False(t, pool[id], "pool die %s repeated", id)
		pool[id] = true
	}
	seen := make(map[string]bool)
	for _, sl := range s.Hand() {
		require.True(t, full[sl.Die.ID], "hand die %s not owned", sl.Die.ID)
		require.False(t, pool[sl.Die.ID], "hand die %s also in pool", sl.Die.ID)
		require.False(t, seen[sl.Die.ID], "hand die %s repeated", sl.Die.ID)
		require.True(t, s.Bag().InHand(sl.Die.ID))
		seen[sl.Die.ID] = true
	}
	require.LessOrEqual(t, len(pool)+len(seen), len(full))
}

func TestNew_StartsAtSmallBlind(t *testing.T) {
	s := newGame(t, 1)
	assert.Equal(t, session.PhaseDiscard, s.Phase())
	assert.Equal(t, 1, s.Stake())
	assert.Equal(t, session.Small, s.Blind())
	assert.Equal(t, 4, s.Coins())
	assert.Equal(t, 4, s.HandsLeft())
	assert.Equal(t, 3, s.DiscardsLeft())
	assert.Equal(t, 2, s.RerollsLeft())
	assert.Equal(t, 300, s.Target())
	assert.Equal(t, 15, s.Bag().FullLen())
	assert.Equal(t, 10, s.Bag().Len())
	require.Len(t, s.Hand(), 5)
	for _, sl := range s.Hand() {
		assert.Equal(t, 1, sl.Value)
	}
	assert.NotNil(t, s.UpcomingBoss())
	assert.Nil(t, s.CurrentBoss())
	checkBag(t, s)
}

func TestNew_RejectsInvalidRules(t *testing.T) {
	deps := testDeps(t, 1)
	deps.Rules.HandSize = 0
	_, err := session.New(deps)
	assert.Error(t, err)
}

func TestIllegalActions_LeaveStateUnchanged(t *testing.T) {
	s := newGame(t, 2)
	before := s.Hand()

	assert.ErrorIs(t, s.ToggleHold(0), session.ErrIllegalAction)
	_, err := s.Reroll()
	assert.ErrorIs(t, err, session.ErrIllegalAction)
	_, err = s.ScoreAndNewTurn()
	assert.ErrorIs(t, err, session.ErrIllegalAction)
	assert.ErrorIs(t, s.AdvanceBlind(), session.ErrIllegalAction)
	assert.ErrorIs(t, s.BuyCharm(0), session.ErrIllegalAction)
	assert.ErrorIs(t, s.RerollShop(), session.ErrIllegalAction)

	require.NoError(t, s.StartRollPhase())
	assert.ErrorIs(t, s.ToggleDiscard(0), session.ErrIllegalAction)
	assert.ErrorIs(t, s.Discard(), session.ErrIllegalAction)
	assert.ErrorIs(t, s.StartRollPhase(), session.ErrIllegalAction)

	for i, sl := range s.Hand() {
		assert.Equal(t, before[i].Die.ID, sl.Die.ID)
	}
}

func TestToggle_OutOfRangeIsInvalid(t *testing.T) {
	s := newGame(t, 3)
	assert.ErrorIs(t, s.ToggleDiscard(5), session.ErrInvalidSelection)
	assert.ErrorIs(t, s.ToggleDiscard(-1), session.ErrInvalidSelection)
}

func TestDiscard_ReplacesExactlySelectedSlots(t *testing.T) {
	s := newGame(t, 4)
	before := s.Hand()
	old := make(map[string]bool)
	for _, sl := range before {
		old[sl.Die.ID] = true
	}
	require.NoError(t, s.ToggleDiscard(0))
	require.NoError(t, s.ToggleDiscard(2))
	require.NoError(t, s.Discard())

	after := s.Hand()
	require.Len(t, after, 5)
	for i, sl := range after {
		assert.Equal(t, 1, sl.Value)
		if i == 0 || i == 2 {
			assert.False(t, old[sl.Die.ID], "slot %d kept a discarded die", i)
			assert.False(t, s.Bag().InHand(before[i].Die.ID))
		} else {
			assert.Equal(t, before[i].Die.ID, sl.Die.ID)
		}
	}
	assert.Equal(t, 2, s.DiscardsLeft())
	assert.Equal(t, 1, s.DiscardsUsed())
	assert.Equal(t, []bool{false, false, false, false, false}, s.DiscardSelected())
	assert.Equal(t, session.PhaseDiscard, s.Phase())
	checkBag(t, s)
}

func TestDiscard_RejectsEmptySelection(t *testing.T) {
	s := newGame(t, 5)
	err := s.Discard()
	assert.ErrorIs(t, err, session.ErrInvalidSelection)
	assert.Equal(t, 3, s.DiscardsLeft())
}

func TestDiscard_RejectsWithNoDiscardsLeft(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.Phase = session.PhaseDiscard
	st.DiscardsLeft = 0
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.ToggleDiscard(0))
	assert.ErrorIs(t, s.Discard(), session.ErrInvalidSelection)
}

func TestDiscard_RejectsWhenBagCannotReplace(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.Phase = session.PhaseDiscard
	st.EquippedCharms = []*charm.Charm{{InstanceID: "r1", DefID: "recycler"}}
	s := restore(t, st, testDeps(t, 1))
	before := s.Hand()
	require.NoError(t, s.ToggleDiscard(0))
	require.NoError(t, s.ToggleDiscard(1))

	err := s.Discard()
	require.ErrorIs(t, err, session.ErrInvalidSelection)
	assert.Contains(t, err.Error(), "not enough dice")
	assert.Equal(t, before, s.Hand())
	assert.Equal(t, 3, s.DiscardsLeft())
	assert.Equal(t, 0, s.DiscardsUsed())
	assert.Equal(t, 2, s.RerollsLeft())
	assert.Equal(t, []bool{true, true, false, false, false}, s.DiscardSelected())
	assert.Equal(t, session.PhaseDiscard, s.Phase())
	checkBag(t, s)
}

func TestDiscard_RecyclerAddsRerolls(t *testing.T) {
	var pool []*dice.Die
	for i := 0; i < 5; i++ {
		pool = append(pool, dice.NewDie(dice.Blue))
	}
	st := rollState(fiveSixes(dice.Red), pool...)
	st.Phase = session.PhaseDiscard
	st.EquippedCharms = []*charm.Charm{{InstanceID: "r1", DefID: "recycler"}}
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.ToggleDiscard(1))
	require.NoError(t, s.Discard())
	assert.Equal(t, 3, s.RerollsLeft())
}

func TestStartRollPhase_RollsEveryDie(t *testing.T) {
	s := newGame(t, 6)
	require.NoError(t, s.StartRollPhase())
	assert.Equal(t, session.PhaseRoll, s.Phase())
	for _, sl := range s.Hand() {
		assert.Contains(t, sl.Die.Faces, sl.Value)
	}
	assert.Equal(t, []bool{false, false, false, false, false}, s.Held())
}

func TestReroll_KeepsHeldValuesAndCommitsWhenExhausted(t *testing.T) {
	s := newGame(t, 7)
	require.NoError(t, s.StartRollPhase())
	require.NoError(t, s.ToggleHold(0))
	require.NoError(t, s.ToggleHold(1))
	before := s.Hand()

	rep, err := s.Reroll()
	require.NoError(t, err)
	assert.Nil(t, rep)
	after := s.Hand()
	assert.Equal(t, before[0].Value, after[0].Value)
	assert.Equal(t, before[1].Value, after[1].Value)
	assert.Equal(t, 1, s.RerollsLeft())

	_, err = s.Reroll()
	require.NoError(t, err)
	assert.Equal(t, 0, s.RerollsLeft())

	rep, err = s.Reroll()
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.False(t, rep.Cleared)
	assert.Equal(t, 3, s.HandsLeft())
	assert.Equal(t, session.PhaseDiscard, s.Phase())
	assert.Equal(t, 2, s.RerollsLeft())
	checkBag(t, s)
}

func TestScore_FiveOfAKindMonochromeClearsRound(t *testing.T) {
	s := restore(t, rollState(fiveSixes(dice.Red)), testDeps(t, 1))
	holdAll(t, s)

	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.Equal(t, hand.FiveOfAKind, rep.Result.Hand)
	assert.Equal(t, hand.ColorMonochrome, rep.Result.Color)
	assert.Equal(t, 250, rep.Result.Base)
	assert.Equal(t, 1000, rep.Result.Final)
	assert.True(t, rep.Cleared)
	assert.False(t, rep.GameOver)

	assert.Equal(t, session.PhaseShop, s.Phase())
	assert.Empty(t, s.Hand())
	require.NotNil(t, s.Shop())
	assert.Len(t, s.Shop().Offers, 3)

	sum := s.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, 1000, sum.Score)
	assert.Equal(t, 300, sum.Target)
	assert.Equal(t, 3, sum.Reward)
	assert.Equal(t, 3, sum.Hands)
	assert.Equal(t, 3, sum.Discards)
	assert.Equal(t, 0, sum.Interest)
	assert.Equal(t, 9, s.Coins())
}

func TestScore_NewTurnUsesRoundRerollAllowance(t *testing.T) {
	var pool []*dice.Die
	for i := 0; i < 5; i++ {
		pool = append(pool, dice.NewDie(dice.Blue))
	}
	st := rollState(fiveSixes(dice.Red), pool...)
	st.RerollsLeft = 0
	st.RerollAllowance = 1
	s := restore(t, st, testDeps(t, 1))

	_, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	require.Equal(t, session.PhaseDiscard, s.Phase())
	assert.Equal(t, 1, s.RerollsLeft())
	assert.Equal(t, 1, s.Snapshot().RerollAllowance)

	again := restore(t, s.Snapshot(), testDeps(t, 1))
	assert.Equal(t, 1, again.RerollsLeft())
}

func TestScore_InterestUsesBalanceBeforeReward(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.Coins = 12
	st.EquippedCharms = []*charm.Charm{{InstanceID: "p1", DefID: "piggy_bank"}}
	s := restore(t, st, testDeps(t, 1))
	holdAll(t, s)
	_, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Summary().Interest)
	assert.Equal(t, 12+3+3+3+2, s.Coins())
}

func TestScore_InterestIsCapped(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.Coins = 100
	s := restore(t, st, testDeps(t, 1))
	holdAll(t, s)
	_, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.Equal(t, 5, s.Summary().Interest)
}

func TestScore_EmptySelectionScoresNothing(t *testing.T) {
	s := newGame(t, 8)
	require.NoError(t, s.StartRollPhase())
	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.Equal(t, hand.Nothing, rep.Result.Hand)
	assert.Equal(t, 0, rep.Result.Base)
	assert.Equal(t, 0, rep.Result.Final)
	assert.Equal(t, 0, s.RoundScore())
	assert.Equal(t, 3, s.HandsLeft())
}

func TestScore_MissedTargetOnLastHandEndsGame(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.HandsLeft = 1
	s := restore(t, st, testDeps(t, 1))

	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.True(t, rep.GameOver)
	assert.Equal(t, session.PhaseGameOver, s.Phase())

	assert.ErrorIs(t, s.ToggleHold(0), session.ErrGameOver)
	assert.ErrorIs(t, s.AdvanceBlind(), session.ErrGameOver)
	assert.ErrorIs(t, s.SellCharm(0), session.ErrGameOver)
	assert.ErrorIs(t, s.ApplyRuneEffect(0, nil), session.ErrGameOver)
}

func TestScore_GlassBreakIsPermanent(t *testing.T) {
	glass := fixed(dice.Glass, 3)
	st := rollState([]*dice.Die{glass, fixed(dice.Red, 3), fixed(dice.Blue, 1), fixed(dice.Green, 2), fixed(dice.Yellow, 5)})
	deps := testDeps(t, 1)
	deps.Rules.Chances.Glass = 1
	s := restore(t, st, deps)
	require.NoError(t, s.ToggleHold(0))
	require.NoError(t, s.ToggleHold(1))

	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.Equal(t, hand.Pair, rep.Result.Hand)
	assert.Equal(t, []string{glass.ID}, rep.Committed.Broken)
	assert.Equal(t, 4, s.Bag().FullLen())
	assert.Nil(t, s.Bag().Find(glass.ID))
	for _, sl := range s.Hand() {
		assert.NotEqual(t, glass.ID, sl.Die.ID)
	}
	checkBag(t, s)
}

func TestScore_StreakTracksRepeatedHands(t *testing.T) {
	st := rollState([]*dice.Die{fixed(dice.Red, 2), fixed(dice.Blue, 2), fixed(dice.Green, 4), fixed(dice.Purple, 5), fixed(dice.Yellow, 6)})
	st.LastHand = hand.Pair
	st.Streak = 2
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.ToggleHold(0))
	require.NoError(t, s.ToggleHold(1))
	_, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	last, n := s.Streak()
	assert.Equal(t, hand.Pair, last)
	assert.Equal(t, 3, n)
}

func TestPreview_DoesNotMutate(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	s := restore(t, st, testDeps(t, 1))
	holdAll(t, s)

	before := s.Snapshot()
	first := s.Preview()
	second := s.Preview()
	assert.Equal(t, first, second)
	assert.Equal(t, 1000, first.Final)
	assert.Equal(t, before, s.Snapshot())
}

func TestPreview_EmptyOutsideRollPhase(t *testing.T) {
	s := newGame(t, 9)
	res := s.Preview()
	assert.Equal(t, hand.Nothing, res.Hand)
	assert.Equal(t, 0, res.Final)
}

func TestAdvanceBlind_CyclesBlindsAndStake(t *testing.T) {
	deps := testDeps(t, 1)
	s := restore(t, shopState(session.Small), deps)
	require.NoError(t, s.AdvanceBlind())
	assert.Equal(t, session.Big, s.Blind())
	assert.Equal(t, 450, s.Target())
	assert.Equal(t, session.PhaseDiscard, s.Phase())
	assert.Equal(t, 0, s.RoundScore())
	assert.Equal(t, 4, s.HandsLeft())
	assert.Equal(t, 3, s.DiscardsLeft())
	assert.NotNil(t, s.UpcomingBoss())
	assert.Nil(t, s.Shop())
	checkBag(t, s)

	st := shopState(session.Boss)
	st.CurrentStake = 2
	s = restore(t, st, testDeps(t, 2))
	require.NoError(t, s.AdvanceBlind())
	assert.Equal(t, session.Small, s.Blind())
	assert.Equal(t, 3, s.Stake())
	assert.Equal(t, 600, s.Target())
}

func TestAdvanceBlind_ActivatesPreviewedBoss(t *testing.T) {
	st := shopState(session.Big)
	st.UpcomingBoss = "the_wall"
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.AdvanceBlind())
	assert.Equal(t, session.Boss, s.Blind())
	require.NotNil(t, s.CurrentBoss())
	assert.Equal(t, "The Wall", s.CurrentBoss().Name())
	assert.Nil(t, s.UpcomingBoss())
	assert.Equal(t, 1200, s.Target())
}

func TestAdvanceBlind_AppliesRoundCharmsAndBoss(t *testing.T) {
	st := shopState(session.Big,
		&charm.Charm{InstanceID: "a", DefID: "extra_arm"},
		&charm.Charm{InstanceID: "w", DefID: "waste_bin"},
	)
	st.UpcomingBoss = "the_hook"
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.AdvanceBlind())
	assert.Equal(t, 4, s.HandsLeft())
	assert.Equal(t, 4, s.DiscardsLeft())
}

func TestAdvanceBlind_DaggerConsumesNeighbour(t *testing.T) {
	st := shopState(session.Small,
		&charm.Charm{InstanceID: "d", DefID: "dagger"},
		&charm.Charm{InstanceID: "p", DefID: "pebble"},
	)
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.AdvanceBlind())
	require.Len(t, s.Charms(), 1)
	assert.Equal(t, "dagger", s.Charms()[0].DefID)
	assert.InDelta(t, 0.3, s.ScoreMult(), 1e-9)
}

func TestBossRound_TargetMultiplierBlocksClear(t *testing.T) {
	st := rollState(fiveSixes(dice.Red), dice.NewDie(dice.Blue), dice.NewDie(dice.Blue))
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_wall"
	s := restore(t, st, testDeps(t, 1))
	holdAll(t, s)
	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	assert.False(t, rep.Cleared)
	assert.Equal(t, 1000, s.RoundScore())
	assert.Equal(t, session.PhaseDiscard, s.Phase())
}

func TestBossRound_ClearReenablesCharms(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_blackout"
	st.EquippedCharms = []*charm.Charm{{InstanceID: "p", DefID: "pebble"}}
	st.DisabledCharms = []string{"p"}
	s := restore(t, st, testDeps(t, 1))
	require.True(t, s.Charms()[0].Disabled)
	holdAll(t, s)

	rep, err := s.ScoreAndNewTurn()
	require.NoError(t, err)
	require.True(t, rep.Cleared)
	assert.Empty(t, rep.Result.CharmLines)
	assert.True(t, s.Charms()[0].Active())
	assert.Nil(t, s.CurrentBoss())
}

func TestBossRound_HoldLimit(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_grip"
	s := restore(t, st, testDeps(t, 1))
	require.NoError(t, s.ToggleHold(0))
	require.NoError(t, s.ToggleHold(1))

	err := s.ToggleHold(2)
	assert.ErrorIs(t, err, session.ErrInvalidSelection)
	assert.ErrorIs(t, err, boss.ErrBlocked)
	assert.False(t, s.Held()[2])

	require.NoError(t, s.ToggleHold(1))
	assert.False(t, s.Held()[1])
}

func TestBossRound_JitterRerollsWithoutReleasing(t *testing.T) {
	d := dice.NewDie(dice.Red)
	st := rollState([]*dice.Die{d, dice.NewDie(dice.Red)})
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_jitters"
	st.Rolls[0] = 6
	deps := testDeps(t, 1)
	// Every chance succeeds and every roll lands on the first face.
	deps.Source = testutil.NewSequenceSource(0)
	s := restore(t, st, deps)
	require.NoError(t, s.ToggleHold(0))

	_, err := s.Reroll()
	require.NoError(t, err)
	assert.True(t, s.Held()[0], "jittered die was released")
	assert.Equal(t, d.Faces[0], s.Hand()[0].Value)
	assert.Equal(t, 1, s.RerollsLeft())
}

func TestBossRound_HoldBan(t *testing.T) {
	st := rollState([]*dice.Die{fixed(dice.Red, 1), fixed(dice.Blue, 1)})
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_red_ban"
	s := restore(t, st, testDeps(t, 1))
	assert.ErrorIs(t, s.ToggleHold(0), boss.ErrBlocked)
	assert.NoError(t, s.ToggleHold(1))
}

func TestBossRound_TollChargesRerolls(t *testing.T) {
	st := rollState(fiveSixes(dice.Red))
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_toll"
	s := restore(t, st, testDeps(t, 1))
	_, err := s.Reroll()
	assert.ErrorIs(t, err, boss.ErrBlocked)
	assert.Equal(t, 2, s.RerollsLeft())

	st.Coins = 3
	s = restore(t, st, testDeps(t, 1))
	_, err = s.Reroll()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Coins())
	assert.Equal(t, 1, s.RerollsLeft())
	assert.Equal(t, 1, s.CurrentBoss().State.RerollCount)
}

func TestBossRound_NarrowDiscard(t *testing.T) {
	var pool []*dice.Die
	for i := 0; i < 5; i++ {
		pool = append(pool, dice.NewDie(dice.Blue))
	}
	st := rollState(fiveSixes(dice.Red), pool...)
	st.Phase = session.PhaseDiscard
	st.CurrentBlind = session.Boss
	st.CurrentBoss = "the_needle"
	s := restore(t, st, testDeps(t, 1))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.ToggleDiscard(i))
	}
	assert.ErrorIs(t, s.Discard(), boss.ErrBlocked)
	assert.Equal(t, 3, s.DiscardsLeft())

	require.NoError(t, s.ToggleDiscard(2))
	require.NoError(t, s.Discard())
	assert.Equal(t, 2, s.DiscardsLeft())
}

func TestDeterminism_SameSeedSameGame(t *testing.T) {
	play := func() []int {
		s := newGame(t, 42)
		var trace []int
		for round := 0; round < 3 && s.Phase() != session.PhaseGameOver; round++ {
			require.NoError(t, s.ToggleDiscard(0))
			require.NoError(t, s.Discard())
			require.NoError(t, s.StartRollPhase())
			require.NoError(t, s.ToggleHold(0))
			_, err := s.Reroll()
			require.NoError(t, err)
			for _, sl := range s.Hand() {
				trace = append(trace, sl.Value)
			}
			rep, err := s.ScoreAndNewTurn()
			require.NoError(t, err)
			trace = append(trace, rep.Result.Final, s.Coins())
		}
		return trace
	}
	assert.Equal(t, play(), play())
}

func TestProperty_BagInvariantsHoldAcrossCommands(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		s := newGame(t, seed)
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps && s.Phase() != session.PhaseGameOver; i++ {
			idx := rapid.IntRange(0, 4).Draw(rt, "idx")
			switch rapid.IntRange(0, 8).Draw(rt, "cmd") {
			case 0:
				_ = s.ToggleDiscard(idx)
			case 1:
				_ = s.Discard()
			case 2:
				_ = s.StartRollPhase()
			case 3:
				_ = s.ToggleHold(idx)
			case 4:
				_, _ = s.Reroll()
			case 5:
				_, _ = s.ScoreAndNewTurn()
			case 6:
				_ = s.AdvanceBlind()
			case 7:
				_ = s.BuyPack(idx % 2)
			case 8:
				_ = s.ApplyRuneEffect(idx%2, []int{idx})
			}
			checkBag(rt, s)
			if s.Phase() == session.PhaseDiscard || s.Phase() == session.PhaseRoll {
				require.Len(rt, s.Held(), len(s.Hand()))
				require.Len(rt, s.DiscardSelected(), len(s.Hand()))
			}
		}
	})
}
