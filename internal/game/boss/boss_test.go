package boss_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/testutil"
)

func def(kind boss.Kind, mod func(d *boss.Def)) *boss.Def {
	d := &boss.Def{ID: string(kind), Name: "The " + string(kind), Difficulty: 1, Kind: kind}
	if mod != nil {
		mod(d)
	}
	return d
}

func trinket() *charm.Charm {
	return charm.Instantiate(&charm.Def{ID: "t", Name: "T", Rarity: charm.Common, Kind: charm.Trinket})
}

func TestNilEffect_IsInert(t *testing.T) {
	var e *boss.Effect
	assert.Equal(t, "", e.Name())
	assert.NoError(t, e.OnReroll(&boss.Reroll{}))
	assert.NoError(t, e.OnDiscard(5))
	assert.NoError(t, e.OnHold(dice.Red, 4))
	assert.Equal(t, boss.DefaultScoreRules(), e.ScoreRules())
	assert.Equal(t, bag.RefillFull, e.RefillPolicy())
	assert.Equal(t, 1.0, e.TargetMultiplier())
	_, ok := e.WildColor()
	assert.False(t, ok)
	e.OnRoundStart(&boss.Round{})
}

func TestDef_Validate(t *testing.T) {
	require.NoError(t, def(boss.TargetRaise, func(d *boss.Def) { d.Multiplier = 2 }).Validate())
	assert.Error(t, def(boss.TargetRaise, nil).Validate())
	assert.Error(t, def(boss.HoldBan, nil).Validate())
	assert.Error(t, def("earthquake", nil).Validate())
	assert.Error(t, def(boss.Halved, func(d *boss.Def) { d.Multiplier = 2 }).Validate())
}

func TestTargetRaise(t *testing.T) {
	e := boss.Activate(def(boss.TargetRaise, func(d *boss.Def) { d.Multiplier = 2 }))
	assert.Equal(t, 2.0, e.TargetMultiplier())
}

func TestDisableOne_DisablesExactlyOne(t *testing.T) {
	charms := []*charm.Charm{trinket(), trinket(), trinket()}
	e := boss.Activate(def(boss.DisableOne, nil))
	e.OnRoundStart(&boss.Round{Charms: charms, Src: testutil.NewSequenceSource(1)})
	assert.Len(t, charm.DisabledIDs(charms), 1)
	assert.True(t, charms[1].Disabled)
}

func TestDisableAll(t *testing.T) {
	charms := []*charm.Charm{trinket(), trinket()}
	boss.Activate(def(boss.DisableAll, nil)).OnRoundStart(&boss.Round{Charms: charms, Src: testutil.NewSequenceSource(0)})
	assert.Len(t, charm.DisabledIDs(charms), 2)
}

func TestRainbowRestriction_PinsColor(t *testing.T) {
	e := boss.Activate(def(boss.RainbowRestriction, nil))
	e.OnRoundStart(&boss.Round{Src: testutil.NewSequenceSource(2)})
	c, ok := e.WildColor()
	require.True(t, ok)
	assert.Equal(t, dice.BaseColors[2], c)
}

func TestScramble_OnlyOnce(t *testing.T) {
	d := dice.NewDie(dice.Red)
	e := boss.Activate(def(boss.Scramble, nil))
	e.OnRoundStart(&boss.Round{Dice: []*dice.Die{d}, Src: testutil.NewSequenceSource(0)})
	assert.True(t, e.State.ShuffledFaces)
	first := d.Faces
	e.OnRoundStart(&boss.Round{Dice: []*dice.Die{d}, Src: testutil.NewSequenceSource(3)})
	assert.Equal(t, first, d.Faces)
	assert.ElementsMatch(t, dice.StandardFaces[:], d.Faces[:])
}

func TestReducers(t *testing.T) {
	r := &boss.Round{Hands: 4, Discards: 3, Rerolls: 2}
	boss.Activate(def(boss.FewerHands, func(d *boss.Def) { d.Amount = 10 })).OnRoundStart(r)
	boss.Activate(def(boss.FewerDiscards, func(d *boss.Def) { d.Amount = 1 })).OnRoundStart(r)
	boss.Activate(def(boss.FewerRerolls, func(d *boss.Def) { d.Amount = 1 })).OnRoundStart(r)
	assert.Equal(t, 1, r.Hands)
	assert.Equal(t, 2, r.Discards)
	assert.Equal(t, 1, r.Rerolls)

	unlimited := &boss.Round{Rerolls: -1}
	boss.Activate(def(boss.FewerRerolls, func(d *boss.Def) { d.Amount = 1 })).OnRoundStart(unlimited)
	assert.Equal(t, -1, unlimited.Rerolls)
}

func TestToll(t *testing.T) {
	e := boss.Activate(def(boss.Toll, func(d *boss.Def) { d.Amount = 2 }))
	r := &boss.Reroll{Coins: 3, Replace: -1}
	require.NoError(t, e.OnReroll(r))
	assert.Equal(t, 1, r.Coins)

	r = &boss.Reroll{Coins: 1, Replace: -1}
	err := e.OnReroll(r)
	assert.True(t, errors.Is(err, boss.ErrBlocked))
	assert.Equal(t, 1, r.Coins)
	assert.Equal(t, 1, e.State.RerollCount)
}

func TestEscalatingToll(t *testing.T) {
	e := boss.Activate(def(boss.EscalatingToll, nil))
	r := &boss.Reroll{Coins: 10, Replace: -1}
	require.NoError(t, e.OnReroll(r))
	require.NoError(t, e.OnReroll(r))
	require.NoError(t, e.OnReroll(r))
	assert.Equal(t, 10-1-2-3, r.Coins)
	assert.Equal(t, 3, e.State.RerollCount)
}

func TestSlippery_UnholdsOne(t *testing.T) {
	e := boss.Activate(def(boss.Slippery, nil))
	r := &boss.Reroll{Held: []bool{true, false, true}, Replace: -1, Src: testutil.NewSequenceSource(1)}
	require.NoError(t, e.OnReroll(r))
	assert.Equal(t, []bool{true, false, false}, r.Held)
}

func TestSabotage_PicksSlot(t *testing.T) {
	e := boss.Activate(def(boss.Sabotage, nil))
	r := &boss.Reroll{Held: []bool{true, true, true}, Replace: -1, Src: testutil.NewSequenceSource(2)}
	require.NoError(t, e.OnReroll(r))
	assert.Equal(t, 2, r.Replace)
	assert.False(t, r.Held[2])
}

func TestHoldLimit(t *testing.T) {
	e := boss.Activate(def(boss.HoldLimit, func(d *boss.Def) { d.Amount = 2 }))
	assert.NoError(t, e.OnHold(dice.Red, 1))
	assert.ErrorIs(t, e.OnHold(dice.Red, 2), boss.ErrBlocked)
	assert.ErrorIs(t, e.OnReroll(&boss.Reroll{Held: []bool{true, true, true}}), boss.ErrBlocked)
	assert.Zero(t, e.State.RerollCount)
}

func TestNoHolds(t *testing.T) {
	e := boss.Activate(def(boss.NoHolds, nil))
	assert.ErrorIs(t, e.OnHold(dice.Blue, 0), boss.ErrBlocked)
	assert.NoError(t, e.OnReroll(&boss.Reroll{Held: []bool{false, false}}))
}

func TestJitter(t *testing.T) {
	e := boss.Activate(def(boss.Jitter, func(d *boss.Def) { d.Chance = 4 }))
	// Chance succeeds when Intn returns 0: first held die jitters, second does not.
	r := &boss.Reroll{Held: []bool{true, true, false}, Src: testutil.NewSequenceSource(0, 1)}
	require.NoError(t, e.OnReroll(r))
	assert.Equal(t, []bool{true, true, false}, r.Held)
	assert.Equal(t, []bool{true, false, false}, r.Force)
}

func TestNarrowDiscard(t *testing.T) {
	e := boss.Activate(def(boss.NarrowDiscard, func(d *boss.Def) { d.Amount = 2 }))
	assert.NoError(t, e.OnDiscard(2))
	assert.ErrorIs(t, e.OnDiscard(3), boss.ErrBlocked)
}

func TestHoldBan(t *testing.T) {
	e := boss.Activate(def(boss.HoldBan, func(d *boss.Def) { d.Color = dice.Green }))
	assert.NoError(t, e.OnHold(dice.Red, 0))
	err := e.OnHold(dice.Green, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "green dice cannot be held")
}

func TestScoreRules(t *testing.T) {
	cases := []struct {
		kind boss.Kind
		mod  func(d *boss.Def)
		want boss.ScoreRules
	}{
		{boss.Halved, func(d *boss.Def) { d.Multiplier = 0.5 }, boss.ScoreRules{BaseScale: 0.5, MonoScale: 1, RainbowScale: 1}},
		{boss.Colorblind, nil, boss.ScoreRules{BaseScale: 1}},
		{boss.Muted, func(d *boss.Def) { d.Multiplier = 0.5 }, boss.ScoreRules{BaseScale: 1, MonoScale: 1, RainbowScale: 0.5}},
		{boss.Ceiling, func(d *boss.Def) { d.Multiplier = 2 }, boss.ScoreRules{BaseScale: 1, MonoScale: 1, RainbowScale: 1, Ceiling: 2}},
		{boss.Dull, nil, boss.ScoreRules{BaseScale: 1, MonoScale: 1, RainbowScale: 1, SilenceSpecial: true}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, boss.Activate(def(tc.kind, tc.mod)).ScoreRules())
		})
	}
}

func TestBottleneck(t *testing.T) {
	assert.Equal(t, bag.RefillHalf, boss.Activate(def(boss.Bottleneck, nil)).RefillPolicy())
}

func TestPick_AvoidsExclude_Property(t *testing.T) {
	defs := []*boss.Def{def(boss.Dull, nil), def(boss.Slippery, nil), def(boss.Bottleneck, nil)}
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		ex := rapid.SampledFrom(defs).Draw(rt, "exclude")
		got := boss.Pick(defs, dice.NewSeededSource(seed), ex.ID)
		assert.NotEqual(rt, ex.ID, got.ID)
	})
	single := []*boss.Def{defs[0]}
	assert.Same(t, defs[0], boss.Pick(single, dice.NewSeededSource(1), defs[0].ID))
}
