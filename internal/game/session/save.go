package session

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebound/internal/game/bag"
	"github.com/cory-johannsen/dicebound/internal/game/boss"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/hand"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

// SaveVersion is the current save format version.
const SaveVersion = 1

// SaveState is the persisted form of a session.
type SaveState struct {
	Version int `json:"version"`
	Coins   int `json:"coins"`
	// Bag lists the ids of the dice in the draw pool.
	Bag            []string           `json:"bag"`
	FullBag        []*dice.Die        `json:"full_bag"`
	EquippedCharms []*charm.Charm     `json:"equipped_charms"`
	DisabledCharms []string           `json:"disabled_charms"`
	CurrentStake   int                `json:"current_stake"`
	CurrentBlind   Blind              `json:"current_blind"`
	RoundScore     int                `json:"round_score"`
	HandsLeft      int                `json:"hands_left"`
	RerollsLeft    int                `json:"rerolls_left"`
	DiscardsLeft   int                `json:"discards_left"`
	Hand           []string           `json:"hand"`
	Rolls          []int              `json:"rolls"`
	Held           []bool             `json:"held"`
	DiscardSel     []bool             `json:"discard_selected"`
	UpcomingBoss   string             `json:"upcoming_boss_effect"`
	CurrentBoss    string             `json:"current_boss_effect"`
	RainbowColor   dice.Color         `json:"boss_rainbow_color"`
	ShuffledFaces  bool               `json:"boss_shuffled_faces"`
	BossRerolls    int                `json:"boss_reroll_count"`
	ShopCharms     []string           `json:"shop_charms"`
	HandMults      map[string]float64 `json:"hand_multipliers"`
	RuneTray       [TraySize]string   `json:"rune_tray"`
	ScoreMult      float64            `json:"score_mult"`
	PouchType      string             `json:"pouch_type"`

	Phase           Phase       `json:"phase,omitempty"`
	RerollAllowance int         `json:"reroll_allowance"`
	DiscardsUsed    int         `json:"discards_used,omitempty"`
	LastHand        hand.Type   `json:"last_hand,omitempty"`
	Streak          int         `json:"streak,omitempty"`
	LastRune        string      `json:"last_rune,omitempty"`
	LastBoss        string      `json:"last_boss,omitempty"`
	ShopRerolls     int         `json:"shop_rerolls,omitempty"`
	ShopPacks       []shop.Pack `json:"shop_packs,omitempty"`
	LuckyTriggers   int         `json:"lucky_triggers,omitempty"`
	Acted           bool        `json:"acted,omitempty"`
}

// Snapshot captures the full session state.
//
// Postcondition: Restore(Snapshot()) reproduces an equivalent session.
func (s *GameSession) Snapshot() *SaveState {
	st := &SaveState{
		Version:         SaveVersion,
		Coins:           s.coins,
		Bag:             s.bag.PoolIDs(),
		DisabledCharms:  charm.DisabledIDs(s.charms),
		CurrentStake:    s.stake,
		CurrentBlind:    s.blind,
		RoundScore:      s.roundScore,
		HandsLeft:       s.handsLeft,
		RerollsLeft:     s.rerollsLeft,
		DiscardsLeft:    s.discardsLeft,
		Held:            s.Held(),
		DiscardSel:      s.DiscardSelected(),
		HandMults:       make(map[string]float64, len(s.handMultipliers)),
		ScoreMult:       s.scoreMult,
		PouchType:       s.pouch,
		Phase:           s.phase,
		RerollAllowance: s.rerollAllowance,
		DiscardsUsed:    s.discardsUsed,
		LastHand:        s.lastHand,
		Streak:          s.streak,
		LastBoss:        s.lastBoss,
		LuckyTriggers:   s.luckyTriggers,
		Acted:           s.acted,
	}
	for _, c := range s.charms {
		cp := *c
		st.EquippedCharms = append(st.EquippedCharms, &cp)
	}
	for _, d := range s.bag.Full() {
		st.FullBag = append(st.FullBag, d.Clone())
	}
	for _, sl := range s.slots {
		st.Hand = append(st.Hand, sl.Die.ID)
		st.Rolls = append(st.Rolls, sl.Value)
	}
	if s.upcomingBoss != nil {
		st.UpcomingBoss = s.upcomingBoss.ID
	}
	if s.currentBoss != nil {
		st.CurrentBoss = s.currentBoss.Def.ID
		st.RainbowColor = s.currentBoss.State.RainbowColor
		st.ShuffledFaces = s.currentBoss.State.ShuffledFaces
		st.BossRerolls = s.currentBoss.State.RerollCount
	}
	if s.shop != nil {
		st.ShopCharms = s.shop.OfferIDs()
		st.ShopRerolls = s.shop.Rerolls
		st.ShopPacks = append([]shop.Pack(nil), s.shop.Packs...)
	}
	for h, m := range s.handMultipliers {
		st.HandMults[string(h)] = m
	}
	for i, r := range s.tray {
		if r != nil {
			st.RuneTray[i] = r.ID
		}
	}
	if s.lastRune != nil {
		st.LastRune = s.lastRune.ID
	}
	return st
}

// Restore rebuilds a session from st.
//
// Postcondition: returns an error wrapping ErrCorruptSave when st is
// unusable.
func Restore(st *SaveState, deps Deps) (*GameSession, error) {
	if err := deps.Rules.Validate(); err != nil {
		return nil, err
	}
	if err := validateSave(st, deps); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSave, err)
	}
	c := deps.Content
	s := newSession(deps)
	s.coins = st.Coins
	s.stake = st.CurrentStake
	s.blind = st.CurrentBlind
	s.roundScore = st.RoundScore
	s.handsLeft = st.HandsLeft
	s.rerollsLeft = st.RerollsLeft
	s.discardsLeft = st.DiscardsLeft
	s.rerollAllowance = st.RerollAllowance
	s.discardsUsed = st.DiscardsUsed
	s.scoreMult = st.ScoreMult
	s.pouch = st.PouchType
	s.lastHand = st.LastHand
	s.streak = st.Streak
	s.lastBoss = st.LastBoss
	s.luckyTriggers = st.LuckyTriggers
	s.acted = st.Acted
	s.phase = st.Phase

	owned := make([]*dice.Die, len(st.FullBag))
	for i, d := range st.FullBag {
		owned[i] = d.Clone()
	}
	s.bag = bag.Restore(owned, st.Bag, st.Hand, s.src, s.logger)
	for i, id := range st.Hand {
		s.slots = append(s.slots, Slot{Die: s.bag.Find(id), Value: st.Rolls[i]})
	}
	s.held = append([]bool(nil), st.Held...)
	s.discardSel = append([]bool(nil), st.DiscardSel...)

	disabled := make(map[string]bool, len(st.DisabledCharms))
	for _, id := range st.DisabledCharms {
		disabled[id] = true
	}
	for _, ch := range st.EquippedCharms {
		cp := *ch
		cp.Def = c.Charms[ch.DefID]
		cp.Disabled = cp.Disabled || disabled[ch.InstanceID]
		s.charms = append(s.charms, &cp)
	}

	if st.UpcomingBoss != "" {
		s.upcomingBoss = c.Bosses[st.UpcomingBoss]
	}
	if st.CurrentBoss != "" {
		s.currentBoss = boss.Restore(c.Bosses[st.CurrentBoss], boss.State{
			RainbowColor:  st.RainbowColor,
			ShuffledFaces: st.ShuffledFaces,
			RerollCount:   st.BossRerolls,
		})
	}
	s.bag.SetRefillPolicy(s.currentBoss.RefillPolicy())

	if s.phase == PhaseShop {
		var offers []*charm.Def
		for _, id := range st.ShopCharms {
			offers = append(offers, c.Charms[id])
		}
		packs := st.ShopPacks
		if packs == nil {
			packs = []shop.Pack{
				{Kind: shop.RunePack, Price: deps.Rules.Shop.RunePrice},
				{Kind: shop.DicePack, Price: deps.Rules.Shop.DicePrice},
			}
		}
		s.shop = shop.Restore(offers, packs, st.ShopRerolls, deps.Rules.Shop)
	}
	for h, m := range st.HandMults {
		s.handMultipliers[hand.Type(h)] = m
	}
	for i, id := range st.RuneTray {
		if id != "" {
			s.tray[i] = c.Runes[id]
		}
	}
	if st.LastRune != "" {
		s.lastRune = c.Runes[st.LastRune]
	}
	return s, nil
}

// validateSave checks that st is internally consistent and that every id it
// references resolves in the catalogue. A missing phase is inferred in place.
func validateSave(st *SaveState, deps Deps) error {
	if st == nil {
		return fmt.Errorf("empty save")
	}
	if st.Version != SaveVersion {
		return fmt.Errorf("unsupported save version %d", st.Version)
	}
	c := deps.Content
	if st.Phase == "" {
		st.Phase = inferPhase(st)
	}

	var errs []string
	if st.CurrentStake < 1 {
		errs = append(errs, fmt.Sprintf("stake must be >= 1, got %d", st.CurrentStake))
	}
	if !st.CurrentBlind.Valid() {
		errs = append(errs, fmt.Sprintf("unknown blind %q", st.CurrentBlind))
	}
	switch st.Phase {
	case PhaseDiscard, PhaseRoll, PhaseShop, PhaseGameOver:
	default:
		errs = append(errs, fmt.Sprintf("unknown phase %q", st.Phase))
	}
	owned := make(map[string]bool, len(st.FullBag))
	for _, d := range st.FullBag {
		if d == nil {
			errs = append(errs, "null die in full_bag")
			continue
		}
		if err := d.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if owned[d.ID] {
			errs = append(errs, fmt.Sprintf("duplicate die %s", d.ID))
		}
		owned[d.ID] = true
	}
	for _, id := range st.Bag {
		if !owned[id] {
			errs = append(errs, fmt.Sprintf("bag die %s not owned", id))
		}
	}
	n := len(st.Hand)
	if len(st.Rolls) != n || len(st.Held) != n || len(st.DiscardSel) != n {
		errs = append(errs, "hand, rolls, held, and discard_selected lengths differ")
	}
	if n > deps.Rules.HandSize {
		errs = append(errs, fmt.Sprintf("hand holds %d dice, more than %d", n, deps.Rules.HandSize))
	}
	inHand := make(map[string]bool, n)
	for _, id := range st.Hand {
		if !owned[id] || inHand[id] {
			errs = append(errs, fmt.Sprintf("hand die %s not owned or repeated", id))
		}
		inHand[id] = true
	}
	for _, v := range st.Rolls {
		if v < 1 || v > 6 {
			errs = append(errs, fmt.Sprintf("roll %d outside [1,6]", v))
		}
	}
	if (st.Phase == PhaseDiscard || st.Phase == PhaseRoll) && n == 0 {
		errs = append(errs, "no hand in an active turn")
	}
	if len(st.EquippedCharms) > deps.Rules.MaxCharms {
		errs = append(errs, fmt.Sprintf("%d charms equipped, more than %d", len(st.EquippedCharms), deps.Rules.MaxCharms))
	}
	instances := make(map[string]bool, len(st.EquippedCharms))
	for _, ch := range st.EquippedCharms {
		if ch == nil || c.Charms[ch.DefID] == nil {
			errs = append(errs, "unknown equipped charm")
			continue
		}
		instances[ch.InstanceID] = true
	}
	for _, id := range st.DisabledCharms {
		if !instances[id] {
			errs = append(errs, fmt.Sprintf("disabled charm %s not equipped", id))
		}
	}
	for _, id := range []string{st.UpcomingBoss, st.CurrentBoss} {
		if id != "" && c.Bosses[id] == nil {
			errs = append(errs, fmt.Sprintf("unknown boss %q", id))
		}
	}
	if st.RainbowColor != "" && !st.RainbowColor.Valid() {
		errs = append(errs, fmt.Sprintf("unknown color %q", st.RainbowColor))
	}
	for _, id := range st.ShopCharms {
		if id != "" && c.Charms[id] == nil {
			errs = append(errs, fmt.Sprintf("unknown shop charm %q", id))
		}
	}
	for h := range st.HandMults {
		if !hand.Type(h).Valid() {
			errs = append(errs, fmt.Sprintf("unknown hand %q", h))
		}
	}
	for _, id := range append(st.RuneTray[:], st.LastRune) {
		if id != "" && c.Runes[id] == nil {
			errs = append(errs, fmt.Sprintf("unknown rune %q", id))
		}
	}
	if st.PouchType != "" && c.Pouches[st.PouchType] == nil {
		errs = append(errs, fmt.Sprintf("unknown pouch %q", st.PouchType))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func inferPhase(st *SaveState) Phase {
	if len(st.Hand) == 0 {
		return PhaseShop
	}
	return PhaseDiscard
}
