// Package render formats game state as console text.
package render

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicebound/internal/content"
	"github.com/cory-johannsen/dicebound/internal/frontend/command"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/dice"
	"github.com/cory-johannsen/dicebound/internal/game/scoring"
	"github.com/cory-johannsen/dicebound/internal/game/session"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

var dieColors = map[dice.Color]string{
	dice.Red:     Red,
	dice.Blue:    Blue,
	dice.Green:   Green,
	dice.Purple:  Magenta,
	dice.Yellow:  Yellow,
	dice.Gold:    BrightYellow,
	dice.Silver:  White,
	dice.Glass:   Cyan,
	dice.Rainbow: Bold + BrightWhite,
}

// Renderer turns session state into text. A zero Renderer writes plain text.
type Renderer struct {
	color bool
}

// New returns a Renderer; color enables ANSI styling.
func New(color bool) *Renderer {
	return &Renderer{color: color}
}

func (r *Renderer) paint(code, text string) string {
	if !r.color || code == "" {
		return text
	}
	return Colorize(code, text)
}

// Die renders one hand slot, e.g. "[red 5]" with enhancement tags appended.
func (r *Renderer) Die(sl session.Slot) string {
	label := fmt.Sprintf("%s %d", sl.Die.Color, sl.Value)
	if len(sl.Die.Enhancements) > 0 {
		tags := make([]string, len(sl.Die.Enhancements))
		for i, e := range sl.Die.Enhancements {
			tags[i] = string(e)
		}
		label += " +" + strings.Join(tags, "+")
	}
	return "[" + r.paint(dieColors[sl.Die.Color], label) + "]"
}

// Hand renders the numbered hand with hold and discard markers.
func (r *Renderer) Hand(s *session.GameSession) string {
	slots := s.Hand()
	if len(slots) == 0 {
		return "  (no dice in hand)\n"
	}
	held, sel := s.Held(), s.DiscardSelected()
	var b strings.Builder
	for i, sl := range slots {
		mark := ""
		switch {
		case held[i]:
			mark = r.paint(Bold, " HELD")
		case sel[i]:
			mark = r.paint(Dim, " discard")
		}
		fmt.Fprintf(&b, "  %d %s%s\n", i+1, r.Die(sl), mark)
	}
	return b.String()
}

// Charms renders the equipped charms in resolution order.
func (r *Renderer) Charms(s *session.GameSession) string {
	charms := s.Charms()
	var b strings.Builder
	fmt.Fprintf(&b, "Charms %d/%d\n", len(charms), s.MaxCharms())
	for i, c := range charms {
		fmt.Fprintf(&b, "  %d %s%s\n", i+1, r.charmName(c), r.charmExtra(c))
	}
	return b.String()
}

func (r *Renderer) charmName(c *charm.Charm) string {
	if c.Disabled {
		return r.paint(Dim, c.String())
	}
	return r.paint(Bold, c.String())
}

func (r *Renderer) charmExtra(c *charm.Charm) string {
	var parts []string
	if c.Bonus != 0 {
		parts = append(parts, fmt.Sprintf("+%d chips", c.Bonus))
	}
	if c.BonusMult != 0 {
		parts = append(parts, fmt.Sprintf("+%.1f mult", c.BonusMult))
	}
	if c.Def != nil && c.Def.Description != "" {
		parts = append(parts, c.Def.Description)
	}
	if len(parts) == 0 {
		return ""
	}
	return ": " + strings.Join(parts, ", ")
}

// Tray renders the rune tray.
func (r *Renderer) Tray(s *session.GameSession) string {
	var b strings.Builder
	b.WriteString("Runes")
	for i, def := range s.RuneTray() {
		if def == nil {
			fmt.Fprintf(&b, "  %d (empty)", i+1)
			continue
		}
		fmt.Fprintf(&b, "  %d %s", i+1, r.paint(Magenta, def.Name))
	}
	b.WriteString("\n")
	return b.String()
}

// Header renders the one-line round status.
func (r *Renderer) Header(s *session.GameSession) string {
	rerolls := fmt.Sprint(s.RerollsLeft())
	if s.RerollsLeft() < 0 {
		rerolls = "unlimited"
	}
	line := fmt.Sprintf("Stake %d | %s blind | score %d/%d | hands %d | discards %d | rerolls %s | coins %d",
		s.Stake(), s.Blind(), s.RoundScore(), s.Target(), s.HandsLeft(), s.DiscardsLeft(), rerolls, s.Coins())
	return r.paint(Bold, line) + "\n"
}

// Boss renders the active or upcoming boss, or "" when there is none.
func (r *Renderer) Boss(s *session.GameSession) string {
	if b := s.CurrentBoss(); b != nil {
		return fmt.Sprintf("Boss: %s: %s\n", r.paint(Red, b.Name()), b.Def.Description)
	}
	if up := s.UpcomingBoss(); up != nil {
		return fmt.Sprintf("Upcoming boss: %s: %s\n", up.Name, up.Description)
	}
	return ""
}

// Status renders everything the player needs for the current phase.
func (r *Renderer) Status(s *session.GameSession) string {
	var b strings.Builder
	b.WriteString(r.Header(s))
	b.WriteString(r.Boss(s))
	b.WriteString(r.Charms(s))
	b.WriteString(r.Tray(s))
	switch s.Phase() {
	case session.PhaseDiscard:
		b.WriteString("Discard phase: select dice and discard, or roll.\n")
		b.WriteString(r.Hand(s))
	case session.PhaseRoll:
		b.WriteString("Roll phase: hold dice, reroll, or score.\n")
		b.WriteString(r.Hand(s))
	case session.PhaseShop:
		if sum := s.Summary(); sum != nil {
			b.WriteString(r.Summary(sum))
		}
		b.WriteString(r.Shop(s))
	case session.PhaseGameOver:
		b.WriteString(r.paint(Red, "Game over.") + " Type new to start again.\n")
	}
	return b.String()
}

// Shop renders the current shop, or "" outside the shop.
func (r *Renderer) Shop(s *session.GameSession) string {
	sh := s.Shop()
	if sh == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Shop\n")
	for i, o := range sh.Offers {
		if o.Def == nil {
			fmt.Fprintf(&b, "  %d (sold)\n", i+1)
			continue
		}
		fmt.Fprintf(&b, "  %d %s [%s] %d coins: %s\n",
			i+1, r.paint(Bold, o.Def.Name), o.Def.Rarity, o.Def.Cost, o.Def.Description)
	}
	for i, p := range sh.Packs {
		fmt.Fprintf(&b, "  pack %d %s\n", i+1, r.pack(p))
	}
	fmt.Fprintf(&b, "  shop reroll: %d coins\n", sh.RerollCost())
	return b.String()
}

func (r *Renderer) pack(p shop.Pack) string {
	name := "Rune Pack"
	if p.Kind == shop.DicePack {
		name = "Dice Pack"
	}
	if p.Sold {
		return name + " (sold)"
	}
	return fmt.Sprintf("%s %d coins", name, p.Price)
}

// Summary renders a round payout.
func (r *Renderer) Summary(sum *session.RoundSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s blind cleared: %d/%d\n", sum.Blind, sum.Score, sum.Target)
	fmt.Fprintf(&b, "  reward   %d\n", sum.Reward)
	fmt.Fprintf(&b, "  hands    %d\n", sum.Hands)
	fmt.Fprintf(&b, "  discards %d\n", sum.Discards)
	fmt.Fprintf(&b, "  interest %d\n", sum.Interest)
	fmt.Fprintf(&b, "  total    %s\n", r.paint(BrightYellow, fmt.Sprintf("+%d coins", sum.Total)))
	return b.String()
}

// Result renders a score breakdown.
func (r *Renderer) Result(res scoring.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): base %d + chips %d, x%.2f = %s\n",
		res.Hand.Name(), res.Color, res.Base, res.Chips, 1+res.Modifier,
		r.paint(Bold, fmt.Sprint(res.Final)))
	if res.ColorMod != 0 {
		fmt.Fprintf(&b, "  color +%.2f\n", res.ColorMod)
	}
	if res.Glass != 0 {
		fmt.Fprintf(&b, "  glass +%.2f\n", res.Glass)
	}
	for _, l := range res.CharmLines {
		fmt.Fprintf(&b, "  %s:%s\n", l.Name, lineParts(l))
	}
	if res.Coins != 0 {
		fmt.Fprintf(&b, "  coins +%d\n", res.Coins)
	}
	return b.String()
}

func lineParts(l charm.Line) string {
	var out string
	if l.Chips != 0 {
		out += fmt.Sprintf(" +%d chips", l.Chips)
	}
	if l.Mult != 0 {
		out += fmt.Sprintf(" +%.2f mult", l.Mult)
	}
	if l.Coins != 0 {
		out += fmt.Sprintf(" +%d coins", l.Coins)
	}
	return out
}

// Report renders a committed hand and what it caused.
func (r *Renderer) Report(rep *session.Report) string {
	var b strings.Builder
	b.WriteString(r.Result(rep.Result))
	if n := rep.Committed.LuckyTriggers; n > 0 {
		fmt.Fprintf(&b, "  lucky x%d\n", n)
	}
	if n := len(rep.Committed.Broken); n > 0 {
		fmt.Fprintf(&b, "  %s\n", r.paint(Red, fmt.Sprintf("%d dice broke", n)))
	}
	switch {
	case rep.Cleared:
		b.WriteString(r.paint(Green, "Round cleared!") + "\n")
	case rep.GameOver:
		b.WriteString(r.paint(Red, "Out of hands.") + "\n")
	}
	return b.String()
}

// Pouches renders the pouch list.
func (r *Renderer) Pouches(pouches []*content.Pouch) string {
	var b strings.Builder
	b.WriteString("Pouches\n")
	for _, p := range pouches {
		fmt.Fprintf(&b, "  %s %s: %s\n", p.ID, r.paint(Bold, p.Name), p.Description)
	}
	return b.String()
}

// Help renders the command list by category, or one command's usage.
func (r *Renderer) Help(reg *command.Registry, topic string) string {
	var b strings.Builder
	if topic != "" {
		cmd, ok := reg.Resolve(topic)
		if !ok {
			return fmt.Sprintf("No command %q.\n", topic)
		}
		fmt.Fprintf(&b, "%s: %s\n", cmd.Usage, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "  aliases: %s\n", strings.Join(cmd.Aliases, ", "))
		}
		return b.String()
	}
	byCat := reg.CommandsByCategory()
	for _, cat := range command.Categories() {
		fmt.Fprintf(&b, "%s\n", r.paint(Bold, cat))
		for _, cmd := range byCat[cat] {
			fmt.Fprintf(&b, "  %-22s %s\n", cmd.Usage, cmd.Help)
		}
	}
	return b.String()
}
