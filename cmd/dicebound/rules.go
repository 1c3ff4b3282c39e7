package main

import (
	"github.com/cory-johannsen/dicebound/internal/config"
	"github.com/cory-johannsen/dicebound/internal/game/charm"
	"github.com/cory-johannsen/dicebound/internal/game/scoring"
	"github.com/cory-johannsen/dicebound/internal/game/session"
	"github.com/cory-johannsen/dicebound/internal/game/shop"
)

// rulesFromConfig maps the game section of the configuration onto session
// rules. Shop rarity weights keep their standard values.
//
// Postcondition: the result passes Rules.Validate whenever g passed config
// validation.
func rulesFromConfig(g config.GameConfig) session.Rules {
	shopRules := shop.DefaultRules()
	shopRules.Offers = g.ShopOffers
	shopRules.RerollCost = g.ShopRerollCost
	shopRules.RerollStep = g.ShopRerollStep
	shopRules.RunePrice = g.RunePackPrice
	shopRules.DicePrice = g.DicePackPrice

	return session.Rules{
		HandSize:      g.HandSize,
		MaxCharms:     g.MaxCharms,
		Hands:         g.Hands,
		Discards:      g.Discards,
		Rerolls:       g.Rerolls,
		StartingCoins: g.StartingCoins,
		StartingDice:  g.StartingDice,
		InterestStep:  g.InterestStep,
		InterestCap:   g.InterestCap,
		Targets: map[session.Blind]int{
			session.Small: g.Targets.Small,
			session.Big:   g.Targets.Big,
			session.Boss:  g.Targets.Boss,
		},
		Rewards: map[session.Blind]int{
			session.Small: g.Rewards.Small,
			session.Big:   g.Rewards.Big,
			session.Boss:  g.Rewards.Boss,
		},
		StakeStep:        g.StakeStep,
		SpecialDieChance: g.SpecialDieChance,
		Chances: scoring.Chances{
			Lucky:   g.LuckyChance,
			Fragile: g.FragileChance,
			Glass:   g.GlassChance,
		},
		Dagger:        charm.DaggerRules{PerCost: g.DaggerPerCost, Cap: g.DaggerCap},
		Shop:          shopRules,
		RainbowPolicy: session.RainbowPolicy(g.RainbowPolicy),
	}
}
