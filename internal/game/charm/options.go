package charm

import "github.com/cory-johannsen/dicebound/internal/game/hand"

// HandOptions returns the classification options granted by active charms.
func HandOptions(charms []*Charm) hand.Options {
	var opts hand.Options
	for _, c := range charms {
		if !c.Active() {
			continue
		}
		switch c.Def.Kind {
		case ShortStraight:
			opts.ShortStraights = true
		case WildFace:
			if opts.WildFace == 0 {
				opts.WildFace = c.Def.Face
			}
		}
	}
	return opts
}

// HasMime reports whether an active Mime charm is equipped.
func HasMime(charms []*Charm) bool {
	for _, c := range charms {
		if c.Active() && c.Def.Kind == Mime {
			return true
		}
	}
	return false
}

// GlassBreakChance returns the 1-in-N glass break chance, overridden by the
// first active GlassCutter charm.
func GlassBreakChance(charms []*Charm, def int) int {
	for _, c := range charms {
		if c.Active() && c.Def.Kind == GlassCutter {
			return c.Def.Chance
		}
	}
	return def
}

// Sum returns the total Amount of every active charm of kind k.
func Sum(charms []*Charm, k Kind) int {
	total := 0
	for _, c := range charms {
		if c.Active() && c.Def.Kind == k {
			total += c.Def.Amount
		}
	}
	return total
}
