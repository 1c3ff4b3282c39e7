package charm

// DaggerRules bounds the Dagger sacrifice mechanic.
type DaggerRules struct {
	// PerCost is the score_mult gained per coin of the consumed charm's cost.
	PerCost float64
	// Cap is the ceiling of the persistent score_mult.
	Cap float64
}

// DaggerResult reports what a Dagger pass consumed.
type DaggerResult struct {
	Charms    []*Charm
	ScoreMult float64
	Consumed  []*Charm
}

// ResolveDaggers runs the Dagger mechanic once. Each active Dagger consumes at
// most the charm directly after it, adding cost x PerCost to scoreMult. A
// Dagger is skipped when scoreMult already sits at the cap or the gain would
// be zero; a skipped successor is left equipped.
//
// Postcondition: result.ScoreMult <= max(scoreMult, rules.Cap); the relative
// order of surviving charms is unchanged.
func ResolveDaggers(charms []*Charm, scoreMult float64, rules DaggerRules) DaggerResult {
	out := append([]*Charm(nil), charms...)
	res := DaggerResult{ScoreMult: scoreMult}
	for i := 0; i < len(out)-1; i++ {
		d := out[i]
		if !d.Active() || d.Def.Kind != Dagger {
			continue
		}
		if res.ScoreMult >= rules.Cap {
			continue
		}
		victim := out[i+1]
		gain := float64(victim.Def.Cost) * rules.PerCost
		if gain <= 0 {
			continue
		}
		res.ScoreMult += gain
		if res.ScoreMult > rules.Cap {
			res.ScoreMult = rules.Cap
		}
		res.Consumed = append(res.Consumed, victim)
		out = append(out[:i+1], out[i+2:]...)
	}
	res.Charms = out
	return res
}
