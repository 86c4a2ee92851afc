// Package progression holds the rules that tie a hero's long-term growth
// into battle: how technique damage scales with proficiency, how
// proficiency and combat experience accrue, and nothing else. The combat
// engine consumes these rules through plain function values and stays
// ignorant of hero records.
package progression

import (
	"math"
	"math/rand"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/model"
)

// resistDampening is the damage fraction removed per full point of
// elemental resistance coverage.
const resistDampening = 0.25

// skillVariance draws the final damage multiplier in [0.8, 1.2).
// Tests that override this must NOT use t.Parallel().
var skillVariance = func() float64 { return 0.8 + rand.Float64()*0.4 }

// proficiencyBonusSteps converts raw proficiency into the 0..2 bonus steps
// of the damage formula. A step is earned per half cap; the divisor floors
// at 1 so uncapped techniques still step.
func proficiencyBonusSteps(proficiency, cap int) int {
	half := cap / 2
	if half < 1 {
		half = 1
	}
	steps := proficiency / half
	if steps > 2 {
		steps = 2
	}
	if steps < 0 {
		steps = 0
	}
	return steps
}

// baseDamage is the pre-variance damage of a technique: attack power times
// the damage ratio raised by proficiency steps.
func baseDamage(attack float64, sk *model.Skill) float64 {
	steps := proficiencyBonusSteps(sk.Proficiency, sk.ProficiencyCap)
	return attack * (sk.Ratio + 0.1*float64(steps))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// DamageBand is the displayed min and max a technique can roll for a given
// attack power, before any resistance. The band edges are the 0.8 and 1.2
// variance extremes, rounded half up.
func DamageBand(attack float64, sk *model.Skill) (int, int) {
	base := baseDamage(attack, sk)
	lo := int(roundHalfUp(max(0, base*0.8)))
	hi := int(roundHalfUp(max(0, base*1.2)))
	return lo, hi
}

// ResolveSkillDamage rolls a hero technique against a defender. The result
// is the rounded damage and the pool it strikes: soul techniques burn the
// soul pool, everything else hits health. The caller owns the floor of 1
// and the defender mitigation.
func ResolveSkillDamage(attacker, defender *model.Fighter, sk *model.Skill) (float64, model.Pool) {
	dmg := baseDamage(attacker.Attack(), sk)

	if len(sk.Elements) > 0 {
		fraction := data.ResistanceReduction(sk.Elements, defender.Resists())
		dmg *= max(0, 1-resistDampening*fraction)
	}

	rolled := roundHalfUp(max(0, dmg*skillVariance()))

	pool := model.PoolHealth
	if sk.Type == model.DamageSoul {
		pool = model.PoolSoul
	}
	return rolled, pool
}
