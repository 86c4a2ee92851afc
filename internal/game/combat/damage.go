package combat

import (
	"math/rand"

	"github.com/udisondev/qiankun/internal/model"
)

// Strike is one resolved hit: the damage amount and the pool it lands on.
// Amount is always at least 1 so every action moves the battle forward.
type Strike struct {
	Amount float64
	Pool   model.Pool
}

// SkillResolver rolls the damage of an ally's technique. The engine does
// not know the progression formulas behind ally arts; the caller supplies
// them through this hook. The returned amount is clamped to at least 1.
type SkillResolver func(attacker, defender *model.Fighter, skill *model.Skill) (float64, model.Pool)

// ResistFn reports the fraction in [0,1] of an attack's elemental tags
// that the defender's attunements blunt.
type ResistFn func(tags []model.Element, resists model.ElementSet) float64

// Mitigation factors: allies convert defense into damage reduction at a
// higher rate than foes.
const (
	allyMitigation = 0.2
	foeMitigation  = 0.1
)

// elementalDampening scales how strongly a full resistance match blunts an
// elemental strike: a fully matched attack still lands 75% of its damage.
const elementalDampening = 0.25

// Variance draws, swappable in tests for deterministic strikes.
// Tests that override these must NOT use t.Parallel().
var (
	strikeVariance = func() float64 { return 0.9 + rand.Float64()*0.2 }
	skillVariance  = func() float64 { return 0.85 + rand.Float64()*0.3 }
)

// resolveBasicStrike computes an unskilled hit:
// attack × U(0.9,1.1) minus the defender's mitigation, floored at 1,
// always against the health pool.
func resolveBasicStrike(attacker, defender *model.Fighter) Strike {
	raw := attacker.Attack() * strikeVariance()

	mitigation := defender.Defense() * foeMitigation
	if defender.IsAlly() {
		mitigation = defender.Defense() * allyMitigation
	}

	return Strike{Amount: max(1, raw-mitigation), Pool: model.PoolHealth}
}

// resolveFoeSkillStrike computes a foe technique hit:
// attack × ratio, blunted by the defender's elemental attunement when the
// technique carries tags, then × U(0.85,1.15). An ally defender subtracts
// mitigation after the roll. Both steps floor at 1; the hit always lands
// on the health pool.
func resolveFoeSkillStrike(attacker, defender *model.Fighter, sk *model.Skill, resist ResistFn) Strike {
	raw := attacker.Attack() * sk.Ratio

	if len(sk.Elements) > 0 && resist != nil {
		fraction := resist(sk.Elements, defender.Resists())
		raw *= max(0, 1-elementalDampening*fraction)
	}

	raw *= skillVariance()
	amount := max(1, raw)

	if defender.IsAlly() {
		amount = max(1, amount-defender.Defense()*allyMitigation)
	}

	return Strike{Amount: amount, Pool: model.PoolHealth}
}

// resolveAllySkillStrike delegates the roll to the injected resolver and
// clamps the result to at least 1. The resolver picks the target pool, so
// soul arts can burn soul health.
func resolveAllySkillStrike(attacker, defender *model.Fighter, sk *model.Skill, resolve SkillResolver) Strike {
	amount, pool := resolve(attacker, defender, sk)
	return Strike{Amount: max(1, amount), Pool: pool}
}
