package combat

import (
	"math/rand"

	"github.com/udisondev/qiankun/internal/model"
)

// triggerRoll draws the activation roll for one technique.
// Tests that override this must NOT use t.Parallel().
var triggerRoll = func() float64 { return rand.Float64() }

// chooseSkill picks the technique the fighter uses this action, or nil for
// an unskilled strike. Each technique in list order gets an independent
// activation roll; among those that trigger, the highest damage ratio wins
// and ties keep the earliest entry, so list order is part of a fighter's
// identity.
//
// Allies are filtered by weapon: an art that calls for a weapon the ally
// does not hold cannot trigger. Foes always satisfy their own arts. A
// mastered art (proficiency at its cap) doubles its chance, capped at 1;
// mastery is tracked for allies only.
func chooseSkill(f *model.Fighter) *model.Skill {
	var best *model.Skill

	for _, sk := range f.Skills() {
		if f.IsAlly() && sk.Weapon != model.WeaponNone && !f.Weapons().Has(sk.Weapon) {
			continue
		}

		chance := max(0, min(1, sk.Chance))
		if f.IsAlly() && sk.Mastered() {
			chance = min(1, chance*2)
		}

		if triggerRoll() > chance {
			continue
		}

		if best == nil || sk.Ratio > best.Ratio {
			best = sk
		}
	}

	return best
}
