package progression

import "github.com/udisondev/qiankun/internal/model"

// GainProficiency advances a technique instance by amount, clamping at the
// cap. Uncapped techniques accumulate without bound. Non-positive amounts
// are ignored.
func GainProficiency(sk *model.Skill, amount int) {
	if amount <= 0 {
		return
	}
	if sk.Proficiency < 0 {
		sk.Proficiency = 0
	}
	next := sk.Proficiency + amount
	if sk.ProficiencyCap > 0 && next > sk.ProficiencyCap {
		next = sk.ProficiencyCap
	}
	sk.Proficiency = next
}
