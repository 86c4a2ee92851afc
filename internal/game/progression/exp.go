package progression

import (
	"math/rand"

	"github.com/udisondev/qiankun/internal/model"
)

// expRoll draws a uniform int in [0, n).
// Tests that override this must NOT use t.Parallel().
var expRoll = func(n int) int { return rand.Intn(n) }

// CombatExp rolls the experience one defeated foe is worth: a uniform draw
// between half the yield and the full yield, inclusive.
func CombatExp(yield int) int {
	if yield <= 0 {
		return 0
	}
	lo := yield / 2
	return lo + expRoll(yield-lo+1)
}

// CreditCombatExp adds battle experience to a hero's record. Only body
// cultivators grow from fighting; for the other paths the gain evaporates.
func CreditCombatExp(h *model.Hero, gain int) {
	if gain <= 0 {
		return
	}
	if h.Path == model.PathBody {
		h.CombatExp += int64(gain)
	}
}
