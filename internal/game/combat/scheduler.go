package combat

import (
	"cmp"
	"context"
	"math/rand"
	"slices"

	"github.com/udisondev/qiankun/internal/model"
)

// pickIndex draws a uniform target index in [0,n).
// Tests that override this must NOT use t.Parallel().
var pickIndex = func(n int) int { return rand.Intn(n) }

// runRound plays one round of actions. Returns true when a decision ended
// the session mid-round; natural wipes surface through the loop condition
// in Run. Cancellation sets s.canceled and stops before the next action.
func (s *Session) runRound(ctx context.Context) bool {
	for _, actor := range s.turnOrder() {
		if ctx.Err() != nil {
			s.canceled = true
			return false
		}
		if actor.IsDown() {
			continue
		}

		target := s.pickTarget(actor)
		if target == nil {
			continue
		}

		s.performAction(actor, target)

		if s.checkDecisionPoint(ctx, target) {
			return true
		}
		if s.canceled {
			return false
		}
	}
	return false
}

// turnOrder lists the fighters active at round start, allies before foes,
// stably sorted by descending agility. The stable sort keeps the
// ally-first, original-list order between equal agilities.
func (s *Session) turnOrder() []*model.Fighter {
	order := make([]*model.Fighter, 0, len(s.allies)+len(s.foes))
	for _, f := range s.allies {
		if !f.IsDown() {
			order = append(order, f)
		}
	}
	for _, f := range s.foes {
		if !f.IsDown() {
			order = append(order, f)
		}
	}

	slices.SortStableFunc(order, func(a, b *model.Fighter) int {
		return cmp.Compare(b.Agility(), a.Agility())
	})
	return order
}

// pickTarget draws a uniform living opponent, or nil when none remain.
func (s *Session) pickTarget(actor *model.Fighter) *model.Fighter {
	opponents := s.foes
	if !actor.IsAlly() {
		opponents = s.allies
	}

	living := make([]*model.Fighter, 0, len(opponents))
	for _, f := range opponents {
		if !f.IsDown() {
			living = append(living, f)
		}
	}
	if len(living) == 0 {
		return nil
	}
	return living[pickIndex(len(living))]
}

// performAction resolves one attack: pick a technique (or none), roll the
// matching strike, apply it and log the result.
func (s *Session) performAction(attacker, defender *model.Fighter) {
	sk := chooseSkill(attacker)

	var strike Strike
	switch {
	case sk == nil:
		strike = resolveBasicStrike(attacker, defender)
	case attacker.IsAlly():
		strike = resolveAllySkillStrike(attacker, defender, sk, s.resolveSkill)
	default:
		strike = resolveFoeSkillStrike(attacker, defender, sk, s.resistance)
	}

	defender.ApplyDamage(strike.Pool, strike.Amount)

	if sk != nil && attacker.IsAlly() && s.onSkillUse != nil {
		s.onSkillUse(attacker, sk)
	}

	ev := Event{
		Round:  s.round,
		Kind:   EventStrike,
		Actor:  attacker.Name(),
		Target: defender.Name(),
		Amount: strike.Amount,
		Pool:   strike.Pool.String(),
	}
	if sk != nil {
		ev.Skill = sk.Name
	}
	s.record(ev)

	if defender.IsDown() {
		s.record(Event{Round: s.round, Kind: EventDown, Target: defender.Name()})
	}
}
