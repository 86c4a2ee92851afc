package combat

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/udisondev/qiankun/internal/model"
)

// promptState tracks a fighter through the prompt lifecycle for one mode.
// Absence from the map means the fighter has never been prompted.
type promptState int8

const (
	promptAsked promptState = iota + 1
	promptResolved
)

// threatThreshold is the pool fraction at or below which a promptable ally
// triggers a decision point.
const threatThreshold = 0.10

// duelEscapeChance is the fixed escape probability in duel mode.
const duelEscapeChance = 0.5

// escapeRoll draws the escape attempt roll.
// Tests that override this must NOT use t.Parallel().
var escapeRoll = func() float64 { return rand.Float64() }

// checkDecisionPoint runs the decision machine for the fighter that just
// took damage. Returns true when the decision ends the session. Each
// fighter is prompted at most once per mode per session, no matter how
// often it crosses the threshold.
func (s *Session) checkDecisionPoint(ctx context.Context, f *model.Fighter) bool {
	if !f.CanPrompt() || f.IsDown() || !s.threatened(f) {
		return false
	}

	marks := s.promptMarks()
	if marks[f.ID()] != 0 {
		return false
	}
	marks[f.ID()] = promptAsked

	chance := duelEscapeChance
	if s.mode == ModeGroup {
		chance = s.groupEscapeChance()
	}

	s.record(Event{Round: s.round, Kind: EventPrompt, Actor: f.Name()})

	d := s.requestDecision(ctx, f, chance)
	if s.canceled {
		return false
	}

	terminated := s.applyDecision(f, d, chance)
	marks[f.ID()] = promptResolved
	return terminated
}

// threatened reports whether either pool sits in the critical band
// (above zero, at or below 10% of its maximum).
func (s *Session) threatened(f *model.Fighter) bool {
	h, sh := f.Health(), f.SoulHealth()
	return (h > 0 && h <= threatThreshold*f.MaxHealth()) ||
		(sh > 0 && sh <= threatThreshold*f.MaxSoulHealth())
}

func (s *Session) promptMarks() map[string]promptState {
	if s.mode == ModeDuel {
		return s.duelPrompted
	}
	return s.groupPrompted
}

// groupEscapeChance is the best escape odds the party can get: the highest
// escape likelihood among foes still standing. Zero means the encirclement
// is airtight and escape fails without a roll.
func (s *Session) groupEscapeChance() float64 {
	chance := 0.0
	for _, f := range s.foes {
		if !f.IsDown() && f.EscapeChance() > chance {
			chance = f.EscapeChance()
		}
	}
	return chance
}

// requestDecision asks the provider with a bounded wait. Timeouts, provider
// errors and out-of-range answers all resolve to "keep fighting"; session
// cancellation is flagged for the scheduler instead.
func (s *Session) requestDecision(ctx context.Context, f *model.Fighter, chance float64) Decision {
	reqCtx, cancel := context.WithTimeout(ctx, s.decisionTimeout)
	defer cancel()

	d, err := s.provider.Request(reqCtx, DecisionRequest{
		SessionID:    s.id,
		FighterID:    f.ID(),
		FighterName:  f.Name(),
		Mode:         s.mode,
		EscapeChance: chance,
	})
	if err != nil {
		if ctx.Err() != nil {
			s.canceled = true
			return DecisionKeepFighting
		}
		slog.Warn("decision request failed, fighting on",
			"session", s.id,
			"fighter", f.ID(),
			"err", err)
		return DecisionKeepFighting
	}
	if d < DecisionKeepFighting || d > DecisionEscape {
		slog.Warn("decision out of range, fighting on",
			"session", s.id,
			"fighter", f.ID(),
			"decision", int(d))
		return DecisionKeepFighting
	}
	return d
}

// applyDecision carries out the chosen answer. Returns true when the
// session ends here.
func (s *Session) applyDecision(f *model.Fighter, d Decision, chance float64) bool {
	switch d {
	case DecisionSurrender:
		// A duel costs only the surrendering fighter; a group surrender
		// lays down every ally's arms.
		if s.mode == ModeDuel {
			zeroPools(f)
		} else {
			for _, ally := range s.allies {
				zeroPools(ally)
			}
		}
		s.surrendered = true
		s.record(Event{Round: s.round, Kind: EventDecision, Actor: f.Name(), Decision: d.String()})
		return true

	case DecisionEscape:
		success := false
		if chance > 0 {
			success = escapeRoll() < chance
		}
		s.record(Event{
			Round:    s.round,
			Kind:     EventDecision,
			Actor:    f.Name(),
			Decision: d.String(),
			Success:  success,
		})
		if success {
			s.escaped = true
			return true
		}
		return false

	default:
		s.record(Event{Round: s.round, Kind: EventDecision, Actor: f.Name(), Decision: d.String()})
		return false
	}
}

// zeroPools empties both pools through the one sanctioned mutator.
func zeroPools(f *model.Fighter) {
	f.ApplyDamage(model.PoolHealth, f.Health())
	f.ApplyDamage(model.PoolSoul, f.SoulHealth())
}
