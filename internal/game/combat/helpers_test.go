package combat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/qiankun/internal/model"
)

func newFighter(t *testing.T, cfg model.FighterConfig) *model.Fighter {
	t.Helper()
	f, err := model.NewFighter(cfg)
	require.NoError(t, err, "NewFighter(%s)", cfg.ID)
	return f
}

func newAlly(t *testing.T, id string, hp, atk, def, agi float64) *model.Fighter {
	t.Helper()
	return newFighter(t, model.FighterConfig{
		ID:            id,
		Side:          model.SideAlly,
		MaxHealth:     hp,
		MaxSoulHealth: hp,
		Attack:        atk,
		Defense:       def,
		Agility:       agi,
		Promptable:    true,
	})
}

func newFoe(t *testing.T, id string, hp, atk, def, agi float64) *model.Fighter {
	t.Helper()
	return newFighter(t, model.FighterConfig{
		ID:            id,
		Side:          model.SideFoe,
		MaxHealth:     hp,
		MaxSoulHealth: hp,
		Attack:        atk,
		Defense:       def,
		Agility:       agi,
	})
}

func testSkill(key string, ratio, chance float64) *model.Skill {
	return &model.Skill{
		Key:      key,
		Name:     key,
		Ratio:    ratio,
		Chance:   chance,
		Category: model.SkillActive,
	}
}

// Hook stubs. The hooks are package globals, so none of these tests may
// use t.Parallel().

func stubStrikeVariance(t *testing.T, v float64) {
	t.Helper()
	prev := strikeVariance
	strikeVariance = func() float64 { return v }
	t.Cleanup(func() { strikeVariance = prev })
}

func stubSkillVariance(t *testing.T, v float64) {
	t.Helper()
	prev := skillVariance
	skillVariance = func() float64 { return v }
	t.Cleanup(func() { skillVariance = prev })
}

func stubTriggerRoll(t *testing.T, v float64) {
	t.Helper()
	prev := triggerRoll
	triggerRoll = func() float64 { return v }
	t.Cleanup(func() { triggerRoll = prev })
}

func stubPickIndex(t *testing.T, fn func(n int) int) {
	t.Helper()
	prev := pickIndex
	pickIndex = fn
	t.Cleanup(func() { pickIndex = prev })
}

func stubEscapeRoll(t *testing.T, v float64) *int {
	t.Helper()
	prev := escapeRoll
	draws := new(int)
	escapeRoll = func() float64 {
		*draws++
		return v
	}
	t.Cleanup(func() { escapeRoll = prev })
	return draws
}

// scriptedProvider answers prompts from a fixed script and records every
// request. Once the script runs out it keeps fighting.
type scriptedProvider struct {
	script   []Decision
	requests []DecisionRequest
}

func (p *scriptedProvider) Request(_ context.Context, req DecisionRequest) (Decision, error) {
	p.requests = append(p.requests, req)
	if len(p.script) == 0 {
		return DecisionKeepFighting, nil
	}
	d := p.script[0]
	p.script = p.script[1:]
	return d, nil
}

// flatResolver returns a fixed ally skill roll.
func flatResolver(amount float64, pool model.Pool) SkillResolver {
	return func(_, _ *model.Fighter, _ *model.Skill) (float64, model.Pool) {
		return amount, pool
	}
}

func mustSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := NewSession(cfg)
	require.NoError(t, err)
	return s
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
