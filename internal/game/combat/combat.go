// Package combat resolves one battle from setup to a terminal report: a
// round scheduler orders the fighters, damage resolvers and the skill
// trigger selector play out each action, and a decision machine suspends
// the loop when a threatened ally must choose to fight on, surrender or
// flee. A session owns its fighters outright and runs sequentially, so the
// package uses no locks; concurrency lives with the caller, one goroutine
// per session.
package combat

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Mode selects the battle's decision semantics: duels ask only the
// threatened fighter and use fixed escape odds, group battles apply
// surrender and escape to the whole party.
type Mode int8

const (
	ModeGroup Mode = iota
	ModeDuel
)

func (m Mode) String() string {
	if m == ModeDuel {
		return "duel"
	}
	return "group"
}

// ParseMode resolves a mode name. Returns false for unknown names.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group":
		return ModeGroup, true
	case "duel":
		return ModeDuel, true
	}
	return 0, false
}

// Decision is a threatened ally's answer to a prompt.
type Decision int8

const (
	DecisionKeepFighting Decision = iota
	DecisionSurrender
	DecisionEscape
)

var decisionNames = [...]string{
	DecisionKeepFighting: "keep_fighting",
	DecisionSurrender:    "surrender",
	DecisionEscape:       "escape",
}

func (d Decision) String() string {
	if d < 0 || int(d) >= len(decisionNames) {
		return "unknown"
	}
	return decisionNames[d]
}

// ParseDecision resolves a decision name. Returns false for unknown names.
func ParseDecision(s string) (Decision, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range decisionNames {
		if n == name {
			return Decision(i), true
		}
	}
	return 0, false
}

// DecisionRequest describes one prompt handed to the decision provider.
type DecisionRequest struct {
	SessionID    string
	FighterID    string
	FighterName  string
	Mode         Mode
	EscapeChance float64
}

// DecisionProvider is the human-interaction surface. Request blocks until
// a choice arrives or ctx expires; the engine bounds the wait itself and
// treats any error as "keep fighting".
type DecisionProvider interface {
	Request(ctx context.Context, req DecisionRequest) (Decision, error)
}

// DecisionProviderFunc adapts a function to the DecisionProvider interface.
type DecisionProviderFunc func(ctx context.Context, req DecisionRequest) (Decision, error)

// Request calls f.
func (f DecisionProviderFunc) Request(ctx context.Context, req DecisionRequest) (Decision, error) {
	return f(ctx, req)
}

// DefaultDecisionTimeout bounds the wait for a prompted choice when the
// session config does not set one. An expired wait resolves to
// DecisionKeepFighting.
const DefaultDecisionTimeout = 10 * time.Second

var (
	ErrNoAllies         = errors.New("combat: no allies")
	ErrNoFoes           = errors.New("combat: no foes")
	ErrDuelShape        = errors.New("combat: a duel takes exactly one fighter per side")
	ErrNilResolver      = errors.New("combat: ally carries skills but no skill resolver is set")
	ErrDuplicateFighter = errors.New("combat: duplicate fighter id")
)
