package combat

import (
	"fmt"

	"github.com/udisondev/qiankun/internal/model"
)

// EventKind tags one entry of the action log. Kinds are strings so logged
// battles stay readable when stored or served as JSON.
type EventKind string

const (
	EventRound    EventKind = "round"
	EventStrike   EventKind = "strike"
	EventDown     EventKind = "down"
	EventPrompt   EventKind = "prompt"
	EventDecision EventKind = "decision"
	EventHeal     EventKind = "heal"
)

// Event is one entry of a session's action log. Field use depends on Kind:
// strikes fill actor/target/amount/pool and skill when one triggered, heal
// fills actor/amount/pool, prompt and decision fill actor and the decision
// fields. Rendering is the caller's concern.
type Event struct {
	Round    int       `json:"round"`
	Kind     EventKind `json:"kind"`
	Actor    string    `json:"actor,omitempty"`
	Target   string    `json:"target,omitempty"`
	Skill    string    `json:"skill,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
	Pool     string    `json:"pool,omitempty"`
	Decision string    `json:"decision,omitempty"`
	Success  bool      `json:"success,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case EventRound:
		return fmt.Sprintf("round %d begins", e.Round)
	case EventStrike:
		if e.Skill != "" {
			return fmt.Sprintf("%s uses %s on %s for %.1f %s damage", e.Actor, e.Skill, e.Target, e.Amount, e.Pool)
		}
		return fmt.Sprintf("%s strikes %s for %.1f damage", e.Actor, e.Target, e.Amount)
	case EventDown:
		return fmt.Sprintf("%s goes down", e.Target)
	case EventHeal:
		return fmt.Sprintf("%s recovers %.1f %s", e.Actor, e.Amount, e.Pool)
	case EventPrompt:
		return fmt.Sprintf("%s is on the brink and must choose", e.Actor)
	case EventDecision:
		switch e.Decision {
		case DecisionSurrender.String():
			return fmt.Sprintf("%s surrenders", e.Actor)
		case DecisionEscape.String():
			if e.Success {
				return fmt.Sprintf("%s breaks away from the battle", e.Actor)
			}
			return fmt.Sprintf("%s fails to break away", e.Actor)
		default:
			return fmt.Sprintf("%s fights on", e.Actor)
		}
	}
	return string(e.Kind)
}

// Report is the terminal result of one session. The fighter views capture
// final pool values; those are the authoritative numbers handed back to
// persistence.
type Report struct {
	SessionID   string              `json:"session_id"`
	Mode        string              `json:"mode"`
	Rounds      int                 `json:"rounds"`
	Victory     bool                `json:"victory"`
	Escaped     bool                `json:"escaped"`
	Surrendered bool                `json:"surrendered"`
	Canceled    bool                `json:"canceled,omitempty"`
	Events      []Event             `json:"events"`
	Allies      []model.FighterView `json:"allies"`
	Foes        []model.FighterView `json:"foes"`
}

// SurvivingAllies returns the allies still standing at the end.
func (r *Report) SurvivingAllies() []model.FighterView {
	return filterViews(r.Allies, false)
}

// DefeatedAllies returns the allies that went down.
func (r *Report) DefeatedAllies() []model.FighterView {
	return filterViews(r.Allies, true)
}

// DefeatedFoes returns the foes that went down.
func (r *Report) DefeatedFoes() []model.FighterView {
	return filterViews(r.Foes, true)
}

func filterViews(views []model.FighterView, down bool) []model.FighterView {
	out := make([]model.FighterView, 0, len(views))
	for _, v := range views {
		if v.Down == down {
			out = append(out, v)
		}
	}
	return out
}
