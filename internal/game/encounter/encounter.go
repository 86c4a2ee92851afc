// Package encounter runs the battle lifecycle around the combat engine:
// it gates who may fight, builds fighters from hero records and beast
// templates, owns the live session registry, bridges decision prompts to
// the HTTP layer and settles results back into persistence. The engine
// itself stays free of heroes, stores and locks; everything stateful and
// concurrent lives here.
package encounter

import (
	"context"
	"errors"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/game/reward"
	"github.com/udisondev/qiankun/internal/model"
)

var (
	ErrHeroInCombat      = errors.New("encounter: hero is already fighting")
	ErrHeroNeedsRecovery = errors.New("encounter: hero must recover at a safe zone first")
	ErrUnknownBeast      = errors.New("encounter: unknown beast")
	ErrUnknownSkill      = errors.New("encounter: hero record references an unknown technique")
	ErrSelfDuel          = errors.New("encounter: a hero cannot duel themselves")
	ErrSessionNotFound   = errors.New("encounter: session not found")
	ErrNoPendingPrompt   = errors.New("encounter: session has no pending prompt")
	ErrPromptOwnership   = errors.New("encounter: the pending prompt belongs to another hero")
)

// HeroStore is the slice of persistence the encounter layer needs. The db
// package implements it; tests use in-memory fakes.
type HeroStore interface {
	// HeroByName loads a full hero record including learned techniques.
	HeroByName(ctx context.Context, name string) (*model.Hero, error)

	// SetInCombat flips the hero's combat flag.
	SetInCombat(ctx context.Context, heroID int64, inCombat bool) error

	// SaveBattleState writes everything a finished battle may have
	// changed: pools, location, combat flag, exp, currency, inventory
	// and technique proficiencies.
	SaveBattleState(ctx context.Context, h *model.Hero) error
}

// ReportStore persists terminal battle reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *combat.Report, participants []string) error
}

// participant pairs a hero record with the fighter built from it for one
// session, so results can be written back after the battle.
type participant struct {
	hero    *model.Hero
	fighter *model.Fighter
}

// foeRef pairs a spawned foe fighter with its beast template for reward
// settlement. Duel opponents carry no template and yield nothing.
type foeRef struct {
	fighterID string
	beast     *data.Beast
}

// HeroReward is one hero's share of a won battle, shown in the session
// state once the battle settles.
type HeroReward struct {
	Hero     string         `json:"hero"`
	Exp      int            `json:"exp"`
	Obtained []reward.Grant `json:"obtained,omitempty"`
	Skipped  []reward.Grant `json:"skipped,omitempty"`
}

// PendingPrompt is a decision waiting for a player's answer.
type PendingPrompt struct {
	FighterID    string  `json:"fighter_id"`
	FighterName  string  `json:"fighter_name"`
	Mode         string  `json:"mode"`
	EscapeChance float64 `json:"escape_chance"`
}

// State is a point-in-time snapshot of a session for the HTTP layer.
// Events is a copy; the caller may keep it. Fighter pool values appear in
// the report once the battle ends; before that the event log is the only
// window into the fight.
type State struct {
	ID       string         `json:"id"`
	Mode     string         `json:"mode"`
	Round    int            `json:"round"`
	Finished bool           `json:"finished"`
	Pending  *PendingPrompt `json:"pending,omitempty"`
	Events   []combat.Event `json:"events"`
	Report   *combat.Report `json:"report,omitempty"`
	Rewards  []HeroReward   `json:"rewards,omitempty"`
}
