package model

import (
	"errors"
	"fmt"
)

// Side marks which team a fighter belongs to for the duration of a battle.
type Side int8

const (
	SideAlly Side = iota
	SideFoe
)

func (s Side) String() string {
	if s == SideAlly {
		return "ally"
	}
	return "foe"
}

// Pool names one of a fighter's two vitality pools.
type Pool int8

const (
	PoolHealth Pool = iota
	PoolSoul
)

func (p Pool) String() string {
	if p == PoolSoul {
		return "soul"
	}
	return "health"
}

var (
	ErrFighterID    = errors.New("fighter id is required")
	ErrFighterPools = errors.New("fighter pool maximums must be positive")
)

// FighterConfig carries everything needed to construct a Fighter.
// Health/SoulHealth of 0 mean "start full".
type FighterConfig struct {
	ID   string
	Name string
	Side Side

	Health        float64
	MaxHealth     float64
	SoulHealth    float64
	MaxSoulHealth float64

	Attack  float64
	Defense float64
	Agility float64

	Skills       []*Skill // list order is the tie-break order
	Resists      ElementSet
	Weapons      WeaponSet
	EscapeChance float64 // chance opponents can flee from this fighter
	Promptable   bool    // may trigger a human decision; forced false for foes
}

// Fighter is one combatant's mutable state for a single battle. A fighter is
// owned by exactly one battle session and is never shared between sessions,
// so it carries no locks; readers outside the session work from snapshots.
type Fighter struct {
	id   string
	name string
	side Side

	health        float64
	maxHealth     float64
	soulHealth    float64
	maxSoulHealth float64

	attack  float64
	defense float64
	agility float64

	skills       []*Skill
	heals        []HealEffect
	resists      ElementSet
	weapons      WeaponSet
	escapeChance float64
	promptable   bool
}

// NewFighter validates the config and builds a fighter. Active skills keep
// their list order; passive techniques are folded into the heal list and do
// not act in combat.
func NewFighter(cfg FighterConfig) (*Fighter, error) {
	if cfg.ID == "" {
		return nil, ErrFighterID
	}
	if cfg.MaxHealth < 1 || cfg.MaxSoulHealth < 1 {
		return nil, fmt.Errorf("%w: %s", ErrFighterPools, cfg.ID)
	}

	f := &Fighter{
		id:            cfg.ID,
		name:          cfg.Name,
		side:          cfg.Side,
		maxHealth:     cfg.MaxHealth,
		maxSoulHealth: cfg.MaxSoulHealth,
		attack:        cfg.Attack,
		defense:       cfg.Defense,
		agility:       cfg.Agility,
		resists:       cfg.Resists,
		weapons:       cfg.Weapons,
		escapeChance:  clampChance(cfg.EscapeChance),
		promptable:    cfg.Promptable && cfg.Side == SideAlly,
	}
	if f.name == "" {
		f.name = cfg.ID
	}

	f.health = startingPool(cfg.Health, cfg.MaxHealth)
	f.soulHealth = startingPool(cfg.SoulHealth, cfg.MaxSoulHealth)

	for _, sk := range cfg.Skills {
		if sk == nil {
			continue
		}
		if sk.Category == SkillPassive {
			if sk.Heal != nil {
				f.heals = append(f.heals, *sk.Heal)
			}
			continue
		}
		f.skills = append(f.skills, sk)
	}

	return f, nil
}

func startingPool(current, maximum float64) float64 {
	if current <= 0 {
		return maximum
	}
	return min(current, maximum)
}

func clampChance(c float64) float64 {
	return max(0, min(1, c))
}

// ID returns the fighter's stable identifier.
func (f *Fighter) ID() string { return f.id }

// Name returns the display name.
func (f *Fighter) Name() string { return f.name }

// Side returns the fighter's allegiance.
func (f *Fighter) Side() Side { return f.side }

// IsAlly reports whether the fighter is on the player side.
func (f *Fighter) IsAlly() bool { return f.side == SideAlly }

// Health returns the current health pool value.
func (f *Fighter) Health() float64 { return f.health }

// MaxHealth returns the health pool maximum.
func (f *Fighter) MaxHealth() float64 { return f.maxHealth }

// SoulHealth returns the current soul pool value.
func (f *Fighter) SoulHealth() float64 { return f.soulHealth }

// MaxSoulHealth returns the soul pool maximum.
func (f *Fighter) MaxSoulHealth() float64 { return f.maxSoulHealth }

// Attack returns the fighter's attack power.
func (f *Fighter) Attack() float64 { return f.attack }

// Defense returns the fighter's defense.
func (f *Fighter) Defense() float64 { return f.defense }

// Agility returns the fighter's agility, used only for turn ordering.
func (f *Fighter) Agility() float64 { return f.agility }

// Skills returns the fighter's active techniques in tie-break order.
// Callers must not reorder the slice.
func (f *Fighter) Skills() []*Skill { return f.skills }

// Heals returns the passive recovery effects gathered at construction.
func (f *Fighter) Heals() []HealEffect { return f.heals }

// Resists returns the elements this fighter is attuned against.
func (f *Fighter) Resists() ElementSet { return f.resists }

// Weapons returns the weapon archetypes the fighter can currently wield.
func (f *Fighter) Weapons() WeaponSet { return f.weapons }

// EscapeChance returns the probability that opponents can flee from this
// fighter. Zero means escape is impossible against it.
func (f *Fighter) EscapeChance() float64 { return f.escapeChance }

// CanPrompt reports whether this fighter may trigger a human decision.
func (f *Fighter) CanPrompt() bool { return f.promptable }

// Current returns the named pool's current value.
func (f *Fighter) Current(p Pool) float64 {
	if p == PoolSoul {
		return f.soulHealth
	}
	return f.health
}

// Max returns the named pool's maximum.
func (f *Fighter) Max(p Pool) float64 {
	if p == PoolSoul {
		return f.maxSoulHealth
	}
	return f.maxHealth
}

// IsDown reports whether either pool is exhausted.
func (f *Fighter) IsDown() bool {
	return f.health <= 0 || f.soulHealth <= 0
}

// ApplyDamage subtracts amount from the named pool, clamping at zero.
// This is the only way combat reduces vitality.
func (f *Fighter) ApplyDamage(p Pool, amount float64) {
	if p == PoolSoul {
		f.soulHealth = max(f.soulHealth-amount, 0)
		return
	}
	f.health = max(f.health-amount, 0)
}

// Restore adds amount to the named pool, clamping at the maximum.
// Returns how much was actually restored.
func (f *Fighter) Restore(p Pool, amount float64) float64 {
	current := f.Current(p)
	healed := max(0, min(f.Max(p), current+amount)-current)
	if healed <= 0 {
		return 0
	}
	if p == PoolSoul {
		f.soulHealth = current + healed
	} else {
		f.health = current + healed
	}
	return healed
}

// FighterView is an immutable snapshot of a fighter for reporting and for
// readers outside the owning session.
type FighterView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Side          string  `json:"side"`
	Health        float64 `json:"health"`
	MaxHealth     float64 `json:"max_health"`
	SoulHealth    float64 `json:"soul_health"`
	MaxSoulHealth float64 `json:"max_soul_health"`
	Down          bool    `json:"down"`
}

// View captures the fighter's current state.
func (f *Fighter) View() FighterView {
	return FighterView{
		ID:            f.id,
		Name:          f.name,
		Side:          f.side.String(),
		Health:        f.health,
		MaxHealth:     f.maxHealth,
		SoulHealth:    f.soulHealth,
		MaxSoulHealth: f.maxSoulHealth,
		Down:          f.IsDown(),
	}
}
