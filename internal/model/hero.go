package model

import (
	"strings"
	"time"
)

// CultivationPath is the discipline a hero advances. Combat experience only
// accrues on the body path.
type CultivationPath int8

const (
	PathQi CultivationPath = iota
	PathBody
	PathSoul
)

var pathNames = [...]string{
	PathQi:   "qi",
	PathBody: "body",
	PathSoul: "soul",
}

func (p CultivationPath) String() string {
	if p < 0 || int(p) >= len(pathNames) {
		return "qi"
	}
	return pathNames[p]
}

// ParseCultivationPath resolves a path name, defaulting to qi.
func ParseCultivationPath(s string) CultivationPath {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range pathNames {
		if n == name {
			return CultivationPath(i)
		}
	}
	return PathQi
}

// HeroSkill is one learned technique on a hero's record.
type HeroSkill struct {
	Key         string `json:"key"`
	Proficiency int    `json:"proficiency"`
}

// Hero is a player's persistent record: the source fighters are built from
// before a battle and the sink results are written back to afterwards.
// It is a plain data row; the repository owns concurrency.
type Hero struct {
	ID   int64
	Name string
	Path CultivationPath

	Stats      Stats
	Health     float64 // current pools as of the last save
	SoulHealth float64

	Skills  []HeroSkill
	Weapons []WeaponType

	Location     string
	LastSafeZone string

	CombatExp    int64
	SpiritStones int64
	Inventory    map[string]int
	Capacity     int

	InCombat  bool
	TokenHash []byte
	CreatedAt time.Time
}

// SkillProficiency returns the recorded proficiency for a technique key,
// zero when the technique is not on the record.
func (h *Hero) SkillProficiency(key string) int {
	for _, s := range h.Skills {
		if s.Key == key {
			return s.Proficiency
		}
	}
	return 0
}

// SetSkillProficiency updates or appends a technique's proficiency.
func (h *Hero) SetSkillProficiency(key string, value int) {
	for i := range h.Skills {
		if h.Skills[i].Key == key {
			h.Skills[i].Proficiency = value
			return
		}
	}
	h.Skills = append(h.Skills, HeroSkill{Key: key, Proficiency: value})
}

// InventoryLoad is the total number of items the hero carries.
func (h *Hero) InventoryLoad() int {
	load := 0
	for _, amount := range h.Inventory {
		if amount > 0 {
			load += amount
		}
	}
	return load
}

// NeedsRecovery reports whether either pool is exhausted, which blocks the
// hero from entering combat until healed at a safe zone.
func (h *Hero) NeedsRecovery() bool {
	return h.Health <= 0 || h.SoulHealth <= 0
}

// MaxHealth is the derived health ceiling, never below 1. Maximums are not
// stored, so training retroactively raises the ceiling.
func (h *Hero) MaxHealth() float64 {
	return max(1, h.Stats.HealthPoints())
}

// MaxSoulHealth mirrors MaxHealth; both pools share the vitality ceiling.
func (h *Hero) MaxSoulHealth() float64 {
	return h.MaxHealth()
}

// ClampPools forces both pools into [0, max]. Applied after combat writes
// and after loading a record whose stats changed since it was saved.
func (h *Hero) ClampPools() {
	h.Health = max(0, min(h.Health, h.MaxHealth()))
	h.SoulHealth = max(0, min(h.SoulHealth, h.MaxSoulHealth()))
}

// RestoreFully fills both pools to their derived maximums.
func (h *Hero) RestoreFully() {
	h.Health = h.MaxHealth()
	h.SoulHealth = h.MaxSoulHealth()
}
