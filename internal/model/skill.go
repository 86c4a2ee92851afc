package model

import "strings"

// DamageType classifies what kind of harm a skill deals.
type DamageType int8

const (
	DamagePhysical DamageType = iota
	DamageQi
	DamageSoul
	DamageTrue
)

var damageTypeNames = [...]string{
	DamagePhysical: "physical",
	DamageQi:       "qi",
	DamageSoul:     "soul",
	DamageTrue:     "true",
}

func (d DamageType) String() string {
	if d < 0 || int(d) >= len(damageTypeNames) {
		return "physical"
	}
	return damageTypeNames[d]
}

// ParseDamageType resolves a damage type name, defaulting to physical.
func ParseDamageType(s string) DamageType {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range damageTypeNames {
		if n == name {
			return DamageType(i)
		}
	}
	return DamagePhysical
}

// SkillCategory separates techniques that act in combat from ones that
// only carry passive effects.
type SkillCategory int8

const (
	SkillActive SkillCategory = iota
	SkillPassive
)

// WeaponType is the closed set of weapon archetypes a technique may require.
// WeaponNone means the technique has no weapon requirement.
type WeaponType int8

const (
	WeaponNone WeaponType = iota
	WeaponBareHand
	WeaponSword
	WeaponSpear
	WeaponBow
	WeaponInstrument
	WeaponBrush
	WeaponWhip
	WeaponFan
	WeaponHammer
	WeaponTrident

	weaponCount
)

var weaponNames = [...]string{
	WeaponNone:       "",
	WeaponBareHand:   "bare-handed",
	WeaponSword:      "sword",
	WeaponSpear:      "spear",
	WeaponBow:        "bow",
	WeaponInstrument: "instrument",
	WeaponBrush:      "brush",
	WeaponWhip:       "whip",
	WeaponFan:        "fan",
	WeaponHammer:     "hammer",
	WeaponTrident:    "trident",
}

func (w WeaponType) String() string {
	if w <= WeaponNone || int(w) >= len(weaponNames) {
		return "unarmed"
	}
	return weaponNames[w]
}

// ParseWeaponType resolves a weapon name. Empty input means no requirement.
func ParseWeaponType(s string) (WeaponType, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return WeaponNone, true
	}
	for i, n := range weaponNames[1:] {
		if n == name {
			return WeaponType(i + 1), true
		}
	}
	return WeaponNone, false
}

// WeaponSet is the set of weapon archetypes a fighter can currently wield.
type WeaponSet uint16

// NewWeaponSet builds a set from the given weapon types. WeaponNone entries
// are ignored.
func NewWeaponSet(weapons ...WeaponType) WeaponSet {
	var s WeaponSet
	for _, w := range weapons {
		s = s.With(w)
	}
	return s
}

// With returns the set including w.
func (s WeaponSet) With(w WeaponType) WeaponSet {
	if w <= WeaponNone || w >= weaponCount {
		return s
	}
	return s | 1<<uint(w)
}

// Has reports whether w is in the set.
func (s WeaponSet) Has(w WeaponType) bool {
	if w <= WeaponNone || w >= weaponCount {
		return false
	}
	return s&(1<<uint(w)) != 0
}

// Empty reports whether the fighter wields nothing at all.
func (s WeaponSet) Empty() bool { return s == 0 }

// HealEffect is the between-rounds recovery carried by a passive technique.
// Interval is in rounds; the effect fires on rounds it divides evenly.
type HealEffect struct {
	Pool     Pool
	Amount   float64
	Interval int
}

// AppliesOnRound reports whether the effect fires on the given round.
func (h HealEffect) AppliesOnRound(round int) bool {
	return h.Interval > 0 && round > 0 && round%h.Interval == 0
}

// Skill is one fighter's instance of a technique. Instances are never shared
// between fighters: proficiency advances on the instance during a battle and
// is written back to the owner's record afterwards.
type Skill struct {
	Key            string
	Name           string
	Grade          int
	Type           DamageType
	Ratio          float64 // damage ratio against attack power
	Chance         float64 // trigger chance in [0,1]
	ProficiencyCap int     // 0 = uncapped
	Proficiency    int
	Elements       []Element
	Weapon         WeaponType // WeaponNone = usable with anything
	Category       SkillCategory
	Heal           *HealEffect // passive techniques only
}

// Mastered reports whether proficiency has reached the cap.
// Uncapped techniques are never mastered.
func (s *Skill) Mastered() bool {
	return s.ProficiencyCap > 0 && s.Proficiency >= s.ProficiencyCap
}

// Clone returns an independent copy of the skill for a new fighter.
func (s *Skill) Clone() *Skill {
	cp := *s
	cp.Elements = append([]Element(nil), s.Elements...)
	if s.Heal != nil {
		heal := *s.Heal
		cp.Heal = &heal
	}
	return &cp
}
