package model

// Stats are the three base attributes every combatant has. All combat-facing
// numbers derive from them through the fixed multipliers below.
type Stats struct {
	Strength float64 `yaml:"strength" json:"strength"`
	Physique float64 `yaml:"physique" json:"physique"`
	Agility  float64 `yaml:"agility" json:"agility"`
}

// Attacks is the derived attack power.
func (s Stats) Attacks() float64 { return s.Strength * 4 }

// HealthPoints is the derived vitality pool maximum.
func (s Stats) HealthPoints() float64 { return s.Physique * 3 }

// Defense is the derived damage mitigation.
func (s Stats) Defense() float64 { return s.Physique * 2 }

// Dodges is the derived evasion rating.
func (s Stats) Dodges() float64 { return s.Agility * 4 }

// HitPoints is the derived accuracy rating.
func (s Stats) HitPoints() float64 { return s.Agility * 8 }

// Add returns the element-wise sum of two stat blocks.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Strength: s.Strength + o.Strength,
		Physique: s.Physique + o.Physique,
		Agility:  s.Agility + o.Agility,
	}
}

// Scale returns the stat block multiplied by k.
func (s Stats) Scale(k float64) Stats {
	return Stats{
		Strength: s.Strength * k,
		Physique: s.Physique * k,
		Agility:  s.Agility * k,
	}
}
