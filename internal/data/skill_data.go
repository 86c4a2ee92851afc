package data

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/qiankun/internal/model"
)

// skillDef is the literal form a technique is declared in. Names are
// resolved against the model enums once, in LoadSkills.
type skillDef struct {
	key        string
	name       string
	grade      int
	damageType string
	elements   []string
	weapon     string
	category   string

	// passive techniques only
	healPool     string
	healAmount   float64
	healInterval int
}

// Grade ladders. Damage ratio climbs with grade while the trigger chance
// falls; the proficiency cap grows so higher arts take longer to master.
func gradeRatio(grade int) float64 {
	return float64(grade) * 0.10
}

func gradeChance(grade int) float64 {
	return 0.38 - 0.02*float64(grade)
}

func gradeProficiencyCap(grade int) int {
	return max(60, 120+grade*15)
}

var skillDefs = []skillDef{
	// Unarmed and weapon arts.
	{key: "iron_bark_fist", name: "Iron Bark Fist", grade: 2, damageType: "physical", elements: []string{"wood"}, weapon: "bare-handed"},
	{key: "palm_of_still_water", name: "Palm of Still Water", grade: 2, damageType: "qi", elements: []string{"water"}, weapon: "bare-handed"},
	{key: "azure_sword_art", name: "Azure Sword Art", grade: 3, damageType: "qi", elements: []string{"metal"}, weapon: "sword"},
	{key: "crescent_spear_dance", name: "Crescent Spear Dance", grade: 3, damageType: "physical", weapon: "spear"},
	{key: "nine_coil_whip", name: "Nine Coil Whip", grade: 3, damageType: "physical", weapon: "whip"},
	{key: "hundred_step_arrow", name: "Hundred Step Arrow", grade: 4, damageType: "qi", elements: []string{"wind"}, weapon: "bow"},
	{key: "ink_mountain_stroke", name: "Ink Mountain Stroke", grade: 4, damageType: "qi", elements: []string{"earth"}, weapon: "brush"},
	{key: "moonlit_fan_veil", name: "Moonlit Fan Veil", grade: 4, damageType: "qi", elements: []string{"frost"}, weapon: "fan"},
	{key: "venom_pearl_breath", name: "Venom Pearl Breath", grade: 4, damageType: "qi", elements: []string{"venom"}},
	{key: "thunder_roll_chord", name: "Thunder Roll Chord", grade: 5, damageType: "qi", elements: []string{"thunder", "sound"}, weapon: "instrument"},
	{key: "meteor_hammer_fall", name: "Meteor Hammer Fall", grade: 5, damageType: "physical", elements: []string{"fire"}, weapon: "hammer"},
	{key: "tide_rend_trident", name: "Tide Rend Trident", grade: 5, damageType: "physical", elements: []string{"water"}, weapon: "trident"},
	{key: "shadow_moth_step", name: "Shadow Moth Step", grade: 6, damageType: "soul", elements: []string{"shadow"}},
	{key: "soul_searing_chant", name: "Soul Searing Chant", grade: 7, damageType: "soul", elements: []string{"sound", "shadow"}, weapon: "instrument"},
	{key: "heaven_piercing_finger", name: "Heaven Piercing Finger", grade: 8, damageType: "true", weapon: "bare-handed"},

	// Beast arts. Beasts are never weapon-filtered, so these carry no
	// weapon requirement.
	{key: "savage_bite", name: "Savage Bite", grade: 2, damageType: "physical"},
	{key: "claw_flurry", name: "Claw Flurry", grade: 3, damageType: "physical"},
	{key: "qi_horn_gore", name: "Qi Horn Gore", grade: 4, damageType: "qi", elements: []string{"earth"}},
	{key: "frost_howl", name: "Frost Howl", grade: 5, damageType: "qi", elements: []string{"frost"}},
	{key: "spirit_flame_breath", name: "Spirit Flame Breath", grade: 6, damageType: "qi", elements: []string{"fire"}},
	{key: "wraith_touch", name: "Wraith Touch", grade: 6, damageType: "soul", elements: []string{"shadow"}},
	{key: "abyss_maw", name: "Abyss Maw", grade: 9, damageType: "physical", elements: []string{"water", "shadow"}},

	// Passive recovery techniques.
	{key: "flowing_qi_meridians", name: "Flowing Qi Meridians", grade: 2, category: "passive", healPool: "health", healAmount: 6, healInterval: 2},
	{key: "jade_bone_tempering", name: "Jade Bone Tempering", grade: 3, category: "passive", healPool: "health", healAmount: 10, healInterval: 3},
	{key: "still_soul_mantra", name: "Still Soul Mantra", grade: 4, category: "passive", healPool: "soul", healAmount: 8, healInterval: 2},
}

// skillTable is the loaded registry, keyed by technique key. Entries are
// shared templates: callers clone before attaching one to a fighter.
var skillTable map[string]*model.Skill

// LoadSkills resolves skillDefs into the registry. Called once at startup.
func LoadSkills() error {
	table := make(map[string]*model.Skill, len(skillDefs))

	for i := range skillDefs {
		def := &skillDefs[i]
		if _, dup := table[def.key]; dup {
			return fmt.Errorf("duplicate skill key %q", def.key)
		}

		sk, err := buildSkill(def)
		if err != nil {
			return fmt.Errorf("skill %q: %w", def.key, err)
		}
		table[def.key] = sk
	}

	skillTable = table
	slog.Info("loaded skills", "count", len(skillTable))
	return nil
}

func buildSkill(def *skillDef) (*model.Skill, error) {
	weapon, ok := model.ParseWeaponType(def.weapon)
	if !ok {
		return nil, fmt.Errorf("unknown weapon %q", def.weapon)
	}

	elements := make([]model.Element, 0, len(def.elements))
	for _, name := range def.elements {
		elem, ok := model.ParseElement(name)
		if !ok {
			return nil, fmt.Errorf("unknown element %q", name)
		}
		elements = append(elements, elem)
	}

	sk := &model.Skill{
		Key:            def.key,
		Name:           def.name,
		Grade:          def.grade,
		Type:           model.ParseDamageType(def.damageType),
		Ratio:          gradeRatio(def.grade),
		Chance:         gradeChance(def.grade),
		ProficiencyCap: gradeProficiencyCap(def.grade),
		Elements:       elements,
		Weapon:         weapon,
		Category:       model.SkillActive,
	}

	if def.category == "passive" {
		sk.Category = model.SkillPassive
		pool := model.PoolHealth
		if def.healPool == "soul" {
			pool = model.PoolSoul
		}
		if def.healAmount <= 0 || def.healInterval <= 0 {
			return nil, fmt.Errorf("passive technique needs a positive heal amount and interval")
		}
		sk.Heal = &model.HealEffect{Pool: pool, Amount: def.healAmount, Interval: def.healInterval}
	}

	return sk, nil
}

// SkillByKey returns the shared template for a technique key, nil when the
// key is unknown or LoadSkills has not run.
func SkillByKey(key string) *model.Skill {
	if skillTable == nil {
		return nil
	}
	return skillTable[key]
}

// SkillKeys returns all loaded technique keys in sorted order.
func SkillKeys() []string {
	keys := make([]string, 0, len(skillTable))
	for k := range skillTable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
