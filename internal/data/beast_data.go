package data

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/qiankun/internal/model"
)

// LootKind says how an awarded drop is applied to the victor.
type LootKind int8

const (
	// LootItem goes into the inventory, limited by carrying capacity.
	LootItem LootKind = iota
	// LootCurrency credits the spirit stone balance directly.
	LootCurrency
)

// LootDrop is one entry of a beast's loot table. Chance is a fraction in
// [0,1] after loading; Amount is at least 1.
type LootDrop struct {
	Key    string
	Chance float64
	Amount int
	Kind   LootKind
}

// Beast is a loaded foe template. Attack, defense and pool sizes derive
// from Stats at fighter construction, not here.
type Beast struct {
	Key          string
	Name         string
	Grade        int
	Boss         bool
	Stats        model.Stats
	Resists      model.ElementSet
	SkillKeys    []string
	Weapons      model.WeaponSet
	EscapeChance float64
	ExpYield     int
	Loot         []LootDrop
}

// beastDef is the literal form a beast is declared in. Chance values in
// loot entries may be written as percentages; LoadBeasts normalizes them.
type beastDef struct {
	key    string
	name   string
	grade  int
	boss   bool
	escape float64 // 0 means the grade default

	strength float64
	physique float64
	agility  float64

	resists []string
	skills  []string
	exp     int
	loot    []lootDef
}

type lootDef struct {
	key    string
	chance float64
	amount int
	kind   string // "item" (default) or "currency"
}

var beastDefs = []beastDef{
	{
		key: "mist_wolf", name: "Mist Wolf", grade: 2,
		strength: 6, physique: 5, agility: 8,
		skills: []string{"savage_bite"},
		exp:    14,
		loot: []lootDef{
			{key: "wolf_fang", chance: 45, amount: 2},
			{key: "spirit_stones", chance: 30, amount: 3, kind: "currency"},
		},
	},
	{
		key: "thorn_boar", name: "Thorn Boar", grade: 2,
		strength: 8, physique: 8, agility: 4,
		resists: []string{"wood"},
		skills:  []string{"savage_bite"},
		exp:     16,
		loot: []lootDef{
			{key: "thorn_hide", chance: 50, amount: 1},
			{key: "boar_tusk", chance: 25, amount: 1},
		},
	},
	{
		key: "ridge_bandit", name: "Ridge Bandit", grade: 3,
		strength: 11, physique: 9, agility: 10,
		skills: []string{"azure_sword_art"},
		exp:    24,
		loot: []lootDef{
			{key: "worn_saber", chance: 20, amount: 1},
			{key: "spirit_stones", chance: 60, amount: 8, kind: "currency"},
		},
	},
	{
		key: "blood_ape", name: "Blood Ape", grade: 3,
		strength: 12, physique: 10, agility: 9,
		skills: []string{"savage_bite", "claw_flurry"},
		exp:    28,
		loot: []lootDef{
			{key: "ape_blood_sac", chance: 40, amount: 1},
			{key: "spirit_stones", chance: 35, amount: 6, kind: "currency"},
		},
	},
	{
		key: "azure_serpent", name: "Azure Serpent", grade: 4,
		strength: 14, physique: 12, agility: 16,
		resists: []string{"water", "venom"},
		skills:  []string{"savage_bite", "qi_horn_gore"},
		exp:     46,
		loot: []lootDef{
			{key: "serpent_scale", chance: 55, amount: 3},
			{key: "azure_core", chance: 15, amount: 1},
		},
	},
	{
		key: "ember_hawk", name: "Ember Hawk", grade: 4,
		strength: 13, physique: 10, agility: 20,
		resists: []string{"fire"},
		skills:  []string{"claw_flurry"},
		exp:     44,
		loot: []lootDef{
			{key: "ember_feather", chance: 60, amount: 2},
			{key: "spirit_stones", chance: 40, amount: 10, kind: "currency"},
		},
	},
	{
		key: "hollow_wraith", name: "Hollow Wraith", grade: 5,
		strength: 15, physique: 14, agility: 14,
		resists: []string{"shadow", "frost"},
		skills:  []string{"wraith_touch"},
		exp:     70,
		loot: []lootDef{
			{key: "wraith_essence", chance: 35, amount: 1},
			{key: "hollow_shard", chance: 50, amount: 2},
		},
	},
	{
		key: "stone_scale_drake", name: "Stone Scale Drake", grade: 6,
		strength: 24, physique: 22, agility: 12,
		resists: []string{"earth", "metal", "fire"},
		skills:  []string{"qi_horn_gore", "spirit_flame_breath"},
		exp:     110,
		loot: []lootDef{
			{key: "drake_scale", chance: 65, amount: 4},
			{key: "drake_marrow", chance: 20, amount: 1},
			{key: "spirit_stones", chance: 50, amount: 25, kind: "currency"},
		},
	},
	{
		key: "silver_moon_tiger", name: "Silver Moon Tiger", grade: 7, boss: true,
		strength: 34, physique: 28, agility: 30,
		resists: []string{"frost", "light"},
		skills:  []string{"claw_flurry", "frost_howl"},
		exp:     220,
		loot: []lootDef{
			{key: "moon_tiger_pelt", chance: 80, amount: 1},
			{key: "silver_beast_core", chance: 35, amount: 1},
			{key: "spirit_stones", chance: 100, amount: 60, kind: "currency"},
		},
	},
	{
		key: "abyssal_kun", name: "Abyssal Kun", grade: 9, boss: true,
		strength: 60, physique: 55, agility: 26,
		resists: []string{"water", "shadow", "frost", "venom"},
		skills:  []string{"abyss_maw", "wraith_touch"},
		exp:     600,
		loot: []lootDef{
			{key: "kun_leviathan_bone", chance: 90, amount: 2},
			{key: "abyssal_pearl", chance: 45, amount: 1},
			{key: "spirit_stones", chance: 100, amount: 200, kind: "currency"},
		},
	},
}

// Escape likelihood by rank when the literal does not set one.
const (
	beastEscapeDefault = 0.25
	bossEscapeDefault  = 0.10
)

// beastTable is the loaded registry, keyed by beast key.
var beastTable map[string]*Beast

// LoadBeasts resolves beastDefs into the registry. Skill keys are checked
// against the skill registry, so LoadSkills must have run first.
func LoadBeasts() error {
	if skillTable == nil {
		return fmt.Errorf("load skills before beasts")
	}

	table := make(map[string]*Beast, len(beastDefs))

	for i := range beastDefs {
		def := &beastDefs[i]
		if _, dup := table[def.key]; dup {
			return fmt.Errorf("duplicate beast key %q", def.key)
		}

		b, err := buildBeast(def)
		if err != nil {
			return fmt.Errorf("beast %q: %w", def.key, err)
		}
		table[def.key] = b
	}

	beastTable = table
	slog.Info("loaded beasts", "count", len(beastTable))
	return nil
}

func buildBeast(def *beastDef) (*Beast, error) {
	if def.physique < 1 {
		return nil, fmt.Errorf("physique %v leaves no health pool", def.physique)
	}
	if def.exp <= 0 {
		return nil, fmt.Errorf("exp yield must be positive")
	}

	resists := model.NewElementSet()
	for _, name := range def.resists {
		elem, ok := model.ParseElement(name)
		if !ok {
			return nil, fmt.Errorf("unknown element %q", name)
		}
		resists = resists.With(elem)
	}

	// A beast always wields whatever its arts call for; with no armed
	// arts it fights bare-handed.
	weapons := model.NewWeaponSet()
	for _, key := range def.skills {
		sk := SkillByKey(key)
		if sk == nil {
			return nil, fmt.Errorf("unknown skill key %q", key)
		}
		if sk.Weapon != model.WeaponNone {
			weapons = weapons.With(sk.Weapon)
		}
	}
	if weapons.Empty() {
		weapons = weapons.With(model.WeaponBareHand)
	}

	escape := def.escape
	if escape == 0 {
		escape = beastEscapeDefault
		if def.boss {
			escape = bossEscapeDefault
		}
	}

	loot := make([]LootDrop, 0, len(def.loot))
	for _, ld := range def.loot {
		drop, err := buildLoot(ld)
		if err != nil {
			return nil, fmt.Errorf("loot %q: %w", ld.key, err)
		}
		loot = append(loot, drop)
	}

	return &Beast{
		Key:          def.key,
		Name:         def.name,
		Grade:        def.grade,
		Boss:         def.boss,
		Stats:        model.Stats{Strength: def.strength, Physique: def.physique, Agility: def.agility},
		Resists:      resists,
		SkillKeys:    append([]string(nil), def.skills...),
		Weapons:      weapons,
		EscapeChance: escape,
		ExpYield:     def.exp,
		Loot:         loot,
	}, nil
}

func buildLoot(def lootDef) (LootDrop, error) {
	var kind LootKind
	switch def.kind {
	case "", "item":
		kind = LootItem
	case "currency":
		kind = LootCurrency
	default:
		return LootDrop{}, fmt.Errorf("unknown loot kind %q", def.kind)
	}

	// Literal chances read as percentages; anything already in [0,1]
	// passes through.
	chance := def.chance
	if chance > 1 {
		chance /= 100
	}
	chance = min(max(chance, 0), 1)

	return LootDrop{
		Key:    def.key,
		Chance: chance,
		Amount: max(def.amount, 1),
		Kind:   kind,
	}, nil
}

// BeastByKey returns the loaded template for a beast key, nil when the key
// is unknown or LoadBeasts has not run.
func BeastByKey(key string) *Beast {
	if beastTable == nil {
		return nil
	}
	return beastTable[key]
}

// Beasts returns all loaded beasts ordered by key.
func Beasts() []*Beast {
	keys := make([]string, 0, len(beastTable))
	for k := range beastTable {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*Beast, 0, len(keys))
	for _, k := range keys {
		out = append(out, beastTable[k])
	}
	return out
}
