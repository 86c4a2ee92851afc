package data

import (
	"sort"
	"testing"

	"github.com/udisondev/qiankun/internal/model"
)

func loadAll(t *testing.T) {
	t.Helper()
	if err := LoadSkills(); err != nil {
		t.Fatalf("LoadSkills() failed: %v", err)
	}
	if err := LoadBeasts(); err != nil {
		t.Fatalf("LoadBeasts() failed: %v", err)
	}
}

// TestLoadBeasts_RequiresSkills tests the load ordering guard.
func TestLoadBeasts_RequiresSkills(t *testing.T) {
	skillTable = nil
	if err := LoadBeasts(); err == nil {
		t.Error("LoadBeasts() should fail before LoadSkills()")
	}
	loadAll(t)
}

// TestLoadBeasts_Count tests that every literal resolves into the registry.
func TestLoadBeasts_Count(t *testing.T) {
	loadAll(t)

	if len(beastTable) != len(beastDefs) {
		t.Errorf("beastTable entries: got %d, want %d", len(beastTable), len(beastDefs))
	}
}

// TestLoadBeasts_MistWolf tests a plain beast end to end.
func TestLoadBeasts_MistWolf(t *testing.T) {
	loadAll(t)

	b := BeastByKey("mist_wolf")
	if b == nil {
		t.Fatal("mist_wolf not found")
	}
	if b.Name != "Mist Wolf" || b.Grade != 2 || b.Boss {
		t.Errorf("unexpected header fields: %+v", b)
	}
	if b.Stats.Strength != 6 || b.Stats.Physique != 5 || b.Stats.Agility != 8 {
		t.Errorf("stats: got %+v", b.Stats)
	}
	if b.EscapeChance != beastEscapeDefault {
		t.Errorf("escape: got %v, want %v", b.EscapeChance, beastEscapeDefault)
	}
	if b.ExpYield != 14 {
		t.Errorf("exp yield: got %d, want 14", b.ExpYield)
	}
	if len(b.SkillKeys) != 1 || b.SkillKeys[0] != "savage_bite" {
		t.Errorf("skills: got %v", b.SkillKeys)
	}
}

// TestLoadBeasts_BossEscape tests the boss escape default.
func TestLoadBeasts_BossEscape(t *testing.T) {
	loadAll(t)

	for _, key := range []string{"silver_moon_tiger", "abyssal_kun"} {
		b := BeastByKey(key)
		if b == nil {
			t.Errorf("%s not found", key)
			continue
		}
		if !b.Boss {
			t.Errorf("%s should be a boss", key)
		}
		if b.EscapeChance != bossEscapeDefault {
			t.Errorf("%s escape: got %v, want %v", key, b.EscapeChance, bossEscapeDefault)
		}
	}
}

// TestLoadBeasts_Weapons tests weapon derivation from the beast's arts.
func TestLoadBeasts_Weapons(t *testing.T) {
	loadAll(t)

	// Weaponless arts leave the foe fighting bare-handed.
	wolf := BeastByKey("mist_wolf")
	if wolf == nil {
		t.Fatal("mist_wolf not found")
	}
	if !wolf.Weapons.Has(model.WeaponBareHand) {
		t.Error("mist_wolf should fight bare-handed")
	}
	if wolf.Weapons.Has(model.WeaponSword) {
		t.Error("mist_wolf should not carry a sword")
	}

	// An armed art puts its weapon in the foe's hands instead.
	bandit := BeastByKey("ridge_bandit")
	if bandit == nil {
		t.Fatal("ridge_bandit not found")
	}
	if !bandit.Weapons.Has(model.WeaponSword) {
		t.Error("ridge_bandit should carry a sword")
	}
	if bandit.Weapons.Has(model.WeaponBareHand) {
		t.Error("armed foe should not get the bare-hand fallback")
	}
}

// TestLoadBeasts_Resists tests element resolution.
func TestLoadBeasts_Resists(t *testing.T) {
	loadAll(t)

	serpent := BeastByKey("azure_serpent")
	if serpent == nil {
		t.Fatal("azure_serpent not found")
	}
	if !serpent.Resists.Has(model.ElementWater) || !serpent.Resists.Has(model.ElementVenom) {
		t.Errorf("resists: got %v", serpent.Resists)
	}
	if serpent.Resists.Has(model.ElementFire) {
		t.Error("azure_serpent should not resist fire")
	}
}

// TestLoadBeasts_Loot tests chance normalization and kind parsing.
func TestLoadBeasts_Loot(t *testing.T) {
	loadAll(t)

	wolf := BeastByKey("mist_wolf")
	if wolf == nil {
		t.Fatal("mist_wolf not found")
	}
	if len(wolf.Loot) != 2 {
		t.Fatalf("loot entries: got %d, want 2", len(wolf.Loot))
	}

	fang := wolf.Loot[0]
	if fang.Key != "wolf_fang" || fang.Kind != LootItem {
		t.Errorf("first drop: got %+v", fang)
	}
	if fang.Chance != 0.45 {
		t.Errorf("percent chance should normalize: got %v, want 0.45", fang.Chance)
	}
	if fang.Amount != 2 {
		t.Errorf("amount: got %d, want 2", fang.Amount)
	}

	stones := wolf.Loot[1]
	if stones.Kind != LootCurrency {
		t.Errorf("second drop kind: got %v, want currency", stones.Kind)
	}

	// A flat 100 reads as a guaranteed drop.
	tiger := BeastByKey("silver_moon_tiger")
	if tiger == nil {
		t.Fatal("silver_moon_tiger not found")
	}
	var guaranteed bool
	for _, d := range tiger.Loot {
		if d.Key == "spirit_stones" && d.Chance == 1.0 {
			guaranteed = true
		}
	}
	if !guaranteed {
		t.Error("silver_moon_tiger spirit stones should be a guaranteed drop")
	}
}

// TestLoadBeasts_SkillKeysResolve tests the cross-table validation.
func TestLoadBeasts_SkillKeysResolve(t *testing.T) {
	loadAll(t)

	for _, b := range Beasts() {
		for _, key := range b.SkillKeys {
			if SkillByKey(key) == nil {
				t.Errorf("%s references unknown skill %q", b.Key, key)
			}
		}
	}
}

// TestBeasts_Sorted tests listing order and lookup misses.
func TestBeasts_Sorted(t *testing.T) {
	loadAll(t)

	all := Beasts()
	if len(all) != len(beastDefs) {
		t.Errorf("Beasts(): got %d, want %d", len(all), len(beastDefs))
	}

	keys := make([]string, len(all))
	for i, b := range all {
		keys[i] = b.Key
	}
	if !sort.StringsAreSorted(keys) {
		t.Error("Beasts() should come back ordered by key")
	}

	if BeastByKey("no_such_beast") != nil {
		t.Error("unknown key should return nil")
	}
}
