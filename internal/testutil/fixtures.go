package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/qiankun/internal/model"
)

// HashToken returns a bcrypt hash of the given API token secret, cheap
// enough for tests.
func HashToken(tb testing.TB, secret string) []byte {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hashing token secret: %v", err)
	}
	return hash
}

// MightyHero is a record whose attack power one-shots grade-2 beasts and
// whose defense floors incoming damage at 1, so battles against small
// game end on the first exchange.
func MightyHero(name string) *model.Hero {
	h := &model.Hero{
		Name:  name,
		Path:  model.PathBody,
		Stats: model.Stats{Strength: 25, Physique: 500, Agility: 100},
		Skills: []model.HeroSkill{
			{Key: "iron_bark_fist", Proficiency: 30},
			{Key: "flowing_qi_meridians"},
		},
		Weapons:      []model.WeaponType{model.WeaponBareHand},
		Location:     "misty_gorge",
		LastSafeZone: "qingyun_village",
		Inventory:    map[string]int{},
		Capacity:     50,
		TokenHash:    []byte("fixture-hash"),
	}
	h.RestoreFully()
	return h
}

// FrailHero is a record that hits for little and goes down fast.
func FrailHero(name string) *model.Hero {
	h := &model.Hero{
		Name:  name,
		Path:  model.PathQi,
		Stats: model.Stats{Strength: 4, Physique: 1, Agility: 10},
		Skills: []model.HeroSkill{
			{Key: "palm_of_still_water"},
		},
		Weapons:      []model.WeaponType{model.WeaponBareHand},
		Location:     "misty_gorge",
		LastSafeZone: "qingyun_village",
		Inventory:    map[string]int{},
		Capacity:     50,
		TokenHash:    []byte("fixture-hash"),
	}
	h.RestoreFully()
	return h
}

// CorneredHero enters battle already scraped down to five health out of a
// hundred and fifty, with armor that floors any hit to 1 and an attack too
// weak to finish anyone. Against a faster opponent it is guaranteed to be
// threatened, and therefore prompted, on the first round.
func CorneredHero(name string) *model.Hero {
	return &model.Hero{
		Name:  name,
		Path:  model.PathBody,
		Stats: model.Stats{Strength: 0.25, Physique: 50, Agility: 1},

		Health:     5,
		SoulHealth: 150,
		Skills: []model.HeroSkill{
			{Key: "iron_bark_fist"},
		},
		Weapons:      []model.WeaponType{model.WeaponBareHand},
		Location:     "misty_gorge",
		LastSafeZone: "qingyun_village",
		Inventory:    map[string]int{},
		Capacity:     50,
		TokenHash:    []byte("fixture-hash"),
	}
}
