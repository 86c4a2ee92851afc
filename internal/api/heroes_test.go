package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/udisondev/qiankun/internal/db"
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/model"
)

func TestRegisterHero_CreatesRecordWithDefaults(t *testing.T) {
	heroes := newFakeHeroStore()
	router := NewHandler(heroes, &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodPost, "/api/heroes", "", RegisterRequest{Name: "Li_Wei"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Name  string `json:"name"`
		Path  string `json:"path"`
		Token string `json:"token"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "li_wei", resp.Name)
	assert.Equal(t, "qi", resp.Path)
	require.True(t, strings.HasPrefix(resp.Token, "li_wei:"))

	hero, err := heroes.HeroByName(context.Background(), "li_wei")
	require.NoError(t, err)
	assert.Equal(t, model.PathQi, hero.Path)
	assert.Equal(t, model.Stats{Strength: 10, Physique: 10, Agility: 10}, hero.Stats)
	assert.Equal(t, 30.0, hero.Health)
	assert.Equal(t, 30.0, hero.SoulHealth)
	assert.Equal(t, []model.WeaponType{model.WeaponBareHand}, hero.Weapons)
	assert.Equal(t, "qingyun_village", hero.Location)
	assert.Equal(t, "qingyun_village", hero.LastSafeZone)
	assert.Equal(t, 50, hero.Capacity)
	assert.False(t, hero.InCombat)

	require.Len(t, hero.Skills, 2)
	assert.Equal(t, "palm_of_still_water", hero.Skills[0].Key)
	assert.Equal(t, "flowing_qi_meridians", hero.Skills[1].Key)

	secret := strings.TrimPrefix(resp.Token, "li_wei:")
	assert.NoError(t, bcrypt.CompareHashAndPassword(hero.TokenHash, []byte(secret)))
}

func TestRegisterHero_BodyPathStarters(t *testing.T) {
	heroes := newFakeHeroStore()
	router := NewHandler(heroes, &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodPost, "/api/heroes", "", RegisterRequest{
		Name:     "shan_hu",
		Path:     "body",
		Strength: 8,
		Physique: 14,
		Agility:  8,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	hero, err := heroes.HeroByName(context.Background(), "shan_hu")
	require.NoError(t, err)
	assert.Equal(t, model.PathBody, hero.Path)
	assert.Equal(t, model.Stats{Strength: 8, Physique: 14, Agility: 8}, hero.Stats)
	assert.Equal(t, 42.0, hero.Health)
	require.Len(t, hero.Skills, 2)
	assert.Equal(t, "iron_bark_fist", hero.Skills[0].Key)
}

func TestRegisterHero_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		want string
	}{
		{
			name: "illegal characters",
			req:  RegisterRequest{Name: "Mo Yan!"},
			want: "name must be",
		},
		{
			name: "too short",
			req:  RegisterRequest{Name: "a"},
			want: "name must be",
		},
		{
			name: "unknown path",
			req:  RegisterRequest{Name: "li_wei", Path: "sword"},
			want: "unknown cultivation path",
		},
		{
			name: "negative stat",
			req:  RegisterRequest{Name: "li_wei", Strength: -1, Physique: 10, Agility: 10},
			want: "positive",
		},
		{
			name: "missing stat",
			req:  RegisterRequest{Name: "li_wei", Strength: 10, Physique: 10},
			want: "positive",
		},
		{
			name: "over budget",
			req:  RegisterRequest{Name: "li_wei", Strength: 20, Physique: 10, Agility: 1},
			want: "creation budget",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heroes := newFakeHeroStore()
			router := NewHandler(heroes, &fakeReports{}, &fakeSessions{}).Router()

			w := doJSON(t, router, http.MethodPost, "/api/heroes", "", tt.req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Empty(t, heroes.order, "nothing may be stored on a rejected registration")
		})
	}
}

func TestRegisterHero_DuplicateName(t *testing.T) {
	heroes := newFakeHeroStore(authedHero(t, "mo_yan", "s"))
	router := NewHandler(heroes, &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodPost, "/api/heroes", "", RegisterRequest{Name: "mo_yan"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already taken")
}

func TestGetHero_Sheet(t *testing.T) {
	hero := &model.Hero{
		Name:  "mo_yan",
		Path:  model.PathBody,
		Stats: model.Stats{Strength: 10, Physique: 20, Agility: 5},

		Health:     42,
		SoulHealth: 60,
		Skills: []model.HeroSkill{
			{Key: "iron_bark_fist", Proficiency: 30},
			{Key: "flowing_qi_meridians", Proficiency: 5},
		},
		Weapons:      []model.WeaponType{model.WeaponSword, model.WeaponBareHand},
		Location:     "misty_gorge",
		LastSafeZone: "qingyun_village",
		CombatExp:    120,
		SpiritStones: 35,
		Inventory:    map[string]int{"wolf_fang": 2},
		Capacity:     50,
	}
	router := NewHandler(newFakeHeroStore(hero), &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodGet, "/api/heroes/mo_yan", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sheet heroSheet
	decodeJSON(t, w, &sheet)

	assert.Equal(t, "mo_yan", sheet.Name)
	assert.Equal(t, "body", sheet.Path)
	assert.Equal(t, 40.0, sheet.Attack)
	assert.Equal(t, 40.0, sheet.Defense)
	assert.Equal(t, 42.0, sheet.Health)
	assert.Equal(t, 60.0, sheet.SoulHealth)
	assert.Equal(t, 60.0, sheet.MaxHealth)
	assert.Equal(t, []string{"sword", "bare-handed"}, sheet.Weapons)
	assert.Equal(t, int64(120), sheet.CombatExp)
	assert.Equal(t, int64(35), sheet.SpiritStones)
	assert.Equal(t, map[string]int{"wolf_fang": 2}, sheet.Inventory)
	assert.False(t, sheet.InCombat)
	assert.False(t, sheet.NeedsRecovery)

	require.Len(t, sheet.Techniques, 2)

	fist := sheet.Techniques[0]
	assert.Equal(t, "iron_bark_fist", fist.Key)
	assert.Equal(t, "Iron Bark Fist", fist.Name)
	assert.Equal(t, 2, fist.Grade)
	assert.Equal(t, 30, fist.Proficiency)
	assert.False(t, fist.Passive)
	assert.False(t, fist.Mastered)
	assert.Equal(t, 6, fist.MinDamage)
	assert.Equal(t, 10, fist.MaxDamage)

	meridians := sheet.Techniques[1]
	assert.Equal(t, "flowing_qi_meridians", meridians.Key)
	assert.True(t, meridians.Passive)
	assert.Zero(t, meridians.MinDamage)
}

func TestGetHero_NotFound(t *testing.T) {
	router := NewHandler(newFakeHeroStore(), &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodGet, "/api/heroes/nobody", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHeroes(t *testing.T) {
	first := authedHero(t, "mo_yan", "s")
	second := authedHero(t, "guo_feng", "s")
	second.InCombat = true
	router := NewHandler(newFakeHeroStore(first, second), &fakeReports{}, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodGet, "/api/heroes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roster []db.HeroSummary
	decodeJSON(t, w, &roster)
	require.Len(t, roster, 2)
	assert.Equal(t, "mo_yan", roster[0].Name)
	assert.Equal(t, "guo_feng", roster[1].Name)
	assert.True(t, roster[1].InCombat)
}

func TestHeroReports(t *testing.T) {
	reports := &fakeReports{byHero: map[string][]db.StoredReport{
		"mo_yan": {
			{
				ID:           2,
				SessionID:    "b-2",
				Mode:         "duel",
				Rounds:       3,
				Victory:      true,
				Participants: []string{"mo_yan", "guo_feng"},
				CreatedAt:    time.Now(),
				Report:       &combat.Report{SessionID: "b-2", Mode: "duel", Rounds: 3, Victory: true},
			},
		},
	}}
	router := NewHandler(newFakeHeroStore(), reports, &fakeSessions{}).Router()

	w := doJSON(t, router, http.MethodGet, "/api/heroes/mo_yan/reports", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mo_yan", reports.gotName)
	assert.Zero(t, reports.gotLimit, "no explicit limit leaves the page size to the store")

	var page []db.StoredReport
	decodeJSON(t, w, &page)
	require.Len(t, page, 1)
	assert.Equal(t, "b-2", page[0].SessionID)
	assert.True(t, page[0].Victory)
	require.NotNil(t, page[0].Report)
	assert.Equal(t, 3, page[0].Report.Rounds)

	w = doJSON(t, router, http.MethodGet, "/api/heroes/mo_yan/reports?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, reports.gotLimit)

	for _, bad := range []string{"0", "-3", "101", "many"} {
		w = doJSON(t, router, http.MethodGet, "/api/heroes/mo_yan/reports?limit="+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", bad)
	}
}
