package api

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/game/progression"
	"github.com/udisondev/qiankun/internal/model"
)

var heroNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

// statBudget caps the creation point spread across the three stats.
const statBudget = 30

// defaultSafeZone is where freshly registered heroes wake up.
const defaultSafeZone = "qingyun_village"

const defaultCapacity = 50

// starterSkills are the techniques every hero of a path begins with.
var starterSkills = map[model.CultivationPath][]string{
	model.PathBody: {"iron_bark_fist", "flowing_qi_meridians"},
	model.PathQi:   {"palm_of_still_water", "flowing_qi_meridians"},
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Strength float64 `json:"strength"`
	Physique float64 `json:"physique"`
	Agility  float64 `json:"agility"`
}

// RegisterHero creates a hero record and answers with the one-time API
// token. Stats left at zero fall back to an even 10/10/10 spread.
func (h *Handler) RegisterHero(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	if !heroNameRegex.MatchString(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 2-32 characters of a-z, 0-9 and _, starting with a letter"})
		return
	}

	pathName := strings.ToLower(strings.TrimSpace(req.Path))
	switch pathName {
	case "", "qi", "body":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown cultivation path"})
		return
	}
	path := model.ParseCultivationPath(pathName)

	stats := model.Stats{Strength: req.Strength, Physique: req.Physique, Agility: req.Agility}
	if stats == (model.Stats{}) {
		stats = model.Stats{Strength: 10, Physique: 10, Agility: 10}
	}
	if stats.Strength <= 0 || stats.Physique <= 0 || stats.Agility <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "every stat must be positive"})
		return
	}
	if stats.Strength+stats.Physique+stats.Agility > statBudget {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stat total exceeds the creation budget of 30"})
		return
	}

	token, hash, err := mintToken(name)
	if err != nil {
		h.fail(c, err)
		return
	}

	hero := &model.Hero{
		Name:         name,
		Path:         path,
		Stats:        stats,
		Weapons:      []model.WeaponType{model.WeaponBareHand},
		Location:     defaultSafeZone,
		LastSafeZone: defaultSafeZone,
		Inventory:    map[string]int{},
		Capacity:     defaultCapacity,
		TokenHash:    hash,
	}
	for _, key := range starterSkills[path] {
		hero.Skills = append(hero.Skills, model.HeroSkill{Key: key})
	}
	hero.RestoreFully()

	if err := h.heroes.CreateHero(c.Request.Context(), hero); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"name":  hero.Name,
		"path":  path.String(),
		"token": token,
	})
}

// ListHeroes returns the roster.
func (h *Handler) ListHeroes(c *gin.Context) {
	summaries, err := h.heroes.ListHeroes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetHero returns a hero's public sheet.
func (h *Handler) GetHero(c *gin.Context) {
	hero, err := h.heroes.HeroByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, buildHeroSheet(hero))
}

// HeroReports returns the hero's most recent battle reports, newest first.
// An optional ?limit=N narrows the page.
func (h *Handler) HeroReports(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	reports, err := h.reports.RecentByHero(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

type heroSheet struct {
	Name          string          `json:"name"`
	Path          string          `json:"path"`
	Stats         model.Stats     `json:"stats"`
	Attack        float64         `json:"attack"`
	Defense       float64         `json:"defense"`
	Health        float64         `json:"health"`
	SoulHealth    float64         `json:"soul_health"`
	MaxHealth     float64         `json:"max_health"`
	Techniques    []techniqueLine `json:"techniques"`
	Weapons       []string        `json:"weapons"`
	Location      string          `json:"location"`
	LastSafeZone  string          `json:"last_safe_zone"`
	CombatExp     int64           `json:"combat_exp"`
	SpiritStones  int64           `json:"spirit_stones"`
	Inventory     map[string]int  `json:"inventory"`
	Capacity      int             `json:"capacity"`
	InCombat      bool            `json:"in_combat"`
	NeedsRecovery bool            `json:"needs_recovery"`
	CreatedAt     time.Time       `json:"created_at"`
}

type techniqueLine struct {
	Key         string `json:"key"`
	Name        string `json:"name,omitempty"`
	Grade       int    `json:"grade,omitempty"`
	Proficiency int    `json:"proficiency"`
	Mastered    bool   `json:"mastered,omitempty"`
	Passive     bool   `json:"passive,omitempty"`
	MinDamage   int    `json:"min_damage,omitempty"`
	MaxDamage   int    `json:"max_damage,omitempty"`
}

// buildHeroSheet projects a hero record into its public form. Technique
// damage bands are computed against the hero's own attack power.
func buildHeroSheet(hero *model.Hero) heroSheet {
	sheet := heroSheet{
		Name:          hero.Name,
		Path:          hero.Path.String(),
		Stats:         hero.Stats,
		Attack:        hero.Stats.Attacks(),
		Defense:       hero.Stats.Defense(),
		Health:        hero.Health,
		SoulHealth:    hero.SoulHealth,
		MaxHealth:     hero.MaxHealth(),
		Location:      hero.Location,
		LastSafeZone:  hero.LastSafeZone,
		CombatExp:     hero.CombatExp,
		SpiritStones:  hero.SpiritStones,
		Inventory:     hero.Inventory,
		Capacity:      hero.Capacity,
		InCombat:      hero.InCombat,
		NeedsRecovery: hero.NeedsRecovery(),
		CreatedAt:     hero.CreatedAt,
	}

	for _, hs := range hero.Skills {
		line := techniqueLine{Key: hs.Key, Proficiency: hs.Proficiency}
		if tpl := data.SkillByKey(hs.Key); tpl != nil {
			line.Name = tpl.Name
			line.Grade = tpl.Grade
			line.Passive = tpl.Category == model.SkillPassive
			if !line.Passive {
				sk := tpl.Clone()
				sk.Proficiency = hs.Proficiency
				line.Mastered = sk.Mastered()
				line.MinDamage, line.MaxDamage = progression.DamageBand(sheet.Attack, sk)
			}
		}
		sheet.Techniques = append(sheet.Techniques, line)
	}

	for _, w := range hero.Weapons {
		sheet.Weapons = append(sheet.Weapons, w.String())
	}

	return sheet
}
