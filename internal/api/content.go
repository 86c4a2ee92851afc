package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/model"
)

type beastInfo struct {
	Key          string      `json:"key"`
	Name         string      `json:"name"`
	Grade        int         `json:"grade"`
	Boss         bool        `json:"boss,omitempty"`
	Stats        model.Stats `json:"stats"`
	Attack       float64     `json:"attack"`
	Health       float64     `json:"health"`
	Defense      float64     `json:"defense"`
	Resists      []string    `json:"resists,omitempty"`
	Techniques   []string    `json:"techniques"`
	EscapeChance float64     `json:"escape_chance"`
	ExpYield     int         `json:"exp_yield"`
	Loot         []lootInfo  `json:"loot,omitempty"`
}

type lootInfo struct {
	Key      string  `json:"key"`
	Chance   float64 `json:"chance"`
	Amount   int     `json:"amount"`
	Currency bool    `json:"currency,omitempty"`
}

// ListBeasts returns every loaded beast template with its derived combat
// numbers, so clients can judge a hunt before starting one.
func (h *Handler) ListBeasts(c *gin.Context) {
	beasts := data.Beasts()

	out := make([]beastInfo, 0, len(beasts))
	for _, b := range beasts {
		info := beastInfo{
			Key:          b.Key,
			Name:         b.Name,
			Grade:        b.Grade,
			Boss:         b.Boss,
			Stats:        b.Stats,
			Attack:       b.Stats.Attacks(),
			Health:       b.Stats.HealthPoints(),
			Defense:      b.Stats.Defense(),
			Techniques:   b.SkillKeys,
			EscapeChance: b.EscapeChance,
			ExpYield:     b.ExpYield,
		}
		for _, e := range b.Resists.Elements() {
			info.Resists = append(info.Resists, e.String())
		}
		for _, d := range b.Loot {
			info.Loot = append(info.Loot, lootInfo{
				Key:      d.Key,
				Chance:   d.Chance,
				Amount:   d.Amount,
				Currency: d.Kind == data.LootCurrency,
			})
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, out)
}

type skillInfo struct {
	Key            string    `json:"key"`
	Name           string    `json:"name"`
	Grade          int       `json:"grade"`
	Type           string    `json:"type"`
	Ratio          float64   `json:"ratio"`
	Chance         float64   `json:"chance"`
	ProficiencyCap int       `json:"proficiency_cap,omitempty"`
	Elements       []string  `json:"elements,omitempty"`
	Weapon         string    `json:"weapon,omitempty"`
	Passive        bool      `json:"passive,omitempty"`
	Heal           *healInfo `json:"heal,omitempty"`
}

type healInfo struct {
	Pool     string  `json:"pool"`
	Amount   float64 `json:"amount"`
	Interval int     `json:"interval"`
}

// ListSkills returns every loaded technique template.
func (h *Handler) ListSkills(c *gin.Context) {
	keys := data.SkillKeys()

	out := make([]skillInfo, 0, len(keys))
	for _, key := range keys {
		sk := data.SkillByKey(key)
		if sk == nil {
			continue
		}

		info := skillInfo{
			Key:            sk.Key,
			Name:           sk.Name,
			Grade:          sk.Grade,
			Type:           sk.Type.String(),
			Ratio:          sk.Ratio,
			Chance:         sk.Chance,
			ProficiencyCap: sk.ProficiencyCap,
			Passive:        sk.Category == model.SkillPassive,
		}
		for _, e := range sk.Elements {
			info.Elements = append(info.Elements, e.String())
		}
		if sk.Weapon != model.WeaponNone {
			info.Weapon = sk.Weapon.String()
		}
		if sk.Heal != nil {
			info.Heal = &healInfo{
				Pool:     sk.Heal.Pool.String(),
				Amount:   sk.Heal.Amount,
				Interval: sk.Heal.Interval,
			}
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, out)
}
