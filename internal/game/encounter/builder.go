package encounter

import (
	"fmt"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/model"
)

// heroFighterConfig maps a hero record onto a fighter config. Technique
// instances are cloned from the content tables and seeded with the hero's
// proficiency, in record order, so the trigger tie-break follows the order
// techniques were learned.
func heroFighterConfig(h *model.Hero, side model.Side) (model.FighterConfig, error) {
	skills := make([]*model.Skill, 0, len(h.Skills))
	for _, hs := range h.Skills {
		tpl := data.SkillByKey(hs.Key)
		if tpl == nil {
			return model.FighterConfig{}, fmt.Errorf("%w: %s (hero %s)", ErrUnknownSkill, hs.Key, h.Name)
		}
		inst := tpl.Clone()
		inst.Proficiency = hs.Proficiency
		skills = append(skills, inst)
	}

	return model.FighterConfig{
		ID:            h.Name,
		Name:          h.Name,
		Side:          side,
		Health:        h.Health,
		MaxHealth:     h.MaxHealth(),
		SoulHealth:    h.SoulHealth,
		MaxSoulHealth: h.MaxSoulHealth(),
		Attack:        h.Stats.Attacks(),
		Defense:       h.Stats.Defense(),
		Agility:       h.Stats.Agility,
		Skills:        skills,
		Weapons:       model.NewWeaponSet(h.Weapons...),
		Promptable:    side == model.SideAlly,
	}, nil
}

// buildAllyFighter turns a hero record into a battle-ready ally.
func buildAllyFighter(h *model.Hero) (*model.Fighter, error) {
	cfg, err := heroFighterConfig(h, model.SideAlly)
	if err != nil {
		return nil, err
	}
	return model.NewFighter(cfg)
}

// buildDuelOpponent turns a hero record into the foe side of a duel. The
// opponent keeps its techniques and stats but never faces decisions; duel
// escape odds are fixed by the engine, so no escape likelihood is set.
func buildDuelOpponent(h *model.Hero) (*model.Fighter, error) {
	cfg, err := heroFighterConfig(h, model.SideFoe)
	if err != nil {
		return nil, err
	}
	return model.NewFighter(cfg)
}

// buildFoeFighter spawns one beast instance. The id carries an ordinal so
// the same beast can appear several times in one hunt.
func buildFoeFighter(b *data.Beast, ordinal int) (*model.Fighter, error) {
	skills := make([]*model.Skill, 0, len(b.SkillKeys))
	for _, key := range b.SkillKeys {
		tpl := data.SkillByKey(key)
		if tpl == nil {
			return nil, fmt.Errorf("%w: %s (beast %s)", ErrUnknownSkill, key, b.Key)
		}
		skills = append(skills, tpl.Clone())
	}

	return model.NewFighter(model.FighterConfig{
		ID:            fmt.Sprintf("%s#%d", b.Key, ordinal),
		Name:          b.Name,
		Side:          model.SideFoe,
		MaxHealth:     max(1, b.Stats.HealthPoints()),
		MaxSoulHealth: max(1, b.Stats.HealthPoints()),
		Attack:        b.Stats.Attacks(),
		Defense:       b.Stats.Defense(),
		Agility:       b.Stats.Agility,
		Skills:        skills,
		Resists:       b.Resists,
		Weapons:       b.Weapons,
		EscapeChance:  b.EscapeChance,
	})
}
