package encounter

import (
	"context"
	"log/slog"

	"github.com/udisondev/qiankun/internal/data"
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/game/progression"
	"github.com/udisondev/qiankun/internal/game/reward"
	"github.com/udisondev/qiankun/internal/model"
)

// settle writes a finished battle back into the world: final pools,
// technique proficiencies, safe-zone relocation for downed heroes, exp
// and loot on victory, the combat flag, and the report row. Persistence
// failures are logged and never surface; the battle result stands.
func (m *Manager) settle(ctx context.Context, ls *liveSession, report *combat.Report) []HeroReward {
	var rewards []HeroReward

	defeated := defeatedBeasts(ls.foes, report.Foes)

	for _, p := range ls.participants {
		h, f := p.hero, p.fighter

		h.Health = f.Health()
		h.SoulHealth = f.SoulHealth()
		h.ClampPools()
		h.InCombat = false

		for _, sk := range f.Skills() {
			h.SetSkillProficiency(sk.Key, sk.Proficiency)
		}

		if h.NeedsRecovery() && h.LastSafeZone != "" {
			h.Location = h.LastSafeZone
		}

		if r := rewardHero(p, report.Victory, defeated); r != nil {
			rewards = append(rewards, *r)
		}

		if err := m.heroes.SaveBattleState(ctx, h); err != nil {
			slog.Error("hero state save failed",
				"session", ls.id, "hero", h.Name, "err", err)
		}
	}

	if m.reports != nil {
		names := make([]string, 0, len(ls.participants))
		for _, p := range ls.participants {
			names = append(names, p.hero.Name)
		}
		if err := m.reports.SaveReport(ctx, report, names); err != nil {
			slog.Error("battle report save failed", "session", ls.id, "err", err)
		}
	}

	return rewards
}

// defeatedBeasts maps the downed foe views back to their beast templates.
// Duel opponents have none and are skipped.
func defeatedBeasts(foes []foeRef, views []model.FighterView) []*data.Beast {
	downed := make(map[string]bool, len(views))
	for _, v := range views {
		if v.Down {
			downed[v.ID] = true
		}
	}

	out := make([]*data.Beast, 0, len(foes))
	for _, ref := range foes {
		if ref.beast != nil && downed[ref.fighterID] {
			out = append(out, ref.beast)
		}
	}
	return out
}

// rewardHero rolls exp and loot for one participant. Only ally-side
// survivors of a victorious battle earn anything.
func rewardHero(p participant, victory bool, defeated []*data.Beast) *HeroReward {
	if !victory || !p.fighter.IsAlly() || p.fighter.IsDown() {
		return nil
	}

	r := HeroReward{Hero: p.hero.Name}
	for _, b := range defeated {
		r.Exp += progression.CombatExp(b.ExpYield)
		obtained, skipped := reward.Award(p.hero, b.Loot)
		r.Obtained = append(r.Obtained, obtained...)
		r.Skipped = append(r.Skipped, skipped...)
	}
	progression.CreditCombatExp(p.hero, r.Exp)

	if r.Exp == 0 && len(r.Obtained) == 0 && len(r.Skipped) == 0 {
		return nil
	}
	return &r
}
