package integration

import (
	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/game/encounter"
	"github.com/udisondev/qiankun/internal/testutil"
)

// TestHuntVictoryPersists runs a whole hunt against a real schema and
// checks that everything the battle changed survives a reload.
func (s *ArenaSuite) TestHuntVictoryPersists() {
	hero := testutil.MightyHero("zhao_lin")
	s.Require().NoError(s.heroes.CreateHero(s.ctx, hero))

	m := s.newManager()
	id, err := m.StartHunt(s.ctx, []string{"zhao_lin"}, []string{"mist_wolf"})
	s.Require().NoError(err)

	state := s.awaitFinished(m, id)
	s.Require().NotNil(state.Report)
	s.True(state.Report.Victory)
	s.Equal("group", state.Report.Mode)
	s.Require().Len(state.Rewards, 1)

	saved, err := s.heroes.HeroByName(s.ctx, "zhao_lin")
	s.Require().NoError(err)
	s.False(saved.InCombat)
	s.Equal("misty_gorge", saved.Location, "a victor stays where he hunted")
	s.GreaterOrEqual(saved.CombatExp, int64(7))
	s.LessOrEqual(saved.CombatExp, int64(14))
	s.GreaterOrEqual(saved.SkillProficiency("iron_bark_fist"), 30)

	// The paid rewards and the stored balances must agree.
	var stones int64
	items := 0
	for _, g := range state.Rewards[0].Obtained {
		if g.Currency {
			stones += int64(g.Amount)
		} else {
			items += g.Amount
		}
	}
	s.Equal(stones, saved.SpiritStones)
	s.Equal(items, saved.InventoryLoad())

	// The report is archived under the participant's name.
	archived, err := s.reports.RecentByHero(s.ctx, "zhao_lin", 10)
	s.Require().NoError(err)
	s.Require().Len(archived, 1)
	s.Equal(id, archived[0].SessionID)
	s.True(archived[0].Victory)
	s.Equal("group", archived[0].Mode)
	s.Require().NotNil(archived[0].Report)
	s.Equal(state.Report.Rounds, archived[0].Report.Rounds)
}

// TestPartyHuntPaysEveryMember checks a two-hero hunt pays both rows.
func (s *ArenaSuite) TestPartyHuntPaysEveryMember() {
	s.Require().NoError(s.heroes.CreateHero(s.ctx, testutil.MightyHero("zhao_lin")))
	s.Require().NoError(s.heroes.CreateHero(s.ctx, testutil.MightyHero("wei_long")))

	m := s.newManager()
	id, err := m.StartHunt(s.ctx, []string{"zhao_lin", "wei_long"}, []string{"mist_wolf"})
	s.Require().NoError(err)

	state := s.awaitFinished(m, id)
	s.Require().NotNil(state.Report)
	s.True(state.Report.Victory)
	s.Len(state.Rewards, 2)

	for _, name := range []string{"zhao_lin", "wei_long"} {
		saved, err := s.heroes.HeroByName(s.ctx, name)
		s.Require().NoError(err)
		s.False(saved.InCombat)
		s.GreaterOrEqual(saved.CombatExp, int64(7), "hero %s", name)
	}

	archived, err := s.reports.RecentByHero(s.ctx, "wei_long", 10)
	s.Require().NoError(err)
	s.Require().Len(archived, 1)
	s.ElementsMatch([]string{"zhao_lin", "wei_long"}, archived[0].Participants)
}

// TestDuelSurrenderPersists walks a duel to its prompt, surrenders, and
// checks the loser's drained pools and relocation reach the rows.
func (s *ArenaSuite) TestDuelSurrenderPersists() {
	s.Require().NoError(s.heroes.CreateHero(s.ctx, testutil.CorneredHero("mo_yan")))
	s.Require().NoError(s.heroes.CreateHero(s.ctx, testutil.FrailHero("guo_feng")))

	m := s.newManager()
	id, err := m.StartDuel(s.ctx, "mo_yan", "guo_feng")
	s.Require().NoError(err)

	state := s.awaitPrompt(m, id)
	s.Equal("mo_yan", state.Pending.FighterID)
	s.Equal("duel", state.Pending.Mode)
	s.Equal(0.5, state.Pending.EscapeChance)

	s.Require().NoError(m.SubmitDecision(id, "mo_yan", combat.DecisionSurrender))

	state = s.awaitFinished(m, id)
	s.Require().NotNil(state.Report)
	s.True(state.Report.Surrendered)
	s.False(state.Report.Victory)
	s.Empty(state.Rewards, "duels yield no loot")

	loser, err := s.heroes.HeroByName(s.ctx, "mo_yan")
	s.Require().NoError(err)
	s.Zero(loser.Health)
	s.Zero(loser.SoulHealth)
	s.True(loser.NeedsRecovery())
	s.Equal("qingyun_village", loser.Location, "a downed hero wakes at the last safe zone")
	s.False(loser.InCombat)

	winner, err := s.heroes.HeroByName(s.ctx, "guo_feng")
	s.Require().NoError(err)
	s.Equal(3.0, winner.Health, "the winner never took a hit")
	s.Equal("misty_gorge", winner.Location)
	s.False(winner.InCombat)

	archived, err := s.reports.RecentByHero(s.ctx, "mo_yan", 10)
	s.Require().NoError(err)
	s.Require().Len(archived, 1)
	s.Equal("duel", archived[0].Mode)
	s.True(archived[0].Surrendered)
}

// TestInCombatRowBlocksEntry checks the persisted combat flag gates entry
// even when this process holds no session for the hero.
func (s *ArenaSuite) TestInCombatRowBlocksEntry() {
	hero := testutil.MightyHero("wei_long")
	s.Require().NoError(s.heroes.CreateHero(s.ctx, hero))
	s.Require().NoError(s.heroes.SetInCombat(s.ctx, hero.ID, true))

	m := s.newManager()
	_, err := m.StartHunt(s.ctx, []string{"wei_long"}, []string{"mist_wolf"})
	s.Require().ErrorIs(err, encounter.ErrHeroInCombat)

	s.Require().NoError(s.heroes.SetInCombat(s.ctx, hero.ID, false))
	id, err := m.StartHunt(s.ctx, []string{"wei_long"}, []string{"mist_wolf"})
	s.Require().NoError(err)
	s.awaitFinished(m, id)
}
