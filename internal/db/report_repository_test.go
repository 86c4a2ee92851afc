package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/qiankun/internal/game/combat"
	"github.com/udisondev/qiankun/internal/model"
)

func sampleReport(sessionID string, victory bool) *combat.Report {
	return &combat.Report{
		SessionID: sessionID,
		Mode:      "group",
		Rounds:    3,
		Victory:   victory,
		Events: []combat.Event{
			{Round: 1, Kind: combat.EventRound},
			{Round: 1, Kind: combat.EventStrike, Actor: "Su Chen", Target: "Mist Wolf", Amount: 12.5, Pool: "health"},
			{Round: 3, Kind: combat.EventDown, Target: "Mist Wolf"},
		},
		Allies: []model.FighterView{{ID: "su_chen", Name: "Su Chen", Side: "ally", Health: 47.5, MaxHealth: 60}},
		Foes:   []model.FighterView{{ID: "mist_wolf#1", Name: "Mist Wolf", Side: "foe", MaxHealth: 15, Down: true}},
	}
}

func TestReportRepository_SaveAndLoadRoundtrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewReportRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.SaveReport(ctx, sampleReport("b-1", true), []string{"su_chen"}))

	recent, err := repo.RecentByHero(ctx, "su_chen", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	sr := recent[0]
	assert.Positive(t, sr.ID)
	assert.Equal(t, "b-1", sr.SessionID)
	assert.Equal(t, "group", sr.Mode)
	assert.Equal(t, 3, sr.Rounds)
	assert.True(t, sr.Victory)
	assert.False(t, sr.Escaped)
	assert.Equal(t, []string{"su_chen"}, sr.Participants)
	assert.False(t, sr.CreatedAt.IsZero())

	require.NotNil(t, sr.Report)
	require.Len(t, sr.Report.Events, 3)
	assert.Equal(t, combat.EventStrike, sr.Report.Events[1].Kind)
	assert.Equal(t, 12.5, sr.Report.Events[1].Amount)
	require.Len(t, sr.Report.Foes, 1)
	assert.True(t, sr.Report.Foes[0].Down)
}

func TestReportRepository_RecentFiltersByParticipant(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewReportRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.SaveReport(ctx, sampleReport("b-1", false), []string{"su_chen"}))
	require.NoError(t, repo.SaveReport(ctx, sampleReport("b-2", true), []string{"su_chen", "bai_lian"}))
	require.NoError(t, repo.SaveReport(ctx, sampleReport("b-3", true), []string{"bai_lian"}))

	recent, err := repo.RecentByHero(ctx, "su_chen", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b-2", recent[0].SessionID, "newest battle comes first")
	assert.Equal(t, "b-1", recent[1].SessionID)

	recent, err = repo.RecentByHero(ctx, "bai_lian", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "b-3", recent[0].SessionID)

	recent, err = repo.RecentByHero(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
