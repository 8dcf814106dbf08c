package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardService_EndToEndExample(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice", "bob")
	m := env.createMatch(t, time.Hour)

	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions", "score": "2-1"})
	env.submit(t, "bob", m.ID, match.Answers{"winner": "Lions", "score": "1-1"})
	env.clock.Advance(3 * time.Hour)
	env.recordResult(t, m.ID, match.Answers{"winner": "Lions", "score": "2-1"})

	lines, err := env.leaderboardSvc.MatchScores(t.Context(), "bob", m.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "alice", lines[0].UserID)
	assert.Equal(t, 7, lines[0].PointsAwarded)
	assert.Equal(t, 2, lines[0].CorrectCount)
	assert.Equal(t, "bob", lines[1].UserID)
	assert.Equal(t, 2, lines[1].PointsAwarded)
	assert.Equal(t, 1, lines[1].CorrectCount)

	rows, err := env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)

	want := []scoring.LeaderboardRow{
		{UserID: "alice", TotalPoints: 7, TotalCorrect: 2, TotalPredictions: 1, Rank: 1},
		{UserID: "bob", TotalPoints: 2, TotalCorrect: 1, TotalPredictions: 1, Rank: 2},
		{UserID: testAdminID, TotalPoints: 0, TotalCorrect: 0, TotalPredictions: 0, Rank: 3},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("leaderboard mismatch (-want +got):\n%s", diff)
	}
}

func TestLeaderboardService_MatchScoresEmptyUntilFinished(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)
	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions"})
	env.clock.Advance(2 * time.Hour)

	lines, err := env.leaderboardSvc.MatchScores(t.Context(), "alice", m.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLeaderboardService_CachesAndInvalidates(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	first := env.createMatch(t, time.Hour)
	second := env.createMatch(t, 2*time.Hour)
	env.submit(t, "alice", first.ID, match.Answers{"winner": "Lions"})
	env.submit(t, "alice", second.ID, match.Answers{"winner": "Tigers"})

	rows, err := env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.Len())
	for _, row := range rows {
		assert.Zero(t, row.TotalPoints)
	}

	env.clock.Advance(3 * time.Hour)
	env.recordResult(t, first.ID, match.Answers{"winner": "Lions", "score": "1-0"})
	assert.Zero(t, env.store.Len())

	rows, err = env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, 2, rows[0].TotalPoints)

	// a cached copy must not leak caller mutations
	rows[0].TotalPoints = 999
	again, err := env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, 2, again[0].TotalPoints)

	env.recordResult(t, second.ID, match.Answers{"winner": "Tigers", "score": "0-1"})
	rows, err = env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, 4, rows[0].TotalPoints)
	assert.Equal(t, 2, rows[0].TotalPredictions)
}

func TestLeaderboardService_JoinAddsZeroRow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")

	rows, err := env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = env.championshipSvc.JoinByInvite(t.Context(), JoinChampionshipInput{UserID: "carol", InviteCode: "spring26"})
	require.NoError(t, err)

	rows, err = env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "carol", testChampionshipID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Zero(t, row.TotalPoints)
		assert.Equal(t, 1, row.Rank)
	}
}

func TestLeaderboardService_RequiresMembership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t)

	_, err := env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "mallory", testChampionshipID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	_, err = env.leaderboardSvc.ChampionshipLeaderboard(t.Context(), "mallory", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaderboardService_GlobalStatsAcrossChampionships(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)
	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions", "score": "2-1"})

	other, err := env.championshipSvc.Create(t.Context(), CreateChampionshipInput{UserID: "alice", Name: "Side Bets"})
	require.NoError(t, err)
	sideView, err := env.matchSvc.Create(t.Context(), CreateMatchInput{
		UserID:         "alice",
		ChampionshipID: other.ID,
		Player1:        "Bears",
		Player2:        "Wolves",
		StartTime:      env.clock.Now().Add(90 * time.Minute),
		Questions:      []match.Question{{ID: "winner", Type: match.QuestionWinner, Label: "Who wins?", Points: 3}},
	})
	require.NoError(t, err)
	env.submit(t, "alice", sideView.Match.ID, match.Answers{"winner": "Wolves"})

	env.clock.Advance(2 * time.Hour)
	env.recordResult(t, m.ID, match.Answers{"winner": "Lions", "score": "2-1"})
	_, err = env.matchSvc.RecordResult(t.Context(), RecordResultInput{UserID: "alice", MatchID: sideView.Match.ID, Answers: match.Answers{"winner": "Bears"}})
	require.NoError(t, err)

	stats, err := env.leaderboardSvc.GlobalStats(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", stats.UserID)
	assert.Equal(t, 7, stats.TotalPoints)
	assert.Equal(t, 2, stats.TotalCorrect)
	assert.Equal(t, 2, stats.TotalPredictions)
	assert.Equal(t, 2, stats.ChampionshipCount)
	require.Len(t, stats.Lines, 2)
	assert.Equal(t, m.ID, stats.Lines[0].MatchID)
	assert.True(t, stats.Lines[0].Perfect())
	assert.Equal(t, sideView.Match.ID, stats.Lines[1].MatchID)
}
