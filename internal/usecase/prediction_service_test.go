package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionService_SubmitLocksAtStartTime(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)

	env.clock.Set(m.StartTime.Add(-time.Nanosecond))
	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions"})

	env.clock.Set(m.StartTime)
	_, err := env.predictionSvc.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: m.ID, Answers: match.Answers{"winner": "Tigers"}})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked at start time, got %v", err)
	}

	env.clock.Advance(time.Minute)
	_, err = env.predictionSvc.Submit(t.Context(), SubmitPredictionInput{UserID: "alice", MatchID: m.ID, Answers: match.Answers{"winner": "Tigers"}})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked after start time, got %v", err)
	}

	got, err := env.predictionSvc.GetMine(t.Context(), "alice", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lions", got.Answers["winner"])
}

func TestPredictionService_SubmitReplacesPrevious(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)

	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions"})
	env.clock.Advance(10 * time.Minute)
	env.submit(t, "alice", m.ID, match.Answers{"winner": "Tigers", "score": "0-2"})

	got, err := env.predictionSvc.GetMine(t.Context(), "alice", m.ID)
	require.NoError(t, err)
	assert.Equal(t, match.Answers{"winner": "Tigers", "score": "0-2"}, got.Answers)
	assert.Equal(t, env.clock.Now(), got.SubmittedAt)

	all, err := env.predictions.ListByMatch(t.Context(), m.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPredictionService_SubmitRejects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)

	tests := []struct {
		name    string
		userID  string
		matchID string
		answers match.Answers
		want    error
	}{
		{name: "outsider", userID: "mallory", matchID: m.ID, answers: match.Answers{"winner": "Lions"}, want: ErrForbidden},
		{name: "unknown match", userID: "alice", matchID: "missing", answers: match.Answers{"winner": "Lions"}, want: ErrNotFound},
		{name: "empty answers", userID: "alice", matchID: m.ID, answers: match.Answers{}, want: ErrInvalidInput},
		{name: "unknown question", userID: "alice", matchID: m.ID, answers: match.Answers{"mvp": "Lions"}, want: ErrInvalidInput},
		{name: "malformed score", userID: "alice", matchID: m.ID, answers: match.Answers{"score": "two-one"}, want: ErrInvalidInput},
		{name: "missing match id", userID: "alice", matchID: " ", answers: match.Answers{"winner": "Lions"}, want: ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.predictionSvc.Submit(t.Context(), SubmitPredictionInput{UserID: tc.userID, MatchID: tc.matchID, Answers: tc.answers})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPredictionService_GetMineNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	m := env.createMatch(t, time.Hour)

	_, err := env.predictionSvc.GetMine(t.Context(), "alice", m.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_ListForMatchHidesAnswersWhileOpen(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice", "bob")
	m := env.createMatch(t, time.Hour)
	env.submit(t, "alice", m.ID, match.Answers{"winner": "Lions"})
	env.submit(t, "bob", m.ID, match.Answers{"winner": "Tigers"})

	views, err := env.predictionSvc.ListForMatch(t.Context(), "alice", m.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].UserID)
	assert.False(t, views[0].Hidden)
	assert.Equal(t, "Lions", views[0].Answers["winner"])
	assert.Equal(t, "bob", views[1].UserID)
	assert.True(t, views[1].Hidden)
	assert.Nil(t, views[1].Answers)

	env.clock.Set(m.StartTime)
	views, err = env.predictionSvc.ListForMatch(t.Context(), "alice", m.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.False(t, views[1].Hidden)
	assert.Equal(t, "Tigers", views[1].Answers["winner"])
}
