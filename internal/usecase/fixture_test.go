package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testChampionshipID = "c1"
	testAdminID        = "admin"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockJobQueue struct {
	mock.Mock
}

func (m *mockJobQueue) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	args := m.Called(ctx, path, payload, delay, deduplicationID)
	return args.Error(0)
}

type testEnv struct {
	clock         *testClock
	championships *memory.ChampionshipRepository
	matches       *memory.MatchRepository
	predictions   *memory.PredictionRepository
	ledger        *memory.RewardLedger
	activity      *memory.ActivityRepository
	dispatches    *memory.JobDispatchRepository
	store         *cache.Store
	recorder      *metrics.Recorder
	queue         *mockJobQueue

	championshipSvc *ChampionshipService
	matchSvc        *MatchService
	predictionSvc   *PredictionService
	leaderboardSvc  *LeaderboardService
	rewardSvc       *RewardService
	outboxSvc       *EventOutboxService
}

// newTestEnv wires every service over memory repositories. The job queue accepts
// any event unless a test replaces its expectations.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	logger := logging.NewNop()
	env := &testEnv{
		clock:         clock,
		championships: memory.NewChampionshipRepository(),
		matches:       memory.NewMatchRepository(),
		ledger:        memory.NewRewardLedger(),
		activity:      memory.NewActivityRepository(),
		dispatches:    memory.NewJobDispatchRepository(),
		store:         cache.NewStore(time.Minute),
		recorder:      metrics.New(),
		queue:         &mockJobQueue{},
	}
	env.predictions = memory.NewPredictionRepository(env.matches)
	env.queue.On("Enqueue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	idGen := id.NewUUIDGenerator()
	env.outboxSvc = NewEventOutboxService(env.matches, env.queue, env.dispatches, EventOutboxConfig{}, logger)
	env.leaderboardSvc = NewLeaderboardService(env.championships, env.matches, env.predictions, scoring.NewScorer(nil), env.store, env.recorder, logger)
	env.championshipSvc = NewChampionshipService(env.championships, idGen, env.leaderboardSvc, logger)
	env.matchSvc = NewMatchService(env.championships, env.matches, idGen, env.leaderboardSvc, env.outboxSvc, env.recorder, logger)
	env.predictionSvc = NewPredictionService(env.championships, env.matches, env.predictions, env.recorder, logger)
	env.rewardSvc = NewRewardService(env.ledger, env.activity, env.predictions, env.leaderboardSvc, time.UTC, env.recorder, logger)

	env.outboxSvc.now = clock.Now
	env.championshipSvc.now = clock.Now
	env.matchSvc.now = clock.Now
	env.predictionSvc.now = clock.Now
	env.rewardSvc.now = clock.Now

	return env
}

// seedChampionship creates championship c1 owned by admin with the given members.
func (e *testEnv) seedChampionship(t *testing.T, members ...string) {
	t.Helper()
	ctx := context.Background()
	now := e.clock.Now()

	require.NoError(t, e.championships.Create(ctx, championship.Championship{
		ID:          testChampionshipID,
		Name:        "Spring Cup",
		InviteCode:  "SPRING26",
		OwnerUserID: testAdminID,
		CreatedAt:   now,
	}, championship.Member{UserID: testAdminID, Role: championship.RoleAdmin, JoinedAt: now}))

	for i, userID := range members {
		require.NoError(t, e.championships.AddMember(ctx, championship.Member{
			ChampionshipID: testChampionshipID,
			UserID:         userID,
			Role:           championship.RoleMember,
			JoinedAt:       now.Add(time.Duration(i+1) * time.Second),
		}))
	}
}

// createMatch schedules a Lions vs Tigers match with a winner question worth 2
// points and an exact score question worth 5.
func (e *testEnv) createMatch(t *testing.T, startsIn time.Duration) match.Match {
	t.Helper()

	view, err := e.matchSvc.Create(context.Background(), CreateMatchInput{
		UserID:         testAdminID,
		ChampionshipID: testChampionshipID,
		Player1:        "Lions",
		Player2:        "Tigers",
		StartTime:      e.clock.Now().Add(startsIn),
		Questions: []match.Question{
			{ID: "winner", Type: match.QuestionWinner, Label: "Who wins?", Points: 2, Options: []string{"Lions", "Tigers"}},
			{ID: "score", Type: match.QuestionExactScore, Label: "Final score", Points: 5},
		},
	})
	require.NoError(t, err)
	return view.Match
}

func (e *testEnv) submit(t *testing.T, userID, matchID string, answers match.Answers) {
	t.Helper()

	_, err := e.predictionSvc.Submit(context.Background(), SubmitPredictionInput{
		UserID:  userID,
		MatchID: matchID,
		Answers: answers,
	})
	require.NoError(t, err)
}

func (e *testEnv) recordResult(t *testing.T, matchID string, answers match.Answers) {
	t.Helper()

	_, err := e.matchSvc.RecordResult(context.Background(), RecordResultInput{
		UserID:  testAdminID,
		MatchID: matchID,
		Answers: answers,
	})
	require.NoError(t, err)
}
