package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/riskibarqy/prediction-league/internal/domain/activity"
	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/reward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 8, 1, 18, 0, 0, 0, time.UTC)

func testMatch(id string) match.Match {
	return match.Match{
		ID:             id,
		ChampionshipID: "c1",
		Player1:        "A",
		Player2:        "B",
		StartTime:      testStart,
		Status:         match.StatusScheduled,
		Questions:      []match.Question{{ID: "winner", Type: match.QuestionWinner, Label: "Winner", Points: 2}},
	}
}

func TestRewardLedger_ConcurrentClaimsGrantOnce(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ledger := NewRewardLedger()
	userID := gofakeit.UUID()

	const attempts = 64
	outcomes := make(chan reward.ClaimOutcome, attempts)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			<-start
			outcome, err := ledger.TryClaim(ctx, reward.ClaimRecord{
				UserID:    userID,
				RewardID:  reward.MissionFirstPrediction,
				PeriodKey: reward.OneTimePeriod,
				XPGranted: 50,
			})
			if err != nil {
				t.Errorf("TryClaim error: %v", err)
				return
			}
			outcomes <- outcome
		}()
	}
	close(start)
	wg.Wait()
	close(outcomes)

	granted := 0
	for outcome := range outcomes {
		if outcome == reward.OutcomeGranted {
			granted++
		}
	}
	assert.Equal(t, 1, granted)

	total, err := ledger.TotalXP(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 50, total)
}

func TestRewardLedger_PeriodsAreIndependent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	ledger := NewRewardLedger()
	userID := gofakeit.UUID()

	for _, period := range []string{"2026-08-01", "2026-08-02", "2026-08-01"} {
		_, err := ledger.TryClaim(ctx, reward.ClaimRecord{UserID: userID, RewardID: reward.MissionDailyLogin, PeriodKey: period, XPGranted: 10})
		require.NoError(t, err)
	}

	claims, err := ledger.ListClaimsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, claims, 2)

	has, err := ledger.HasClaim(ctx, userID, reward.MissionDailyLogin, "2026-08-02")
	require.NoError(t, err)
	assert.True(t, has)

	total, err := ledger.TotalXP(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestPredictionRepository_RejectsAfterLockOrResult(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	matches := NewMatchRepository()
	preds := NewPredictionRepository(matches)
	require.NoError(t, matches.Create(ctx, testMatch("m1")))

	p := prediction.Prediction{UserID: "u1", MatchID: "m1", Answers: match.Answers{"winner": "A"}}
	require.NoError(t, preds.UpsertIfOpen(ctx, p, testStart.Add(-time.Minute)))

	p.Answers = match.Answers{"winner": "B"}
	require.NoError(t, preds.UpsertIfOpen(ctx, p, testStart.Add(-time.Second)))
	got, ok, err := preds.Get(ctx, "u1", "m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B", got.Answers["winner"])

	err = preds.UpsertIfOpen(ctx, p, testStart)
	assert.True(t, errors.Is(err, match.ErrNotOpen), "got %v", err)

	require.NoError(t, matches.RecordResult(ctx, match.Result{MatchID: "m1", Answers: match.Answers{"winner": "A"}}))
	err = preds.UpsertIfOpen(ctx, p, testStart.Add(-time.Hour))
	assert.True(t, errors.Is(err, match.ErrNotOpen), "result must lock predictions, got %v", err)

	err = matches.RecordResult(ctx, match.Result{MatchID: "m1", Answers: match.Answers{"winner": "B"}})
	assert.True(t, errors.Is(err, match.ErrAlreadyFinished), "got %v", err)

	err = preds.UpsertIfOpen(ctx, prediction.Prediction{UserID: "u1", MatchID: "missing"}, testStart)
	assert.True(t, errors.Is(err, match.ErrMatchNotFound), "got %v", err)
}

func TestPredictionRepository_ListByChampionship(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	matches := NewMatchRepository()
	preds := NewPredictionRepository(matches)
	other := testMatch("m2")
	other.ChampionshipID = "c2"
	require.NoError(t, matches.Create(ctx, testMatch("m1")))
	require.NoError(t, matches.Create(ctx, other))

	before := testStart.Add(-time.Hour)
	require.NoError(t, preds.UpsertIfOpen(ctx, prediction.Prediction{UserID: "u1", MatchID: "m1", Answers: match.Answers{"winner": "A"}}, before))
	require.NoError(t, preds.UpsertIfOpen(ctx, prediction.Prediction{UserID: "u1", MatchID: "m2", Answers: match.Answers{"winner": "A"}}, before))

	items, err := preds.ListByChampionship(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m1", items[0].MatchID)

	items, err = preds.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMatchRepository_ListUpcoming(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	matches := NewMatchRepository()
	later := testMatch("m2")
	later.StartTime = testStart.Add(time.Hour)
	require.NoError(t, matches.Create(ctx, later))
	require.NoError(t, matches.Create(ctx, testMatch("m1")))

	items, err := matches.ListUpcoming(ctx, "", testStart.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "m1", items[0].ID)

	items, err = matches.ListUpcoming(ctx, "c1", testStart)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m2", items[0].ID)
}

func TestChampionshipRepository_Membership(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewChampionshipRepository()
	item := championship.Championship{ID: "c1", Name: "Cup", InviteCode: "ABCD2345", OwnerUserID: "owner", CreatedAt: testStart}
	require.NoError(t, repo.Create(ctx, item, championship.Member{UserID: "owner", Role: championship.RoleAdmin, JoinedAt: testStart}))

	dup := item
	dup.ID = "c2"
	err := repo.Create(ctx, dup, championship.Member{UserID: "owner", Role: championship.RoleAdmin})
	assert.True(t, errors.Is(err, championship.ErrDuplicateInviteCode), "got %v", err)

	member := championship.Member{ChampionshipID: "c1", UserID: "u2", Role: championship.RoleMember, JoinedAt: testStart.Add(time.Minute)}
	require.NoError(t, repo.AddMember(ctx, member))
	member.Role = championship.RoleAdmin
	require.NoError(t, repo.AddMember(ctx, member))

	got, ok, err := repo.GetMember(ctx, "c1", "u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, championship.RoleMember, got.Role, "re-adding must keep the original row")

	require.NoError(t, repo.UpdateMemberRole(ctx, "c1", "u2", championship.RoleAdmin))
	members, err := repo.ListMembers(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"owner", "u2"}, championship.MemberIDs(members))

	found, ok, err := repo.GetByInviteCode(ctx, "ABCD2345")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c1", found.ID)

	mine, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestActivityRepository_RecordLoginIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewActivityRepository()
	userID := gofakeit.Username()

	created, err := repo.RecordLogin(ctx, activity.LoginDay{UserID: userID, Day: "2026-08-01"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.RecordLogin(ctx, activity.LoginDay{UserID: userID, Day: "2026-08-01"})
	require.NoError(t, err)
	assert.False(t, created)
	_, err = repo.RecordLogin(ctx, activity.LoginDay{UserID: userID, Day: "2026-08-02"})
	require.NoError(t, err)

	days, err := repo.ListDays(ctx, userID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-02", "2026-08-01"}, days)
}

func TestSeedDemo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	championships := NewChampionshipRepository()
	matches := NewMatchRepository()
	require.NoError(t, SeedDemo(ctx, championships, matches, testStart))

	items, err := matches.ListByChampionship(ctx, DemoChampionshipID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NoError(t, items[0].Validate())
}
