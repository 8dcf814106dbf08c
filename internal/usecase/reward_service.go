package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/activity"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/reward"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	streakLookbackDays   = 400
	correctRunForMission = 3
	loginStreakMission   = 7
)

// StatsProvider supplies the caller's scored history for mission predicates.
type StatsProvider interface {
	GlobalStats(ctx context.Context, userID string) (scoring.UserStats, error)
}

type CheckInResult struct {
	Day        string
	Streak     int
	FirstToday bool
}

type MissionStatus struct {
	Reward    reward.Reward
	PeriodKey string
	Claimed   bool
	Eligible  bool
}

type ClaimMissionInput struct {
	UserID   string
	RewardID string
}

type ClaimResult struct {
	RewardID  string
	PeriodKey string
	Outcome   reward.ClaimOutcome
	XPGranted int
	Streak    int
}

type RewardSummary struct {
	TotalXP int
	Streak  int
	Claims  []reward.ClaimRecord
}

type RewardService struct {
	ledger         reward.Ledger
	activityRepo   activity.Repository
	predictionRepo prediction.Repository
	stats          StatsProvider
	location       *time.Location
	metrics        *metrics.Recorder
	logger         *logging.Logger
	now            func() time.Time
}

// NewRewardService evaluates daily periods and login days in location (UTC when nil).
func NewRewardService(
	ledger reward.Ledger,
	activityRepo activity.Repository,
	predictionRepo prediction.Repository,
	stats StatsProvider,
	location *time.Location,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *RewardService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RewardService{
		ledger:         ledger,
		activityRepo:   activityRepo,
		predictionRepo: predictionRepo,
		stats:          stats,
		location:       location,
		metrics:        recorder,
		logger:         logger,
		now:            time.Now,
	}
}

// CheckIn records today's login day. Repeated calls on one day are no-ops.
func (s *RewardService) CheckIn(ctx context.Context, userID string) (CheckInResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardService.CheckIn")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CheckInResult{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	today := activity.DayOf(s.now(), s.location)
	created, err := s.activityRepo.RecordLogin(ctx, activity.LoginDay{UserID: userID, Day: today})
	if err != nil {
		return CheckInResult{}, storageError("record login day", err)
	}

	streak, err := s.streak(ctx, userID, today)
	if err != nil {
		return CheckInResult{}, err
	}
	return CheckInResult{Day: today, Streak: streak, FirstToday: created}, nil
}

func (s *RewardService) ListMissions(ctx context.Context, userID string) ([]MissionStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardService.ListMissions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	now := s.now()
	eval := s.newMissionEvaluator(userID, now)
	catalog := reward.Catalog()
	out := make([]MissionStatus, 0, len(catalog))
	for _, item := range catalog {
		periodKey := item.PeriodKey(now, s.location)
		claimed, err := s.ledger.HasClaim(ctx, userID, item.ID, periodKey)
		if err != nil {
			return nil, storageError("check reward claim", err)
		}
		eligible := false
		if !claimed {
			eligible, err = eval.satisfied(ctx, item.ID)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, MissionStatus{
			Reward:    item,
			PeriodKey: periodKey,
			Claimed:   claimed,
			Eligible:  eligible,
		})
	}
	return out, nil
}

// ClaimMission grants a mission's XP at most once per period. Repeated or
// concurrent claims for the same period report AlreadyClaimed and grant nothing.
func (s *RewardService) ClaimMission(ctx context.Context, input ClaimMissionInput) (ClaimResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardService.ClaimMission")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return ClaimResult{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	item, ok := reward.FindReward(input.RewardID)
	if !ok {
		return ClaimResult{}, fmt.Errorf("%w: reward=%s", ErrNotFound, strings.TrimSpace(input.RewardID))
	}

	now := s.now()
	eval := s.newMissionEvaluator(userID, now)
	satisfied, err := eval.satisfied(ctx, item.ID)
	if err != nil {
		return ClaimResult{}, err
	}
	if !satisfied {
		return ClaimResult{}, fmt.Errorf("%w: mission condition not met", ErrInvalidInput)
	}

	streak, err := eval.loginStreak(ctx)
	if err != nil {
		return ClaimResult{}, err
	}

	periodKey := item.PeriodKey(now, s.location)
	xp := reward.ComputeGrant(item.ID, item.BaseXP, streak)
	span.SetAttributes(
		attribute.String("reward.id", item.ID),
		attribute.String("reward.period_key", periodKey),
		attribute.Int("reward.streak", streak),
	)
	result := ClaimResult{
		RewardID:  item.ID,
		PeriodKey: periodKey,
		Streak:    streak,
	}

	outcome, err := s.ledger.TryClaim(ctx, reward.ClaimRecord{
		UserID:    userID,
		RewardID:  item.ID,
		PeriodKey: periodKey,
		XPGranted: xp,
		ClaimedAt: now.UTC(),
	})
	if err != nil {
		s.metrics.RewardClaim(string(reward.OutcomeFailed))
		s.logger.ErrorContext(ctx, "reward claim failed", "user_id", userID, "reward_id", item.ID, "period_key", periodKey, "error", err)
		result.Outcome = reward.OutcomeFailed
		err = storageError("claim reward", err)
		markSpanFailure(span, err)
		return result, err
	}

	result.Outcome = outcome
	s.metrics.RewardClaim(string(outcome))
	if outcome == reward.OutcomeGranted {
		result.XPGranted = xp
		s.logger.InfoContext(ctx, "reward granted", "user_id", userID, "reward_id", item.ID, "period_key", periodKey, "xp", xp)
	}
	return result, nil
}

func (s *RewardService) Summary(ctx context.Context, userID string) (RewardSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardService.Summary")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RewardSummary{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	total, err := s.ledger.TotalXP(ctx, userID)
	if err != nil {
		return RewardSummary{}, storageError("sum reward xp", err)
	}
	claims, err := s.ledger.ListClaimsByUser(ctx, userID)
	if err != nil {
		return RewardSummary{}, storageError("list reward claims", err)
	}
	streak, err := s.streak(ctx, userID, activity.DayOf(s.now(), s.location))
	if err != nil {
		return RewardSummary{}, err
	}
	return RewardSummary{TotalXP: total, Streak: streak, Claims: claims}, nil
}

func (s *RewardService) streak(ctx context.Context, userID, today string) (int, error) {
	days, err := s.activityRepo.ListDays(ctx, userID, streakLookbackDays)
	if err != nil {
		return 0, storageError("list login days", err)
	}
	return activity.Streak(days, today), nil
}

// missionEvaluator loads each external condition at most once per request.
type missionEvaluator struct {
	svc    *RewardService
	userID string
	now    time.Time
	today  string

	days        []string
	daysLoaded  bool
	predictions []prediction.Prediction
	predsLoaded bool
	stats       scoring.UserStats
	statsLoaded bool
}

func (s *RewardService) newMissionEvaluator(userID string, now time.Time) *missionEvaluator {
	return &missionEvaluator{
		svc:    s,
		userID: userID,
		now:    now,
		today:  activity.DayOf(now, s.location),
	}
}

func (e *missionEvaluator) satisfied(ctx context.Context, rewardID string) (bool, error) {
	switch rewardID {
	case reward.MissionDailyLogin:
		days, err := e.loginDays(ctx)
		if err != nil {
			return false, err
		}
		for _, day := range days {
			if day == e.today {
				return true, nil
			}
		}
		return false, nil
	case reward.MissionDailyPrediction:
		items, err := e.userPredictions(ctx)
		if err != nil {
			return false, err
		}
		for _, p := range items {
			if activity.DayOf(p.SubmittedAt, e.svc.location) == e.today {
				return true, nil
			}
		}
		return false, nil
	case reward.MissionFirstPrediction:
		items, err := e.userPredictions(ctx)
		if err != nil {
			return false, err
		}
		return len(items) > 0, nil
	case reward.MissionPerfectMatch:
		stats, err := e.userStats(ctx)
		if err != nil {
			return false, err
		}
		for _, line := range stats.Lines {
			if line.Perfect() {
				return true, nil
			}
		}
		return false, nil
	case reward.MissionThreeCorrectInARow:
		stats, err := e.userStats(ctx)
		if err != nil {
			return false, err
		}
		return lastLinesAllScored(stats.Lines, correctRunForMission), nil
	case reward.MissionLoginStreak7:
		streak, err := e.loginStreak(ctx)
		if err != nil {
			return false, err
		}
		return streak >= loginStreakMission, nil
	default:
		return false, nil
	}
}

func (e *missionEvaluator) loginStreak(ctx context.Context) (int, error) {
	days, err := e.loginDays(ctx)
	if err != nil {
		return 0, err
	}
	return activity.Streak(days, e.today), nil
}

func (e *missionEvaluator) loginDays(ctx context.Context) ([]string, error) {
	if e.daysLoaded {
		return e.days, nil
	}
	days, err := e.svc.activityRepo.ListDays(ctx, e.userID, streakLookbackDays)
	if err != nil {
		return nil, storageError("list login days", err)
	}
	e.days, e.daysLoaded = days, true
	return days, nil
}

func (e *missionEvaluator) userPredictions(ctx context.Context) ([]prediction.Prediction, error) {
	if e.predsLoaded {
		return e.predictions, nil
	}
	items, err := e.svc.predictionRepo.ListByUser(ctx, e.userID)
	if err != nil {
		return nil, storageError("list predictions by user", err)
	}
	e.predictions, e.predsLoaded = items, true
	return items, nil
}

func (e *missionEvaluator) userStats(ctx context.Context) (scoring.UserStats, error) {
	if e.statsLoaded {
		return e.stats, nil
	}
	if e.svc.stats == nil {
		e.statsLoaded = true
		return e.stats, nil
	}
	stats, err := e.svc.stats.GlobalStats(ctx, e.userID)
	if err != nil {
		return scoring.UserStats{}, err
	}
	e.stats, e.statsLoaded = stats, true
	return stats, nil
}

// lastLinesAllScored reports whether each of the n most recent lines has a correct answer.
func lastLinesAllScored(lines []scoring.ScoreLine, n int) bool {
	if n <= 0 || len(lines) < n {
		return false
	}
	for _, line := range lines[len(lines)-n:] {
		if line.CorrectCount < 1 {
			return false
		}
	}
	return true
}
