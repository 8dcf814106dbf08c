package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"github.com/sourcegraph/conc/pool"
)

const (
	leaderboardCachePrefix   = "leaderboard:"
	globalStatsMaxGoroutines = 8
)

type LeaderboardService struct {
	championshipRepo championship.Repository
	matchRepo        match.Repository
	predictionRepo   prediction.Repository
	access           accessChecker
	scorer           scoring.Scorer
	cache            *cache.Store
	metrics          *metrics.Recorder
	logger           *logging.Logger
}

// NewLeaderboardService caches standings in store; a nil store disables caching.
func NewLeaderboardService(
	championshipRepo championship.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	scorer scoring.Scorer,
	store *cache.Store,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		championshipRepo: championshipRepo,
		matchRepo:        matchRepo,
		predictionRepo:   predictionRepo,
		access:           accessChecker{repo: championshipRepo},
		scorer:           scorer,
		cache:            store,
		metrics:          recorder,
		logger:           logger,
	}
}

func (s *LeaderboardService) ChampionshipLeaderboard(ctx context.Context, userID, championshipID string) ([]scoring.LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ChampionshipLeaderboard")
	defer span.End()

	championshipID = strings.TrimSpace(championshipID)
	if _, err := s.access.requireMember(ctx, championshipID, userID); err != nil {
		return nil, err
	}

	if s.cache == nil {
		rows, err := s.computeLeaderboard(ctx, championshipID)
		if err != nil {
			return nil, err
		}
		return cloneRows(rows), nil
	}

	value, hit, err := s.cache.GetOrLoad(ctx, leaderboardCachePrefix+championshipID, func(ctx context.Context) (any, error) {
		return s.computeLeaderboard(ctx, championshipID)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.LeaderboardCache(hit)

	rows, ok := value.([]scoring.LeaderboardRow)
	if !ok {
		s.cache.Delete(ctx, leaderboardCachePrefix+championshipID)
		return nil, fmt.Errorf("unexpected leaderboard cache value %T", value)
	}
	return cloneRows(rows), nil
}

func (s *LeaderboardService) InvalidateLeaderboard(ctx context.Context, championshipID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, leaderboardCachePrefix+strings.TrimSpace(championshipID))
}

// MatchScores lists per-user score lines of a finished match, best first. It is
// empty until the result is recorded.
func (s *LeaderboardService) MatchScores(ctx context.Context, userID, matchID string) ([]scoring.ScoreLine, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.MatchScores")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	item, err := getMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.requireMember(ctx, item.ChampionshipID, userID); err != nil {
		return nil, err
	}
	if !item.IsFinished() {
		return []scoring.ScoreLine{}, nil
	}

	result, exists, err := s.matchRepo.GetResult(ctx, matchID)
	if err != nil {
		return nil, storageError("get result", err)
	}
	if !exists {
		return []scoring.ScoreLine{}, nil
	}
	predictions, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, storageError("list predictions", err)
	}

	lines, skipped := s.scorer.ScoreMatch(item, predictions, result)
	s.logSkipped(ctx, skipped)
	sortScoreLines(lines)
	return lines, nil
}

// GlobalStats folds every championship the user belongs to into one set of totals.
func (s *LeaderboardService) GlobalStats(ctx context.Context, userID string) (scoring.UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GlobalStats")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return scoring.UserStats{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	championships, err := s.championshipRepo.ListByUser(ctx, userID)
	if err != nil {
		return scoring.UserStats{}, storageError("list championships by user", err)
	}

	p := pool.NewWithResults[scoring.Input]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(globalStatsMaxGoroutines)
	for _, item := range championships {
		championshipID := item.ID
		p.Go(func(ctx context.Context) (scoring.Input, error) {
			return s.loadInput(ctx, championshipID)
		})
	}
	inputs, err := p.Wait()
	if err != nil {
		return scoring.UserStats{}, err
	}

	merged := scoring.Input{
		PredictionsByMatch: make(map[string][]prediction.Prediction),
		ResultsByMatch:     make(map[string]match.Result),
	}
	for _, in := range inputs {
		merged.Matches = append(merged.Matches, in.Matches...)
		for matchID, items := range in.PredictionsByMatch {
			merged.PredictionsByMatch[matchID] = append(merged.PredictionsByMatch[matchID], items...)
		}
		for matchID, result := range in.ResultsByMatch {
			merged.ResultsByMatch[matchID] = result
		}
	}

	stats, skipped := s.scorer.AggregateUser(userID, merged)
	s.logSkipped(ctx, skipped)
	stats.ChampionshipCount = len(championships)
	return stats, nil
}

func (s *LeaderboardService) computeLeaderboard(ctx context.Context, championshipID string) ([]scoring.LeaderboardRow, error) {
	in, err := s.loadInput(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	report := s.scorer.Aggregate(in)
	s.logSkipped(ctx, report.Skipped)
	return report.Rows, nil
}

func (s *LeaderboardService) loadInput(ctx context.Context, championshipID string) (scoring.Input, error) {
	matches, err := s.matchRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return scoring.Input{}, storageError("list matches", err)
	}
	results, err := s.matchRepo.ListResultsByChampionship(ctx, championshipID)
	if err != nil {
		return scoring.Input{}, storageError("list results", err)
	}
	predictions, err := s.predictionRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return scoring.Input{}, storageError("list predictions", err)
	}
	members, err := s.championshipRepo.ListMembers(ctx, championshipID)
	if err != nil {
		return scoring.Input{}, storageError("list championship members", err)
	}

	resultsByMatch := make(map[string]match.Result, len(results))
	for _, r := range results {
		resultsByMatch[r.MatchID] = r
	}

	return scoring.Input{
		Matches:            matches,
		PredictionsByMatch: prediction.GroupByMatch(predictions),
		ResultsByMatch:     resultsByMatch,
		ParticipantIDs:     championship.MemberIDs(members),
	}, nil
}

func (s *LeaderboardService) logSkipped(ctx context.Context, skipped []scoring.Skipped) {
	for _, item := range skipped {
		s.logger.WarnContext(ctx, "skipping corrupt record in aggregation",
			"match_id", item.MatchID,
			"user_id", item.UserID,
			"error", item.Err,
		)
	}
}

func cloneRows(rows []scoring.LeaderboardRow) []scoring.LeaderboardRow {
	if rows == nil {
		return []scoring.LeaderboardRow{}
	}
	return append([]scoring.LeaderboardRow(nil), rows...)
}

func sortScoreLines(lines []scoring.ScoreLine) {
	rows := make([]scoring.LeaderboardRow, len(lines))
	index := make(map[string]scoring.ScoreLine, len(lines))
	for i, line := range lines {
		rows[i] = scoring.LeaderboardRow{UserID: line.UserID, TotalPoints: line.PointsAwarded, TotalCorrect: line.CorrectCount}
		index[line.UserID] = line
	}
	scoring.SortRows(rows)
	for i, row := range rows {
		lines[i] = index[row.UserID]
	}
}

var _ LeaderboardInvalidator = (*LeaderboardService)(nil)
