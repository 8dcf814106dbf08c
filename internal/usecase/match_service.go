package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// MatchView is a match with its lifecycle state derived at read time.
type MatchView struct {
	Match match.Match
	State match.State
}

type CreateMatchInput struct {
	UserID         string
	ChampionshipID string
	Player1        string
	Player2        string
	StartTime      time.Time
	Questions      []match.Question
}

type RecordResultInput struct {
	UserID  string
	MatchID string
	Answers match.Answers
}

type MatchService struct {
	championshipRepo championship.Repository
	matchRepo        match.Repository
	access           accessChecker
	idGen            id.Generator
	leaderboard      LeaderboardInvalidator
	events           MatchEventPublisher
	metrics          *metrics.Recorder
	logger           *logging.Logger
	now              func() time.Time
}

func NewMatchService(
	championshipRepo championship.Repository,
	matchRepo match.Repository,
	idGen id.Generator,
	leaderboard LeaderboardInvalidator,
	events MatchEventPublisher,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *MatchService {
	if leaderboard == nil {
		leaderboard = noopLeaderboardInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		championshipRepo: championshipRepo,
		matchRepo:        matchRepo,
		access:           accessChecker{repo: championshipRepo},
		idGen:            idGen,
		leaderboard:      leaderboard,
		events:           events,
		metrics:          recorder,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	championshipID := strings.TrimSpace(input.ChampionshipID)
	if _, err := s.access.requireAdmin(ctx, championshipID, input.UserID); err != nil {
		return MatchView{}, err
	}

	player1 := strings.TrimSpace(input.Player1)
	player2 := strings.TrimSpace(input.Player2)
	if player1 == "" || player2 == "" {
		return MatchView{}, fmt.Errorf("%w: both players are required", ErrInvalidInput)
	}
	if strings.EqualFold(player1, player2) {
		return MatchView{}, fmt.Errorf("%w: players must differ", ErrInvalidInput)
	}

	now := s.now().UTC()
	if input.StartTime.IsZero() {
		return MatchView{}, fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	if !input.StartTime.After(now) {
		return MatchView{}, fmt.Errorf("%w: start time must be in the future", ErrInvalidInput)
	}

	questions, err := match.NormalizeQuestions(input.Questions)
	if err != nil {
		return MatchView{}, domainError(err)
	}

	matchID, err := s.idGen.NewID()
	if err != nil {
		return MatchView{}, fmt.Errorf("generate match id: %w", err)
	}

	item := match.Match{
		ID:             matchID,
		ChampionshipID: championshipID,
		Player1:        player1,
		Player2:        player2,
		StartTime:      input.StartTime.UTC(),
		Status:         match.StatusScheduled,
		Questions:      questions,
		CreatedBy:      strings.TrimSpace(input.UserID),
		CreatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return MatchView{}, domainError(err)
	}
	if err := s.matchRepo.Create(ctx, item); err != nil {
		return MatchView{}, storageError("create match", err)
	}

	s.publish(ctx, EventMatchCreated, item)
	return MatchView{Match: item, State: item.StateAt(now)}, nil
}

func (s *MatchService) List(ctx context.Context, userID, championshipID string) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	championshipID = strings.TrimSpace(championshipID)
	if _, err := s.access.requireMember(ctx, championshipID, userID); err != nil {
		return nil, err
	}

	items, err := s.matchRepo.ListByChampionship(ctx, championshipID)
	if err != nil {
		return nil, storageError("list matches", err)
	}
	return toMatchViews(items, s.now()), nil
}

func (s *MatchService) Get(ctx context.Context, userID, matchID string) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	item, err := s.loadMatchForMember(ctx, userID, matchID)
	if err != nil {
		return MatchView{}, err
	}
	return MatchView{Match: item, State: item.StateAt(s.now())}, nil
}

// RecordResult stores the official answer set and finishes the match. A second
// attempt is a conflict and never triggers another scoring event.
func (s *MatchService) RecordResult(ctx context.Context, input RecordResultInput) (match.Result, error) {
	matchID := strings.TrimSpace(input.MatchID)
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.RecordResult", attribute.String("match.id", matchID))
	defer span.End()

	if matchID == "" {
		return match.Result{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, err := s.getMatch(ctx, matchID)
	if err != nil {
		return match.Result{}, err
	}
	if _, err := s.access.requireAdmin(ctx, item.ChampionshipID, input.UserID); err != nil {
		return match.Result{}, err
	}

	now := s.now().UTC()
	if err := match.CanAcceptResult(item, now); err != nil {
		return match.Result{}, fmt.Errorf("%w: result already recorded: %w", ErrConflict, err)
	}
	if err := match.ValidateResultAnswers(item, input.Answers); err != nil {
		return match.Result{}, domainError(err)
	}

	result := match.Result{
		MatchID:    item.ID,
		Answers:    match.CloneAnswers(input.Answers),
		RecordedBy: strings.TrimSpace(input.UserID),
		RecordedAt: now,
	}
	if err := s.matchRepo.RecordResult(ctx, result); err != nil {
		if errors.Is(err, match.ErrAlreadyFinished) {
			return match.Result{}, fmt.Errorf("%w: result already recorded: %w", ErrConflict, err)
		}
		if errors.Is(err, match.ErrMatchNotFound) {
			return match.Result{}, fmt.Errorf("%w: match=%s", ErrNotFound, item.ID)
		}
		err = storageError("record result", err)
		markSpanFailure(span, err)
		return match.Result{}, err
	}

	s.metrics.ResultRecorded()
	s.leaderboard.InvalidateLeaderboard(ctx, item.ChampionshipID)
	s.logger.InfoContext(ctx, "match result recorded",
		"match_id", item.ID,
		"championship_id", item.ChampionshipID,
		"recorded_by", result.RecordedBy,
	)

	item.Status = match.StatusFinished
	s.publish(ctx, EventMatchFinished, item)
	return result, nil
}

// ListUpcoming exposes start times and status of OPEN matches to the notification
// collaborator. An empty championship id lists every championship.
func (s *MatchService) ListUpcoming(ctx context.Context, championshipID string) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListUpcoming")
	defer span.End()

	now := s.now()
	items, err := s.matchRepo.ListUpcoming(ctx, strings.TrimSpace(championshipID), now)
	if err != nil {
		return nil, storageError("list upcoming matches", err)
	}
	return toMatchViews(items, now), nil
}

func (s *MatchService) loadMatchForMember(ctx context.Context, userID, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	item, err := s.getMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}
	if _, err := s.access.requireMember(ctx, item.ChampionshipID, userID); err != nil {
		return match.Match{}, err
	}
	return item, nil
}

func (s *MatchService) getMatch(ctx context.Context, matchID string) (match.Match, error) {
	return getMatch(ctx, s.matchRepo, matchID)
}

func (s *MatchService) publish(ctx context.Context, event string, item match.Match) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMatchEvent(ctx, event, item); err != nil {
		s.logger.WarnContext(ctx, "match event not published", "event", event, "match_id", item.ID, "error", err)
	}
}

func getMatch(ctx context.Context, repo match.Repository, matchID string) (match.Match, error) {
	item, exists, err := repo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, storageError("get match", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func toMatchViews(items []match.Match, now time.Time) []MatchView {
	out := make([]MatchView, 0, len(items))
	for _, item := range items {
		out = append(out, MatchView{Match: item, State: item.StateAt(now)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Match.StartTime.Equal(out[j].Match.StartTime) {
			return out[i].Match.StartTime.Before(out[j].Match.StartTime)
		}
		return out[i].Match.ID < out[j].Match.ID
	})
	return out
}
