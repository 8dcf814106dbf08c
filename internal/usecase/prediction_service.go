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
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
)

type SubmitPredictionInput struct {
	UserID  string
	MatchID string
	Answers match.Answers
}

// PredictionView is what a member sees of another member's prediction. Answers
// stay hidden until the match locks.
type PredictionView struct {
	UserID      string
	SubmittedAt time.Time
	Answers     match.Answers
	Hidden      bool
}

type PredictionService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	access         accessChecker
	metrics        *metrics.Recorder
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	championshipRepo championship.Repository,
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		access:         accessChecker{repo: championshipRepo},
		metrics:        recorder,
		logger:         logger,
		now:            time.Now,
	}
}

// Submit creates or replaces the caller's prediction while the match is OPEN.
// Partial answer sets are accepted.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	matchID := strings.TrimSpace(input.MatchID)
	if matchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, err := getMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if _, err := s.access.requireMember(ctx, item.ChampionshipID, userID); err != nil {
		return prediction.Prediction{}, err
	}

	now := s.now().UTC()
	if err := match.CanAcceptPrediction(item, now); err != nil {
		return prediction.Prediction{}, domainError(err)
	}
	if err := match.ValidatePredictionAnswers(item, input.Answers); err != nil {
		return prediction.Prediction{}, domainError(err)
	}

	p := prediction.Prediction{
		UserID:      userID,
		MatchID:     item.ID,
		Answers:     match.CloneAnswers(input.Answers),
		SubmittedAt: now,
	}
	if err := s.predictionRepo.UpsertIfOpen(ctx, p, now); err != nil {
		if errors.Is(err, match.ErrNotOpen) || errors.Is(err, match.ErrMatchNotFound) {
			return prediction.Prediction{}, domainError(err)
		}
		return prediction.Prediction{}, storageError("upsert prediction", err)
	}

	s.metrics.PredictionSubmitted()
	s.logger.DebugContext(ctx, "prediction submitted", "user_id", userID, "match_id", item.ID, "answers", len(p.Answers))
	return p, nil
}

func (s *PredictionService) GetMine(ctx context.Context, userID, matchID string) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.GetMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	item, err := getMatch(ctx, s.matchRepo, matchID)
	if err != nil {
		return prediction.Prediction{}, err
	}
	if _, err := s.access.requireMember(ctx, item.ChampionshipID, userID); err != nil {
		return prediction.Prediction{}, err
	}

	p, exists, err := s.predictionRepo.Get(ctx, userID, matchID)
	if err != nil {
		return prediction.Prediction{}, storageError("get prediction", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: no prediction for match=%s", ErrNotFound, matchID)
	}
	return p, nil
}

func (s *PredictionService) ListForMatch(ctx context.Context, userID, matchID string) ([]PredictionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListForMatch")
	defer span.End()

	userID = strings.TrimSpace(userID)
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

	items, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, storageError("list predictions", err)
	}

	open := item.StateAt(s.now()) == match.StateOpen
	out := make([]PredictionView, 0, len(items))
	for _, p := range items {
		view := PredictionView{UserID: p.UserID, SubmittedAt: p.SubmittedAt, Answers: p.Answers}
		if open && p.UserID != userID {
			view.Answers = nil
			view.Hidden = true
		}
		out = append(out, view)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
