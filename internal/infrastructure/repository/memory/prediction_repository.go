package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

type PredictionRepository struct {
	matches *MatchRepository

	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository(matches *MatchRepository) *PredictionRepository {
	return &PredictionRepository{
		matches: matches,
		items:   make(map[string]prediction.Prediction),
	}
}

func (r *PredictionRepository) UpsertIfOpen(_ context.Context, item prediction.Prediction, now time.Time) error {
	return r.matches.withOpenMatch(item.MatchID, now, func(match.Match) {
		r.mu.Lock()
		r.items[predictionKey(item.UserID, item.MatchID)] = prediction.Clone(item)
		r.mu.Unlock()
	})
}

func (r *PredictionRepository) Get(_ context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[predictionKey(userID, matchID)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	return prediction.Clone(item), true, nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.filter(func(p prediction.Prediction) bool { return p.MatchID == matchID }), nil
}

func (r *PredictionRepository) ListByChampionship(_ context.Context, championshipID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	matchIDs := make(map[string]struct{})
	for _, item := range r.items {
		matchIDs[item.MatchID] = struct{}{}
	}
	r.mu.RUnlock()

	inChampionship := make(map[string]bool, len(matchIDs))
	for matchID := range matchIDs {
		inChampionship[matchID] = r.matches.championshipOf(matchID) == championshipID
	}
	return r.filter(func(p prediction.Prediction) bool { return inChampionship[p.MatchID] }), nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	return r.filter(func(p prediction.Prediction) bool { return p.UserID == userID }), nil
}

func (r *PredictionRepository) filter(keep func(prediction.Prediction) bool) []prediction.Prediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, prediction.Clone(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func predictionKey(userID, matchID string) string {
	return userID + "::" + matchID
}
