package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

// MatchRepository also serves as the lock domain for predictions: prediction
// writes hold the read lock while checking the match, results take the write lock.
type MatchRepository struct {
	mu      sync.RWMutex
	items   map[string]match.Match
	results map[string]match.Result
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		items:   make(map[string]match.Match),
		results: make(map[string]match.Result),
	}
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("match %s already exists", item.ID)
	}
	r.items[item.ID] = cloneMatch(item)
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) ListByChampionship(_ context.Context, championshipID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if item.ChampionshipID == championshipID {
			out = append(out, cloneMatch(item))
		}
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) ListUpcoming(_ context.Context, championshipID string, now time.Time) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if championshipID != "" && item.ChampionshipID != championshipID {
			continue
		}
		if item.Status != match.StatusScheduled || !item.StartTime.After(now) {
			continue
		}
		out = append(out, cloneMatch(item))
	}
	sortMatches(out)
	return out, nil
}

func (r *MatchRepository) RecordResult(_ context.Context, result match.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[result.MatchID]
	if !ok {
		return match.ErrMatchNotFound
	}
	if item.Status == match.StatusFinished {
		return match.ErrAlreadyFinished
	}
	if _, exists := r.results[result.MatchID]; exists {
		return match.ErrAlreadyFinished
	}

	item.Status = match.StatusFinished
	r.items[item.ID] = item
	result.Answers = match.CloneAnswers(result.Answers)
	r.results[result.MatchID] = result
	return nil
}

func (r *MatchRepository) GetResult(_ context.Context, matchID string) (match.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[matchID]
	if !ok {
		return match.Result{}, false, nil
	}
	result.Answers = match.CloneAnswers(result.Answers)
	return result, true, nil
}

func (r *MatchRepository) ListResultsByChampionship(_ context.Context, championshipID string) ([]match.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Result, 0)
	for matchID, result := range r.results {
		if r.items[matchID].ChampionshipID != championshipID {
			continue
		}
		result.Answers = match.CloneAnswers(result.Answers)
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out, nil
}

// withOpenMatch runs fn while holding the read lock, only if the match accepts
// predictions at now.
func (r *MatchRepository) withOpenMatch(matchID string, now time.Time, fn func(item match.Match)) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.ErrMatchNotFound
	}
	if err := match.CanAcceptPrediction(item, now); err != nil {
		return err
	}
	fn(item)
	return nil
}

func (r *MatchRepository) championshipOf(matchID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[matchID].ChampionshipID
}

func cloneMatch(item match.Match) match.Match {
	copied := item
	copied.Questions = match.CloneQuestions(item.Questions)
	return copied
}

func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		return items[i].ID < items[j].ID
	})
}
