package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/activity"
)

type ActivityRepository struct {
	mu   sync.RWMutex
	days map[string]map[string]struct{}
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{days: make(map[string]map[string]struct{})}
}

func (r *ActivityRepository) RecordLogin(_ context.Context, item activity.LoginDay) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	days, ok := r.days[item.UserID]
	if !ok {
		days = make(map[string]struct{})
		r.days[item.UserID] = days
	}
	if _, exists := days[item.Day]; exists {
		return false, nil
	}
	days[item.Day] = struct{}{}
	return true, nil
}

func (r *ActivityRepository) ListDays(_ context.Context, userID string, limit int) ([]string, error) {
	r.mu.RLock()
	out := make([]string, 0, len(r.days[userID]))
	for day := range r.days[userID] {
		out = append(out, day)
	}
	r.mu.RUnlock()

	activity.SortDays(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
