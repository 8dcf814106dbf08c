package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{items: make(map[string]jobscheduler.DispatchEvent)}
}

// Record keeps the first non-empty payload and routing fields of a dispatch.
func (r *JobDispatchRepository) Record(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[event.DispatchID]
	if ok {
		if len(event.Payload) == 0 {
			event.Payload = existing.Payload
		}
		if event.JobName == "" {
			event.JobName = existing.JobName
		}
		if event.JobPath == "" {
			event.JobPath = existing.JobPath
		}
		if event.ChampionshipID == "" {
			event.ChampionshipID = existing.ChampionshipID
		}
		if event.MatchID == "" {
			event.MatchID = existing.MatchID
		}
	}
	r.items[event.DispatchID] = cloneDispatch(event)
	return nil
}

func (r *JobDispatchRepository) Find(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[dispatchID]
	if !ok {
		return jobscheduler.DispatchEvent{}, false, nil
	}
	return cloneDispatch(item), true, nil
}

func cloneDispatch(event jobscheduler.DispatchEvent) jobscheduler.DispatchEvent {
	copied := event
	if event.Payload != nil {
		copied.Payload = make(map[string]any, len(event.Payload))
		for k, v := range event.Payload {
			copied.Payload[k] = v
		}
	}
	return copied
}
