package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	EventMatchCreated  = "match.created"
	EventMatchFinished = "match.finished"
	EventMatchUpcoming = "match.upcoming"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// MatchEventPublisher hands match lifecycle events to the notification collaborator.
type MatchEventPublisher interface {
	PublishMatchEvent(ctx context.Context, event string, item match.Match) error
}

type EventOutboxConfig struct {
	WebhookPath    string
	UpcomingBucket time.Duration
	WorkerCount    int
}

type RepublishInput struct {
	ChampionshipID string
}

type RepublishResult struct {
	MatchCount  int      `json:"match_count"`
	QueuedCount int      `json:"queued_count"`
	FailedCount int      `json:"failed_count"`
	DispatchIDs []string `json:"dispatch_ids"`
}

type AckDispatchInput struct {
	DispatchID   string
	Status       string
	ErrorMessage string
}

type EventOutboxService struct {
	matchRepo    match.Repository
	queue        JobQueue
	dispatchRepo jobscheduler.DispatchLedger
	cfg          EventOutboxConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewEventOutboxService(
	matchRepo match.Repository,
	queue JobQueue,
	dispatchRepo jobscheduler.DispatchLedger,
	cfg EventOutboxConfig,
	logger *logging.Logger,
) *EventOutboxService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.WebhookPath) == "" {
		cfg.WebhookPath = "/v1/notifications/match-events"
	}
	if cfg.UpcomingBucket <= 0 {
		cfg.UpcomingBucket = time.Hour
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	return &EventOutboxService{
		matchRepo:    matchRepo,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// PublishMatchEvent enqueues one lifecycle event. The dedup id is stable per
// (event, match) so retries never notify twice.
func (s *EventOutboxService) PublishMatchEvent(ctx context.Context, event string, item match.Match) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventOutboxService.PublishMatchEvent")
	defer span.End()

	event = strings.TrimSpace(event)
	if event == "" || strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("%w: event and match id are required", ErrInvalidInput)
	}

	dispatchID := sanitizeDedupSegment(event) + "-" + sanitizeDedupSegment(item.ID)
	return s.enqueue(ctx, event, dispatchID, item, s.now().UTC())
}

// RepublishUpcoming re-sends match.upcoming for every OPEN match. Dedup ids are
// bucketed by UpcomingBucket so a repeated run inside one bucket is a no-op at the queue.
func (s *EventOutboxService) RepublishUpcoming(ctx context.Context, input RepublishInput) (RepublishResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventOutboxService.RepublishUpcoming")
	defer span.End()

	now := s.now().UTC()
	items, err := s.matchRepo.ListUpcoming(ctx, strings.TrimSpace(input.ChampionshipID), now)
	if err != nil {
		return RepublishResult{}, storageError("list upcoming matches", err)
	}

	result := RepublishResult{
		MatchCount:  len(items),
		DispatchIDs: make([]string, 0, len(items)),
	}
	if len(items) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(s.cfg.WorkerCount)
	if err != nil {
		return RepublishResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	tasks := make([]func(), 0, len(items))
	for _, item := range items {
		tasks = append(tasks, func() {
			dispatchID := dedupKey("match-upcoming", item.ID, now, s.cfg.UpcomingBucket)
			err := s.enqueue(ctx, EventMatchUpcoming, dispatchID, item, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedCount++
				return
			}
			result.QueuedCount++
			result.DispatchIDs = append(result.DispatchIDs, dispatchID)
		})
	}
	if err := submitAndWait(pool, tasks); err != nil {
		return RepublishResult{}, err
	}

	sort.Strings(result.DispatchIDs)
	return result, nil
}

// AcknowledgeDispatch records the collaborator's delivery outcome for a dispatch.
func (s *EventOutboxService) AcknowledgeDispatch(ctx context.Context, input AckDispatchInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventOutboxService.AcknowledgeDispatch")
	defer span.End()

	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("%w: dispatch id is required", ErrInvalidInput)
	}
	status := jobscheduler.StatusCompleted
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, ok := jobscheduler.ParseStatus(strings.ToLower(raw))
		if !ok || parsed == jobscheduler.StatusSent {
			return fmt.Errorf("%w: status must be completed or failed", ErrInvalidInput)
		}
		status = parsed
	}
	if s.dispatchRepo == nil {
		return nil
	}

	existing, exists, err := s.dispatchRepo.Find(ctx, dispatchID)
	if err != nil {
		return storageError("get dispatch", err)
	}
	if !exists {
		return fmt.Errorf("%w: dispatch=%s", ErrNotFound, dispatchID)
	}

	existing.Status = status
	existing.ErrorMessage = strings.TrimSpace(input.ErrorMessage)
	existing.OccurredAt = s.now().UTC()
	existing.TraceID, existing.SpanID = traceMetaFromContext(ctx)
	if err := s.dispatchRepo.Record(ctx, existing); err != nil {
		return storageError("acknowledge dispatch", err)
	}
	return nil
}

func (s *EventOutboxService) enqueue(ctx context.Context, event, dispatchID string, item match.Match, now time.Time) error {
	payload := map[string]any{
		"event":           event,
		"dispatch_id":     dispatchID,
		"match_id":        item.ID,
		"championship_id": item.ChampionshipID,
		"player1":         item.Player1,
		"player2":         item.Player2,
		"start_time":      item.StartTime.UTC().Format(time.RFC3339),
		"state":           string(item.StateAt(now)),
	}

	dispatch := jobscheduler.DispatchEvent{
		DispatchID:     dispatchID,
		JobName:        event,
		JobPath:        s.cfg.WebhookPath,
		ChampionshipID: item.ChampionshipID,
		MatchID:        item.ID,
		Status:         jobscheduler.StatusSent,
		Payload:        payload,
		OccurredAt:     now,
	}

	if err := s.queue.Enqueue(ctx, s.cfg.WebhookPath, payload, 0, dispatchID); err != nil {
		dispatch.Status = jobscheduler.StatusFailed
		dispatch.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, dispatch)
		s.logger.WarnContext(ctx, "publish match event failed",
			"event", event,
			"match_id", item.ID,
			"dispatch_id", dispatchID,
			"error", err,
		)
		return fmt.Errorf("enqueue %s match=%s: %w", event, item.ID, err)
	}
	s.recordDispatchEvent(ctx, dispatch)
	return nil
}

func dedupKey(prefix, matchID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(matchID) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *EventOutboxService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record match event dispatch failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

// submitAndWait runs tasks on pool and returns once every submitted task has
// finished, including when a later Submit is rejected.
func submitAndWait(pool *ants.Pool, tasks []func()) error {
	var workers sync.WaitGroup
	defer workers.Wait()

	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			task()
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	return nil
}
