package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) Record(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}
	jobPath := strings.TrimSpace(event.JobPath)
	if jobPath == "" {
		jobPath = "/unknown"
	}
	championshipID := strings.TrimSpace(event.ChampionshipID)
	if championshipID == "" {
		championshipID = "unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal job dispatch payload: %w", err)
	}

	model := jobDispatchInsertModel{
		DispatchID:     dispatchID,
		JobName:        jobName,
		JobPath:        jobPath,
		ChampionshipID: championshipID,
		MatchID:        strings.TrimSpace(event.MatchID),
		Payload:        payloadJSON,
		Status:         string(event.Status),
		LastError:      optionalString(event.ErrorMessage),
	}

	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
		model.SentTraceID = optionalString(event.TraceID)
		model.SentSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
		model.LastError = nil
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
	}

	// Acknowledgements carry only the dispatch id, so routing fields and payload
	// from the first write win over placeholders.
	query, args, err := qb.InsertModel("job_dispatches", model, `ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL
DO UPDATE SET
    job_name = CASE
        WHEN EXCLUDED.job_name = 'unknown' THEN job_dispatches.job_name
        ELSE EXCLUDED.job_name
    END,
    job_path = CASE
        WHEN EXCLUDED.job_path = '/unknown' THEN job_dispatches.job_path
        ELSE EXCLUDED.job_path
    END,
    championship_public_id = CASE
        WHEN EXCLUDED.championship_public_id = 'unknown' THEN job_dispatches.championship_public_id
        ELSE EXCLUDED.championship_public_id
    END,
    match_public_id = CASE
        WHEN EXCLUDED.match_public_id = '' THEN job_dispatches.match_public_id
        ELSE EXCLUDED.match_public_id
    END,
    payload = CASE
        WHEN EXCLUDED.payload = '{}'::jsonb THEN job_dispatches.payload
        ELSE EXCLUDED.payload
    END,
    status = EXCLUDED.status,
    sent_at = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_at
        ELSE COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at)
    END,
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_dispatches.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_dispatches.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    sent_trace_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_trace_id
        ELSE job_dispatches.sent_trace_id
    END,
    sent_span_id = CASE
        WHEN EXCLUDED.status = 'sent' THEN EXCLUDED.sent_span_id
        ELSE job_dispatches.sent_span_id
    END,
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE job_dispatches.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE job_dispatches.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE job_dispatches.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE job_dispatches.failed_span_id
    END,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}

	return nil
}

func (r *JobDispatchRepository) Find(ctx context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	query, args, err := qb.Select(
		"dispatch_id", "job_name", "job_path", "championship_public_id", "match_public_id",
		"payload", "status", "sent_at", "completed_at", "failed_at", "last_error", "updated_at",
	).From("job_dispatches").
		Where(
			qb.Eq("dispatch_id", strings.TrimSpace(dispatchID)),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("build get job dispatch query: %w", err)
	}

	var row jobDispatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return jobscheduler.DispatchEvent{}, false, nil
		}
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("get job dispatch: %w", err)
	}

	payload, err := unmarshalPayload(row.Payload)
	if err != nil {
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("decode job dispatch payload dispatch_id=%s: %w", row.DispatchID, err)
	}

	out := jobscheduler.DispatchEvent{
		DispatchID:     row.DispatchID,
		JobName:        row.JobName,
		JobPath:        row.JobPath,
		ChampionshipID: row.ChampionshipID,
		MatchID:        row.MatchID,
		Status:         jobscheduler.DispatchStatus(row.Status),
		Payload:        payload,
		OccurredAt:     row.UpdatedAt.UTC(),
	}
	if row.LastError != nil {
		out.ErrorMessage = *row.LastError
	}
	return out, true, nil
}
