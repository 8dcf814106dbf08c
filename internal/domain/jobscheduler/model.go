package jobscheduler

import "time"

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

func ParseStatus(value string) (DispatchStatus, bool) {
	switch DispatchStatus(value) {
	case StatusSent, StatusCompleted, StatusFailed:
		return DispatchStatus(value), true
	default:
		return "", false
	}
}

// DispatchEvent is one outbox transition of a published match event.
type DispatchEvent struct {
	DispatchID     string
	JobName        string
	JobPath        string
	ChampionshipID string
	MatchID        string
	Status         DispatchStatus
	Payload        map[string]any
	ErrorMessage   string
	OccurredAt     time.Time
	TraceID        string
	SpanID         string
}
