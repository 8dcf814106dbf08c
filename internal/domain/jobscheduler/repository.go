package jobscheduler

import "context"

// DispatchLedger is the outbox record of published match events. Record is an
// upsert keyed by DispatchID so republishing and acknowledgements converge on one row.
type DispatchLedger interface {
	Record(ctx context.Context, event DispatchEvent) error
	Find(ctx context.Context, dispatchID string) (DispatchEvent, bool, error)
}
