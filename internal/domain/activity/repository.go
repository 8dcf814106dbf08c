package activity

import "context"

type Repository interface {
	// RecordLogin is idempotent per (user, day). It reports whether a new row was written.
	RecordLogin(ctx context.Context, item LoginDay) (bool, error)
	ListDays(ctx context.Context, userID string, limit int) ([]string, error)
}
