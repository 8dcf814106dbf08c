package reward

import "context"

// Ledger stores claim records. TryClaim must be atomic per (user, reward, period):
// of any number of concurrent calls for the same triple exactly one is Granted.
type Ledger interface {
	TryClaim(ctx context.Context, record ClaimRecord) (ClaimOutcome, error)
	HasClaim(ctx context.Context, userID, rewardID, periodKey string) (bool, error)
	ListClaimsByUser(ctx context.Context, userID string) ([]ClaimRecord, error)
	TotalXP(ctx context.Context, userID string) (int, error)
}
