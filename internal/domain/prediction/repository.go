package prediction

import (
	"context"
	"time"
)

// Repository describes prediction persistence needs from use cases.
type Repository interface {
	// UpsertIfOpen writes the prediction only while its match is SCHEDULED and now < start time,
	// evaluated against the current match row. It returns match.ErrNotOpen otherwise.
	UpsertIfOpen(ctx context.Context, item Prediction, now time.Time) error
	Get(ctx context.Context, userID, matchID string) (Prediction, bool, error)
	ListByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	ListByChampionship(ctx context.Context, championshipID string) ([]Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
}
