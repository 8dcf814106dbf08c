package match

import (
	"context"
	"time"
)

// Repository describes match and result persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Match) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByChampionship(ctx context.Context, championshipID string) ([]Match, error)
	// ListUpcoming lists SCHEDULED matches starting after now. An empty championship id lists all.
	ListUpcoming(ctx context.Context, championshipID string, now time.Time) ([]Match, error)
	// RecordResult inserts the result and flips the match to FINISHED in one atomic step.
	// It returns ErrAlreadyFinished when a result exists and ErrMatchNotFound for unknown matches.
	RecordResult(ctx context.Context, result Result) error
	GetResult(ctx context.Context, matchID string) (Result, bool, error)
	ListResultsByChampionship(ctx context.Context, championshipID string) ([]Result, error)
}
