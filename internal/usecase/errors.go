package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrLocked                = errors.New("locked")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// storageError marks a repository failure as retryable.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependencyUnavailable, op, err)
}

// domainError maps domain sentinels onto usecase errors, keeping the original in the chain.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, match.ErrNotOpen):
		return fmt.Errorf("%w: %w", ErrLocked, err)
	case errors.Is(err, match.ErrAlreadyFinished):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, match.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, match.ErrInvalidMatch),
		errors.Is(err, match.ErrInvalidQuestion),
		errors.Is(err, match.ErrInvalidAnswer),
		errors.Is(err, match.ErrUnknownQuestion),
		errors.Is(err, match.ErrIncompleteAnswers),
		errors.Is(err, match.ErrDuplicateQuestion),
		errors.Is(err, match.ErrEmptyAnswerSet),
		errors.Is(err, match.ErrNonPositivePoints),
		errors.Is(err, match.ErrMissingQuestionSet),
		errors.Is(err, prediction.ErrCorruptPrediction):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}
