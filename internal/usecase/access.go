package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
)

type accessChecker struct {
	repo championship.Repository
}

func (a accessChecker) requireMember(ctx context.Context, championshipID, userID string) (championship.Member, error) {
	championshipID = strings.TrimSpace(championshipID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return championship.Member{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if championshipID == "" {
		return championship.Member{}, fmt.Errorf("%w: championship id is required", ErrInvalidInput)
	}

	member, exists, err := a.repo.GetMember(ctx, championshipID, userID)
	if err != nil {
		return championship.Member{}, storageError("get championship member", err)
	}
	if exists {
		return member, nil
	}

	_, found, err := a.repo.GetByID(ctx, championshipID)
	if err != nil {
		return championship.Member{}, storageError("get championship", err)
	}
	if !found {
		return championship.Member{}, fmt.Errorf("%w: championship=%s", ErrNotFound, championshipID)
	}
	return championship.Member{}, fmt.Errorf("%w: user=%s is not a member of championship=%s", ErrForbidden, userID, championshipID)
}

func (a accessChecker) requireAdmin(ctx context.Context, championshipID, userID string) (championship.Member, error) {
	member, err := a.requireMember(ctx, championshipID, userID)
	if err != nil {
		return championship.Member{}, err
	}
	if !member.IsAdmin() {
		return championship.Member{}, fmt.Errorf("%w: user=%s is not an admin of championship=%s", ErrForbidden, userID, championshipID)
	}
	return member, nil
}
