package championship

import (
	"context"
	"errors"
)

var ErrDuplicateInviteCode = errors.New("duplicate invite code")

// Repository describes championship and membership persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Championship, owner Member) error
	GetByID(ctx context.Context, championshipID string) (Championship, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Championship, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Championship, error)
	GetMember(ctx context.Context, championshipID, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, championshipID string) ([]Member, error)
	// AddMember is idempotent: re-adding an existing member keeps the original row.
	AddMember(ctx context.Context, member Member) error
	UpdateMemberRole(ctx context.Context, championshipID, userID string, role Role) error
}
