package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	maxChampionshipNameLength = 100
	inviteCodeAttempts        = 5
)

// LeaderboardInvalidator drops cached standings after membership or result changes.
type LeaderboardInvalidator interface {
	InvalidateLeaderboard(ctx context.Context, championshipID string)
}

type noopLeaderboardInvalidator struct{}

func (noopLeaderboardInvalidator) InvalidateLeaderboard(context.Context, string) {}

type CreateChampionshipInput struct {
	UserID string
	Name   string
}

type JoinChampionshipInput struct {
	UserID     string
	InviteCode string
}

type SetMemberRoleInput struct {
	ActorUserID    string
	ChampionshipID string
	TargetUserID   string
	Role           string
}

type ChampionshipService struct {
	repo        championship.Repository
	access      accessChecker
	idGen       id.Generator
	leaderboard LeaderboardInvalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewChampionshipService(
	repo championship.Repository,
	idGen id.Generator,
	leaderboard LeaderboardInvalidator,
	logger *logging.Logger,
) *ChampionshipService {
	if leaderboard == nil {
		leaderboard = noopLeaderboardInvalidator{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChampionshipService{
		repo:        repo,
		access:      accessChecker{repo: repo},
		idGen:       idGen,
		leaderboard: leaderboard,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ChampionshipService) Create(ctx context.Context, input CreateChampionshipInput) (championship.Championship, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.Create")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	name := strings.TrimSpace(input.Name)
	if userID == "" {
		return championship.Championship{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if name == "" {
		return championship.Championship{}, fmt.Errorf("%w: championship name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxChampionshipNameLength {
		return championship.Championship{}, fmt.Errorf("%w: championship name must be at most %d characters", ErrInvalidInput, maxChampionshipNameLength)
	}

	championshipID, err := s.idGen.NewID()
	if err != nil {
		return championship.Championship{}, fmt.Errorf("generate championship id: %w", err)
	}

	now := s.now().UTC()
	owner := championship.Member{
		ChampionshipID: championshipID,
		UserID:         userID,
		Role:           championship.RoleAdmin,
		JoinedAt:       now,
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := id.InviteCode(s.idGen)
		if err != nil {
			return championship.Championship{}, fmt.Errorf("generate invite code: %w", err)
		}

		item := championship.Championship{
			ID:          championshipID,
			Name:        name,
			InviteCode:  code,
			OwnerUserID: userID,
			CreatedAt:   now,
		}
		err = s.repo.Create(ctx, item, owner)
		if err == nil {
			s.logger.InfoContext(ctx, "championship created", "championship_id", item.ID, "owner_user_id", userID)
			return item, nil
		}
		if !errors.Is(err, championship.ErrDuplicateInviteCode) {
			return championship.Championship{}, storageError("create championship", err)
		}
		s.logger.WarnContext(ctx, "invite code collision, retrying", "attempt", attempt)
	}

	return championship.Championship{}, fmt.Errorf("%w: could not allocate a unique invite code", ErrConflict)
}

func (s *ChampionshipService) JoinByInvite(ctx context.Context, input JoinChampionshipInput) (championship.Championship, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.JoinByInvite")
	defer span.End()

	userID := strings.TrimSpace(input.UserID)
	code := strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if userID == "" {
		return championship.Championship{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if code == "" {
		return championship.Championship{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	item, exists, err := s.repo.GetByInviteCode(ctx, code)
	if err != nil {
		return championship.Championship{}, storageError("get championship by invite code", err)
	}
	if !exists {
		return championship.Championship{}, fmt.Errorf("%w: invite code=%s", ErrNotFound, code)
	}

	if err := s.repo.AddMember(ctx, championship.Member{
		ChampionshipID: item.ID,
		UserID:         userID,
		Role:           championship.RoleMember,
		JoinedAt:       s.now().UTC(),
	}); err != nil {
		return championship.Championship{}, storageError("add championship member", err)
	}
	s.leaderboard.InvalidateLeaderboard(ctx, item.ID)

	return item, nil
}

func (s *ChampionshipService) ListMine(ctx context.Context, userID string) ([]championship.Championship, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.ListMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError("list championships by user", err)
	}
	return items, nil
}

func (s *ChampionshipService) Get(ctx context.Context, userID, championshipID string) (championship.Championship, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.Get")
	defer span.End()

	if _, err := s.access.requireMember(ctx, championshipID, userID); err != nil {
		return championship.Championship{}, err
	}

	championshipID = strings.TrimSpace(championshipID)
	item, exists, err := s.repo.GetByID(ctx, championshipID)
	if err != nil {
		return championship.Championship{}, storageError("get championship", err)
	}
	if !exists {
		return championship.Championship{}, fmt.Errorf("%w: championship=%s", ErrNotFound, championshipID)
	}
	return item, nil
}

func (s *ChampionshipService) ListMembers(ctx context.Context, userID, championshipID string) ([]championship.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.ListMembers")
	defer span.End()

	if _, err := s.access.requireMember(ctx, championshipID, userID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, strings.TrimSpace(championshipID))
	if err != nil {
		return nil, storageError("list championship members", err)
	}
	return members, nil
}

// SetMemberRole promotes or demotes a member. A championship always keeps one admin.
func (s *ChampionshipService) SetMemberRole(ctx context.Context, input SetMemberRoleInput) (championship.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChampionshipService.SetMemberRole")
	defer span.End()

	championshipID := strings.TrimSpace(input.ChampionshipID)
	targetUserID := strings.TrimSpace(input.TargetUserID)
	role, ok := championship.ParseRole(input.Role)
	if !ok {
		return championship.Member{}, fmt.Errorf("%w: role must be ADMIN or MEMBER", ErrInvalidInput)
	}
	if targetUserID == "" {
		return championship.Member{}, fmt.Errorf("%w: target user id is required", ErrInvalidInput)
	}

	if _, err := s.access.requireAdmin(ctx, championshipID, input.ActorUserID); err != nil {
		return championship.Member{}, err
	}

	target, exists, err := s.repo.GetMember(ctx, championshipID, targetUserID)
	if err != nil {
		return championship.Member{}, storageError("get championship member", err)
	}
	if !exists {
		return championship.Member{}, fmt.Errorf("%w: user=%s is not a member of championship=%s", ErrNotFound, targetUserID, championshipID)
	}
	if target.Role == role {
		return target, nil
	}

	if target.IsAdmin() && role != championship.RoleAdmin {
		members, err := s.repo.ListMembers(ctx, championshipID)
		if err != nil {
			return championship.Member{}, storageError("list championship members", err)
		}
		if countAdmins(members) <= 1 {
			return championship.Member{}, fmt.Errorf("%w: championship=%s must keep at least one admin", ErrConflict, championshipID)
		}
	}

	if err := s.repo.UpdateMemberRole(ctx, championshipID, targetUserID, role); err != nil {
		return championship.Member{}, storageError("update member role", err)
	}
	target.Role = role

	s.logger.InfoContext(ctx, "championship member role updated",
		"championship_id", championshipID,
		"user_id", targetUserID,
		"role", role,
	)
	return target, nil
}

func countAdmins(members []championship.Member) int {
	count := 0
	for _, m := range members {
		if m.IsAdmin() {
			count++
		}
	}
	return count
}
