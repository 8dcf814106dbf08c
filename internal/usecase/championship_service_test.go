package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	championshipmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var inviteCodePattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}$`)

func TestChampionshipService_CreateMakesOwnerAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	item, err := env.championshipSvc.Create(t.Context(), CreateChampionshipInput{UserID: "alice", Name: "  Office Pool  "})
	require.NoError(t, err)
	assert.Equal(t, "Office Pool", item.Name)
	assert.Equal(t, "alice", item.OwnerUserID)
	assert.Regexp(t, inviteCodePattern, item.InviteCode)

	member, ok, err := env.championships.GetMember(t.Context(), item.ID, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, championship.RoleAdmin, member.Role)

	mine, err := env.championshipSvc.ListMine(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, item.ID, mine[0].ID)
}

func TestChampionshipService_CreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.championshipSvc.Create(t.Context(), CreateChampionshipInput{UserID: "alice", Name: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = env.championshipSvc.Create(t.Context(), CreateChampionshipInput{Name: "Cup"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestChampionshipService_CreateRetriesInviteCollision(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := championshipmock.NewRepository(t)
	service := NewChampionshipService(repo, id.NewUUIDGenerator(), nil, logging.NewNop())

	repo.
		On("Create", mock.MatchedBy(func(v context.Context) bool { return v != nil }), mock.Anything, mock.Anything).
		Return(championship.ErrDuplicateInviteCode).
		Once()
	repo.
		On("Create", mock.MatchedBy(func(v context.Context) bool { return v != nil }), mock.Anything, mock.Anything).
		Return(nil).
		Once()

	item, err := service.Create(ctx, CreateChampionshipInput{UserID: "alice", Name: "Cup"})
	if err != nil {
		t.Fatalf("create championship: %v", err)
	}
	if !inviteCodePattern.MatchString(item.InviteCode) {
		t.Fatalf("unexpected invite code: %s", item.InviteCode)
	}
}

func TestChampionshipService_StorageFailureIsDependencyError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := championshipmock.NewRepository(t)
	service := NewChampionshipService(repo, id.NewUUIDGenerator(), nil, logging.NewNop())

	repo.
		On("ListByUser", mock.Anything, "alice").
		Return(nil, errors.New("connection refused")).
		Once()

	_, err := service.ListMine(ctx, "alice")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestChampionshipService_JoinByInvite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t)

	item, err := env.championshipSvc.JoinByInvite(t.Context(), JoinChampionshipInput{UserID: "bob", InviteCode: " spring26 "})
	require.NoError(t, err)
	assert.Equal(t, testChampionshipID, item.ID)

	_, err = env.championshipSvc.JoinByInvite(t.Context(), JoinChampionshipInput{UserID: "bob", InviteCode: "SPRING26"})
	require.NoError(t, err)

	members, err := env.championshipSvc.ListMembers(t.Context(), "bob", testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, []string{testAdminID, "bob"}, championship.MemberIDs(members))

	_, err = env.championshipSvc.JoinByInvite(t.Context(), JoinChampionshipInput{UserID: "bob", InviteCode: "NOPE2345"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestChampionshipService_GetRequiresMembership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")

	item, err := env.championshipSvc.Get(t.Context(), "alice", testChampionshipID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", item.Name)

	_, err = env.championshipSvc.Get(t.Context(), "mallory", testChampionshipID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestChampionshipService_SetMemberRole(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedChampionship(t, "alice")
	ctx := t.Context()

	_, err := env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: testAdminID, ChampionshipID: testChampionshipID, TargetUserID: testAdminID, Role: "member",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict demoting the last admin, got %v", err)
	}

	_, err = env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: "alice", ChampionshipID: testChampionshipID, TargetUserID: "alice", Role: "admin",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member actor, got %v", err)
	}

	_, err = env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: testAdminID, ChampionshipID: testChampionshipID, TargetUserID: "alice", Role: "owner",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown role, got %v", err)
	}

	_, err = env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: testAdminID, ChampionshipID: testChampionshipID, TargetUserID: "ghost", Role: "admin",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-member target, got %v", err)
	}

	promoted, err := env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: testAdminID, ChampionshipID: testChampionshipID, TargetUserID: "alice", Role: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, championship.RoleAdmin, promoted.Role)

	demoted, err := env.championshipSvc.SetMemberRole(ctx, SetMemberRoleInput{
		ActorUserID: "alice", ChampionshipID: testChampionshipID, TargetUserID: testAdminID, Role: "member",
	})
	require.NoError(t, err)
	assert.Equal(t, championship.RoleMember, demoted.Role)
}
