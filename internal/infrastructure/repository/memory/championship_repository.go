package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
)

type ChampionshipRepository struct {
	mu       sync.RWMutex
	items    map[string]championship.Championship
	byInvite map[string]string
	members  map[string]map[string]championship.Member
}

func NewChampionshipRepository() *ChampionshipRepository {
	return &ChampionshipRepository{
		items:    make(map[string]championship.Championship),
		byInvite: make(map[string]string),
		members:  make(map[string]map[string]championship.Member),
	}
}

func (r *ChampionshipRepository) Create(_ context.Context, item championship.Championship, owner championship.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("championship %s already exists", item.ID)
	}
	if _, exists := r.byInvite[item.InviteCode]; exists {
		return championship.ErrDuplicateInviteCode
	}

	r.items[item.ID] = item
	r.byInvite[item.InviteCode] = item.ID
	owner.ChampionshipID = item.ID
	r.members[item.ID] = map[string]championship.Member{owner.UserID: owner}
	return nil
}

func (r *ChampionshipRepository) GetByID(_ context.Context, championshipID string) (championship.Championship, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[championshipID]
	return item, ok, nil
}

func (r *ChampionshipRepository) GetByInviteCode(_ context.Context, inviteCode string) (championship.Championship, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byInvite[inviteCode]
	if !ok {
		return championship.Championship{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *ChampionshipRepository) ListByUser(_ context.Context, userID string) ([]championship.Championship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]championship.Championship, 0)
	for id, members := range r.members {
		if _, ok := members[userID]; ok {
			out = append(out, r.items[id])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ChampionshipRepository) GetMember(_ context.Context, championshipID, userID string) (championship.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[championshipID][userID]
	return member, ok, nil
}

func (r *ChampionshipRepository) ListMembers(_ context.Context, championshipID string) ([]championship.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]championship.Member, 0, len(r.members[championshipID]))
	for _, m := range r.members[championshipID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *ChampionshipRepository) AddMember(_ context.Context, member championship.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.members[member.ChampionshipID]
	if !ok {
		if _, exists := r.items[member.ChampionshipID]; !exists {
			return fmt.Errorf("championship %s not found", member.ChampionshipID)
		}
		members = make(map[string]championship.Member)
		r.members[member.ChampionshipID] = members
	}
	if _, exists := members[member.UserID]; exists {
		return nil
	}
	members[member.UserID] = member
	return nil
}

func (r *ChampionshipRepository) UpdateMemberRole(_ context.Context, championshipID, userID string, role championship.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[championshipID][userID]
	if !ok {
		return fmt.Errorf("member %s of championship %s not found", userID, championshipID)
	}
	member.Role = role
	r.members[championshipID][userID] = member
	return nil
}
