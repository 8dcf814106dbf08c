package cache

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

// ChampionshipRepository caches championship and membership reads of next.
// Writes go straight through and drop the affected keys.
type ChampionshipRepository struct {
	next  championship.Repository
	cache *basecache.Store
}

func NewChampionshipRepository(next championship.Repository, cache *basecache.Store) *ChampionshipRepository {
	return &ChampionshipRepository{next: next, cache: cache}
}

func (r *ChampionshipRepository) Create(ctx context.Context, item championship.Championship, owner championship.Member) error {
	if err := r.next.Create(ctx, item, owner); err != nil {
		return err
	}
	r.cache.Delete(ctx, "championship:id:"+item.ID)
	r.cache.Delete(ctx, "championship:invite:"+item.InviteCode)
	r.cache.Delete(ctx, "championship:user:"+owner.UserID)
	r.cache.DeletePrefix(ctx, memberKeyPrefix(item.ID))
	return nil
}

func (r *ChampionshipRepository) GetByID(ctx context.Context, championshipID string) (championship.Championship, bool, error) {
	v, _, err := r.cache.GetOrLoad(ctx, "championship:id:"+championshipID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, championshipID)
		if err != nil {
			return nil, err
		}
		return cachedChampionship{value: item, exists: exists}, nil
	})
	if err != nil {
		return championship.Championship{}, false, err
	}

	cached, _ := v.(cachedChampionship)
	return cached.value, cached.exists, nil
}

func (r *ChampionshipRepository) GetByInviteCode(ctx context.Context, inviteCode string) (championship.Championship, bool, error) {
	v, _, err := r.cache.GetOrLoad(ctx, "championship:invite:"+inviteCode, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByInviteCode(ctx, inviteCode)
		if err != nil {
			return nil, err
		}
		return cachedChampionship{value: item, exists: exists}, nil
	})
	if err != nil {
		return championship.Championship{}, false, err
	}

	cached, _ := v.(cachedChampionship)
	return cached.value, cached.exists, nil
}

func (r *ChampionshipRepository) ListByUser(ctx context.Context, userID string) ([]championship.Championship, error) {
	v, _, err := r.cache.GetOrLoad(ctx, "championship:user:"+userID, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return append([]championship.Championship(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]championship.Championship)
	return append([]championship.Championship(nil), items...), nil
}

func (r *ChampionshipRepository) GetMember(ctx context.Context, championshipID, userID string) (championship.Member, bool, error) {
	v, _, err := r.cache.GetOrLoad(ctx, memberKeyPrefix(championshipID)+"user:"+userID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetMember(ctx, championshipID, userID)
		if err != nil {
			return nil, err
		}
		return cachedMember{value: item, exists: exists}, nil
	})
	if err != nil {
		return championship.Member{}, false, err
	}

	cached, _ := v.(cachedMember)
	return cached.value, cached.exists, nil
}

func (r *ChampionshipRepository) ListMembers(ctx context.Context, championshipID string) ([]championship.Member, error) {
	v, _, err := r.cache.GetOrLoad(ctx, memberKeyPrefix(championshipID)+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.ListMembers(ctx, championshipID)
		if err != nil {
			return nil, err
		}
		return append([]championship.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]championship.Member)
	return append([]championship.Member(nil), items...), nil
}

func (r *ChampionshipRepository) AddMember(ctx context.Context, member championship.Member) error {
	if err := r.next.AddMember(ctx, member); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, memberKeyPrefix(member.ChampionshipID))
	r.cache.Delete(ctx, "championship:user:"+member.UserID)
	return nil
}

func (r *ChampionshipRepository) UpdateMemberRole(ctx context.Context, championshipID, userID string, role championship.Role) error {
	if err := r.next.UpdateMemberRole(ctx, championshipID, userID, role); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, memberKeyPrefix(championshipID))
	return nil
}

func memberKeyPrefix(championshipID string) string {
	return "championship:members:" + championshipID + ":"
}

type cachedChampionship struct {
	value  championship.Championship
	exists bool
}

type cachedMember struct {
	value  championship.Member
	exists bool
}
