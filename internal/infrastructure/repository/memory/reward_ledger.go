package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/reward"
)

type RewardLedger struct {
	mu     sync.Mutex
	claims map[claimKey]reward.ClaimRecord
}

type claimKey struct {
	userID    string
	rewardID  string
	periodKey string
}

func NewRewardLedger() *RewardLedger {
	return &RewardLedger{claims: make(map[claimKey]reward.ClaimRecord)}
}

func (l *RewardLedger) TryClaim(_ context.Context, record reward.ClaimRecord) (reward.ClaimOutcome, error) {
	key := claimKey{userID: record.UserID, rewardID: record.RewardID, periodKey: record.PeriodKey}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.claims[key]; exists {
		return reward.OutcomeAlreadyClaimed, nil
	}
	l.claims[key] = record
	return reward.OutcomeGranted, nil
}

func (l *RewardLedger) HasClaim(_ context.Context, userID, rewardID, periodKey string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, exists := l.claims[claimKey{userID: userID, rewardID: rewardID, periodKey: periodKey}]
	return exists, nil
}

func (l *RewardLedger) ListClaimsByUser(_ context.Context, userID string) ([]reward.ClaimRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]reward.ClaimRecord, 0)
	for key, record := range l.claims {
		if key.userID == userID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ClaimedAt.Equal(out[j].ClaimedAt) {
			return out[i].ClaimedAt.After(out[j].ClaimedAt)
		}
		if out[i].RewardID != out[j].RewardID {
			return out[i].RewardID < out[j].RewardID
		}
		return out[i].PeriodKey < out[j].PeriodKey
	})
	return out, nil
}

func (l *RewardLedger) TotalXP(_ context.Context, userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for key, record := range l.claims {
		if key.userID == userID {
			total += record.XPGranted
		}
	}
	return total, nil
}
