package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/activity"
	"github.com/riskibarqy/prediction-league/internal/domain/reward"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type RewardLedger struct {
	db *sqlx.DB
}

func NewRewardLedger(db *sqlx.DB) *RewardLedger {
	return &RewardLedger{db: db}
}

// TryClaim inserts the claim row with its XP. The unique (user, reward, period)
// index decides between concurrent claimers.
func (l *RewardLedger) TryClaim(ctx context.Context, record reward.ClaimRecord) (reward.ClaimOutcome, error) {
	claimedAt := record.ClaimedAt.UTC()
	if claimedAt.IsZero() {
		claimedAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("reward_claims", rewardClaimInsertModel{
		UserID:    record.UserID,
		RewardID:  record.RewardID,
		PeriodKey: record.PeriodKey,
		XPGranted: record.XPGranted,
		ClaimedAt: claimedAt,
	}, "ON CONFLICT (user_id, reward_id, period_key) DO NOTHING RETURNING id")
	if err != nil {
		return reward.OutcomeFailed, fmt.Errorf("build claim reward query: %w", err)
	}

	var ids []int64
	if err := l.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return reward.OutcomeFailed, fmt.Errorf("claim reward user=%s reward=%s period=%s: %w", record.UserID, record.RewardID, record.PeriodKey, err)
	}
	if len(ids) == 0 {
		return reward.OutcomeAlreadyClaimed, nil
	}
	return reward.OutcomeGranted, nil
}

func (l *RewardLedger) HasClaim(ctx context.Context, userID, rewardID, periodKey string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("reward_claims").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("reward_id", rewardID),
			qb.Eq("period_key", periodKey),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build has claim query: %w", err)
	}

	var count int
	if err := l.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("has claim: %w", err)
	}
	return count > 0, nil
}

func (l *RewardLedger) ListClaimsByUser(ctx context.Context, userID string) ([]reward.ClaimRecord, error) {
	query, args, err := qb.Select("*").From("reward_claims").
		Where(qb.Eq("user_id", userID)).
		OrderBy("claimed_at DESC", "reward_id", "period_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list claims query: %w", err)
	}

	var rows []rewardClaimTableModel
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	out := make([]reward.ClaimRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, reward.ClaimRecord{
			UserID:    row.UserID,
			RewardID:  row.RewardID,
			PeriodKey: row.PeriodKey,
			XPGranted: row.XPGranted,
			ClaimedAt: row.ClaimedAt.UTC(),
		})
	}
	return out, nil
}

func (l *RewardLedger) TotalXP(ctx context.Context, userID string) (int, error) {
	query, args, err := qb.Select("COALESCE(SUM(xp_granted), 0)").From("reward_claims").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build total xp query: %w", err)
	}

	var total int
	if err := l.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("total xp: %w", err)
	}
	return total, nil
}

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) RecordLogin(ctx context.Context, item activity.LoginDay) (bool, error) {
	query, args, err := qb.InsertModel("login_days", loginDayInsertModel{
		UserID: item.UserID,
		Day:    item.Day,
	}, "ON CONFLICT (user_id, login_day) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build record login query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record login user=%s day=%s: %w", item.UserID, item.Day, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected record login: %w", err)
	}
	return affected == 1, nil
}

func (r *ActivityRepository) ListDays(ctx context.Context, userID string, limit int) ([]string, error) {
	builder := qb.Select("to_char(login_day, 'YYYY-MM-DD')").From("login_days").
		Where(qb.Eq("user_id", userID)).
		OrderBy("login_day DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list login days query: %w", err)
	}

	var days []string
	if err := r.db.SelectContext(ctx, &days, query, args...); err != nil {
		return nil, fmt.Errorf("list login days: %w", err)
	}
	return days, nil
}
