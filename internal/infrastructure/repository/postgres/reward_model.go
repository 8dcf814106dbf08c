package postgres

import "time"

type rewardClaimTableModel struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	RewardID  string    `db:"reward_id"`
	PeriodKey string    `db:"period_key"`
	XPGranted int       `db:"xp_granted"`
	ClaimedAt time.Time `db:"claimed_at"`
}

type rewardClaimInsertModel struct {
	UserID    string    `db:"user_id"`
	RewardID  string    `db:"reward_id"`
	PeriodKey string    `db:"period_key"`
	XPGranted int       `db:"xp_granted"`
	ClaimedAt time.Time `db:"claimed_at"`
}

type loginDayInsertModel struct {
	UserID string `db:"user_id"`
	Day    string `db:"login_day"`
}
