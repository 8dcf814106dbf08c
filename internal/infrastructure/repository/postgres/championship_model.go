package postgres

import "time"

type championshipTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Name        string     `db:"name"`
	InviteCode  string     `db:"invite_code"`
	OwnerUserID string     `db:"owner_user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type championshipInsertModel struct {
	PublicID    string    `db:"public_id"`
	Name        string    `db:"name"`
	InviteCode  string    `db:"invite_code"`
	OwnerUserID string    `db:"owner_user_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type championshipMemberTableModel struct {
	ID             int64     `db:"id"`
	ChampionshipID string    `db:"championship_public_id"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	JoinedAt       time.Time `db:"joined_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type championshipMemberInsertModel struct {
	ChampionshipID string    `db:"championship_public_id"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	JoinedAt       time.Time `db:"joined_at"`
}
