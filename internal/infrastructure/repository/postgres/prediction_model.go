package postgres

import "time"

type predictionTableModel struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	MatchID        string    `db:"match_public_id"`
	ChampionshipID string    `db:"championship_public_id"`
	Answers        []byte    `db:"answers"`
	SubmittedAt    time.Time `db:"submitted_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type predictionInsertModel struct {
	UserID         string    `db:"user_id"`
	MatchID        string    `db:"match_public_id"`
	ChampionshipID string    `db:"championship_public_id"`
	Answers        string    `db:"answers"`
	SubmittedAt    time.Time `db:"submitted_at"`
}
