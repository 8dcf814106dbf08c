package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type matchTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	ChampionshipID string    `db:"championship_public_id"`
	Player1        string    `db:"player1"`
	Player2        string    `db:"player2"`
	StartTime      time.Time `db:"start_time"`
	Status         string    `db:"status"`
	CreatedBy      string    `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type matchInsertModel struct {
	PublicID       string    `db:"public_id"`
	ChampionshipID string    `db:"championship_public_id"`
	Player1        string    `db:"player1"`
	Player2        string    `db:"player2"`
	StartTime      time.Time `db:"start_time"`
	Status         string    `db:"status"`
	CreatedBy      string    `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
}

type matchQuestionModel struct {
	MatchID   string          `db:"match_public_id"`
	ID        string          `db:"question_id"`
	Position  int             `db:"position"`
	Type      string          `db:"question_type"`
	Label     string          `db:"label"`
	Points    int             `db:"points"`
	Options   pq.StringArray  `db:"options"`
	Threshold sql.NullFloat64 `db:"threshold"`
}

type matchResultModel struct {
	MatchID    string    `db:"match_public_id"`
	Answers    []byte    `db:"answers"`
	RecordedBy string    `db:"recorded_by"`
	RecordedAt time.Time `db:"recorded_at"`
}

type matchResultInsertModel struct {
	MatchID    string    `db:"match_public_id"`
	Answers    string    `db:"answers"`
	RecordedBy string    `db:"recorded_by"`
	RecordedAt time.Time `db:"recorded_at"`
}
