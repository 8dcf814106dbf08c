package scoring

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

// ScoreLine is the derived score of one (user, match) pair. It is never stored.
type ScoreLine struct {
	UserID        string
	MatchID       string
	PointsAwarded int
	CorrectCount  int
	QuestionCount int
	StartTime     time.Time
}

// Perfect reports whether every question of the match was answered correctly.
func (l ScoreLine) Perfect() bool {
	return l.QuestionCount > 0 && l.CorrectCount == l.QuestionCount
}

type LeaderboardRow struct {
	UserID           string
	TotalPoints      int
	TotalCorrect     int
	TotalPredictions int
	Rank             int
}

// UserStats is the per-user global variant of the leaderboard fold.
type UserStats struct {
	UserID            string
	TotalPoints       int
	TotalCorrect      int
	TotalPredictions  int
	ChampionshipCount int
	Lines             []ScoreLine
}

// Input is the stored state a leaderboard is folded from.
type Input struct {
	Matches            []match.Match
	PredictionsByMatch map[string][]prediction.Prediction
	ResultsByMatch     map[string]match.Result
	ParticipantIDs     []string
}

// Skipped describes a stored record left out of an aggregation.
type Skipped struct {
	MatchID string
	UserID  string
	Err     error
}

type Report struct {
	Rows    []LeaderboardRow
	Skipped []Skipped
}
