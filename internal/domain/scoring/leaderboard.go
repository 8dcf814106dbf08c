package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

var (
	ErrCorruptResult       = errors.New("corrupt result")
	ErrDuplicatePrediction = errors.New("duplicate prediction")
	errNotContributing     = errors.New("match does not contribute")
)

// Aggregate folds finished matches into ranked per-participant totals. Every
// participant gets a row even without predictions. Corrupt records are skipped
// and reported, never aborting the fold.
func (s Scorer) Aggregate(in Input) Report {
	rows := make(map[string]*LeaderboardRow, len(in.ParticipantIDs))
	for _, id := range in.ParticipantIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := rows[id]; ok {
			continue
		}
		rows[id] = &LeaderboardRow{UserID: id}
	}

	var skipped []Skipped
	for _, m := range in.Matches {
		result, ok := in.ResultsByMatch[m.ID]
		if err := checkContributing(m, result, ok); err != nil {
			if !errors.Is(err, errNotContributing) {
				skipped = append(skipped, Skipped{MatchID: m.ID, Err: err})
			}
			continue
		}

		seen := make(map[string]struct{})
		for _, p := range in.PredictionsByMatch[m.ID] {
			row, known := rows[p.UserID]
			if !known {
				continue
			}
			if err := checkPrediction(m, p, seen); err != nil {
				skipped = append(skipped, Skipped{MatchID: m.ID, UserID: p.UserID, Err: err})
				continue
			}
			line := s.Score(m, p, result)
			row.TotalPoints += line.PointsAwarded
			row.TotalCorrect += line.CorrectCount
			row.TotalPredictions++
		}
	}

	out := make([]LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	SortRows(out)

	return Report{Rows: out, Skipped: skipped}
}

// Aggregate uses the default string comparator.
func Aggregate(in Input) Report {
	return NewScorer(nil).Aggregate(in)
}

// AggregateUser is the global variant: the same fold scoped to one user across the
// union of matches in Input. Lines are ordered by match start time.
func (s Scorer) AggregateUser(userID string, in Input) (UserStats, []Skipped) {
	stats := UserStats{UserID: userID}
	var skipped []Skipped
	seenMatches := make(map[string]struct{}, len(in.Matches))

	for _, m := range in.Matches {
		if _, dup := seenMatches[m.ID]; dup {
			continue
		}
		seenMatches[m.ID] = struct{}{}

		result, ok := in.ResultsByMatch[m.ID]
		if err := checkContributing(m, result, ok); err != nil {
			if !errors.Is(err, errNotContributing) {
				skipped = append(skipped, Skipped{MatchID: m.ID, Err: err})
			}
			continue
		}

		seen := make(map[string]struct{})
		for _, p := range in.PredictionsByMatch[m.ID] {
			if p.UserID != userID {
				continue
			}
			if err := checkPrediction(m, p, seen); err != nil {
				skipped = append(skipped, Skipped{MatchID: m.ID, UserID: p.UserID, Err: err})
				continue
			}
			line := s.Score(m, p, result)
			stats.TotalPoints += line.PointsAwarded
			stats.TotalCorrect += line.CorrectCount
			stats.TotalPredictions++
			stats.Lines = append(stats.Lines, line)
		}
	}

	sort.SliceStable(stats.Lines, func(i, j int) bool {
		if !stats.Lines[i].StartTime.Equal(stats.Lines[j].StartTime) {
			return stats.Lines[i].StartTime.Before(stats.Lines[j].StartTime)
		}
		return stats.Lines[i].MatchID < stats.Lines[j].MatchID
	})

	return stats, skipped
}

// SortRows orders by points desc, correct answers desc, then user id, and assigns
// dense ranks on points.
func SortRows(rows []LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].TotalCorrect != rows[j].TotalCorrect {
			return rows[i].TotalCorrect > rows[j].TotalCorrect
		}
		return rows[i].UserID < rows[j].UserID
	})

	lastPoints := 0
	rank := 0
	for idx := range rows {
		if idx == 0 || rows[idx].TotalPoints != lastPoints {
			rank++
			lastPoints = rows[idx].TotalPoints
		}
		rows[idx].Rank = rank
	}
}

func checkContributing(m match.Match, result match.Result, hasResult bool) error {
	if m.Status != match.StatusFinished || !hasResult {
		return errNotContributing
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if result.Answers == nil {
		return fmt.Errorf("%w: match=%s answers are missing", ErrCorruptResult, m.ID)
	}
	if result.MatchID != "" && result.MatchID != m.ID {
		return fmt.Errorf("%w: result belongs to match=%s, expected %s", ErrCorruptResult, result.MatchID, m.ID)
	}
	return nil
}

func checkPrediction(m match.Match, p prediction.Prediction, seen map[string]struct{}) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.MatchID != m.ID {
		return fmt.Errorf("%w: user=%s prediction for match=%s listed under %s", prediction.ErrCorruptPrediction, p.UserID, p.MatchID, m.ID)
	}
	if _, dup := seen[p.UserID]; dup {
		return fmt.Errorf("%w: user=%s match=%s", ErrDuplicatePrediction, p.UserID, m.ID)
	}
	seen[p.UserID] = struct{}{}
	return nil
}
