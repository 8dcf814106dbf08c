package scoring

import (
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

// Scorer turns stored predictions and results into ScoreLines and leaderboards.
// It holds no state besides the comparator and is safe for concurrent use.
type Scorer struct {
	cmp Comparator
}

func NewScorer(cmp Comparator) Scorer {
	if cmp == nil {
		cmp = DefaultComparator()
	}
	return Scorer{cmp: cmp}
}

func (s Scorer) comparator() Comparator {
	if s.cmp == nil {
		return DefaultComparator()
	}
	return s.cmp
}

// Score computes one (user, match) line. A result without answers scores zero.
func (s Scorer) Score(m match.Match, p prediction.Prediction, result match.Result) ScoreLine {
	line := ScoreLine{
		UserID:        p.UserID,
		MatchID:       m.ID,
		QuestionCount: len(m.Questions),
		StartTime:     m.StartTime,
	}
	if result.Answers == nil {
		return line
	}

	cmp := s.comparator()
	for _, q := range m.Questions {
		submitted, ok := p.Answers[q.ID]
		if !ok {
			continue
		}
		if cmp.Equal(q.Type, submitted, result.Answers[q.ID]) {
			line.PointsAwarded += q.Points
			line.CorrectCount++
		}
	}

	return line
}

// Score uses the default string comparator.
func Score(m match.Match, p prediction.Prediction, result match.Result) ScoreLine {
	return NewScorer(nil).Score(m, p, result)
}

// ScoreMatch scores every prediction of a finished match in input order. Corrupt
// predictions are returned in the skipped list instead of a line.
func (s Scorer) ScoreMatch(m match.Match, predictions []prediction.Prediction, result match.Result) ([]ScoreLine, []Skipped) {
	if err := checkContributing(m, result, true); err != nil {
		return nil, []Skipped{{MatchID: m.ID, Err: err}}
	}

	lines := make([]ScoreLine, 0, len(predictions))
	var skipped []Skipped
	seen := make(map[string]struct{}, len(predictions))
	for _, p := range predictions {
		if err := checkPrediction(m, p, seen); err != nil {
			skipped = append(skipped, Skipped{MatchID: m.ID, UserID: p.UserID, Err: err})
			continue
		}
		lines = append(lines, s.Score(m, p, result))
	}
	return lines, skipped
}
