package prediction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

var ErrCorruptPrediction = errors.New("corrupt prediction")

// Prediction is one user's answer set for one match, unique per (UserID, MatchID).
type Prediction struct {
	UserID      string
	MatchID     string
	Answers     match.Answers
	SubmittedAt time.Time
}

// Validate reports stored records that cannot be scored.
func (p Prediction) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: match=%s user id is empty", ErrCorruptPrediction, p.MatchID)
	}
	if strings.TrimSpace(p.MatchID) == "" {
		return fmt.Errorf("%w: user=%s match id is empty", ErrCorruptPrediction, p.UserID)
	}
	if p.Answers == nil {
		return fmt.Errorf("%w: user=%s match=%s answers are missing", ErrCorruptPrediction, p.UserID, p.MatchID)
	}
	return nil
}

func Clone(p Prediction) Prediction {
	copied := p
	copied.Answers = match.CloneAnswers(p.Answers)
	return copied
}

// GroupByMatch indexes predictions by match id, keeping input order inside each group.
func GroupByMatch(items []Prediction) map[string][]Prediction {
	out := make(map[string][]Prediction)
	for _, item := range items {
		out[item.MatchID] = append(out[item.MatchID], item)
	}
	return out
}
