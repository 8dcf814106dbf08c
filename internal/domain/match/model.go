package match

import (
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionWinner     QuestionType = "WINNER"
	QuestionExactScore QuestionType = "EXACT_SCORE"
	QuestionOverUnder  QuestionType = "OVER_UNDER"
	QuestionChoice     QuestionType = "CHOICE"
)

func ParseQuestionType(value string) (QuestionType, bool) {
	switch QuestionType(strings.ToUpper(strings.TrimSpace(value))) {
	case QuestionWinner:
		return QuestionWinner, true
	case QuestionExactScore:
		return QuestionExactScore, true
	case QuestionOverUnder:
		return QuestionOverUnder, true
	case QuestionChoice:
		return QuestionChoice, true
	default:
		return "", false
	}
}

const (
	AnswerOver  = "OVER"
	AnswerUnder = "UNDER"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusFinished  Status = "FINISHED"
)

// Question is immutable once its match is created.
type Question struct {
	ID        string
	Type      QuestionType
	Label     string
	Points    int
	Options   []string
	Threshold *float64
}

// Match is one scheduled contest inside a championship. StartTime is the lock instant.
type Match struct {
	ID             string
	ChampionshipID string
	Player1        string
	Player2        string
	StartTime      time.Time
	Status         Status
	Questions      []Question
	CreatedBy      string
	CreatedAt      time.Time
}

// Answers maps question id to a submitted or official value.
type Answers map[string]any

// Result is the official answer set. Recording it finishes the match.
type Result struct {
	MatchID    string
	Answers    Answers
	RecordedBy string
	RecordedAt time.Time
}

func (m Match) QuestionByID(questionID string) (Question, bool) {
	for _, q := range m.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return Question{}, false
}

func (m Match) MaxPoints() int {
	total := 0
	for _, q := range m.Questions {
		total += q.Points
	}
	return total
}

func (m Match) IsFinished() bool {
	return m.Status == StatusFinished
}

func CloneAnswers(in Answers) Answers {
	if in == nil {
		return nil
	}
	out := make(Answers, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func CloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, 0, len(in))
	for _, q := range in {
		copied := q
		copied.Options = append([]string(nil), q.Options...)
		if q.Threshold != nil {
			threshold := *q.Threshold
			copied.Threshold = &threshold
		}
		out = append(out, copied)
	}
	return out
}
