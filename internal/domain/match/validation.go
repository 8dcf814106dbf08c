package match

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrNotOpen            = errors.New("match is locked for predictions")
	ErrAlreadyFinished    = errors.New("match result already recorded")
	ErrInvalidMatch       = errors.New("invalid match")
	ErrInvalidQuestion    = errors.New("invalid question")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrIncompleteAnswers  = errors.New("incomplete answers")
	ErrDuplicateQuestion  = errors.New("duplicate question id")
	ErrEmptyAnswerSet     = errors.New("empty answer set")
	ErrNonPositivePoints  = errors.New("question points must be positive")
	ErrMissingQuestionSet = errors.New("match requires at least one question")
)

const MaxQuestionsPerMatch = 20

var exactScorePattern = regexp.MustCompile(`^[0-9]+-[0-9]+$`)

// NormalizeQuestions trims, assigns missing ids (q1..qN) and validates a question set.
func NormalizeQuestions(in []Question) ([]Question, error) {
	if len(in) == 0 {
		return nil, ErrMissingQuestionSet
	}
	if len(in) > MaxQuestionsPerMatch {
		return nil, fmt.Errorf("%w: at most %d questions per match", ErrInvalidMatch, MaxQuestionsPerMatch)
	}

	out := make([]Question, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, q := range in {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = "q" + strconv.Itoa(i+1)
		}
		q.Label = strings.TrimSpace(q.Label)
		if parsed, ok := ParseQuestionType(string(q.Type)); ok {
			q.Type = parsed
		}
		options := make([]string, 0, len(q.Options))
		for _, opt := range q.Options {
			opt = strings.TrimSpace(opt)
			if opt != "" {
				options = append(options, opt)
			}
		}
		q.Options = options

		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = struct{}{}

		if err := ValidateQuestion(q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}

	return out, nil
}

func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidQuestion)
	}
	if _, ok := ParseQuestionType(string(q.Type)); !ok {
		return fmt.Errorf("%w: question=%s unsupported type %q", ErrInvalidQuestion, q.ID, q.Type)
	}
	if strings.TrimSpace(q.Label) == "" {
		return fmt.Errorf("%w: question=%s label is required", ErrInvalidQuestion, q.ID)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%w: question=%s points=%d", ErrNonPositivePoints, q.ID, q.Points)
	}

	switch q.Type {
	case QuestionChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question=%s choice requires at least two options", ErrInvalidQuestion, q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, ok := seen[opt]; ok {
				return fmt.Errorf("%w: question=%s duplicate option %q", ErrInvalidQuestion, q.ID, opt)
			}
			seen[opt] = struct{}{}
		}
	case QuestionOverUnder:
		if q.Threshold == nil {
			return fmt.Errorf("%w: question=%s over/under requires a threshold", ErrInvalidQuestion, q.ID)
		}
	}

	return nil
}

// Validate checks the invariants of a stored or freshly built match.
func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidMatch)
	}
	if strings.TrimSpace(m.ChampionshipID) == "" {
		return fmt.Errorf("%w: match=%s championship id is required", ErrInvalidMatch, m.ID)
	}
	if strings.TrimSpace(m.Player1) == "" || strings.TrimSpace(m.Player2) == "" {
		return fmt.Errorf("%w: match=%s both players are required", ErrInvalidMatch, m.ID)
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("%w: match=%s start time is required", ErrInvalidMatch, m.ID)
	}
	if m.Status != StatusScheduled && m.Status != StatusFinished {
		return fmt.Errorf("%w: match=%s unknown status %q", ErrInvalidMatch, m.ID, m.Status)
	}
	if len(m.Questions) == 0 {
		return fmt.Errorf("%w: match=%s", ErrMissingQuestionSet, m.ID)
	}
	seen := make(map[string]struct{}, len(m.Questions))
	for _, q := range m.Questions {
		if _, ok := seen[q.ID]; ok {
			return fmt.Errorf("%w: match=%s question=%s", ErrDuplicateQuestion, m.ID, q.ID)
		}
		seen[q.ID] = struct{}{}
		if err := ValidateQuestion(q); err != nil {
			return fmt.Errorf("match=%s: %w", m.ID, err)
		}
	}
	return nil
}

// ValidatePredictionAnswers accepts partial answer sets; unanswered questions score as incorrect.
func ValidatePredictionAnswers(m Match, answers Answers) error {
	if len(answers) == 0 {
		return ErrEmptyAnswerSet
	}
	for questionID, value := range answers {
		q, ok := m.QuestionByID(questionID)
		if !ok {
			return fmt.Errorf("%w: match=%s question=%s", ErrUnknownQuestion, m.ID, questionID)
		}
		if err := ValidateAnswerValue(q, value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateResultAnswers requires an official value for every question.
func ValidateResultAnswers(m Match, answers Answers) error {
	if len(answers) == 0 {
		return ErrEmptyAnswerSet
	}
	for questionID := range answers {
		if _, ok := m.QuestionByID(questionID); !ok {
			return fmt.Errorf("%w: match=%s question=%s", ErrUnknownQuestion, m.ID, questionID)
		}
	}
	for _, q := range m.Questions {
		value, ok := answers[q.ID]
		if !ok {
			return fmt.Errorf("%w: match=%s missing question=%s", ErrIncompleteAnswers, m.ID, q.ID)
		}
		if err := ValidateAnswerValue(q, value); err != nil {
			return err
		}
	}
	return nil
}

func ValidateAnswerValue(q Question, value any) error {
	text, ok := CanonicalAnswer(value)
	if !ok || strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: question=%s value must be a non-empty scalar", ErrInvalidAnswer, q.ID)
	}

	switch q.Type {
	case QuestionOverUnder:
		if text != AnswerOver && text != AnswerUnder {
			return fmt.Errorf("%w: question=%s expects %s or %s", ErrInvalidAnswer, q.ID, AnswerOver, AnswerUnder)
		}
	case QuestionExactScore:
		if !exactScorePattern.MatchString(text) {
			return fmt.Errorf("%w: question=%s expects a score like 2-1", ErrInvalidAnswer, q.ID)
		}
	}

	if len(q.Options) > 0 {
		for _, opt := range q.Options {
			if opt == text {
				return nil
			}
		}
		return fmt.Errorf("%w: question=%s value %q is not one of the options", ErrInvalidAnswer, q.ID, text)
	}

	return nil
}
