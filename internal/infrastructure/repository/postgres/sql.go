package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func encodeAnswers(answers match.Answers) (string, error) {
	if answers == nil {
		return "{}", nil
	}
	raw, err := sonic.Marshal(answers)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeAnswers keeps an explicit JSON null as nil answers so corrupt rows stay detectable.
func decodeAnswers(raw []byte) (match.Answers, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out match.Answers
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeStoredAnswers reads answers for the read paths. A row that does not
// decode comes back with nil answers so the scorer reports it as skipped
// instead of the whole listing failing.
func decodeStoredAnswers(raw []byte, record string, keyvals ...any) match.Answers {
	answers, err := decodeAnswers(raw)
	if err != nil {
		args := append([]any{"record", record, "error", err}, keyvals...)
		logging.Default().Warn("stored answers unreadable, returning record without answers", args...)
		return nil
	}
	return answers
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalPayload(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
