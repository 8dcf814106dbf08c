package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create match: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	status := item.Status
	if status == "" {
		status = match.StatusScheduled
	}
	query, args, err := qb.InsertModel("matches", matchInsertModel{
		PublicID:       item.ID,
		ChampionshipID: item.ChampionshipID,
		Player1:        item.Player1,
		Player2:        item.Player2,
		StartTime:      item.StartTime.UTC(),
		Status:         string(status),
		CreatedBy:      item.CreatedBy,
		CreatedAt:      item.CreatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build create match query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create match: %w", err)
	}

	for position, q := range item.Questions {
		model := matchQuestionModel{
			MatchID:  item.ID,
			ID:       q.ID,
			Position: position,
			Type:     string(q.Type),
			Label:    q.Label,
			Points:   q.Points,
			Options:  append([]string{}, q.Options...),
		}
		if q.Threshold != nil {
			model.Threshold = sql.NullFloat64{Float64: *q.Threshold, Valid: true}
		}
		questionQuery, questionArgs, err := qb.InsertModel("match_questions", model, "")
		if err != nil {
			return fmt.Errorf("build create match question query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, questionQuery, questionArgs...); err != nil {
			return fmt.Errorf("create match question match=%s question=%s: %w", item.ID, q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create match: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	items, err := r.attachQuestions(ctx, []matchTableModel{row})
	if err != nil {
		return match.Match{}, false, err
	}
	return items[0], true, nil
}

func (r *MatchRepository) ListByChampionship(ctx context.Context, championshipID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("championship_public_id", championshipID)).
		OrderBy("start_time", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by championship query: %w", err)
	}
	return r.list(ctx, "list matches by championship", query, args)
}

func (r *MatchRepository) ListUpcoming(ctx context.Context, championshipID string, now time.Time) ([]match.Match, error) {
	conditions := []qb.Condition{
		qb.Eq("status", string(match.StatusScheduled)),
		qb.Gt("start_time", now.UTC()),
	}
	if championshipID != "" {
		conditions = append(conditions, qb.Eq("championship_public_id", championshipID))
	}
	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy("start_time", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list upcoming matches query: %w", err)
	}
	return r.list(ctx, "list upcoming matches", query, args)
}

func (r *MatchRepository) list(ctx context.Context, op, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return []match.Match{}, nil
	}
	return r.attachQuestions(ctx, rows)
}

func (r *MatchRepository) attachQuestions(ctx context.Context, rows []matchTableModel) ([]match.Match, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PublicID)
	}

	query, args, err := qb.Select("*").From("match_questions").
		Where(qb.InStrings("match_public_id", ids)).
		OrderBy("match_public_id", "position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match questions query: %w", err)
	}

	var questionRows []matchQuestionModel
	if err := r.db.SelectContext(ctx, &questionRows, query, args...); err != nil {
		return nil, fmt.Errorf("list match questions: %w", err)
	}

	questions := make(map[string][]match.Question, len(rows))
	for _, q := range questionRows {
		questions[q.MatchID] = append(questions[q.MatchID], toQuestion(q))
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Match{
			ID:             row.PublicID,
			ChampionshipID: row.ChampionshipID,
			Player1:        row.Player1,
			Player2:        row.Player2,
			StartTime:      row.StartTime.UTC(),
			Status:         match.Status(row.Status),
			Questions:      questions[row.PublicID],
			CreatedBy:      row.CreatedBy,
			CreatedAt:      row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// RecordResult flips the match to FINISHED with a conditional update, which holds the
// row lock until commit, and only then inserts the result.
func (r *MatchRepository) RecordResult(ctx context.Context, result match.Result) error {
	answers, err := encodeAnswers(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal match result answers: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx record match result: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	finishQuery, finishArgs, err := qb.Update("matches").
		Set("status", string(match.StatusFinished)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", result.MatchID),
			qb.Eq("status", string(match.StatusScheduled)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish match query: %w", err)
	}
	res, err := tx.ExecContext(ctx, finishQuery, finishArgs...)
	if err != nil {
		return fmt.Errorf("finish match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected finish match: %w", err)
	}
	if affected != 1 {
		exists, err := matchExists(ctx, tx, result.MatchID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", match.ErrMatchNotFound, result.MatchID)
		}
		return fmt.Errorf("%w: %s", match.ErrAlreadyFinished, result.MatchID)
	}

	insertQuery, insertArgs, err := qb.InsertModel("match_results", matchResultInsertModel{
		MatchID:    result.MatchID,
		Answers:    answers,
		RecordedBy: result.RecordedBy,
		RecordedAt: result.RecordedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match result query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", match.ErrAlreadyFinished, result.MatchID)
		}
		return fmt.Errorf("insert match result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record match result: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetResult(ctx context.Context, matchID string) (match.Result, bool, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("match_public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Result{}, false, fmt.Errorf("build get match result query: %w", err)
	}

	var row matchResultModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Result{}, false, nil
		}
		return match.Result{}, false, fmt.Errorf("get match result: %w", err)
	}
	return toResult(row), true, nil
}

func (r *MatchRepository) ListResultsByChampionship(ctx context.Context, championshipID string) ([]match.Result, error) {
	query, args, err := qb.Select("r.match_public_id", "r.answers", "r.recorded_by", "r.recorded_at").
		From("match_results r JOIN matches m ON m.public_id = r.match_public_id").
		Where(qb.Eq("m.championship_public_id", championshipID)).
		OrderBy("r.match_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match results query: %w", err)
	}

	var rows []matchResultModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}

	out := make([]match.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResult(row))
	}
	return out, nil
}

func matchExists(ctx context.Context, tx *sqlx.Tx, matchID string) (bool, error) {
	query, args, err := qb.Select("public_id").From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build match exists query: %w", err)
	}
	var id string
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("match exists: %w", err)
	}
	return true, nil
}

func toQuestion(row matchQuestionModel) match.Question {
	q := match.Question{
		ID:      row.ID,
		Type:    match.QuestionType(row.Type),
		Label:   row.Label,
		Points:  row.Points,
		Options: []string(row.Options),
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	if row.Threshold.Valid {
		threshold := row.Threshold.Float64
		q.Threshold = &threshold
	}
	return q
}

func toResult(row matchResultModel) match.Result {
	return match.Result{
		MatchID:    row.MatchID,
		Answers:    decodeStoredAnswers(row.Answers, "match_result", "match_id", row.MatchID),
		RecordedBy: row.RecordedBy,
		RecordedAt: row.RecordedAt.UTC(),
	}
}
