package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// UpsertIfOpen reads the match row FOR SHARE so a concurrent result insert, which
// updates that row, is serialized against this write.
func (r *PredictionRepository) UpsertIfOpen(ctx context.Context, item prediction.Prediction, now time.Time) error {
	answers, err := encodeAnswers(item.Answers)
	if err != nil {
		return fmt.Errorf("marshal prediction answers: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert prediction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", item.MatchID)).
		Lock(qb.LockForShare).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock match query: %w", err)
	}
	var row matchTableModel
	if err := tx.GetContext(ctx, &row, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", match.ErrMatchNotFound, item.MatchID)
		}
		return fmt.Errorf("lock match for prediction: %w", err)
	}

	current := match.Match{
		ID:        row.PublicID,
		StartTime: row.StartTime,
		Status:    match.Status(row.Status),
	}
	if err := match.CanAcceptPrediction(current, now); err != nil {
		return err
	}

	query, args, err := qb.UpsertModel("predictions", predictionInsertModel{
		UserID:         item.UserID,
		MatchID:        item.MatchID,
		ChampionshipID: row.ChampionshipID,
		Answers:        answers,
		SubmittedAt:    item.SubmittedAt.UTC(),
	}, []string{"user_id", "match_public_id"}, "updated_at = NOW()")
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction user=%s match=%s: %w", item.UserID, item.MatchID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) Get(ctx context.Context, userID, matchID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("match_public_id", matchID),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}
	return toPrediction(row), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.list(ctx, "list predictions by match", qb.Eq("match_public_id", matchID))
}

func (r *PredictionRepository) ListByChampionship(ctx context.Context, championshipID string) ([]prediction.Prediction, error) {
	return r.list(ctx, "list predictions by championship", qb.Eq("championship_public_id", championshipID))
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	return r.list(ctx, "list predictions by user", qb.Eq("user_id", userID))
}

func (r *PredictionRepository) list(ctx context.Context, op string, cond qb.Condition) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(cond).
		OrderBy("match_public_id", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, toPrediction(row))
	}
	return out, nil
}

func toPrediction(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		UserID:      row.UserID,
		MatchID:     row.MatchID,
		Answers:     decodeStoredAnswers(row.Answers, "prediction", "user_id", row.UserID, "match_id", row.MatchID),
		SubmittedAt: row.SubmittedAt.UTC(),
	}
}
