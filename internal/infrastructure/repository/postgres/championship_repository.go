package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const inviteCodeConstraint = "uq_championships_invite_code"

var championshipColumns = []string{
	"c.id", "c.public_id", "c.name", "c.invite_code", "c.owner_user_id", "c.created_at", "c.updated_at", "c.deleted_at",
}

type ChampionshipRepository struct {
	db *sqlx.DB
}

func NewChampionshipRepository(db *sqlx.DB) *ChampionshipRepository {
	return &ChampionshipRepository{db: db}
}

func (r *ChampionshipRepository) Create(ctx context.Context, item championship.Championship, owner championship.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create championship: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("championships", championshipInsertModel{
		PublicID:    item.ID,
		Name:        item.Name,
		InviteCode:  item.InviteCode,
		OwnerUserID: item.OwnerUserID,
		CreatedAt:   item.CreatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build create championship query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && isUniqueViolation(err) && pqErr.Constraint == inviteCodeConstraint {
			return fmt.Errorf("%w: %s", championship.ErrDuplicateInviteCode, item.InviteCode)
		}
		return fmt.Errorf("create championship: %w", err)
	}

	owner.ChampionshipID = item.ID
	memberQuery, memberArgs, err := qb.InsertModel("championship_members", toMemberInsertModel(owner), "")
	if err != nil {
		return fmt.Errorf("build create championship owner query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, memberQuery, memberArgs...); err != nil {
		return fmt.Errorf("create championship owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create championship: %w", err)
	}
	return nil
}

func (r *ChampionshipRepository) GetByID(ctx context.Context, championshipID string) (championship.Championship, bool, error) {
	return r.getOne(ctx, "get championship by id", qb.Eq("c.public_id", championshipID))
}

func (r *ChampionshipRepository) GetByInviteCode(ctx context.Context, inviteCode string) (championship.Championship, bool, error) {
	return r.getOne(ctx, "get championship by invite code", qb.Eq("c.invite_code", inviteCode))
}

func (r *ChampionshipRepository) getOne(ctx context.Context, op string, cond qb.Condition) (championship.Championship, bool, error) {
	query, args, err := qb.Select(championshipColumns...).From("championships c").
		Where(cond, qb.IsNull("c.deleted_at")).
		ToSQL()
	if err != nil {
		return championship.Championship{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row championshipTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return championship.Championship{}, false, nil
		}
		return championship.Championship{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return toChampionship(row), true, nil
}

func (r *ChampionshipRepository) ListByUser(ctx context.Context, userID string) ([]championship.Championship, error) {
	query, args, err := qb.Select(championshipColumns...).
		From("championships c JOIN championship_members m ON m.championship_public_id = c.public_id").
		Where(
			qb.Eq("m.user_id", userID),
			qb.IsNull("c.deleted_at"),
		).
		OrderBy("c.created_at", "c.public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list championships by user query: %w", err)
	}

	var rows []championshipTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list championships by user: %w", err)
	}

	out := make([]championship.Championship, 0, len(rows))
	for _, row := range rows {
		out = append(out, toChampionship(row))
	}
	return out, nil
}

func (r *ChampionshipRepository) GetMember(ctx context.Context, championshipID, userID string) (championship.Member, bool, error) {
	query, args, err := qb.Select("*").From("championship_members").
		Where(
			qb.Eq("championship_public_id", championshipID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return championship.Member{}, false, fmt.Errorf("build get championship member query: %w", err)
	}

	var row championshipMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return championship.Member{}, false, nil
		}
		return championship.Member{}, false, fmt.Errorf("get championship member: %w", err)
	}
	return toMember(row), true, nil
}

func (r *ChampionshipRepository) ListMembers(ctx context.Context, championshipID string) ([]championship.Member, error) {
	query, args, err := qb.Select("*").From("championship_members").
		Where(qb.Eq("championship_public_id", championshipID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list championship members query: %w", err)
	}

	var rows []championshipMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list championship members: %w", err)
	}

	out := make([]championship.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMember(row))
	}
	return out, nil
}

func (r *ChampionshipRepository) AddMember(ctx context.Context, member championship.Member) error {
	query, args, err := qb.InsertModel("championship_members", toMemberInsertModel(member),
		"ON CONFLICT (championship_public_id, user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build add championship member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add championship member championship=%s user=%s: %w", member.ChampionshipID, member.UserID, err)
	}
	return nil
}

func (r *ChampionshipRepository) UpdateMemberRole(ctx context.Context, championshipID, userID string, role championship.Role) error {
	query, args, err := qb.Update("championship_members").
		Set("role", string(role)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("championship_public_id", championshipID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update championship member role query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update championship member role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update championship member role: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("member %s of championship %s not found", userID, championshipID)
	}
	return nil
}

func toChampionship(row championshipTableModel) championship.Championship {
	return championship.Championship{
		ID:          row.PublicID,
		Name:        row.Name,
		InviteCode:  row.InviteCode,
		OwnerUserID: row.OwnerUserID,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

func toMember(row championshipMemberTableModel) championship.Member {
	return championship.Member{
		ChampionshipID: row.ChampionshipID,
		UserID:         row.UserID,
		Role:           championship.Role(row.Role),
		JoinedAt:       row.JoinedAt.UTC(),
	}
}

func toMemberInsertModel(member championship.Member) championshipMemberInsertModel {
	joinedAt := member.JoinedAt.UTC()
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}
	return championshipMemberInsertModel{
		ChampionshipID: member.ChampionshipID,
		UserID:         member.UserID,
		Role:           string(member.Role),
		JoinedAt:       joinedAt,
	}
}
