package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

// DivisionRepository persists team division rows.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository constructs the repository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

const teamDivisionColumns = `id, team_id, stage_id, division_role_id, role_name, role_description, member_id, assigned_at, assigned_by`

// ListByTeamStage returns rows for (team, stage) in insertion order.
func (r *DivisionRepository) ListByTeamStage(ctx context.Context, teamID, stageID string) ([]models.TeamDivision, error) {
	query := `SELECT ` + teamDivisionColumns + ` FROM team_divisions WHERE team_id = $1 AND stage_id = $2 ORDER BY assigned_at ASC, id ASC`
	var rows []models.TeamDivision
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &rows, query, teamID, stageID); err != nil {
		return nil, fmt.Errorf("list team divisions: %w", err)
	}
	return rows, nil
}

// ReplaceForTeamStage deletes every row for (team, stage) and inserts rows.
// Call it inside a transaction.
func (r *DivisionRepository) ReplaceForTeamStage(ctx context.Context, teamID, stageID string, rows []models.TeamDivision) error {
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM team_divisions WHERE team_id = $1 AND stage_id = $2`, teamID, stageID); err != nil {
		return fmt.Errorf("clear team divisions: %w", err)
	}
	for i := range rows {
		rows[i].TeamID = teamID
		rows[i].StageID = stageID
		if err := r.insert(ctx, conn, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// FindByTeamRole returns the row linking the team to a division role, or nil.
func (r *DivisionRepository) FindByTeamRole(ctx context.Context, teamID, roleID string) (*models.TeamDivision, error) {
	query := `SELECT ` + teamDivisionColumns + ` FROM team_divisions WHERE team_id = $1 AND division_role_id = $2
	ORDER BY member_id NULLS LAST LIMIT 1`
	var row models.TeamDivision
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &row, query, teamID, roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find team division: %w", err)
	}
	return &row, nil
}

// Save inserts the row, or updates its member when it already exists.
func (r *DivisionRepository) Save(ctx context.Context, row *models.TeamDivision) error {
	conn := database.Conn(ctx, r.db)
	if row.ID == "" {
		return r.insert(ctx, conn, row)
	}
	const query = `UPDATE team_divisions SET member_id = :member_id, assigned_at = :assigned_at, assigned_by = :assigned_by WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, conn, query, row)
	if err != nil {
		return fmt.Errorf("update team division: %w", err)
	}
	return requireAffected(result)
}

func (r *DivisionRepository) insert(ctx context.Context, conn sqlx.ExtContext, row *models.TeamDivision) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.AssignedAt.IsZero() {
		row.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO team_divisions (` + teamDivisionColumns + `)
	VALUES (:id, :team_id, :stage_id, :division_role_id, :role_name, :role_description, :member_id, :assigned_at, :assigned_by)`
	if _, err := sqlx.NamedExecContext(ctx, conn, query, row); err != nil {
		return fmt.Errorf("insert team division: %w", mapWriteError(err))
	}
	return nil
}
