package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

// StageRepository persists stages and the division roles they define.
type StageRepository struct {
	db *sqlx.DB
}

// NewStageRepository constructs the repository.
func NewStageRepository(db *sqlx.DB) *StageRepository {
	return &StageRepository{db: db}
}

const stageColumns = `s.id, s.major_assignment_id, s.name, s.description, s.stage_type, s.start_date, s.end_date,
	s.sort_order, s.status, s.is_locked, s.created_at, s.updated_at`

// Create inserts a stage.
func (r *StageRepository) Create(ctx context.Context, stage *models.Stage) error {
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	if stage.Status == "" {
		stage.Status = models.StageStatusPending
	}
	if stage.CreatedAt.IsZero() {
		stage.CreatedAt = time.Now().UTC()
	}
	stage.UpdatedAt = stage.CreatedAt
	const query = `INSERT INTO stages (id, major_assignment_id, name, description, stage_type, start_date, end_date,
	sort_order, status, is_locked, created_at, updated_at)
	VALUES (:id, :major_assignment_id, :name, :description, :stage_type, :start_date, :end_date,
	:sort_order, :status, :is_locked, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, stage); err != nil {
		return fmt.Errorf("create stage: %w", mapWriteError(err))
	}
	return nil
}

// GetByID fetches a stage.
func (r *StageRepository) GetByID(ctx context.Context, id string) (*models.Stage, error) {
	var stage models.Stage
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &stage, `SELECT `+stageColumns+` FROM stages s WHERE s.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return &stage, nil
}

// ListByMajorAssignment returns an assignment's stages in display order.
func (r *StageRepository) ListByMajorAssignment(ctx context.Context, majorAssignmentID string) ([]models.Stage, error) {
	var stages []models.Stage
	query := `SELECT ` + stageColumns + ` FROM stages s WHERE s.major_assignment_id = $1 ORDER BY s.sort_order ASC, s.start_date ASC`
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &stages, query, majorAssignmentID); err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	return stages, nil
}

// ListOpen returns unlocked pending and active stages of active assignments.
func (r *StageRepository) ListOpen(ctx context.Context) ([]models.Stage, error) {
	var stages []models.Stage
	query := `SELECT ` + stageColumns + ` FROM stages s
	JOIN major_assignments ma ON ma.id = s.major_assignment_id
	WHERE ma.active = TRUE AND s.status = ANY($1) AND NOT s.is_locked
	ORDER BY s.start_date ASC, s.sort_order ASC`
	open := pq.Array([]string{string(models.StageStatusPending), string(models.StageStatusActive)})
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &stages, query, open); err != nil {
		return nil, fmt.Errorf("list open stages: %w", err)
	}
	return stages, nil
}

// Transition sets the stage status to `to` if it currently has one of the
// `from` statuses. sql.ErrNoRows means the stage moved concurrently or was
// not in a permitted state or is locked.
func (r *StageRepository) Transition(ctx context.Context, id string, from []models.StageStatus, to models.StageStatus, at time.Time) error {
	allowed := make([]string, len(from))
	for i, status := range from {
		allowed[i] = string(status)
	}
	const query = `UPDATE stages SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4) AND NOT is_locked`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, to, at, pq.Array(allowed))
	if err != nil {
		return fmt.Errorf("transition stage: %w", err)
	}
	return requireAffected(result)
}

// SetLocked freezes or releases a stage.
func (r *StageRepository) SetLocked(ctx context.Context, id string, locked bool, at time.Time) error {
	const query = `UPDATE stages SET is_locked = $2, updated_at = $3 WHERE id = $1`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, locked, at)
	if err != nil {
		return fmt.Errorf("set stage lock: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a stage with its roles and team divisions.
func (r *StageRepository) Delete(ctx context.Context, id string) error {
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM team_divisions WHERE stage_id = $1`, id); err != nil {
		return fmt.Errorf("delete stage divisions: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM division_roles WHERE stage_id = $1`, id); err != nil {
		return fmt.Errorf("delete stage roles: %w", err)
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	return requireAffected(result)
}

const divisionRoleColumns = `id, stage_id, name, description, is_required, created_at`

// CreateRole inserts a division role.
func (r *StageRepository) CreateRole(ctx context.Context, role *models.DivisionRole) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO division_roles (` + divisionRoleColumns + `)
	VALUES (:id, :stage_id, :name, :description, :is_required, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, role); err != nil {
		return fmt.Errorf("create division role: %w", mapWriteError(err))
	}
	return nil
}

// GetRole fetches a division role.
func (r *StageRepository) GetRole(ctx context.Context, id string) (*models.DivisionRole, error) {
	var role models.DivisionRole
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &role, `SELECT `+divisionRoleColumns+` FROM division_roles WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get division role: %w", err)
	}
	return &role, nil
}

// ListRoles returns a stage's roles; requiredOnly filters to required ones.
func (r *StageRepository) ListRoles(ctx context.Context, stageID string, requiredOnly bool) ([]models.DivisionRole, error) {
	query := `SELECT ` + divisionRoleColumns + ` FROM division_roles WHERE stage_id = $1`
	if requiredOnly {
		query += ` AND is_required = TRUE`
	}
	query += ` ORDER BY created_at ASC, id ASC`
	var roles []models.DivisionRole
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &roles, query, stageID); err != nil {
		return nil, fmt.Errorf("list division roles: %w", err)
	}
	return roles, nil
}

// DeleteRole removes a role and the team divisions referencing it.
func (r *StageRepository) DeleteRole(ctx context.Context, id string) error {
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM team_divisions WHERE division_role_id = $1`, id); err != nil {
		return fmt.Errorf("delete role divisions: %w", err)
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM division_roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete division role: %w", err)
	}
	return requireAffected(result)
}
