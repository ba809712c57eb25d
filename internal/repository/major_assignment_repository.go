package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

// MajorAssignmentRepository persists major assignments and their co-teachers.
type MajorAssignmentRepository struct {
	db *sqlx.DB
}

// NewMajorAssignmentRepository constructs the repository.
func NewMajorAssignmentRepository(db *sqlx.DB) *MajorAssignmentRepository {
	return &MajorAssignmentRepository{db: db}
}

const majorAssignmentColumns = `id, class_id, title, description, start_date, end_date, min_team_size, max_team_size, creator_id, active, created_at, updated_at`

// Create inserts the assignment and its co-managing teachers.
func (r *MajorAssignmentRepository) Create(ctx context.Context, ma *models.MajorAssignment) error {
	if ma.ID == "" {
		ma.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ma.CreatedAt.IsZero() {
		ma.CreatedAt = now
	}
	ma.UpdatedAt = ma.CreatedAt
	conn := database.Conn(ctx, r.db)
	const query = `INSERT INTO major_assignments (` + majorAssignmentColumns + `)
	VALUES (:id, :class_id, :title, :description, :start_date, :end_date, :min_team_size, :max_team_size, :creator_id, :active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, conn, query, ma); err != nil {
		return fmt.Errorf("create major assignment: %w", mapWriteError(err))
	}
	return r.insertTeachers(ctx, conn, ma.ID, ma.TeacherIDs)
}

// Update rewrites mutable columns and replaces the co-teacher set.
func (r *MajorAssignmentRepository) Update(ctx context.Context, ma *models.MajorAssignment) error {
	ma.UpdatedAt = time.Now().UTC()
	conn := database.Conn(ctx, r.db)
	const query = `UPDATE major_assignments SET title = :title, description = :description, start_date = :start_date,
	end_date = :end_date, min_team_size = :min_team_size, max_team_size = :max_team_size, active = :active, updated_at = :updated_at
	WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, conn, query, ma)
	if err != nil {
		return fmt.Errorf("update major assignment: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM major_assignment_teachers WHERE major_assignment_id = $1`, ma.ID); err != nil {
		return fmt.Errorf("clear major assignment teachers: %w", err)
	}
	return r.insertTeachers(ctx, conn, ma.ID, ma.TeacherIDs)
}

func (r *MajorAssignmentRepository) insertTeachers(ctx context.Context, conn sqlx.ExtContext, id string, teacherIDs []string) error {
	if len(teacherIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO major_assignment_teachers (major_assignment_id, teacher_id)
	SELECT $1, t FROM unnest($2::uuid[]) AS t ON CONFLICT DO NOTHING`
	if _, err := conn.ExecContext(ctx, query, id, pq.Array(teacherIDs)); err != nil {
		return fmt.Errorf("insert major assignment teachers: %w", err)
	}
	return nil
}

// GetByID fetches an assignment with its co-teachers.
func (r *MajorAssignmentRepository) GetByID(ctx context.Context, id string) (*models.MajorAssignment, error) {
	return r.get(ctx, `SELECT `+majorAssignmentColumns+` FROM major_assignments WHERE id = $1`, id)
}

// LockByID fetches an assignment holding a row lock until the surrounding
// transaction ends. Team formation writes serialise on it.
func (r *MajorAssignmentRepository) LockByID(ctx context.Context, id string) (*models.MajorAssignment, error) {
	return r.get(ctx, `SELECT `+majorAssignmentColumns+` FROM major_assignments WHERE id = $1 FOR UPDATE`, id)
}

func (r *MajorAssignmentRepository) get(ctx context.Context, query, id string) (*models.MajorAssignment, error) {
	conn := database.Conn(ctx, r.db)
	var ma models.MajorAssignment
	if err := sqlx.GetContext(ctx, conn, &ma, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get major assignment: %w", err)
	}
	teachers, err := r.teacherIDs(ctx, conn, []string{ma.ID})
	if err != nil {
		return nil, err
	}
	ma.TeacherIDs = teachers[ma.ID]
	return &ma, nil
}

func (r *MajorAssignmentRepository) teacherIDs(ctx context.Context, conn sqlx.ExtContext, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []struct {
		MajorAssignmentID string `db:"major_assignment_id"`
		TeacherID         string `db:"teacher_id"`
	}
	const query = `SELECT major_assignment_id, teacher_id FROM major_assignment_teachers
	WHERE major_assignment_id = ANY($1) ORDER BY teacher_id`
	if err := sqlx.SelectContext(ctx, conn, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list major assignment teachers: %w", err)
	}
	for _, row := range rows {
		result[row.MajorAssignmentID] = append(result[row.MajorAssignmentID], row.TeacherID)
	}
	return result, nil
}

// List returns assignments matching the filter, newest first, with a total count.
func (r *MajorAssignmentRepository) List(ctx context.Context, filter models.MajorAssignmentFilter) ([]models.MajorAssignment, int, error) {
	conn := database.Conn(ctx, r.db)
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		conditions = append(conditions, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM major_assignments%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		majorAssignmentColumns, where, size, (page-1)*size)
	var items []models.MajorAssignment
	if err := sqlx.SelectContext(ctx, conn, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list major assignments: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, conn, &total, `SELECT COUNT(*) FROM major_assignments`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count major assignments: %w", err)
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	teachers, err := r.teacherIDs(ctx, conn, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].TeacherIDs = teachers[items[i].ID]
	}
	return items, total, nil
}

// Delete removes the assignment with its stages, roles and co-teachers. Teams
// must be removed first through TeamRepository.Delete.
func (r *MajorAssignmentRepository) Delete(ctx context.Context, id string) error {
	conn := database.Conn(ctx, r.db)
	statements := []struct {
		label string
		query string
	}{
		{"team divisions", `DELETE FROM team_divisions WHERE stage_id IN (SELECT id FROM stages WHERE major_assignment_id = $1)`},
		{"division roles", `DELETE FROM division_roles WHERE stage_id IN (SELECT id FROM stages WHERE major_assignment_id = $1)`},
		{"stages", `DELETE FROM stages WHERE major_assignment_id = $1`},
		{"teachers", `DELETE FROM major_assignment_teachers WHERE major_assignment_id = $1`},
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt.query, id); err != nil {
			return fmt.Errorf("delete major assignment %s: %w", stmt.label, err)
		}
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM major_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete major assignment: %w", err)
	}
	return requireAffected(result)
}
