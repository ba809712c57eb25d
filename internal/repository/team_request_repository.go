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

// LeaveRequestRepository persists leave requests.
type LeaveRequestRepository struct {
	db *sqlx.DB
}

// NewLeaveRequestRepository constructs the repository.
func NewLeaveRequestRepository(db *sqlx.DB) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: db}
}

const leaveColumns = `id, team_id, member_id, reason, status, reviewer_id, review_comment, leader_responded_at, teacher_responded_at, created_at`

var openLeaveStatuses = []string{
	string(models.LeaveStatusPendingLeader),
	string(models.LeaveStatusLeaderRejected),
	string(models.LeaveStatusPendingTeacher),
}

// Create inserts a leave request. A second open request for the same
// member yields ErrDuplicate.
func (r *LeaveRequestRepository) Create(ctx context.Context, req *models.LeaveTeamRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.LeaveStatusPendingLeader
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO leave_team_requests (` + leaveColumns + `)
	VALUES (:id, :team_id, :member_id, :reason, :status, :reviewer_id, :review_comment, :leader_responded_at, :teacher_responded_at, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, req); err != nil {
		return fmt.Errorf("create leave request: %w", mapWriteError(err))
	}
	return nil
}

// GetByID fetches a leave request.
func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (*models.LeaveTeamRequest, error) {
	var req models.LeaveTeamRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_team_requests WHERE id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get leave request: %w", err)
	}
	return &req, nil
}

// HasOpen reports whether the member has a non-terminal request for the team.
func (r *LeaveRequestRepository) HasOpen(ctx context.Context, teamID, memberID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM leave_team_requests WHERE team_id = $1 AND member_id = $2 AND status = ANY($3))`
	var exists bool
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &exists, query, teamID, memberID, pq.Array(openLeaveStatuses)); err != nil {
		return false, fmt.Errorf("check open leave request: %w", err)
	}
	return exists, nil
}

// ListByTeam returns a team's leave requests, newest first.
func (r *LeaveRequestRepository) ListByTeam(ctx context.Context, teamID string) ([]models.LeaveTeamRequest, error) {
	var items []models.LeaveTeamRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_team_requests WHERE team_id = $1 ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, query, teamID); err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return items, nil
}

// Transition writes the request's new state only if it is still in from.
// sql.ErrNoRows signals a concurrent transition.
func (r *LeaveRequestRepository) Transition(ctx context.Context, req *models.LeaveTeamRequest, from models.LeaveStatus) error {
	const query = `UPDATE leave_team_requests SET status = $2, reviewer_id = $3, review_comment = $4,
	leader_responded_at = $5, teacher_responded_at = $6 WHERE id = $1 AND status = $7`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, req.ID, req.Status, req.ReviewerID, req.ReviewComment,
		req.LeaderRespondedAt, req.TeacherRespondedAt, from)
	if err != nil {
		return fmt.Errorf("transition leave request: %w", mapWriteError(err))
	}
	return requireAffected(result)
}

// DissolveRequestRepository persists dissolve requests.
type DissolveRequestRepository struct {
	db *sqlx.DB
}

// NewDissolveRequestRepository constructs the repository.
func NewDissolveRequestRepository(db *sqlx.DB) *DissolveRequestRepository {
	return &DissolveRequestRepository{db: db}
}

const dissolveColumns = `id, team_id, leader_id, reason, status, reviewer_id, review_comment, created_at, responded_at`

// Create inserts a pending dissolve request. A second pending request for the
// team yields ErrDuplicate.
func (r *DissolveRequestRepository) Create(ctx context.Context, req *models.DissolveTeamRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.DissolveStatusPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO dissolve_team_requests (` + dissolveColumns + `)
	VALUES (:id, :team_id, :leader_id, :reason, :status, :reviewer_id, :review_comment, :created_at, :responded_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, req); err != nil {
		return fmt.Errorf("create dissolve request: %w", mapWriteError(err))
	}
	return nil
}

// GetByID fetches a dissolve request.
func (r *DissolveRequestRepository) GetByID(ctx context.Context, id string) (*models.DissolveTeamRequest, error) {
	var req models.DissolveTeamRequest
	query := `SELECT ` + dissolveColumns + ` FROM dissolve_team_requests WHERE id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get dissolve request: %w", err)
	}
	return &req, nil
}

// HasPending reports whether the team has a pending dissolve request.
func (r *DissolveRequestRepository) HasPending(ctx context.Context, teamID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM dissolve_team_requests WHERE team_id = $1 AND status = $2)`
	var exists bool
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &exists, query, teamID, models.DissolveStatusPending); err != nil {
		return false, fmt.Errorf("check pending dissolve request: %w", err)
	}
	return exists, nil
}

// Resolve records the review of a pending request. sql.ErrNoRows signals it
// was already resolved.
func (r *DissolveRequestRepository) Resolve(ctx context.Context, req *models.DissolveTeamRequest) error {
	const query = `UPDATE dissolve_team_requests SET status = $2, reviewer_id = $3, review_comment = $4, responded_at = $5
	WHERE id = $1 AND status = $6`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, req.ID, req.Status, req.ReviewerID, req.ReviewComment,
		req.RespondedAt, models.DissolveStatusPending)
	if err != nil {
		return fmt.Errorf("resolve dissolve request: %w", err)
	}
	return requireAffected(result)
}
