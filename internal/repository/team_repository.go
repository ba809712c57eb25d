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

// TeamRepository persists teams and their members.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs the repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `t.id, t.major_assignment_id, t.name, t.leader_id, t.status, t.is_locked, t.confirmation_request_reason,
	t.reject_reason, t.confirmation_requested_at, t.confirmed_at, t.confirmed_by, t.created_at`

// Create inserts a team row.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	if team.Status == "" {
		team.Status = models.TeamStatusPending
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teams (id, major_assignment_id, name, leader_id, status, is_locked, confirmation_request_reason,
	reject_reason, confirmation_requested_at, confirmed_at, confirmed_by, created_at)
	VALUES (:id, :major_assignment_id, :name, :leader_id, :status, :is_locked, :confirmation_request_reason,
	:reject_reason, :confirmation_requested_at, :confirmed_at, :confirmed_by, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, team); err != nil {
		return fmt.Errorf("create team: %w", mapWriteError(err))
	}
	return nil
}

// GetByID loads a team with its members.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	conn := database.Conn(ctx, r.db)
	var team models.Team
	if err := sqlx.GetContext(ctx, conn, &team, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	if err := r.attachMembers(ctx, conn, []*models.Team{&team}); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListByMajorAssignment returns every team of an assignment with members.
func (r *TeamRepository) ListByMajorAssignment(ctx context.Context, majorAssignmentID string) ([]models.Team, error) {
	conn := database.Conn(ctx, r.db)
	var teams []models.Team
	query := `SELECT ` + teamColumns + ` FROM teams t WHERE t.major_assignment_id = $1 ORDER BY t.created_at ASC, t.id ASC`
	if err := sqlx.SelectContext(ctx, conn, &teams, query, majorAssignmentID); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	ptrs := make([]*models.Team, len(teams))
	for i := range teams {
		ptrs[i] = &teams[i]
	}
	if err := r.attachMembers(ctx, conn, ptrs); err != nil {
		return nil, err
	}
	return teams, nil
}

// FindByUser returns the team the user leads or belongs to within the
// assignment, or nil when the user is ungrouped.
func (r *TeamRepository) FindByUser(ctx context.Context, majorAssignmentID, userID string) (*models.Team, error) {
	conn := database.Conn(ctx, r.db)
	query := `SELECT ` + teamColumns + ` FROM teams t
	WHERE t.major_assignment_id = $1 AND (t.leader_id = $2 OR EXISTS (
		SELECT 1 FROM team_members m WHERE m.team_id = t.id AND m.user_id = $2))
	LIMIT 1`
	var team models.Team
	if err := sqlx.GetContext(ctx, conn, &team, query, majorAssignmentID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find team by user: %w", err)
	}
	if err := r.attachMembers(ctx, conn, []*models.Team{&team}); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) attachMembers(ctx context.Context, conn sqlx.ExtContext, teams []*models.Team) error {
	if len(teams) == 0 {
		return nil
	}
	ids := make([]string, len(teams))
	byID := make(map[string]*models.Team, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
		team.Members = []models.TeamMember{}
		byID[team.ID] = team
	}
	var members []models.TeamMember
	const query = `SELECT id, team_id, major_assignment_id, user_id, joined_at FROM team_members
	WHERE team_id = ANY($1) ORDER BY joined_at ASC, id ASC`
	if err := sqlx.SelectContext(ctx, conn, &members, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list team members: %w", err)
	}
	for _, member := range members {
		if team, ok := byID[member.TeamID]; ok {
			team.Members = append(team.Members, member)
		}
	}
	return nil
}

// UpdateConfirmation persists the confirmation columns of a team.
func (r *TeamRepository) UpdateConfirmation(ctx context.Context, team *models.Team) error {
	const query = `UPDATE teams SET status = :status, is_locked = :is_locked, confirmation_request_reason = :confirmation_request_reason,
	reject_reason = :reject_reason, confirmation_requested_at = :confirmation_requested_at, confirmed_at = :confirmed_at,
	confirmed_by = :confirmed_by WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, team)
	if err != nil {
		return fmt.Errorf("update team confirmation: %w", err)
	}
	return requireAffected(result)
}

// AddMember inserts a membership row. A second team for the same user in the
// same assignment yields ErrDuplicate.
func (r *TeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO team_members (id, team_id, major_assignment_id, user_id, joined_at)
	VALUES (:id, :team_id, :major_assignment_id, :user_id, :joined_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, member); err != nil {
		return fmt.Errorf("add team member: %w", mapWriteError(err))
	}
	return nil
}

// RemoveMember deletes a membership row along with the user's divisions in
// the team.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	conn := database.Conn(ctx, r.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM team_divisions WHERE team_id = $1 AND member_id = $2`, teamID, userID); err != nil {
		return fmt.Errorf("remove member divisions: %w", err)
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove team member: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a team and every row hanging off it, children first.
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	conn := database.Conn(ctx, r.db)
	statements := []struct {
		label string
		query string
	}{
		{"divisions", `DELETE FROM team_divisions WHERE team_id = $1`},
		{"invitations", `DELETE FROM team_invitations WHERE team_id = $1`},
		{"leave requests", `DELETE FROM leave_team_requests WHERE team_id = $1`},
		{"dissolve requests", `DELETE FROM dissolve_team_requests WHERE team_id = $1`},
		{"members", `DELETE FROM team_members WHERE team_id = $1`},
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt.query, id); err != nil {
			return fmt.Errorf("delete team %s: %w", stmt.label, err)
		}
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return requireAffected(result)
}
