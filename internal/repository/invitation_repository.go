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

// InvitationRepository persists team invitations.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs the repository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, team_id, inviter_id, invitee_id, status, created_at, responded_at`

// Create inserts a pending invitation. A second pending invitation for the
// same (team, invitee) yields ErrDuplicate.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.TeamInvitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationStatusPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO team_invitations (` + invitationColumns + `)
	VALUES (:id, :team_id, :inviter_id, :invitee_id, :status, :created_at, :responded_at)`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, inv); err != nil {
		return fmt.Errorf("create invitation: %w", mapWriteError(err))
	}
	return nil
}

// GetByID fetches an invitation.
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*models.TeamInvitation, error) {
	var inv models.TeamInvitation
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &inv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

// HasPending reports whether a pending invitation exists for the pair.
func (r *InvitationRepository) HasPending(ctx context.Context, teamID, inviteeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM team_invitations WHERE team_id = $1 AND invitee_id = $2 AND status = $3)`
	var exists bool
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &exists, query, teamID, inviteeID, models.InvitationStatusPending); err != nil {
		return false, fmt.Errorf("check pending invitation: %w", err)
	}
	return exists, nil
}

// ListForInvitee returns the invitee's invitations, newest first.
func (r *InvitationRepository) ListForInvitee(ctx context.Context, inviteeID string, status models.InvitationStatus) ([]models.TeamInvitation, error) {
	args := []interface{}{inviteeID}
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE invitee_id = $1`
	if status != "" {
		args = append(args, status)
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC`
	var items []models.TeamInvitation
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &items, query, args...); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return items, nil
}

// Resolve moves a pending invitation to its final status. It returns
// sql.ErrNoRows when the invitation is no longer pending.
func (r *InvitationRepository) Resolve(ctx context.Context, id string, status models.InvitationStatus, at time.Time) error {
	const query = `UPDATE team_invitations SET status = $2, responded_at = $3 WHERE id = $1 AND status = $4`
	result, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, status, at, models.InvitationStatusPending)
	if err != nil {
		return fmt.Errorf("resolve invitation: %w", err)
	}
	return requireAffected(result)
}
