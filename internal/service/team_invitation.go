package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// Invite sends a pending invitation from the team leader to a classmate.
func (s *TeamService) Invite(ctx context.Context, actor *models.JWTClaims, teamID, inviteeID string) (*models.TeamInvitation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if inviteeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invitee_id is required")
	}

	var (
		box outbox
		inv *models.TeamInvitation
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, ma, err := s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		inv, err = s.createInvitation(ctx, team, ma, inviteeID)
		if err != nil {
			return err
		}
		box.add(&actor.UserID, inviteeID, models.NotificationTypeTeamInvitation, "Team invitation",
			fmt.Sprintf("You have been invited to join team %q for %q.", team.Name, ma.Title), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to send invitation")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionInvitationSend, "team_invitation", inv.ID, inv)
	return inv, nil
}

// createInvitation runs the invite checks after the leader check and inserts
// a pending invitation.
func (s *TeamService) createInvitation(ctx context.Context, team *models.Team, ma *models.MajorAssignment, inviteeID string) (*models.TeamInvitation, error) {
	if err := s.ensureFormationOpen(ctx, ma.ID); err != nil {
		return nil, err
	}
	if team.IsLocked {
		return nil, appErrors.ErrTeamLocked
	}
	isStudent, err := s.users.IsClassStudent(ctx, ma.ClassID, inviteeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class roster")
	}
	if !isStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in this class")
	}
	if err := s.ensureAvailable(ctx, ma.ID, inviteeID, appErrors.ErrAlreadyTeamed); err != nil {
		return nil, err
	}
	pending, err := s.invitations.HasPending(ctx, team.ID, inviteeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check invitations")
	}
	if pending {
		return nil, appErrors.ErrDuplicateInvitation
	}
	inv := &models.TeamInvitation{
		TeamID:    team.ID,
		InviterID: team.LeaderID,
		InviteeID: inviteeID,
		Status:    models.InvitationStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, duplicateAs(err, appErrors.ErrDuplicateInvitation, "failed to create invitation")
	}
	return inv, nil
}

// RespondToInvitation accepts or rejects a pending invitation. Accepting
// re-checks that the invitee is still free and the team still open; if not
// the invitation is cancelled and the conflict is returned.
func (s *TeamService) RespondToInvitation(ctx context.Context, actor *models.JWTClaims, invitationID string, accept bool) (*models.TeamInvitation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		box      outbox
		inv      *models.TeamInvitation
		maID     string
		conflict error
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invitations.GetByID(ctx, invitationID)
		if err != nil {
			return lookupError(err, "invitation")
		}
		if inv.InviteeID != actor.UserID {
			return appErrors.ErrNotInvitee
		}
		if inv.Status != models.InvitationStatusPending {
			return appErrors.ErrAlreadyResolved
		}
		team, ma, err := s.lockTeam(ctx, inv.TeamID)
		if err != nil {
			return err
		}
		maID = ma.ID

		status := models.InvitationStatusRejected
		if accept {
			status = models.InvitationStatusAccepted
			if team.IsLocked {
				status, conflict = models.InvitationStatusCancelled, appErrors.ErrTeamLocked
			} else if err := s.ensureAvailable(ctx, ma.ID, actor.UserID, appErrors.ErrAlreadyTeamed); err != nil {
				if appErrors.KindOf(err) == appErrors.KindInternal {
					return err
				}
				status, conflict = models.InvitationStatusCancelled, err
			}
		}

		now := s.now().UTC()
		if err := s.invitations.Resolve(ctx, inv.ID, status, now); err != nil {
			if isNoRows(err) {
				return appErrors.ErrAlreadyResolved
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invitation")
		}
		inv.Status = status
		inv.RespondedAt = &now

		switch status {
		case models.InvitationStatusAccepted:
			member := &models.TeamMember{
				TeamID:            team.ID,
				MajorAssignmentID: ma.ID,
				UserID:            actor.UserID,
				JoinedAt:          now,
			}
			if err := s.teams.AddMember(ctx, member); err != nil {
				return duplicateAs(err, appErrors.ErrAlreadyTeamed, "failed to add team member")
			}
			box.add(&actor.UserID, team.LeaderID, models.NotificationTypeTeamInvitation, "Invitation accepted",
				fmt.Sprintf("%s accepted your invitation to team %q.", displayName(actor), team.Name), ma.ID, team.ID)
		case models.InvitationStatusRejected:
			box.add(&actor.UserID, team.LeaderID, models.NotificationTypeTeamInvitation, "Invitation rejected",
				fmt.Sprintf("%s declined your invitation to team %q.", displayName(actor), team.Name), ma.ID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to respond to invitation")
	}

	box.flush(ctx, s.notifier)
	if inv.Status == models.InvitationStatusAccepted {
		s.invalidateRoster(ctx, maID)
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionInvitationRespond, "team_invitation", inv.ID, inv)
	if conflict != nil {
		return inv, conflict
	}
	return inv, nil
}

// ResendInvitation issues a new pending invitation after a rejection. The
// rejected invitation is kept as is.
func (s *TeamService) ResendInvitation(ctx context.Context, actor *models.JWTClaims, invitationID string) (*models.TeamInvitation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		box     outbox
		created *models.TeamInvitation
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		previous, err := s.invitations.GetByID(ctx, invitationID)
		if err != nil {
			return lookupError(err, "invitation")
		}
		team, ma, err := s.lockTeam(ctx, previous.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		if previous.Status != models.InvitationStatusRejected {
			return appErrors.ErrInvitationNotRejected
		}
		created, err = s.createInvitation(ctx, team, ma, previous.InviteeID)
		if err != nil {
			return err
		}
		box.add(&actor.UserID, previous.InviteeID, models.NotificationTypeTeamInvitation, "Team invitation",
			fmt.Sprintf("You have been invited again to join team %q for %q.", team.Name, ma.Title), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to resend invitation")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionInvitationSend, "team_invitation", created.ID, created)
	return created, nil
}

// ListMyInvitations returns invitations addressed to the caller.
func (s *TeamService) ListMyInvitations(ctx context.Context, actor *models.JWTClaims, status models.InvitationStatus) ([]models.TeamInvitation, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	items, err := s.invitations.ListForInvitee(ctx, actor.UserID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	if items == nil {
		items = []models.TeamInvitation{}
	}
	return items, nil
}

func displayName(actor *models.JWTClaims) string {
	if actor.FullName != "" {
		return actor.FullName
	}
	if actor.Email != "" {
		return actor.Email
	}
	return "A student"
}
