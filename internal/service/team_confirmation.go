package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// RequestConfirmation asks the managers to confirm the caller's team. A team
// whose size is out of range must explain why.
func (s *TeamService) RequestConfirmation(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	var (
		box  outbox
		team *models.Team
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			ma  *models.MajorAssignment
			err error
		)
		team, ma, err = s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		if team.Status == models.TeamStatusConfirmed {
			return appErrors.ErrAlreadyConfirmed
		}
		if team.ConfirmationPending() {
			return appErrors.ErrConfirmationPending
		}
		sizeValid := ma.TeamSizeValid(team.Size())
		if !sizeValid && reason == "" {
			return appErrors.ErrReasonRequired
		}

		now := s.now().UTC()
		team.Status = models.TeamStatusPending
		team.ConfirmationRequestReason = optionalString(reason)
		team.ConfirmationRequestedAt = &now
		team.RejectReason = nil
		if err := s.teams.UpdateConfirmation(ctx, team); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to request confirmation")
		}

		content := fmt.Sprintf("Team %q in %q requests confirmation with %d students (allowed %d-%d).",
			team.Name, ma.Title, team.Size(), ma.MinTeamSize, ma.MaxTeamSize)
		if !sizeValid {
			content += " The team size is out of range. Reason: " + reason
		}
		for _, managerID := range ma.ManagerIDs() {
			box.add(&actor.UserID, managerID, models.NotificationTypeTeamConfirmation, "Team confirmation request", content, ma.ID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to request confirmation")
	}

	box.flush(ctx, s.notifier)
	s.invalidateRoster(ctx, team.MajorAssignmentID)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionConfirmRequest, "team", team.ID, team)
	return team, nil
}

// ConfirmTeam confirms a team and freezes its membership.
func (s *TeamService) ConfirmTeam(ctx context.Context, actor *models.JWTClaims, teamID string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		box  outbox
		team *models.Team
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			ma  *models.MajorAssignment
			err error
		)
		team, ma, err = s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !ma.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		if team.Status == models.TeamStatusConfirmed {
			return appErrors.ErrAlreadyConfirmed
		}

		now := s.now().UTC()
		team.Status = models.TeamStatusConfirmed
		team.ConfirmedAt = &now
		team.ConfirmedBy = &actor.UserID
		team.IsLocked = true
		team.RejectReason = nil
		if err := s.teams.UpdateConfirmation(ctx, team); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm team")
		}
		for _, userID := range team.UserIDs() {
			box.add(&actor.UserID, userID, models.NotificationTypeTeamConfirmation, "Team confirmed",
				fmt.Sprintf("Team %q in %q has been confirmed. Its membership is now locked.", team.Name, ma.Title), ma.ID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to confirm team")
	}

	box.flush(ctx, s.notifier)
	s.invalidateRoster(ctx, team.MajorAssignmentID)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionTeamConfirm, "team", team.ID, team)
	return team, nil
}

// RejectTeam rejects a team's confirmation request so the leader can fix the
// team and ask again.
func (s *TeamService) RejectTeam(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}

	var (
		box  outbox
		team *models.Team
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			ma  *models.MajorAssignment
			err error
		)
		team, ma, err = s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !ma.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		if team.IsLocked {
			return appErrors.ErrTeamLocked
		}

		team.Status = models.TeamStatusRejected
		team.RejectReason = &reason
		team.ConfirmationRequestedAt = nil
		if err := s.teams.UpdateConfirmation(ctx, team); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject team")
		}
		box.add(&actor.UserID, team.LeaderID, models.NotificationTypeTeamConfirmation, "Team not confirmed",
			fmt.Sprintf("Team %q in %q was not confirmed. Reason: %s", team.Name, ma.Title, reason), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to reject team")
	}

	box.flush(ctx, s.notifier)
	s.invalidateRoster(ctx, team.MajorAssignmentID)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionTeamReject, "team", team.ID, team)
	return team, nil
}
