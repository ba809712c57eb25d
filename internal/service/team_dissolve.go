package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// RequestDissolve asks the managers to delete the caller's team.
func (s *TeamService) RequestDissolve(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.DissolveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}

	var (
		box outbox
		req *models.DissolveTeamRequest
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, ma, err := s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		pending, err := s.dissolves.HasPending(ctx, team.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check dissolve requests")
		}
		if pending {
			return appErrors.Clone(appErrors.ErrDuplicateRequest, "a dissolve request for this team is already waiting for review")
		}
		req = &models.DissolveTeamRequest{
			TeamID:    team.ID,
			LeaderID:  actor.UserID,
			Reason:    reason,
			Status:    models.DissolveStatusPending,
			CreatedAt: s.now().UTC(),
		}
		if err := s.dissolves.Create(ctx, req); err != nil {
			return duplicateAs(err, appErrors.ErrDuplicateRequest, "failed to create dissolve request")
		}
		for _, managerID := range ma.ManagerIDs() {
			box.add(&actor.UserID, managerID, models.NotificationTypeDissolveRequest, "Dissolve request",
				fmt.Sprintf("The leader of team %q in %q asked to dissolve it: %s", team.Name, ma.Title, reason), ma.ID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to request dissolve")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionDissolveRequest, "dissolve_team_request", req.ID, req)
	return req, nil
}

// DecideDissolve approves or rejects a pending dissolve request. Approval
// deletes the team with all of its members, invitations, requests and
// divisions, including the request row itself.
func (s *TeamService) DecideDissolve(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.DissolveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		box  outbox
		req  *models.DissolveTeamRequest
		maID string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.dissolves.GetByID(ctx, requestID)
		if err != nil {
			return lookupError(err, "dissolve request")
		}
		team, ma, err := s.lockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		maID = ma.ID
		if !ma.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		if req.Status != models.DissolveStatusPending {
			return appErrors.ErrRequestResolved
		}

		now := s.now().UTC()
		req.ReviewerID = &actor.UserID
		req.ReviewComment = optionalString(comment)
		req.RespondedAt = &now
		req.Status = models.DissolveStatusRejected
		if approve {
			req.Status = models.DissolveStatusApproved
		}
		if err := s.dissolves.Resolve(ctx, req); err != nil {
			if isNoRows(err) {
				return appErrors.ErrRequestResolved
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update dissolve request")
		}

		if !approve {
			content := fmt.Sprintf("Your request to dissolve team %q was rejected.", team.Name)
			if req.ReviewComment != nil {
				content += " Comment: " + *req.ReviewComment
			}
			box.add(&actor.UserID, team.LeaderID, models.NotificationTypeDissolveRequest, "Dissolve request rejected", content, ma.ID, team.ID)
			return nil
		}

		if err := s.teams.Delete(ctx, team.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dissolve team")
		}
		for _, userID := range team.UserIDs() {
			box.add(&actor.UserID, userID, models.NotificationTypeDissolveRequest, "Team dissolved",
				fmt.Sprintf("Team %q in %q has been dissolved.", team.Name, ma.Title), ma.ID, "")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to decide dissolve request")
	}

	box.flush(ctx, s.notifier)
	if req.Status == models.DissolveStatusApproved {
		s.invalidateRoster(ctx, maID)
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionDissolveDecide, "dissolve_team_request", req.ID, req)
	return req, nil
}
