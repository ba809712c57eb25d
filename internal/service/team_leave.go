package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// RequestLeave files a leave request for the leader to review.
func (s *TeamService) RequestLeave(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.LeaveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}

	var (
		box outbox
		req *models.LeaveTeamRequest
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, ma, err := s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !team.HasMember(actor.UserID) {
			return appErrors.ErrNotMember
		}
		if team.IsLocked {
			return appErrors.ErrTeamLocked
		}
		open, err := s.leaves.HasOpen(ctx, team.ID, actor.UserID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check leave requests")
		}
		if open {
			return appErrors.ErrDuplicateRequest
		}
		req = &models.LeaveTeamRequest{
			TeamID:    team.ID,
			MemberID:  actor.UserID,
			Reason:    reason,
			Status:    models.LeaveStatusPendingLeader,
			CreatedAt: s.now().UTC(),
		}
		if err := s.leaves.Create(ctx, req); err != nil {
			return duplicateAs(err, appErrors.ErrDuplicateRequest, "failed to create leave request")
		}
		box.add(&actor.UserID, team.LeaderID, models.NotificationTypeLeaveRequest, "Leave request",
			fmt.Sprintf("%s asked to leave team %q: %s", displayName(actor), team.Name, reason), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to request leave")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionLeaveRequest, "leave_team_request", req.ID, req)
	return req, nil
}

// LeaderDecideLeave lets the leader approve or reject a pending request.
func (s *TeamService) LeaderDecideLeave(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.LeaveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.decideLeave(ctx, actor, requestID, approve, comment, false)
}

// TeacherDecideLeave lets a manager approve or reject an escalated request.
func (s *TeamService) TeacherDecideLeave(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.LeaveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.decideLeave(ctx, actor, requestID, approve, comment, true)
}

func (s *TeamService) decideLeave(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string, asTeacher bool) (*models.LeaveTeamRequest, error) {
	var (
		box  outbox
		req  *models.LeaveTeamRequest
		maID string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.leaves.GetByID(ctx, requestID)
		if err != nil {
			return lookupError(err, "leave request")
		}
		team, ma, err := s.lockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		maID = ma.ID

		from := models.LeaveStatusPendingLeader
		if asTeacher {
			from = models.LeaveStatusPendingTeacher
			if !ma.CanManage(actor.UserID, actor.Role) {
				return appErrors.ErrNotManager
			}
		} else if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		if req.Status != from {
			return appErrors.ErrRequestResolved
		}
		if approve && team.IsLocked {
			return appErrors.ErrTeamLocked
		}

		now := s.now().UTC()
		req.ReviewerID = &actor.UserID
		req.ReviewComment = optionalString(comment)
		switch {
		case approve:
			req.Status = models.LeaveStatusApproved
		case asTeacher:
			req.Status = models.LeaveStatusTeacherRejected
		default:
			req.Status = models.LeaveStatusLeaderRejected
		}
		if asTeacher {
			req.TeacherRespondedAt = &now
		} else {
			req.LeaderRespondedAt = &now
		}
		if err := s.leaves.Transition(ctx, req, from); err != nil {
			if isNoRows(err) {
				return appErrors.ErrRequestResolved
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update leave request")
		}

		if approve {
			if err := s.teams.RemoveMember(ctx, team.ID, req.MemberID); err != nil {
				if isNoRows(err) {
					return appErrors.Clone(appErrors.ErrNotMember, "the student is no longer a member of this team")
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove team member")
			}
			box.add(&actor.UserID, req.MemberID, models.NotificationTypeLeaveRequest, "Leave request approved",
				fmt.Sprintf("You have left team %q.", team.Name), ma.ID, team.ID)
			if asTeacher {
				box.add(&actor.UserID, team.LeaderID, models.NotificationTypeLeaveRequest, "Member left",
					fmt.Sprintf("A teacher approved a member's request to leave team %q.", team.Name), ma.ID, team.ID)
			}
			return nil
		}

		content := fmt.Sprintf("Your request to leave team %q was rejected.", team.Name)
		if req.ReviewComment != nil {
			content += " Comment: " + *req.ReviewComment
		}
		if !asTeacher {
			content += " You may escalate it to the teacher."
		}
		box.add(&actor.UserID, req.MemberID, models.NotificationTypeLeaveRequest, "Leave request rejected", content, ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to decide leave request")
	}

	box.flush(ctx, s.notifier)
	if req.Status == models.LeaveStatusApproved {
		s.invalidateRoster(ctx, maID)
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionLeaveDecide, "leave_team_request", req.ID, req)
	return req, nil
}

// EscalateLeave hands a leader-rejected request to the assignment managers.
func (s *TeamService) EscalateLeave(ctx context.Context, actor *models.JWTClaims, requestID string) (*models.LeaveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	var (
		box outbox
		req *models.LeaveTeamRequest
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.leaves.GetByID(ctx, requestID)
		if err != nil {
			return lookupError(err, "leave request")
		}
		if req.MemberID != actor.UserID {
			return appErrors.ErrNotRequester
		}
		if req.Status != models.LeaveStatusLeaderRejected {
			return appErrors.ErrNotEscalatable
		}
		team, ma, err := s.lockTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		req.Status = models.LeaveStatusPendingTeacher
		if err := s.leaves.Transition(ctx, req, models.LeaveStatusLeaderRejected); err != nil {
			if isNoRows(err) {
				return appErrors.ErrNotEscalatable
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to escalate leave request")
		}
		for _, managerID := range ma.ManagerIDs() {
			box.add(&actor.UserID, managerID, models.NotificationTypeLeaveRequest, "Leave request escalated",
				fmt.Sprintf("%s escalated a request to leave team %q in %q: %s", displayName(actor), team.Name, ma.Title, req.Reason), ma.ID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to escalate leave request")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionLeaveEscalate, "leave_team_request", req.ID, req)
	return req, nil
}

// ListLeaveRequests returns a team's leave requests to its leader or managers.
func (s *TeamService) ListLeaveRequests(ctx context.Context, actor *models.JWTClaims, teamID string) ([]models.LeaveTeamRequest, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, "team")
	}
	if !team.Includes(actor.UserID) {
		if _, err := s.managerAssignment(ctx, actor, team.MajorAssignmentID); err != nil {
			return nil, err
		}
	}
	items, err := s.leaves.ListByTeam(ctx, team.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave requests")
	}
	if items == nil {
		items = []models.LeaveTeamRequest{}
	}
	return items, nil
}
