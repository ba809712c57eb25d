package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// DivisionServiceDeps groups the collaborators of DivisionService.
type DivisionServiceDeps struct {
	Tx          transactor
	Assignments majorAssignmentStore
	Teams       teamStore
	Stages      stageStore
	Divisions   divisionStore
	Notifier    notifier
	Audit       auditLogger
	Validator   *validator.Validate
	Logger      *zap.Logger
	Now         func() time.Time
}

// DivisionService lets team leaders split work into roles per stage.
type DivisionService struct {
	tx          transactor
	assignments majorAssignmentStore
	teams       teamStore
	stages      stageStore
	divisions   divisionStore
	notifier    notifier
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewDivisionService constructs the service.
func NewDivisionService(deps DivisionServiceDeps) *DivisionService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &DivisionService{
		tx:          deps.Tx,
		assignments: deps.Assignments,
		teams:       deps.Teams,
		stages:      deps.Stages,
		divisions:   deps.Divisions,
		notifier:    deps.Notifier,
		audit:       deps.Audit,
		validator:   deps.Validator,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// AssignDivisions replaces every division of the team for the stage with the
// given roles. Confirmed teams may still reassign roles.
func (s *DivisionService) AssignDivisions(ctx context.Context, actor *models.JWTClaims, teamID, stageID string, req dto.AssignDivisionsRequest) ([]models.DivisionAssignment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var (
		box  outbox
		rows []models.TeamDivision
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return lookupError(err, "team")
		}
		if _, err := s.assignments.LockByID(ctx, team.MajorAssignmentID); err != nil {
			return lookupError(err, "major assignment")
		}
		if team, err = s.teams.GetByID(ctx, teamID); err != nil {
			return lookupError(err, "team")
		}
		if team.LeaderID != actor.UserID {
			return appErrors.ErrNotLeader
		}
		stage, err := s.stages.GetByID(ctx, stageID)
		if err != nil {
			return lookupError(err, "stage")
		}
		if stage.MajorAssignmentID != team.MajorAssignmentID {
			return appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}

		rows, err = s.buildRows(ctx, actor, team, stage, req.Roles)
		if err != nil {
			return err
		}
		if err := s.divisions.ReplaceForTeamStage(ctx, team.ID, stage.ID, rows); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save divisions")
		}

		notified := make(map[string]struct{})
		for _, row := range rows {
			memberID := *row.MemberID
			if memberID == team.LeaderID {
				continue
			}
			if _, ok := notified[memberID]; ok {
				continue
			}
			notified[memberID] = struct{}{}
			box.add(&actor.UserID, memberID, models.NotificationTypeStage, "Roles updated",
				fmt.Sprintf("Your leader assigned you roles in team %q for stage %q: %s.", team.Name, stage.Name, strings.Join(rolesOf(rows, memberID), ", ")),
				team.MajorAssignmentID, team.ID)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to assign divisions")
	}

	box.flush(ctx, s.notifier)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionDivisionAssign, "team", teamID,
		map[string]interface{}{"stage_id": stageID, "roles": len(req.Roles)})
	return models.GroupDivisions(rows), nil
}

func (s *DivisionService) buildRows(ctx context.Context, actor *models.JWTClaims, team *models.Team, stage *models.Stage, roles []dto.DivisionRoleInput) ([]models.TeamDivision, error) {
	at := s.now().UTC()
	rows := make([]models.TeamDivision, 0, len(roles))
	for _, role := range roles {
		name := strings.TrimSpace(role.RoleName)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "every role needs a name")
		}
		if len(role.MemberIDs) == 0 {
			return nil, appErrors.Clone(appErrors.ErrEmptyRole, fmt.Sprintf("role %q needs at least one member", name))
		}
		if role.DivisionRoleID != nil {
			defined, err := s.stages.GetRole(ctx, *role.DivisionRoleID)
			if err != nil {
				return nil, lookupError(err, "division role")
			}
			if defined.StageID != stage.ID {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "division role not found")
			}
		}
		seen := make(map[string]struct{}, len(role.MemberIDs))
		for _, memberID := range role.MemberIDs {
			if !team.Includes(memberID) {
				return nil, appErrors.ErrNotTeamMember
			}
			if _, dup := seen[memberID]; dup {
				continue
			}
			seen[memberID] = struct{}{}
			member := memberID
			rows = append(rows, models.TeamDivision{
				TeamID:          team.ID,
				StageID:         stage.ID,
				DivisionRoleID:  role.DivisionRoleID,
				RoleName:        name,
				RoleDescription: role.RoleDescription,
				MemberID:        &member,
				AssignedAt:      at,
				AssignedBy:      &actor.UserID,
			})
		}
	}
	return rows, nil
}

// ListDivisions returns the grouped divisions of a team for a stage. Team
// members and managers may read them.
func (s *DivisionService) ListDivisions(ctx context.Context, actor *models.JWTClaims, teamID, stageID string) ([]models.DivisionAssignment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, "team")
	}
	if !team.Includes(actor.UserID) {
		ma, err := s.assignments.GetByID(ctx, team.MajorAssignmentID)
		if err != nil {
			return nil, lookupError(err, "major assignment")
		}
		if !ma.CanManage(actor.UserID, actor.Role) {
			return nil, appErrors.ErrForbidden
		}
	}
	rows, err := s.divisions.ListByTeamStage(ctx, team.ID, stageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list divisions")
	}
	return models.GroupDivisions(rows), nil
}

func rolesOf(rows []models.TeamDivision, memberID string) []string {
	names := make([]string, 0, 1)
	for _, row := range rows {
		if row.MemberID != nil && *row.MemberID == memberID {
			names = append(names, row.RoleName)
		}
	}
	return names
}
