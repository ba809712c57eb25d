package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// TeamServiceDeps groups the collaborators of TeamService.
type TeamServiceDeps struct {
	Tx          transactor
	Assignments majorAssignmentStore
	Teams       teamStore
	Invitations invitationStore
	Leaves      leaveRequestStore
	Dissolves   dissolveRequestStore
	Stages      stageStore
	Users       userDirectory
	Notifier    notifier
	Audit       auditLogger
	Rosters     *RosterCache
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// TeamServiceOption configures the service.
type TeamServiceOption func(*TeamService)

// WithTeamClock overrides the time source.
func WithTeamClock(now func() time.Time) TeamServiceOption {
	return func(s *TeamService) {
		if now != nil {
			s.now = now
		}
	}
}

// TeamService implements team formation, leave and dissolve requests and the
// confirmation protocol.
type TeamService struct {
	tx          transactor
	assignments majorAssignmentStore
	teams       teamStore
	invitations invitationStore
	leaves      leaveRequestStore
	dissolves   dissolveRequestStore
	stages      stageStore
	users       userDirectory
	notifier    notifier
	audit       auditLogger
	rosters     *RosterCache
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewTeamService constructs the service with defaults.
func NewTeamService(deps TeamServiceDeps, opts ...TeamServiceOption) *TeamService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	svc := &TeamService{
		tx:          deps.Tx,
		assignments: deps.Assignments,
		teams:       deps.Teams,
		invitations: deps.Invitations,
		leaves:      deps.Leaves,
		dissolves:   deps.Dissolves,
		stages:      deps.Stages,
		users:       deps.Users,
		notifier:    deps.Notifier,
		audit:       deps.Audit,
		rosters:     deps.Rosters,
		validator:   deps.Validator,
		logger:      deps.Logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// CreateTeam opens a new team led by the caller.
func (s *TeamService) CreateTeam(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string, req dto.CreateTeamRequest) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	team := &models.Team{
		MajorAssignmentID: majorAssignmentID,
		Name:              req.Name,
		LeaderID:          actor.UserID,
		Status:            models.TeamStatusPending,
		Members:           []models.TeamMember{},
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ma, err := s.lockAssignment(ctx, majorAssignmentID)
		if err != nil {
			return err
		}
		if !ma.Active {
			return appErrors.ErrAssignmentInactive
		}
		isStudent, err := s.users.IsClassStudent(ctx, ma.ClassID, actor.UserID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class roster")
		}
		if !isStudent {
			return appErrors.ErrNotStudent
		}
		existing, err := s.teams.FindByUser(ctx, ma.ID, actor.UserID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check team membership")
		}
		if existing != nil {
			return appErrors.ErrAlreadyInTeam
		}
		team.CreatedAt = s.now().UTC()
		if err := s.teams.Create(ctx, team); err != nil {
			return duplicateAs(err, appErrors.ErrAlreadyInTeam, "failed to create team")
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to create team")
	}

	s.invalidateRoster(ctx, majorAssignmentID)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionTeamCreate, "team", team.ID, team)
	return team, nil
}

// GetTeam returns a team visible to the caller.
func (s *TeamService) GetTeam(ctx context.Context, actor *models.JWTClaims, teamID string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, lookupError(err, "team")
	}
	if team.Includes(actor.UserID) {
		return team, nil
	}
	if err := s.ensureCanView(ctx, actor, team.MajorAssignmentID); err != nil {
		return nil, err
	}
	return team, nil
}

// ListTeams returns the roster of an assignment. Rosters are cached and
// dropped on every membership change.
func (s *TeamService) ListTeams(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) ([]models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.ensureCanView(ctx, actor, majorAssignmentID); err != nil {
		return nil, err
	}

	if cached, hit := s.rosters.Teams(ctx, majorAssignmentID); hit {
		return cached, nil
	}

	teams, err := s.teams.ListByMajorAssignment(ctx, majorAssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
	}
	if teams == nil {
		teams = []models.Team{}
	}
	s.rosters.StoreTeams(ctx, majorAssignmentID, teams)
	return teams, nil
}

// MyTeam returns the caller's team within an assignment.
func (s *TeamService) MyTeam(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	team, err := s.teams.FindByUser(ctx, majorAssignmentID, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	if team == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "you do not have a team for this major assignment yet")
	}
	return team, nil
}

// DeleteTeam removes a team and everything attached to it. Managers only.
func (s *TeamService) DeleteTeam(ctx context.Context, actor *models.JWTClaims, teamID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	var (
		box   outbox
		maID  string
		title string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, ma, err := s.lockTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if !ma.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		maID, title = ma.ID, ma.Title
		if err := s.teams.Delete(ctx, team.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete team")
		}
		for _, userID := range team.UserIDs() {
			box.add(&actor.UserID, userID, models.NotificationTypeSystem, "Team removed",
				fmt.Sprintf("Your team %q in %q was removed by a teacher.", team.Name, title), ma.ID, "")
		}
		return nil
	})
	if err != nil {
		return passThrough(err, "failed to delete team")
	}
	box.flush(ctx, s.notifier)
	s.invalidateRoster(ctx, maID)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionTeamDelete, "team", teamID, nil)
	return nil
}

func (s *TeamService) lockAssignment(ctx context.Context, id string) (*models.MajorAssignment, error) {
	ma, err := s.assignments.LockByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "major assignment")
	}
	return ma, nil
}

// lockTeam loads a team, locks its assignment row and reloads the team so
// the returned state is current for the rest of the transaction.
func (s *TeamService) lockTeam(ctx context.Context, teamID string) (*models.Team, *models.MajorAssignment, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, nil, lookupError(err, "team")
	}
	ma, err := s.lockAssignment(ctx, team.MajorAssignmentID)
	if err != nil {
		return nil, nil, err
	}
	team, err = s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, nil, lookupError(err, "team")
	}
	return team, ma, nil
}

func (s *TeamService) ensureCanView(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) error {
	ma, err := s.assignments.GetByID(ctx, majorAssignmentID)
	if err != nil {
		return lookupError(err, "major assignment")
	}
	if ma.CanManage(actor.UserID, actor.Role) {
		return nil
	}
	ok, err := s.users.IsClassStudent(ctx, ma.ClassID, actor.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class roster")
	}
	if !ok {
		return appErrors.ErrForbidden
	}
	return nil
}

// ensureFormationOpen fails once every team formation stage of the
// assignment has completed. Assignments without such a stage stay open.
func (s *TeamService) ensureFormationOpen(ctx context.Context, majorAssignmentID string) error {
	stages, err := s.stages.ListByMajorAssignment(ctx, majorAssignmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stages")
	}
	found := false
	for _, stage := range stages {
		if stage.Type != models.StageTypeTeamFormation {
			continue
		}
		found = true
		if stage.Status != models.StageStatusCompleted {
			return nil
		}
	}
	if found {
		return appErrors.ErrStageClosed
	}
	return nil
}

// ensureAvailable fails with conflict when the user already leads or belongs
// to a team of the assignment.
func (s *TeamService) ensureAvailable(ctx context.Context, majorAssignmentID, userID string, conflict *appErrors.Error) error {
	existing, err := s.teams.FindByUser(ctx, majorAssignmentID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check team membership")
	}
	if existing != nil {
		return conflict
	}
	return nil
}

func (s *TeamService) invalidateRoster(ctx context.Context, majorAssignmentID string) {
	s.rosters.Forget(ctx, majorAssignmentID)
}

func (s *TeamService) managerAssignment(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) (*models.MajorAssignment, error) {
	ma, err := s.assignments.GetByID(ctx, majorAssignmentID)
	if err != nil {
		return nil, lookupError(err, "major assignment")
	}
	if !ma.CanManage(actor.UserID, actor.Role) {
		return nil, appErrors.ErrNotManager
	}
	return ma, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
