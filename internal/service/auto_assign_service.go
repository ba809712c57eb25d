package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

// AutoAssignResult summarises one ungrouped-student sweep.
type AutoAssignResult struct {
	TeamsCreated     int `json:"teams_created"`
	StudentsAssigned int `json:"students_assigned"`
	Skipped          int `json:"skipped"`
}

// RoleFillResult summarises one unfilled-required-role sweep.
type RoleFillResult struct {
	Filled      int `json:"filled"`
	FailedTeams int `json:"failed_teams"`
}

// AutoAssignServiceDeps groups the collaborators of AutoAssignService.
type AutoAssignServiceDeps struct {
	Tx          transactor
	Assignments majorAssignmentStore
	Teams       teamStore
	Stages      stageStore
	Divisions   divisionStore
	Users       userDirectory
	Notifier    notifier
	Rosters     *RosterCache
	Metrics     *MetricsService
	Strategy    GroupingStrategy
	Logger      *zap.Logger
	Rand        *rand.Rand
	Now         func() time.Time
}

// AutoAssignService groups students left without a team and fills required
// division roles nobody took when a stage completes.
type AutoAssignService struct {
	tx          transactor
	assignments majorAssignmentStore
	teams       teamStore
	stages      stageStore
	divisions   divisionStore
	users       userDirectory
	notifier    notifier
	rosters     *RosterCache
	metrics     *MetricsService
	strategy    GroupingStrategy
	logger      *zap.Logger
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAutoAssignService constructs the engine. Strategy defaults to greedy.
func NewAutoAssignService(deps AutoAssignServiceDeps) *AutoAssignService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Strategy == nil {
		deps.Strategy = GreedyGrouping{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &AutoAssignService{
		tx:          deps.Tx,
		assignments: deps.Assignments,
		teams:       deps.Teams,
		stages:      deps.Stages,
		divisions:   deps.Divisions,
		users:       deps.Users,
		notifier:    deps.Notifier,
		rosters:     deps.Rosters,
		metrics:     deps.Metrics,
		strategy:    deps.Strategy,
		logger:      deps.Logger,
		now:         deps.Now,
		rng:         deps.Rand,
	}
}

// AssignUngroupedStudents places every class student without a team into
// new system-confirmed teams. Each placement commits on its own; a failed
// placement is logged and the student is skipped.
func (s *AutoAssignService) AssignUngroupedStudents(ctx context.Context, majorAssignmentID string) (AutoAssignResult, error) {
	var result AutoAssignResult

	ma, err := s.assignments.GetByID(ctx, majorAssignmentID)
	if err != nil {
		return result, lookupError(err, "major assignment")
	}
	students, err := s.users.ListClassStudents(ctx, ma.ClassID)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	teams, err := s.teams.ListByMajorAssignment(ctx, ma.ID)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
	}

	grouped := make(map[string]struct{})
	for i := range teams {
		for _, id := range teams[i].UserIDs() {
			grouped[id] = struct{}{}
		}
	}
	names := make(map[string]string, len(students))
	ungrouped := make([]string, 0, len(students))
	for i := range students {
		names[students[i].ID] = students[i].DisplayName()
		if _, ok := grouped[students[i].ID]; !ok {
			ungrouped = append(ungrouped, students[i].ID)
		}
	}
	if len(ungrouped) == 0 {
		return result, nil
	}

	s.shuffle(ungrouped)
	maxSize := ma.MaxTeamSize
	if maxSize < 1 {
		maxSize = 1
	}
	plan := s.strategy.Plan(ungrouped, maxSize)
	log := s.logger.With(zap.String("major_assignment_id", ma.ID), zap.String("strategy", s.strategy.Name()))
	log.Info("auto-assigning ungrouped students", zap.Int("students", len(ungrouped)), zap.Int("teams", len(plan)))

	for _, group := range plan {
		var team *models.Team
		for _, studentID := range group {
			if team == nil {
				created, err := s.openTeam(ctx, ma, studentID, names[studentID])
				if err != nil {
					log.Warn("failed to open auto team", zap.String("student_id", studentID), zap.Error(err))
					result.Skipped++
					continue
				}
				team = created
				result.TeamsCreated++
				result.StudentsAssigned++
				continue
			}
			if err := s.placeMember(ctx, ma, team, studentID); err != nil {
				log.Warn("failed to place student", zap.String("student_id", studentID), zap.String("team_id", team.ID), zap.Error(err))
				result.Skipped++
				continue
			}
			result.StudentsAssigned++
		}
	}

	if result.StudentsAssigned > 0 {
		s.rosters.Forget(ctx, ma.ID)
	}
	s.metrics.RecordAutoAssigned(result.StudentsAssigned)
	log.Info("auto-assignment finished",
		zap.Int("teams_created", result.TeamsCreated),
		zap.Int("students_assigned", result.StudentsAssigned),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *AutoAssignService) openTeam(ctx context.Context, ma *models.MajorAssignment, leaderID, leaderName string) (*models.Team, error) {
	if leaderName == "" {
		leaderName = leaderID
	}
	now := s.now().UTC()
	team := &models.Team{
		MajorAssignmentID: ma.ID,
		Name:              fmt.Sprintf("%s's Team", leaderName),
		LeaderID:          leaderID,
		Status:            models.TeamStatusConfirmed,
		ConfirmedAt:       &now,
		CreatedAt:         now,
		Members:           []models.TeamMember{},
	}
	var box outbox
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.assignments.LockByID(ctx, ma.ID); err != nil {
			return err
		}
		existing, err := s.teams.FindByUser(ctx, ma.ID, leaderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return appErrors.ErrAlreadyTeamed
		}
		if err := s.teams.Create(ctx, team); err != nil {
			return err
		}
		box.add(nil, leaderID, models.NotificationTypeSystem, "You were placed in a team",
			fmt.Sprintf("You had no team for %q, so the system created team %q with you as leader.", ma.Title, team.Name), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	box.flush(ctx, s.notifier)
	return team, nil
}

func (s *AutoAssignService) placeMember(ctx context.Context, ma *models.MajorAssignment, team *models.Team, userID string) error {
	var box outbox
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.assignments.LockByID(ctx, ma.ID); err != nil {
			return err
		}
		existing, err := s.teams.FindByUser(ctx, ma.ID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return appErrors.ErrAlreadyTeamed
		}
		member := &models.TeamMember{
			TeamID:            team.ID,
			MajorAssignmentID: ma.ID,
			UserID:            userID,
			JoinedAt:          s.now().UTC(),
		}
		if err := s.teams.AddMember(ctx, member); err != nil {
			return err
		}
		box.add(nil, userID, models.NotificationTypeSystem, "You were placed in a team",
			fmt.Sprintf("You had no team for %q, so the system added you to team %q.", ma.Title, team.Name), ma.ID, team.ID)
		return nil
	})
	if err != nil {
		return err
	}
	box.flush(ctx, s.notifier)
	return nil
}

// FillRequiredRoles gives every required division role of stage that a team
// left empty to a random member of that team. Teams are processed
// independently.
func (s *AutoAssignService) FillRequiredRoles(ctx context.Context, stage *models.Stage) (RoleFillResult, error) {
	var result RoleFillResult

	roles, err := s.stages.ListRoles(ctx, stage.ID, true)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load division roles")
	}
	if len(roles) == 0 {
		return result, nil
	}
	teams, err := s.teams.ListByMajorAssignment(ctx, stage.MajorAssignmentID)
	if err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
	}

	log := s.logger.With(zap.String("stage_id", stage.ID))
	for i := range teams {
		filled, err := s.fillTeam(ctx, stage, teams[i].ID, roles)
		if err != nil {
			log.Warn("failed to fill required roles", zap.String("team_id", teams[i].ID), zap.Error(err))
			result.FailedTeams++
			continue
		}
		result.Filled += filled
	}

	s.metrics.RecordAutoFilledRoles(result.Filled)
	log.Info("required role fill finished", zap.Int("filled", result.Filled), zap.Int("failed_teams", result.FailedTeams))
	return result, nil
}

func (s *AutoAssignService) fillTeam(ctx context.Context, stage *models.Stage, teamID string, roles []models.DivisionRole) (int, error) {
	var (
		box    outbox
		filled int
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		team, err := s.teams.GetByID(ctx, teamID)
		if err != nil {
			return err
		}
		candidates := team.UserIDs()
		for i := range roles {
			role := roles[i]
			row, err := s.divisions.FindByTeamRole(ctx, team.ID, role.ID)
			if err != nil {
				return err
			}
			if row != nil && row.MemberID != nil {
				continue
			}
			memberID := candidates[s.intN(len(candidates))]
			if row == nil {
				roleID := role.ID
				row = &models.TeamDivision{
					TeamID:          team.ID,
					StageID:         stage.ID,
					DivisionRoleID:  &roleID,
					RoleName:        role.Name,
					RoleDescription: role.Description,
				}
			}
			row.MemberID = &memberID
			row.AssignedAt = s.now().UTC()
			row.AssignedBy = nil
			if err := s.divisions.Save(ctx, row); err != nil {
				return err
			}
			filled++

			box.add(nil, memberID, models.NotificationTypeStage, "Role assigned",
				fmt.Sprintf("Nobody on team %q took the required role %q in stage %q, so it was assigned to you.", team.Name, role.Name, stage.Name),
				stage.MajorAssignmentID, team.ID)
			if memberID != team.LeaderID {
				box.add(nil, team.LeaderID, models.NotificationTypeStage, "Role assigned",
					fmt.Sprintf("The required role %q in stage %q was assigned automatically to a member of your team.", role.Name, stage.Name),
					stage.MajorAssignmentID, team.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	box.flush(ctx, s.notifier)
	return filled, nil
}

func (s *AutoAssignService) shuffle(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

func (s *AutoAssignService) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
