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

// SweepResult counts what one sweep did.
type SweepResult struct {
	Activated int `json:"activated"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type autoAssigner interface {
	AssignUngroupedStudents(ctx context.Context, majorAssignmentID string) (AutoAssignResult, error)
	FillRequiredRoles(ctx context.Context, stage *models.Stage) (RoleFillResult, error)
}

// StageServiceDeps groups the collaborators of StageService.
type StageServiceDeps struct {
	Tx          transactor
	Assignments majorAssignmentStore
	Stages      stageStore
	Auto        autoAssigner
	Audit       auditLogger
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Now         func() time.Time
}

// StageService manages stages, their division roles and the stage state
// machine.
type StageService struct {
	tx          transactor
	assignments majorAssignmentStore
	stages      stageStore
	auto        autoAssigner
	audit       auditLogger
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewStageService constructs the service.
func NewStageService(deps StageServiceDeps) *StageService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &StageService{
		tx:          deps.Tx,
		assignments: deps.Assignments,
		stages:      deps.Stages,
		auto:        deps.Auto,
		audit:       deps.Audit,
		metrics:     deps.Metrics,
		validator:   deps.Validator,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// Create adds a PENDING stage to an assignment.
func (s *StageService) Create(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string, req dto.CreateStageRequest) (*models.Stage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date and end_date are required")
	}
	stageType := models.StageType(strings.ToUpper(req.Type))
	if !stageType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown stage type")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, appErrors.ErrInvalidStageWindow
	}

	ma, err := s.managedAssignment(ctx, actor, majorAssignmentID)
	if err != nil {
		return nil, err
	}
	if !ma.Contains(req.StartDate, req.EndDate) {
		return nil, appErrors.ErrStageOutsideWindow
	}

	stage := &models.Stage{
		MajorAssignmentID: ma.ID,
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Type:              stageType,
		StartDate:         req.StartDate.UTC(),
		EndDate:           req.EndDate.UTC(),
		Order:             req.Order,
		Status:            models.StageStatusPending,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.stages.Create(ctx, stage); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create stage")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionStageCreate, "stage", stage.ID, stage)
	return stage, nil
}

// List returns the stages of an assignment in display order.
func (s *StageService) List(ctx context.Context, majorAssignmentID string) ([]models.Stage, error) {
	if _, err := s.assignments.GetByID(ctx, majorAssignmentID); err != nil {
		return nil, lookupError(err, "major assignment")
	}
	stages, err := s.stages.ListByMajorAssignment(ctx, majorAssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stages")
	}
	if stages == nil {
		stages = []models.Stage{}
	}
	return stages, nil
}

// Get returns one stage.
func (s *StageService) Get(ctx context.Context, stageID string) (*models.Stage, error) {
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return nil, lookupError(err, "stage")
	}
	return stage, nil
}

// Delete removes a stage together with its roles and team divisions.
func (s *StageService) Delete(ctx context.Context, actor *models.JWTClaims, stageID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	stage, err := s.managedStage(ctx, actor, stageID)
	if err != nil {
		return err
	}
	if stage.IsLocked {
		return appErrors.ErrStageLocked
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.stages.Delete(ctx, stage.ID)
	})
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete stage")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionStageDelete, "stage", stage.ID, nil)
	return nil
}

// Transition applies a manual action to a stage.
func (s *StageService) Transition(ctx context.Context, actor *models.JWTClaims, stageID string, req dto.StageTransitionRequest) (*models.Stage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	switch req.Action {
	case "activate":
		return s.Activate(ctx, actor, stageID)
	case "complete":
		return s.Complete(ctx, actor, stageID)
	case "lock":
		return s.Lock(ctx, actor, stageID)
	case "unlock":
		return s.Unlock(ctx, actor, stageID)
	default:
		return s.Restart(ctx, actor, stageID)
	}
}

// Activate moves a PENDING stage to ACTIVE.
func (s *StageService) Activate(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	stage, err := s.manualTransition(ctx, actor, stageID, []models.StageStatus{models.StageStatusPending}, models.StageStatusActive)
	if err != nil {
		return nil, err
	}
	s.onStageStarted(stage)
	return stage, nil
}

// Complete moves a PENDING or ACTIVE stage to COMPLETED and runs the
// completion hook for its type. Hook failures are logged; the transition
// stays committed.
func (s *StageService) Complete(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	stage, err := s.manualTransition(ctx, actor, stageID,
		[]models.StageStatus{models.StageStatusPending, models.StageStatusActive}, models.StageStatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.onStageCompleted(ctx, stage); err != nil {
		s.logger.Error("stage completion hook failed", zap.String("stage_id", stage.ID), zap.Error(err))
	}
	return stage, nil
}

// Restart reopens a COMPLETED stage as PENDING so the sweep can run it again.
func (s *StageService) Restart(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	return s.manualTransition(ctx, actor, stageID, []models.StageStatus{models.StageStatusCompleted}, models.StageStatusPending)
}

// Lock freezes a stage. The sweep skips it and manual transitions or deletion
// are refused until Unlock.
func (s *StageService) Lock(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	return s.setLocked(ctx, actor, stageID, true)
}

// Unlock releases a frozen stage.
func (s *StageService) Unlock(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	return s.setLocked(ctx, actor, stageID, false)
}

func (s *StageService) setLocked(ctx context.Context, actor *models.JWTClaims, stageID string, locked bool) (*models.Stage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	stage, err := s.managedStage(ctx, actor, stageID)
	if err != nil {
		return nil, err
	}
	if stage.IsLocked == locked {
		return stage, nil
	}
	at := s.now().UTC()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.stages.SetLocked(ctx, stage.ID, locked, at)
	})
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stage not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stage")
	}
	stage.IsLocked = locked
	stage.UpdatedAt = at
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionStageLock, "stage", stage.ID,
		map[string]bool{"locked": locked})
	return stage, nil
}

func (s *StageService) manualTransition(ctx context.Context, actor *models.JWTClaims, stageID string, from []models.StageStatus, to models.StageStatus) (*models.Stage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	stage, err := s.managedStage(ctx, actor, stageID)
	if err != nil {
		return nil, err
	}
	if stage.IsLocked {
		return nil, appErrors.ErrStageLocked
	}
	if !statusIn(stage.Status, from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("stage is %s and cannot move to %s", stage.Status, to))
	}
	previous := stage.Status
	if err := s.transition(ctx, stage, from, to); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "stage status changed concurrently, reload and try again")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update stage")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionStageTransition, "stage", stage.ID,
		map[string]string{"from": string(previous), "to": string(to)})
	return stage, nil
}

// transition performs the conditional update and mirrors it onto stage.
func (s *StageService) transition(ctx context.Context, stage *models.Stage, from []models.StageStatus, to models.StageStatus) error {
	at := s.now().UTC()
	if err := s.stages.Transition(ctx, stage.ID, from, to, at); err != nil {
		return err
	}
	stage.Status = to
	stage.UpdatedAt = at
	s.metrics.RecordStageTransition(to)
	return nil
}

// Sweep advances every open stage of active assignments by wall clock. A
// failing stage is logged and counted without stopping the others.
func (s *StageService) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	var result SweepResult

	stages, err := s.stages.ListOpen(ctx)
	if err != nil {
		return result, fmt.Errorf("list open stages: %w", err)
	}

	now := s.now()
	for i := range stages {
		if ctx.Err() != nil {
			break
		}
		stage := stages[i]
		activated, completed, err := s.advance(ctx, &stage, now)
		if activated {
			result.Activated++
		}
		if completed {
			result.Completed++
		}
		if err != nil {
			result.Failed++
			s.logger.Error("stage sweep failed",
				zap.String("stage_id", stage.ID),
				zap.String("major_assignment_id", stage.MajorAssignmentID),
				zap.Error(err))
		}
	}

	s.metrics.ObserveSweep(result, time.Since(started))
	if result.Activated+result.Completed+result.Failed > 0 {
		s.logger.Info("stage sweep finished",
			zap.Int("activated", result.Activated),
			zap.Int("completed", result.Completed),
			zap.Int("failed", result.Failed))
	}
	return result, ctx.Err()
}

// advance moves one stage as far as the clock allows. A lost race on the
// conditional update means another actor already moved it.
func (s *StageService) advance(ctx context.Context, stage *models.Stage, now time.Time) (activated, completed bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while advancing stage: %v", p)
		}
	}()

	if stage.Status == models.StageStatusPending && !now.Before(stage.StartDate) {
		if err := s.transition(ctx, stage, []models.StageStatus{models.StageStatusPending}, models.StageStatusActive); err != nil {
			if isNoRows(err) {
				return false, false, nil
			}
			return false, false, err
		}
		activated = true
		s.onStageStarted(stage)
	}
	if stage.Status == models.StageStatusActive && !now.Before(stage.EndDate) {
		if err := s.transition(ctx, stage, []models.StageStatus{models.StageStatusActive}, models.StageStatusCompleted); err != nil {
			if isNoRows(err) {
				return activated, false, nil
			}
			return activated, false, err
		}
		completed = true
		if err := s.onStageCompleted(ctx, stage); err != nil {
			return activated, completed, err
		}
	}
	return activated, completed, nil
}

func (s *StageService) onStageStarted(stage *models.Stage) {
	s.logger.Info("stage started",
		zap.String("stage_id", stage.ID),
		zap.String("stage_type", string(stage.Type)),
		zap.String("major_assignment_id", stage.MajorAssignmentID))
}

func (s *StageService) onStageCompleted(ctx context.Context, stage *models.Stage) error {
	s.logger.Info("stage completed",
		zap.String("stage_id", stage.ID),
		zap.String("stage_type", string(stage.Type)),
		zap.String("major_assignment_id", stage.MajorAssignmentID))
	if s.auto == nil {
		return nil
	}
	switch stage.Type {
	case models.StageTypeTeamFormation:
		_, err := s.auto.AssignUngroupedStudents(ctx, stage.MajorAssignmentID)
		return err
	case models.StageTypeDivision:
		_, err := s.auto.FillRequiredRoles(ctx, stage)
		return err
	}
	return nil
}

// CreateDivisionRole defines a role on a division stage.
func (s *StageService) CreateDivisionRole(ctx context.Context, actor *models.JWTClaims, stageID string, req dto.CreateDivisionRoleRequest) (*models.DivisionRole, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	stage, err := s.managedStage(ctx, actor, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Type != models.StageTypeDivision {
		return nil, appErrors.Clone(appErrors.ErrValidation, "division roles can only be defined on division stages")
	}
	role := &models.DivisionRole{
		StageID:     stage.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsRequired:  req.IsRequired,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.stages.CreateRole(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create division role")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionDivisionRoleCreate, "division_role", role.ID, role)
	return role, nil
}

// ListDivisionRoles returns every role of a stage.
func (s *StageService) ListDivisionRoles(ctx context.Context, stageID string) ([]models.DivisionRole, error) {
	if _, err := s.stages.GetByID(ctx, stageID); err != nil {
		return nil, lookupError(err, "stage")
	}
	roles, err := s.stages.ListRoles(ctx, stageID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list division roles")
	}
	if roles == nil {
		roles = []models.DivisionRole{}
	}
	return roles, nil
}

// DeleteDivisionRole removes a role and the team divisions pointing at it.
func (s *StageService) DeleteDivisionRole(ctx context.Context, actor *models.JWTClaims, roleID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	role, err := s.stages.GetRole(ctx, roleID)
	if err != nil {
		return lookupError(err, "division role")
	}
	if _, err := s.managedStage(ctx, actor, role.StageID); err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.stages.DeleteRole(ctx, role.ID)
	})
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "division role not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete division role")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionDivisionRoleDelete, "division_role", role.ID, nil)
	return nil
}

func (s *StageService) managedAssignment(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) (*models.MajorAssignment, error) {
	ma, err := s.assignments.GetByID(ctx, majorAssignmentID)
	if err != nil {
		return nil, lookupError(err, "major assignment")
	}
	if !ma.CanManage(actor.UserID, actor.Role) {
		return nil, appErrors.ErrNotManager
	}
	return ma, nil
}

func (s *StageService) managedStage(ctx context.Context, actor *models.JWTClaims, stageID string) (*models.Stage, error) {
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return nil, lookupError(err, "stage")
	}
	if _, err := s.managedAssignment(ctx, actor, stage.MajorAssignmentID); err != nil {
		return nil, err
	}
	return stage, nil
}

func statusIn(status models.StageStatus, set []models.StageStatus) bool {
	for _, candidate := range set {
		if status == candidate {
			return true
		}
	}
	return false
}
