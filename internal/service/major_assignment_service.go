package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

const (
	defaultMinTeamSize = 2
	defaultMaxTeamSize = 5
)

// MajorAssignmentServiceDeps groups the collaborators of MajorAssignmentService.
type MajorAssignmentServiceDeps struct {
	Tx          transactor
	Assignments majorAssignmentStore
	Teams       teamStore
	Users       userDirectory
	Audit       auditLogger
	Rosters     *RosterCache
	Validator   *validator.Validate
	Logger      *zap.Logger
	Now         func() time.Time
}

// MajorAssignmentService manages the team projects teachers define for a
// class.
type MajorAssignmentService struct {
	tx          transactor
	assignments majorAssignmentStore
	teams       teamStore
	users       userDirectory
	audit       auditLogger
	rosters     *RosterCache
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewMajorAssignmentService constructs the service.
func NewMajorAssignmentService(deps MajorAssignmentServiceDeps) *MajorAssignmentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &MajorAssignmentService{
		tx:          deps.Tx,
		assignments: deps.Assignments,
		teams:       deps.Teams,
		users:       deps.Users,
		audit:       deps.Audit,
		rosters:     deps.Rosters,
		validator:   deps.Validator,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// Create defines a new assignment owned by the caller.
func (s *MajorAssignmentService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateMajorAssignmentRequest) (*models.MajorAssignment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can create major assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	now := s.now().UTC()
	ma := &models.MajorAssignment{
		ClassID:     req.ClassID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MinTeamSize: req.MinTeamSize,
		MaxTeamSize: req.MaxTeamSize,
		CreatorID:   actor.UserID,
		TeacherIDs:  dedupeIDs(req.TeacherIDs, actor.UserID),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ma.MinTeamSize == 0 {
		ma.MinTeamSize = defaultMinTeamSize
	}
	if ma.MaxTeamSize == 0 {
		ma.MaxTeamSize = defaultMaxTeamSize
	}
	if err := validateAssignment(ma); err != nil {
		return nil, err
	}
	if err := s.assignments.Create(ctx, ma); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create major assignment")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionAssignmentCreate, "major_assignment", ma.ID, ma)
	return ma, nil
}

// Get returns an assignment visible to the caller.
func (s *MajorAssignmentService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.MajorAssignment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ma, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "major assignment")
	}
	if ma.CanManage(actor.UserID, actor.Role) {
		return ma, nil
	}
	ok, err := s.users.IsClassStudent(ctx, ma.ClassID, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class roster")
	}
	if !ok {
		return nil, appErrors.ErrForbidden
	}
	return ma, nil
}

// List returns assignments. Students only see the classes they belong to
// and must name one.
func (s *MajorAssignmentService) List(ctx context.Context, actor *models.JWTClaims, query dto.MajorAssignmentQuery) ([]models.MajorAssignment, *models.Pagination, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	if actor.Role == models.RoleStudent {
		if query.ClassID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
		}
		ok, err := s.users.IsClassStudent(ctx, query.ClassID, actor.UserID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class roster")
		}
		if !ok {
			return nil, nil, appErrors.ErrForbidden
		}
	}

	items, total, err := s.assignments.List(ctx, models.MajorAssignmentFilter{
		ClassID:  query.ClassID,
		Active:   query.Active,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list major assignments")
	}
	if items == nil {
		items = []models.MajorAssignment{}
	}
	return items, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: total}, nil
}

// Update edits an assignment. Managers only.
func (s *MajorAssignmentService) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateMajorAssignmentRequest) (*models.MajorAssignment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	var ma *models.MajorAssignment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.assignments.LockByID(ctx, id)
		if err != nil {
			return lookupError(err, "major assignment")
		}
		if !current.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		if req.Title != nil {
			current.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.StartDate != nil {
			current.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			current.EndDate = req.EndDate
		}
		if req.MinTeamSize != nil {
			current.MinTeamSize = *req.MinTeamSize
		}
		if req.MaxTeamSize != nil {
			current.MaxTeamSize = *req.MaxTeamSize
		}
		if req.TeacherIDs != nil {
			current.TeacherIDs = dedupeIDs(req.TeacherIDs, current.CreatorID)
		}
		if req.Active != nil {
			current.Active = *req.Active
		}
		if err := validateAssignment(current); err != nil {
			return err
		}
		current.UpdatedAt = s.now().UTC()
		if err := s.assignments.Update(ctx, current); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update major assignment")
		}
		ma = current
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "failed to update major assignment")
	}
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionAssignmentUpdate, "major_assignment", ma.ID, ma)
	return ma, nil
}

// Delete removes an assignment with every stage, role, team and team
// sub-entity under it.
func (s *MajorAssignmentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ma, err := s.assignments.LockByID(ctx, id)
		if err != nil {
			return lookupError(err, "major assignment")
		}
		if !ma.CanManage(actor.UserID, actor.Role) {
			return appErrors.ErrNotManager
		}
		teams, err := s.teams.ListByMajorAssignment(ctx, ma.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
		}
		for i := range teams {
			if err := s.teams.Delete(ctx, teams[i].ID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete team")
			}
		}
		if err := s.assignments.Delete(ctx, ma.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete major assignment")
		}
		return nil
	})
	if err != nil {
		return passThrough(err, "failed to delete major assignment")
	}
	s.rosters.Forget(ctx, id)
	emitAudit(ctx, s.audit, s.logger, &actor.UserID, models.AuditActionAssignmentDelete, "major_assignment", id, nil)
	return nil
}

func validateAssignment(ma *models.MajorAssignment) error {
	if ma.Title == "" {
		return appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if ma.MinTeamSize < 1 || ma.MaxTeamSize < 1 {
		return appErrors.Clone(appErrors.ErrValidation, "team sizes must be at least 1")
	}
	if ma.MinTeamSize > ma.MaxTeamSize {
		return appErrors.ErrInvalidTeamSize
	}
	if ma.StartDate != nil && ma.EndDate != nil && !ma.StartDate.Before(*ma.EndDate) {
		return appErrors.Clone(appErrors.ErrValidation, "start_date must be before end_date")
	}
	return nil
}

// dedupeIDs drops blanks, duplicates and the creator from ids.
func dedupeIDs(ids []string, creatorID string) []string {
	result := make([]string, 0, len(ids))
	seen := map[string]struct{}{creatorID: {}}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
