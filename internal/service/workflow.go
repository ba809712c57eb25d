package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/internal/repository"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type majorAssignmentStore interface {
	Create(ctx context.Context, ma *models.MajorAssignment) error
	Update(ctx context.Context, ma *models.MajorAssignment) error
	GetByID(ctx context.Context, id string) (*models.MajorAssignment, error)
	LockByID(ctx context.Context, id string) (*models.MajorAssignment, error)
	List(ctx context.Context, filter models.MajorAssignmentFilter) ([]models.MajorAssignment, int, error)
	Delete(ctx context.Context, id string) error
}

type teamStore interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByMajorAssignment(ctx context.Context, majorAssignmentID string) ([]models.Team, error)
	FindByUser(ctx context.Context, majorAssignmentID, userID string) (*models.Team, error)
	UpdateConfirmation(ctx context.Context, team *models.Team) error
	AddMember(ctx context.Context, member *models.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	Delete(ctx context.Context, id string) error
}

type invitationStore interface {
	Create(ctx context.Context, inv *models.TeamInvitation) error
	GetByID(ctx context.Context, id string) (*models.TeamInvitation, error)
	HasPending(ctx context.Context, teamID, inviteeID string) (bool, error)
	ListForInvitee(ctx context.Context, inviteeID string, status models.InvitationStatus) ([]models.TeamInvitation, error)
	Resolve(ctx context.Context, id string, status models.InvitationStatus, at time.Time) error
}

type leaveRequestStore interface {
	Create(ctx context.Context, req *models.LeaveTeamRequest) error
	GetByID(ctx context.Context, id string) (*models.LeaveTeamRequest, error)
	HasOpen(ctx context.Context, teamID, memberID string) (bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]models.LeaveTeamRequest, error)
	Transition(ctx context.Context, req *models.LeaveTeamRequest, from models.LeaveStatus) error
}

type dissolveRequestStore interface {
	Create(ctx context.Context, req *models.DissolveTeamRequest) error
	GetByID(ctx context.Context, id string) (*models.DissolveTeamRequest, error)
	HasPending(ctx context.Context, teamID string) (bool, error)
	Resolve(ctx context.Context, req *models.DissolveTeamRequest) error
}

type stageStore interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id string) (*models.Stage, error)
	ListByMajorAssignment(ctx context.Context, majorAssignmentID string) ([]models.Stage, error)
	ListOpen(ctx context.Context) ([]models.Stage, error)
	Transition(ctx context.Context, id string, from []models.StageStatus, to models.StageStatus, at time.Time) error
	SetLocked(ctx context.Context, id string, locked bool, at time.Time) error
	Delete(ctx context.Context, id string) error
	CreateRole(ctx context.Context, role *models.DivisionRole) error
	GetRole(ctx context.Context, id string) (*models.DivisionRole, error)
	ListRoles(ctx context.Context, stageID string, requiredOnly bool) ([]models.DivisionRole, error)
	DeleteRole(ctx context.Context, id string) error
}

type divisionStore interface {
	ListByTeamStage(ctx context.Context, teamID, stageID string) ([]models.TeamDivision, error)
	ReplaceForTeamStage(ctx context.Context, teamID, stageID string, rows []models.TeamDivision) error
	FindByTeamRole(ctx context.Context, teamID, roleID string) (*models.TeamDivision, error)
	Save(ctx context.Context, row *models.TeamDivision) error
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListClassStudents(ctx context.Context, classID string) ([]models.User, error)
	IsClassStudent(ctx context.Context, classID, userID string) (bool, error)
}

type notifier interface {
	Notify(ctx context.Context, notes ...models.Notification)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// outbox collects notifications produced inside a transaction so they can be
// sent only after it commits.
type outbox struct {
	notes []models.Notification
}

func (o *outbox) add(sender *string, receiver string, kind models.NotificationType, title, content string, majorAssignmentID, teamID string) {
	if receiver == "" || (sender != nil && *sender == receiver) {
		return
	}
	n := models.Notification{
		SenderID:   sender,
		ReceiverID: receiver,
		Title:      title,
		Content:    content,
		Type:       kind,
	}
	if majorAssignmentID != "" {
		id := majorAssignmentID
		n.RelatedMajorAssignmentID = &id
	}
	if teamID != "" {
		id := teamID
		n.RelatedTeamID = &id
	}
	o.notes = append(o.notes, n)
}

func (o *outbox) flush(ctx context.Context, n notifier) {
	if n == nil || len(o.notes) == 0 {
		return
	}
	n.Notify(ctx, o.notes...)
	o.notes = nil
}

func requireActor(actor *models.JWTClaims) error {
	if actor == nil || actor.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// lookupError maps a store read failure onto NotFound or Internal.
func lookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
}

// passThrough returns domain errors unchanged and wraps anything else as
// internal.
func passThrough(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// duplicateAs maps a unique violation onto the given domain error.
func duplicateAs(err error, domain *appErrors.Error, message string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return domain
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

type auditOriginKey struct{}

type auditOrigin struct {
	ip        string
	userAgent string
}

// WithAuditOrigin records the caller's address on ctx so audit rows written
// while serving the request carry it. Scheduler-driven transitions have no
// origin and are logged as "system".
func WithAuditOrigin(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, auditOriginKey{}, auditOrigin{ip: ip, userAgent: userAgent})
}

func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, actorID *string, action, resource, resourceID string, values interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    actorID,
		Action:    action,
		Resource:  resource,
		IPAddress: "system",
		UserAgent: "teamwork-service",
	}
	if origin, ok := ctx.Value(auditOriginKey{}).(auditOrigin); ok {
		entry.IPAddress = origin.ip
		entry.UserAgent = origin.userAgent
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if values != nil {
		if payload, err := json.Marshal(values); err == nil {
			entry.NewValues = payload
		}
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}
