package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
	"github.com/noah-isme/sma-teamwork-api/pkg/jobs"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, receiverID, id string) error
	MarkAllRead(ctx context.Context, receiverID string) (int64, error)
}

// NotificationJob is the unit of work on the notification queue.
type NotificationJob = jobs.Job[models.Notification]

type notificationQueue interface {
	Enqueue(job NotificationJob) error
}

// NotificationService dispatches notifications through a worker queue and
// serves each user's inbox.
type NotificationService struct {
	repo    NotificationRepository
	queue   notificationQueue
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotificationService constructs the service. Attach a queue with
// UseQueue; without one notifications are stored synchronously.
func NewNotificationService(repo NotificationRepository, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
}

// UseQueue routes Notify through queue.
func (s *NotificationService) UseQueue(queue notificationQueue) {
	s.queue = queue
}

// Notify hands notes to the dispatcher without waiting for them to be
// stored. Ids are assigned up front so a retried job never stores a note
// twice.
func (s *NotificationService) Notify(ctx context.Context, notes ...models.Notification) {
	for i := range notes {
		note := notes[i]
		if note.ID == "" {
			note.ID = uuid.NewString()
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = s.now().UTC()
		}
		if s.queue != nil {
			err := s.queue.Enqueue(NotificationJob{ID: note.ID, Payload: note})
			if err == nil {
				s.metrics.RecordNotification("queued")
				continue
			}
			s.logger.Warn("notification queue unavailable, storing inline",
				zap.String("notification_id", note.ID), zap.Error(err))
		}
		if err := s.store(context.WithoutCancel(ctx), note); err != nil {
			s.logger.Error("failed to store notification",
				zap.String("notification_id", note.ID),
				zap.String("receiver_id", note.ReceiverID),
				zap.Error(err))
		}
	}
}

// HandleJob persists one queued notification.
func (s *NotificationService) HandleJob(ctx context.Context, job NotificationJob) error {
	return s.store(ctx, job.Payload)
}

// DiscardJob records a notification the queue gave up on.
func (s *NotificationService) DiscardJob(job NotificationJob, err error) {
	s.metrics.RecordNotification("dropped")
	s.logger.Error("notification dropped",
		zap.String("notification_id", job.ID),
		zap.String("receiver_id", job.Payload.ReceiverID),
		zap.Int("attempts", job.Attempt),
		zap.Error(err))
}

func (s *NotificationService) store(ctx context.Context, note models.Notification) error {
	if err := s.repo.Create(ctx, &note); err != nil {
		s.metrics.RecordNotification("failed")
		return err
	}
	s.metrics.RecordNotification("stored")
	return nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor *models.JWTClaims, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error) {
	if err := requireActor(actor); err != nil {
		return nil, nil, err
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, models.NotificationFilter{
		ReceiverID: actor.UserID,
		UnreadOnly: query.UnreadOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: total}, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, actor.UserID, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}

// MarkAllRead flags every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.JWTClaims) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notifications")
	}
	return n, nil
}
