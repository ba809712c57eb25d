package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, sender_id, receiver_id, title, content, type, related_major_assignment_id, related_team_id, is_read, created_at`

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (` + notificationColumns + `)
	VALUES (:id, :sender_id, :receiver_id, :title, :content, :type, :related_major_assignment_id, :related_team_id, :is_read, :created_at)
	ON CONFLICT (id) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// List returns a receiver's notifications, newest first, with a total count.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	conn := database.Conn(ctx, r.db)
	where := ` WHERE receiver_id = $1`
	if filter.UnreadOnly {
		where += ` AND is_read = FALSE`
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM notifications%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		notificationColumns, where, size, (page-1)*size)
	var items []models.Notification
	if err := sqlx.SelectContext(ctx, conn, &items, query, filter.ReceiverID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, conn, &total, `SELECT COUNT(*) FROM notifications`+where, filter.ReceiverID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags one notification of the receiver as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, receiverID, id string) error {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND receiver_id = $2`, id, receiverID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireAffected(result)
}

// MarkAllRead flags every unread notification of the receiver and returns
// how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, receiverID string) (int64, error) {
	result, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE receiver_id = $1 AND is_read = FALSE`, receiverID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check affected rows: %w", err)
	}
	return rows, nil
}
