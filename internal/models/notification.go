package models

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeSystem           NotificationType = "SYSTEM"
	NotificationTypeTeamInvitation   NotificationType = "TEAM_INVITATION"
	NotificationTypeLeaveRequest     NotificationType = "LEAVE_REQUEST"
	NotificationTypeDissolveRequest  NotificationType = "DISSOLVE_REQUEST"
	NotificationTypeTeamConfirmation NotificationType = "TEAM_CONFIRMATION"
	NotificationTypeStage            NotificationType = "STAGE"
)

// Notification is a message delivered to one user. A nil SenderID marks a
// system message.
type Notification struct {
	ID                       string           `db:"id" json:"id"`
	SenderID                 *string          `db:"sender_id" json:"sender_id,omitempty"`
	ReceiverID               string           `db:"receiver_id" json:"receiver_id"`
	Title                    string           `db:"title" json:"title"`
	Content                  string           `db:"content" json:"content"`
	Type                     NotificationType `db:"type" json:"type"`
	RelatedMajorAssignmentID *string          `db:"related_major_assignment_id" json:"related_major_assignment_id,omitempty"`
	RelatedTeamID            *string          `db:"related_team_id" json:"related_team_id,omitempty"`
	IsRead                   bool             `db:"is_read" json:"is_read"`
	CreatedAt                time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows a user's inbox.
type NotificationFilter struct {
	ReceiverID string
	UnreadOnly bool
	Page       int
	PageSize   int
}
