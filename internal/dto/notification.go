package dto

// NotificationQuery mirrors inbox listing filters.
type NotificationQuery struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}
