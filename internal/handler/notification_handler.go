package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, actor *models.JWTClaims, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error)
	MarkRead(ctx context.Context, actor *models.JWTClaims, id string) error
	MarkAllRead(ctx context.Context, actor *models.JWTClaims) (int64, error)
}

// NotificationHandler exposes the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler builds the handler.
func NewNotificationHandler(service notificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List godoc
// @Summary List the caller's notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	unread, err := optionalBoolQuery(c, "unread")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size := pageParams(c)
	query := dto.NotificationQuery{Page: page, PageSize: size}
	if unread != nil {
		query.UnreadOnly = *unread
	}
	items, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param notificationId path string true "Notification ID"
// @Success 204
// @Router /notifications/{notificationId}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkRead(c.Request.Context(), claimsFromContext(c), c.Param("notificationId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead godoc
// @Summary Mark every notification as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.service.MarkAllRead(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": n}, nil)
}
