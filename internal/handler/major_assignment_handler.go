package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

type majorAssignmentService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateMajorAssignmentRequest) (*models.MajorAssignment, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.MajorAssignment, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.MajorAssignmentQuery) ([]models.MajorAssignment, *models.Pagination, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateMajorAssignmentRequest) (*models.MajorAssignment, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// MajorAssignmentHandler exposes major assignment management.
type MajorAssignmentHandler struct {
	service majorAssignmentService
}

// NewMajorAssignmentHandler builds the handler.
func NewMajorAssignmentHandler(service majorAssignmentService) *MajorAssignmentHandler {
	return &MajorAssignmentHandler{service: service}
}

// Create godoc
// @Summary Create a major assignment
// @Tags MajorAssignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateMajorAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /major-assignments [post]
func (h *MajorAssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateMajorAssignmentRequest
	if !bindJSON(c, &req, "invalid major assignment payload", false) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// List godoc
// @Summary List major assignments
// @Tags MajorAssignments
// @Produce json
// @Param class_id query string false "Class ID (required for students)"
// @Param active query bool false "Active filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /major-assignments [get]
func (h *MajorAssignmentHandler) List(c *gin.Context) {
	active, err := optionalBoolQuery(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size := pageParams(c)
	items, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), dto.MajorAssignmentQuery{
		ClassID:  c.Query("class_id"),
		Active:   active,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a major assignment
// @Tags MajorAssignments
// @Produce json
// @Param id path string true "Major assignment ID"
// @Success 200 {object} response.Envelope
// @Router /major-assignments/{id} [get]
func (h *MajorAssignmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update a major assignment
// @Tags MajorAssignments
// @Accept json
// @Produce json
// @Param id path string true "Major assignment ID"
// @Param payload body dto.UpdateMajorAssignmentRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /major-assignments/{id} [patch]
func (h *MajorAssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateMajorAssignmentRequest
	if !bindJSON(c, &req, "invalid major assignment payload", false) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a major assignment with its teams and stages
// @Tags MajorAssignments
// @Param id path string true "Major assignment ID"
// @Success 204
// @Router /major-assignments/{id} [delete]
func (h *MajorAssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
