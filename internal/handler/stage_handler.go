package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

type stageService interface {
	Create(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string, req dto.CreateStageRequest) (*models.Stage, error)
	List(ctx context.Context, majorAssignmentID string) ([]models.Stage, error)
	Get(ctx context.Context, stageID string) (*models.Stage, error)
	Delete(ctx context.Context, actor *models.JWTClaims, stageID string) error
	Transition(ctx context.Context, actor *models.JWTClaims, stageID string, req dto.StageTransitionRequest) (*models.Stage, error)
	CreateDivisionRole(ctx context.Context, actor *models.JWTClaims, stageID string, req dto.CreateDivisionRoleRequest) (*models.DivisionRole, error)
	ListDivisionRoles(ctx context.Context, stageID string) ([]models.DivisionRole, error)
	DeleteDivisionRole(ctx context.Context, actor *models.JWTClaims, roleID string) error
}

// StageHandler exposes stage definitions and manual transitions.
type StageHandler struct {
	service stageService
}

// NewStageHandler builds the handler.
func NewStageHandler(service stageService) *StageHandler {
	return &StageHandler{service: service}
}

// Create godoc
// @Summary Define a stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Major assignment ID"
// @Param payload body dto.CreateStageRequest true "Stage payload"
// @Success 201 {object} response.Envelope
// @Router /major-assignments/{id}/stages [post]
func (h *StageHandler) Create(c *gin.Context) {
	var req dto.CreateStageRequest
	if !bindJSON(c, &req, "invalid stage payload", false) {
		return
	}
	stage, err := h.service.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stage)
}

// List godoc
// @Summary List stages of a major assignment
// @Tags Stages
// @Produce json
// @Param id path string true "Major assignment ID"
// @Success 200 {object} response.Envelope
// @Router /major-assignments/{id}/stages [get]
func (h *StageHandler) List(c *gin.Context) {
	stages, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stages, nil)
}

// Get godoc
// @Summary Get a stage
// @Tags Stages
// @Produce json
// @Param stageId path string true "Stage ID"
// @Success 200 {object} response.Envelope
// @Router /stages/{stageId} [get]
func (h *StageHandler) Get(c *gin.Context) {
	stage, err := h.service.Get(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stage, nil)
}

// Delete godoc
// @Summary Delete a stage
// @Tags Stages
// @Param stageId path string true "Stage ID"
// @Success 204
// @Router /stages/{stageId} [delete]
func (h *StageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("stageId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Transition godoc
// @Summary Activate, complete, restart, lock or unlock a stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param stageId path string true "Stage ID"
// @Param payload body dto.StageTransitionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Router /stages/{stageId}/transition [post]
func (h *StageHandler) Transition(c *gin.Context) {
	var req dto.StageTransitionRequest
	if !bindJSON(c, &req, "invalid transition payload", false) {
		return
	}
	stage, err := h.service.Transition(c.Request.Context(), claimsFromContext(c), c.Param("stageId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stage, nil)
}

// CreateRole godoc
// @Summary Define a division role for a stage
// @Tags Stages
// @Accept json
// @Produce json
// @Param stageId path string true "Stage ID"
// @Param payload body dto.CreateDivisionRoleRequest true "Role payload"
// @Success 201 {object} response.Envelope
// @Router /stages/{stageId}/roles [post]
func (h *StageHandler) CreateRole(c *gin.Context) {
	var req dto.CreateDivisionRoleRequest
	if !bindJSON(c, &req, "invalid division role payload", false) {
		return
	}
	role, err := h.service.CreateDivisionRole(c.Request.Context(), claimsFromContext(c), c.Param("stageId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// ListRoles godoc
// @Summary List division roles of a stage
// @Tags Stages
// @Produce json
// @Param stageId path string true "Stage ID"
// @Success 200 {object} response.Envelope
// @Router /stages/{stageId}/roles [get]
func (h *StageHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListDivisionRoles(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// DeleteRole godoc
// @Summary Delete a division role
// @Tags Stages
// @Param roleId path string true "Division role ID"
// @Success 204
// @Router /division-roles/{roleId} [delete]
func (h *StageHandler) DeleteRole(c *gin.Context) {
	if err := h.service.DeleteDivisionRole(c.Request.Context(), claimsFromContext(c), c.Param("roleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
