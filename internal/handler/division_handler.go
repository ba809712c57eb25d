package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

type divisionService interface {
	AssignDivisions(ctx context.Context, actor *models.JWTClaims, teamID, stageID string, req dto.AssignDivisionsRequest) ([]models.DivisionAssignment, error)
	ListDivisions(ctx context.Context, actor *models.JWTClaims, teamID, stageID string) ([]models.DivisionAssignment, error)
}

// DivisionHandler exposes per-stage role assignment within a team.
type DivisionHandler struct {
	service divisionService
}

// NewDivisionHandler builds the handler.
func NewDivisionHandler(service divisionService) *DivisionHandler {
	return &DivisionHandler{service: service}
}

// Assign godoc
// @Summary Replace a team's divisions for a stage
// @Tags Divisions
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param stageId path string true "Stage ID"
// @Param payload body dto.AssignDivisionsRequest true "Roles and members"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/stages/{stageId}/divisions [put]
func (h *DivisionHandler) Assign(c *gin.Context) {
	var req dto.AssignDivisionsRequest
	if !bindJSON(c, &req, "invalid division payload", false) {
		return
	}
	items, err := h.service.AssignDivisions(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), c.Param("stageId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// List godoc
// @Summary List a team's divisions for a stage
// @Tags Divisions
// @Produce json
// @Param teamId path string true "Team ID"
// @Param stageId path string true "Stage ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/stages/{stageId}/divisions [get]
func (h *DivisionHandler) List(c *gin.Context) {
	items, err := h.service.ListDivisions(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), c.Param("stageId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
