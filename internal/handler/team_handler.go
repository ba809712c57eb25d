package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
	"github.com/noah-isme/sma-teamwork-api/pkg/response"
)

type teamService interface {
	CreateTeam(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string, req dto.CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, actor *models.JWTClaims, teamID string) (*models.Team, error)
	ListTeams(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) ([]models.Team, error)
	MyTeam(ctx context.Context, actor *models.JWTClaims, majorAssignmentID string) (*models.Team, error)
	DeleteTeam(ctx context.Context, actor *models.JWTClaims, teamID string) error

	Invite(ctx context.Context, actor *models.JWTClaims, teamID, inviteeID string) (*models.TeamInvitation, error)
	RespondToInvitation(ctx context.Context, actor *models.JWTClaims, invitationID string, accept bool) (*models.TeamInvitation, error)
	ResendInvitation(ctx context.Context, actor *models.JWTClaims, invitationID string) (*models.TeamInvitation, error)
	ListMyInvitations(ctx context.Context, actor *models.JWTClaims, status models.InvitationStatus) ([]models.TeamInvitation, error)

	RequestLeave(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.LeaveTeamRequest, error)
	LeaderDecideLeave(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.LeaveTeamRequest, error)
	TeacherDecideLeave(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.LeaveTeamRequest, error)
	EscalateLeave(ctx context.Context, actor *models.JWTClaims, requestID string) (*models.LeaveTeamRequest, error)
	ListLeaveRequests(ctx context.Context, actor *models.JWTClaims, teamID string) ([]models.LeaveTeamRequest, error)

	RequestDissolve(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.DissolveTeamRequest, error)
	DecideDissolve(ctx context.Context, actor *models.JWTClaims, requestID string, approve bool, comment string) (*models.DissolveTeamRequest, error)

	RequestConfirmation(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.Team, error)
	ConfirmTeam(ctx context.Context, actor *models.JWTClaims, teamID string) (*models.Team, error)
	RejectTeam(ctx context.Context, actor *models.JWTClaims, teamID, reason string) (*models.Team, error)
}

// TeamHandler exposes team formation, requests and confirmation.
type TeamHandler struct {
	service teamService
}

// NewTeamHandler builds the handler.
func NewTeamHandler(service teamService) *TeamHandler {
	return &TeamHandler{service: service}
}

// Create godoc
// @Summary Create a team led by the caller
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path string true "Major assignment ID"
// @Param payload body dto.CreateTeamRequest true "Team payload"
// @Success 201 {object} response.Envelope
// @Router /major-assignments/{id}/teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamRequest
	if !bindJSON(c, &req, "invalid team payload", false) {
		return
	}
	team, err := h.service.CreateTeam(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, team)
}

// List godoc
// @Summary List teams of a major assignment
// @Tags Teams
// @Produce json
// @Param id path string true "Major assignment ID"
// @Success 200 {object} response.Envelope
// @Router /major-assignments/{id}/teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.service.ListTeams(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teams, nil)
}

// Mine godoc
// @Summary Get the caller's team in a major assignment
// @Tags Teams
// @Produce json
// @Param id path string true "Major assignment ID"
// @Success 200 {object} response.Envelope
// @Router /major-assignments/{id}/teams/me [get]
func (h *TeamHandler) Mine(c *gin.Context) {
	team, err := h.service.MyTeam(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Get godoc
// @Summary Get a team
// @Tags Teams
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.service.GetTeam(c.Request.Context(), claimsFromContext(c), c.Param("teamId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Delete godoc
// @Summary Delete a team
// @Tags Teams
// @Param teamId path string true "Team ID"
// @Success 204
// @Router /teams/{teamId} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteTeam(c.Request.Context(), claimsFromContext(c), c.Param("teamId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Invite godoc
// @Summary Invite a classmate to the caller's team
// @Tags Invitations
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.InviteRequest true "Invitee"
// @Success 201 {object} response.Envelope
// @Router /teams/{teamId}/invitations [post]
func (h *TeamHandler) Invite(c *gin.Context) {
	var req dto.InviteRequest
	if !bindJSON(c, &req, "invalid invitation payload", false) {
		return
	}
	if strings.TrimSpace(req.InviteeID) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invitee_id is required"))
		return
	}
	inv, err := h.service.Invite(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), req.InviteeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inv)
}

// MyInvitations godoc
// @Summary List invitations addressed to the caller
// @Tags Invitations
// @Produce json
// @Param status query string false "PENDING, ACCEPTED, REJECTED or CANCELLED"
// @Success 200 {object} response.Envelope
// @Router /invitations [get]
func (h *TeamHandler) MyInvitations(c *gin.Context) {
	status := models.InvitationStatus(strings.ToUpper(c.Query("status")))
	switch status {
	case "", models.InvitationStatusPending, models.InvitationStatusAccepted, models.InvitationStatusRejected, models.InvitationStatusCancelled:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown invitation status"))
		return
	}
	items, err := h.service.ListMyInvitations(c.Request.Context(), claimsFromContext(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Respond godoc
// @Summary Accept or reject an invitation
// @Tags Invitations
// @Accept json
// @Produce json
// @Param invitationId path string true "Invitation ID"
// @Param payload body dto.RespondInvitationRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /invitations/{invitationId}/respond [post]
func (h *TeamHandler) Respond(c *gin.Context) {
	var req dto.RespondInvitationRequest
	if !bindJSON(c, &req, "invalid invitation response", false) {
		return
	}
	if req.Accept == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "accept is required"))
		return
	}
	inv, err := h.service.RespondToInvitation(c.Request.Context(), claimsFromContext(c), c.Param("invitationId"), *req.Accept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inv, nil)
}

// Resend godoc
// @Summary Re-invite a student who rejected an invitation
// @Tags Invitations
// @Produce json
// @Param invitationId path string true "Rejected invitation ID"
// @Success 201 {object} response.Envelope
// @Router /invitations/{invitationId}/resend [post]
func (h *TeamHandler) Resend(c *gin.Context) {
	inv, err := h.service.ResendInvitation(c.Request.Context(), claimsFromContext(c), c.Param("invitationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, inv)
}

// RequestLeave godoc
// @Summary Ask to leave a team
// @Tags LeaveRequests
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.ReasonRequest true "Reason"
// @Success 201 {object} response.Envelope
// @Router /teams/{teamId}/leave-requests [post]
func (h *TeamHandler) RequestLeave(c *gin.Context) {
	var req dto.ReasonRequest
	if !bindJSON(c, &req, "invalid leave request", false) {
		return
	}
	item, err := h.service.RequestLeave(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ListLeaveRequests godoc
// @Summary List leave requests of a team
// @Tags LeaveRequests
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/leave-requests [get]
func (h *TeamHandler) ListLeaveRequests(c *gin.Context) {
	items, err := h.service.ListLeaveRequests(c.Request.Context(), claimsFromContext(c), c.Param("teamId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// DecideLeave godoc
// @Summary Approve or reject a leave request
// @Description Students decide as team leader; teachers decide escalated requests.
// @Tags LeaveRequests
// @Accept json
// @Produce json
// @Param requestId path string true "Leave request ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /leave-requests/{requestId}/decision [post]
func (h *TeamHandler) DecideLeave(c *gin.Context) {
	req, ok := bindDecision(c)
	if !ok {
		return
	}
	actor := claimsFromContext(c)
	decide := h.service.TeacherDecideLeave
	if actor != nil && actor.Role == models.RoleStudent {
		decide = h.service.LeaderDecideLeave
	}
	item, err := decide(c.Request.Context(), actor, c.Param("requestId"), *req.Approve, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// EscalateLeave godoc
// @Summary Escalate a leave request the leader rejected
// @Tags LeaveRequests
// @Produce json
// @Param requestId path string true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Router /leave-requests/{requestId}/escalate [post]
func (h *TeamHandler) EscalateLeave(c *gin.Context) {
	item, err := h.service.EscalateLeave(c.Request.Context(), claimsFromContext(c), c.Param("requestId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// RequestDissolve godoc
// @Summary Ask the teacher to dissolve the team
// @Tags DissolveRequests
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.ReasonRequest true "Reason"
// @Success 201 {object} response.Envelope
// @Router /teams/{teamId}/dissolve-requests [post]
func (h *TeamHandler) RequestDissolve(c *gin.Context) {
	var req dto.ReasonRequest
	if !bindJSON(c, &req, "invalid dissolve request", false) {
		return
	}
	item, err := h.service.RequestDissolve(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// DecideDissolve godoc
// @Summary Approve or reject a dissolve request
// @Tags DissolveRequests
// @Accept json
// @Produce json
// @Param requestId path string true "Dissolve request ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /dissolve-requests/{requestId}/decision [post]
func (h *TeamHandler) DecideDissolve(c *gin.Context) {
	req, ok := bindDecision(c)
	if !ok {
		return
	}
	item, err := h.service.DecideDissolve(c.Request.Context(), claimsFromContext(c), c.Param("requestId"), *req.Approve, req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// RequestConfirmation godoc
// @Summary Ask the teacher to confirm the team
// @Tags Confirmation
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.ConfirmationRequest false "Reason, required when the size is out of range"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/confirmation-request [post]
func (h *TeamHandler) RequestConfirmation(c *gin.Context) {
	var req dto.ConfirmationRequest
	if !bindJSON(c, &req, "invalid confirmation request", true) {
		return
	}
	team, err := h.service.RequestConfirmation(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Confirm godoc
// @Summary Confirm a team
// @Tags Confirmation
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/confirm [post]
func (h *TeamHandler) Confirm(c *gin.Context) {
	team, err := h.service.ConfirmTeam(c.Request.Context(), claimsFromContext(c), c.Param("teamId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Reject godoc
// @Summary Reject a team's confirmation request
// @Tags Confirmation
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.RejectTeamRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/reject [post]
func (h *TeamHandler) Reject(c *gin.Context) {
	var req dto.RejectTeamRequest
	if !bindJSON(c, &req, "invalid rejection payload", false) {
		return
	}
	team, err := h.service.RejectTeam(c.Request.Context(), claimsFromContext(c), c.Param("teamId"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

func bindDecision(c *gin.Context) (dto.DecisionRequest, bool) {
	var req dto.DecisionRequest
	if !bindJSON(c, &req, "invalid decision payload", false) {
		return req, false
	}
	if req.Approve == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "approve is required"))
		return req, false
	}
	return req, true
}
