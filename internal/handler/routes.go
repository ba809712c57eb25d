package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-teamwork-api/internal/middleware"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
)

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	MajorAssignments *MajorAssignmentHandler
	Teams            *TeamHandler
	Stages           *StageHandler
	Divisions        *DivisionHandler
	Notifications    *NotificationHandler
	Metrics          *MetricsHandler
}

// RegisterRoutes mounts the authenticated API on group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	managers := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin)
	students := middleware.RequireRoles(models.RoleStudent)

	secured := group.Group("")
	secured.Use(middleware.JWT(tokens), middleware.Audit())

	ma := secured.Group("/major-assignments")
	ma.POST("", managers, h.MajorAssignments.Create)
	ma.GET("", h.MajorAssignments.List)
	ma.GET("/:id", h.MajorAssignments.Get)
	ma.PATCH("/:id", managers, h.MajorAssignments.Update)
	ma.DELETE("/:id", managers, h.MajorAssignments.Delete)
	ma.POST("/:id/teams", students, h.Teams.Create)
	ma.GET("/:id/teams", h.Teams.List)
	ma.GET("/:id/teams/me", students, h.Teams.Mine)
	ma.POST("/:id/stages", managers, h.Stages.Create)
	ma.GET("/:id/stages", h.Stages.List)

	teams := secured.Group("/teams")
	teams.GET("/:teamId", h.Teams.Get)
	teams.DELETE("/:teamId", managers, h.Teams.Delete)
	teams.POST("/:teamId/invitations", students, h.Teams.Invite)
	teams.POST("/:teamId/leave-requests", students, h.Teams.RequestLeave)
	teams.GET("/:teamId/leave-requests", h.Teams.ListLeaveRequests)
	teams.POST("/:teamId/dissolve-requests", students, h.Teams.RequestDissolve)
	teams.POST("/:teamId/confirmation-request", students, h.Teams.RequestConfirmation)
	teams.POST("/:teamId/confirm", managers, h.Teams.Confirm)
	teams.POST("/:teamId/reject", managers, h.Teams.Reject)
	teams.PUT("/:teamId/stages/:stageId/divisions", students, h.Divisions.Assign)
	teams.GET("/:teamId/stages/:stageId/divisions", h.Divisions.List)

	invitations := secured.Group("/invitations", students)
	invitations.GET("", h.Teams.MyInvitations)
	invitations.POST("/:invitationId/respond", h.Teams.Respond)
	invitations.POST("/:invitationId/resend", h.Teams.Resend)

	secured.POST("/leave-requests/:requestId/decision", h.Teams.DecideLeave)
	secured.POST("/leave-requests/:requestId/escalate", students, h.Teams.EscalateLeave)
	secured.POST("/dissolve-requests/:requestId/decision", managers, h.Teams.DecideDissolve)

	stages := secured.Group("/stages")
	stages.GET("/:stageId", h.Stages.Get)
	stages.DELETE("/:stageId", managers, h.Stages.Delete)
	stages.POST("/:stageId/transition", managers, h.Stages.Transition)
	stages.POST("/:stageId/roles", managers, h.Stages.CreateRole)
	stages.GET("/:stageId/roles", h.Stages.ListRoles)
	secured.DELETE("/division-roles/:roleId", managers, h.Stages.DeleteRole)

	notes := secured.Group("/notifications")
	notes.GET("", h.Notifications.List)
	notes.POST("/read-all", h.Notifications.MarkAllRead)
	notes.POST("/:notificationId/read", h.Notifications.MarkRead)

	if h.Metrics != nil {
		secured.GET("/metrics/workflow", managers, h.Metrics.Workflow)
	}
}
