package models

import "time"

// AuditAction constants represent workflow transitions recorded in the
// operation log.
const (
	AuditActionAssignmentCreate   = "MAJOR_ASSIGNMENT_CREATE"
	AuditActionAssignmentUpdate   = "MAJOR_ASSIGNMENT_UPDATE"
	AuditActionAssignmentDelete   = "MAJOR_ASSIGNMENT_DELETE"
	AuditActionTeamCreate         = "TEAM_CREATE"
	AuditActionTeamDelete         = "TEAM_DELETE"
	AuditActionInvitationSend     = "INVITATION_SEND"
	AuditActionInvitationRespond  = "INVITATION_RESPOND"
	AuditActionLeaveRequest       = "LEAVE_REQUEST"
	AuditActionLeaveDecide        = "LEAVE_DECIDE"
	AuditActionLeaveEscalate      = "LEAVE_ESCALATE"
	AuditActionDissolveRequest    = "DISSOLVE_REQUEST"
	AuditActionDissolveDecide     = "DISSOLVE_DECIDE"
	AuditActionConfirmRequest     = "CONFIRMATION_REQUEST"
	AuditActionTeamConfirm        = "TEAM_CONFIRM"
	AuditActionTeamReject         = "TEAM_REJECT"
	AuditActionStageCreate        = "STAGE_CREATE"
	AuditActionStageDelete        = "STAGE_DELETE"
	AuditActionStageTransition    = "STAGE_TRANSITION"
	AuditActionStageLock          = "STAGE_LOCK"
	AuditActionDivisionAssign     = "DIVISION_ASSIGN"
	AuditActionDivisionRoleCreate = "DIVISION_ROLE_CREATE"
	AuditActionDivisionRoleDelete = "DIVISION_ROLE_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
