package dto

import "time"

// CreateStageRequest defines a stage of a major assignment.
type CreateStageRequest struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Description string    `json:"description"`
	Type        string    `json:"stage_type" validate:"required,oneof=TEAM_FORMATION DIVISION CUSTOM team_formation division custom"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Order       int       `json:"order" validate:"min=0"`
}

// StageTransitionRequest names a manual stage transition.
type StageTransitionRequest struct {
	Action string `json:"action" validate:"required,oneof=activate complete restart lock unlock"`
}

// CreateDivisionRoleRequest defines a role teams are expected to fill.
type CreateDivisionRoleRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
	IsRequired  bool   `json:"is_required"`
}

// DivisionRoleInput is one free-form role and the members holding it.
type DivisionRoleInput struct {
	RoleName        string   `json:"role_name" validate:"required,max=120"`
	RoleDescription string   `json:"role_description"`
	DivisionRoleID  *string  `json:"division_role_id"`
	MemberIDs       []string `json:"member_ids"`
}

// AssignDivisionsRequest replaces a team's divisions for a stage.
type AssignDivisionsRequest struct {
	Roles []DivisionRoleInput `json:"roles" validate:"dive"`
}
