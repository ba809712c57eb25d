package dto

import "time"

// CreateMajorAssignmentRequest defines a team project for a class.
type CreateMajorAssignmentRequest struct {
	ClassID     string     `json:"class_id" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MinTeamSize int        `json:"min_team_size" validate:"omitempty,min=1"`
	MaxTeamSize int        `json:"max_team_size" validate:"omitempty,min=1"`
	TeacherIDs  []string   `json:"teacher_ids" validate:"omitempty,dive,required"`
}

// UpdateMajorAssignmentRequest changes editable fields. Nil fields are kept.
type UpdateMajorAssignmentRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MinTeamSize *int       `json:"min_team_size" validate:"omitempty,min=1"`
	MaxTeamSize *int       `json:"max_team_size" validate:"omitempty,min=1"`
	TeacherIDs  []string   `json:"teacher_ids" validate:"omitempty,dive,required"`
	Active      *bool      `json:"active"`
}

// MajorAssignmentQuery mirrors supported listing filters.
type MajorAssignmentQuery struct {
	ClassID  string
	Active   *bool
	Page     int
	PageSize int
}
