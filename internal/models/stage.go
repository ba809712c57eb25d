package models

import "time"

// StageType selects what happens when a stage completes.
type StageType string

const (
	StageTypeTeamFormation StageType = "TEAM_FORMATION"
	StageTypeDivision      StageType = "DIVISION"
	StageTypeCustom        StageType = "CUSTOM"
)

// Valid reports whether t is a known stage type.
func (t StageType) Valid() bool {
	switch t {
	case StageTypeTeamFormation, StageTypeDivision, StageTypeCustom:
		return true
	}
	return false
}

// StageStatus moves PENDING -> ACTIVE -> COMPLETED.
type StageStatus string

const (
	StageStatusPending   StageStatus = "PENDING"
	StageStatusActive    StageStatus = "ACTIVE"
	StageStatusCompleted StageStatus = "COMPLETED"
)

// Stage is a time-boxed phase of a major assignment.
type Stage struct {
	ID                string      `db:"id" json:"id"`
	MajorAssignmentID string      `db:"major_assignment_id" json:"major_assignment_id"`
	Name              string      `db:"name" json:"name"`
	Description       string      `db:"description" json:"description"`
	Type              StageType   `db:"stage_type" json:"stage_type"`
	StartDate         time.Time   `db:"start_date" json:"start_date"`
	EndDate           time.Time   `db:"end_date" json:"end_date"`
	Order             int         `db:"sort_order" json:"order"`
	Status            StageStatus `db:"status" json:"status"`
	IsLocked          bool        `db:"is_locked" json:"is_locked"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// DivisionRole is a named role a division stage expects teams to fill.
type DivisionRole struct {
	ID          string    `db:"id" json:"id"`
	StageID     string    `db:"stage_id" json:"stage_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsRequired  bool      `db:"is_required" json:"is_required"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TeamDivision records one (role, member) pair of a team in a stage.
type TeamDivision struct {
	ID              string    `db:"id" json:"id"`
	TeamID          string    `db:"team_id" json:"team_id"`
	StageID         string    `db:"stage_id" json:"stage_id"`
	DivisionRoleID  *string   `db:"division_role_id" json:"division_role_id,omitempty"`
	RoleName        string    `db:"role_name" json:"role_name"`
	RoleDescription string    `db:"role_description" json:"role_description"`
	MemberID        *string   `db:"member_id" json:"member_id,omitempty"`
	AssignedAt      time.Time `db:"assigned_at" json:"assigned_at"`
	AssignedBy      *string   `db:"assigned_by" json:"assigned_by,omitempty"`
}

// DivisionAssignment is the grouped view of TeamDivision rows sharing a role.
type DivisionAssignment struct {
	RoleName        string   `json:"role_name"`
	RoleDescription string   `json:"role_description"`
	MemberIDs       []string `json:"member_ids"`
}

// GroupDivisions folds rows into roles keyed by name and description,
// keeping the order in which each role first appears.
func GroupDivisions(rows []TeamDivision) []DivisionAssignment {
	type key struct{ name, description string }
	index := make(map[key]int)
	result := make([]DivisionAssignment, 0)
	for _, row := range rows {
		k := key{row.RoleName, row.RoleDescription}
		pos, ok := index[k]
		if !ok {
			pos = len(result)
			index[k] = pos
			result = append(result, DivisionAssignment{RoleName: row.RoleName, RoleDescription: row.RoleDescription, MemberIDs: []string{}})
		}
		if row.MemberID != nil {
			result[pos].MemberIDs = append(result[pos].MemberIDs, *row.MemberID)
		}
	}
	return result
}
