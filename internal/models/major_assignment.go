package models

import "time"

// MajorAssignment is a team project defined for one class.
type MajorAssignment struct {
	ID          string     `db:"id" json:"id"`
	ClassID     string     `db:"class_id" json:"class_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	MinTeamSize int        `db:"min_team_size" json:"min_team_size"`
	MaxTeamSize int        `db:"max_team_size" json:"max_team_size"`
	CreatorID   string     `db:"creator_id" json:"creator_id"`
	TeacherIDs  []string   `db:"-" json:"teacher_ids"`
	Active      bool       `db:"active" json:"active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CanManage reports whether the actor may confirm teams, review escalations
// and drive stages for this assignment.
func (m *MajorAssignment) CanManage(userID string, role UserRole) bool {
	if role == RoleSuperAdmin || role == RoleAdmin {
		return true
	}
	if userID == "" {
		return false
	}
	if m.CreatorID == userID {
		return true
	}
	for _, id := range m.TeacherIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ManagerIDs returns the creator followed by co-managing teachers, without
// duplicates.
func (m *MajorAssignment) ManagerIDs() []string {
	ids := make([]string, 0, len(m.TeacherIDs)+1)
	seen := make(map[string]struct{}, len(m.TeacherIDs)+1)
	for _, id := range append([]string{m.CreatorID}, m.TeacherIDs...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// TeamSizeValid reports whether size lies within the assignment bounds.
func (m *MajorAssignment) TeamSizeValid(size int) bool {
	return size >= m.MinTeamSize && size <= m.MaxTeamSize
}

// Contains reports whether [start, end] lies inside the assignment window.
// Open window edges accept anything.
func (m *MajorAssignment) Contains(start, end time.Time) bool {
	if m.StartDate != nil && start.Before(*m.StartDate) {
		return false
	}
	if m.EndDate != nil && end.After(*m.EndDate) {
		return false
	}
	return true
}

// MajorAssignmentFilter narrows assignment listings.
type MajorAssignmentFilter struct {
	ClassID   string
	CreatorID string
	Active    *bool
	Page      int
	PageSize  int
}
