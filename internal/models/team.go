package models

import "time"

// TeamStatus tracks the confirmation state of a team.
type TeamStatus string

const (
	TeamStatusPending   TeamStatus = "PENDING"
	TeamStatusConfirmed TeamStatus = "CONFIRMED"
	TeamStatusRejected  TeamStatus = "REJECTED"
)

// Team is a student-led group inside a major assignment.
type Team struct {
	ID                        string       `db:"id" json:"id"`
	MajorAssignmentID         string       `db:"major_assignment_id" json:"major_assignment_id"`
	Name                      string       `db:"name" json:"name"`
	LeaderID                  string       `db:"leader_id" json:"leader_id"`
	Status                    TeamStatus   `db:"status" json:"status"`
	IsLocked                  bool         `db:"is_locked" json:"is_locked"`
	ConfirmationRequestReason *string      `db:"confirmation_request_reason" json:"confirmation_request_reason,omitempty"`
	RejectReason              *string      `db:"reject_reason" json:"reject_reason,omitempty"`
	ConfirmationRequestedAt   *time.Time   `db:"confirmation_requested_at" json:"confirmation_requested_at,omitempty"`
	ConfirmedAt               *time.Time   `db:"confirmed_at" json:"confirmed_at,omitempty"`
	ConfirmedBy               *string      `db:"confirmed_by" json:"confirmed_by,omitempty"`
	CreatedAt                 time.Time    `db:"created_at" json:"created_at"`
	Members                   []TeamMember `db:"-" json:"members"`
}

// Size counts the leader plus members.
func (t *Team) Size() int {
	return len(t.Members) + 1
}

// HasMember reports whether userID is a non-leader member.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Includes reports whether userID is the leader or a member.
func (t *Team) Includes(userID string) bool {
	return t.LeaderID == userID || t.HasMember(userID)
}

// UserIDs returns the leader followed by every member.
func (t *Team) UserIDs() []string {
	ids := make([]string, 0, t.Size())
	ids = append(ids, t.LeaderID)
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// MemberIDs returns the non-leader member ids.
func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// ConfirmationPending reports whether a confirmation request awaits review.
func (t *Team) ConfirmationPending() bool {
	return t.Status == TeamStatusPending && t.ConfirmationRequestedAt != nil
}

// TeamMember joins a non-leader student to a team.
type TeamMember struct {
	ID                string    `db:"id" json:"id"`
	TeamID            string    `db:"team_id" json:"team_id"`
	MajorAssignmentID string    `db:"major_assignment_id" json:"major_assignment_id"`
	UserID            string    `db:"user_id" json:"user_id"`
	JoinedAt          time.Time `db:"joined_at" json:"joined_at"`
}

// InvitationStatus captures the invitation workflow.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "PENDING"
	InvitationStatusAccepted  InvitationStatus = "ACCEPTED"
	InvitationStatusRejected  InvitationStatus = "REJECTED"
	InvitationStatusCancelled InvitationStatus = "CANCELLED"
)

// TeamInvitation is a leader's invitation to a classmate.
type TeamInvitation struct {
	ID          string           `db:"id" json:"id"`
	TeamID      string           `db:"team_id" json:"team_id"`
	InviterID   string           `db:"inviter_id" json:"inviter_id"`
	InviteeID   string           `db:"invitee_id" json:"invitee_id"`
	Status      InvitationStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
}

// LeaveStatus captures the two-level leave approval chain.
type LeaveStatus string

const (
	LeaveStatusPendingLeader   LeaveStatus = "PENDING_LEADER"
	LeaveStatusLeaderRejected  LeaveStatus = "LEADER_REJECTED"
	LeaveStatusPendingTeacher  LeaveStatus = "PENDING_TEACHER"
	LeaveStatusApproved        LeaveStatus = "APPROVED"
	LeaveStatusTeacherRejected LeaveStatus = "TEACHER_REJECTED"
)

// Open reports whether the request can still change state.
func (s LeaveStatus) Open() bool {
	switch s {
	case LeaveStatusPendingLeader, LeaveStatusLeaderRejected, LeaveStatusPendingTeacher:
		return true
	}
	return false
}

// LeaveTeamRequest asks to remove a member from a team.
type LeaveTeamRequest struct {
	ID                 string      `db:"id" json:"id"`
	TeamID             string      `db:"team_id" json:"team_id"`
	MemberID           string      `db:"member_id" json:"member_id"`
	Reason             string      `db:"reason" json:"reason"`
	Status             LeaveStatus `db:"status" json:"status"`
	ReviewerID         *string     `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewComment      *string     `db:"review_comment" json:"review_comment,omitempty"`
	LeaderRespondedAt  *time.Time  `db:"leader_responded_at" json:"leader_responded_at,omitempty"`
	TeacherRespondedAt *time.Time  `db:"teacher_responded_at" json:"teacher_responded_at,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
}

// DissolveStatus captures the dissolve approval outcome.
type DissolveStatus string

const (
	DissolveStatusPending  DissolveStatus = "PENDING"
	DissolveStatusApproved DissolveStatus = "APPROVED"
	DissolveStatusRejected DissolveStatus = "REJECTED"
)

// DissolveTeamRequest asks a manager to delete a team.
type DissolveTeamRequest struct {
	ID            string         `db:"id" json:"id"`
	TeamID        string         `db:"team_id" json:"team_id"`
	LeaderID      string         `db:"leader_id" json:"leader_id"`
	Reason        string         `db:"reason" json:"reason"`
	Status        DissolveStatus `db:"status" json:"status"`
	ReviewerID    *string        `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewComment *string        `db:"review_comment" json:"review_comment,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	RespondedAt   *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
}
