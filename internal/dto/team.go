package dto

// CreateTeamRequest opens a team led by the caller.
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// InviteRequest names the classmate to invite.
type InviteRequest struct {
	InviteeID string `json:"invitee_id" validate:"required"`
}

// RespondInvitationRequest accepts or rejects an invitation.
type RespondInvitationRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// ReasonRequest carries a free-text reason.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// ConfirmationRequest asks the teacher to confirm a team. Reason is required
// only when the team size is out of range.
type ConfirmationRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// RejectTeamRequest carries the teacher's reason for rejecting a team.
type RejectTeamRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// DecisionRequest approves or rejects a pending request.
type DecisionRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Comment string `json:"comment" validate:"max=1000"`
}
