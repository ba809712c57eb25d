package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups errors by how callers are expected to react to them.
type Kind string

const (
	KindPermissionDenied    Kind = "PERMISSION_DENIED"
	KindInvalidState        Kind = "INVALID_STATE"
	KindConstraintViolation Kind = "CONSTRAINT_VIOLATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInternal            Kind = "INTERNAL"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones with custom
// messages still match their predefined value.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance. The kind is derived from the status.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Kind: kindForStatus(status), Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Kind: kindForStatus(status), Status: status, Message: message, Err: err}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusForbidden:
		return KindPermissionDenied
	case http.StatusConflict:
		return KindInvalidState
	case http.StatusUnprocessableEntity:
		return KindConstraintViolation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	default:
		return KindInternal
	}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Team workflow errors. Messages are shown to end users as-is.
var (
	ErrNotLeader    = New("NOT_LEADER", http.StatusForbidden, "only the team leader may do this")
	ErrNotManager   = New("NOT_MANAGER", http.StatusForbidden, "only a teacher managing this major assignment may do this")
	ErrNotInvitee   = New("NOT_INVITEE", http.StatusForbidden, "this invitation was not sent to you")
	ErrNotMember    = New("NOT_MEMBER", http.StatusForbidden, "you are not a member of this team")
	ErrNotRequester = New("NOT_REQUESTER", http.StatusForbidden, "only the student who filed this request may escalate it")
	ErrNotStudent   = New("NOT_STUDENT", http.StatusForbidden, "only students of this class may join teams")

	ErrAlreadyInTeam       = New("ALREADY_IN_TEAM", http.StatusUnprocessableEntity, "you already have a team for this major assignment")
	ErrAlreadyTeamed       = New("ALREADY_TEAMED", http.StatusUnprocessableEntity, "this student already has a team for this major assignment")
	ErrDuplicateInvitation = New("DUPLICATE_INVITATION", http.StatusUnprocessableEntity, "a pending invitation to this student already exists")
	ErrDuplicateRequest    = New("DUPLICATE_REQUEST", http.StatusUnprocessableEntity, "you already have an open request for this team")
	ErrReasonRequired      = New("REASON_REQUIRED", http.StatusUnprocessableEntity, "please provide a reason since your team size is out of range")
	ErrEmptyRole           = New("EMPTY_ROLE", http.StatusUnprocessableEntity, "every role needs at least one member")
	ErrNotTeamMember       = New("NOT_TEAM_MEMBER", http.StatusUnprocessableEntity, "roles can only be given to members of this team")
	ErrInvalidTeamSize     = New("INVALID_TEAM_SIZE", http.StatusUnprocessableEntity, "minimum team size cannot be larger than maximum team size")
	ErrInvalidStageWindow  = New("INVALID_STAGE_WINDOW", http.StatusUnprocessableEntity, "stage start must be before stage end")
	ErrStageOutsideWindow  = New("STAGE_OUTSIDE_WINDOW", http.StatusUnprocessableEntity, "stage must fall within the major assignment's time window")

	ErrStageClosed           = New("STAGE_CLOSED", http.StatusConflict, "the team formation stage has ended")
	ErrTeamLocked            = New("TEAM_LOCKED", http.StatusConflict, "this team has been confirmed and its membership is locked")
	ErrAlreadyResolved       = New("ALREADY_RESOLVED", http.StatusConflict, "this invitation has already been handled")
	ErrRequestResolved       = New("REQUEST_RESOLVED", http.StatusConflict, "this request has already been handled")
	ErrAlreadyConfirmed      = New("ALREADY_CONFIRMED", http.StatusConflict, "this team has already been confirmed")
	ErrConfirmationPending   = New("CONFIRMATION_PENDING", http.StatusConflict, "a confirmation request is already waiting for the teacher")
	ErrInvitationNotRejected = New("INVITATION_NOT_REJECTED", http.StatusConflict, "only rejected invitations can be sent again")
	ErrNotEscalatable        = New("NOT_ESCALATABLE", http.StatusConflict, "only requests rejected by the leader can be escalated")
	ErrInvalidTransition     = New("INVALID_TRANSITION", http.StatusConflict, "the stage cannot move to that status from its current status")
	ErrStageLocked           = New("STAGE_LOCKED", http.StatusConflict, "the stage is locked; unlock it before changing it")
	ErrAssignmentInactive    = New("ASSIGNMENT_INACTIVE", http.StatusConflict, "this major assignment is no longer active")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// KindOf reports the kind of any error, treating foreign errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
