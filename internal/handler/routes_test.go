package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = stubTokens{
	"student": {UserID: "stu-1", Role: models.RoleStudent},
	"teacher": {UserID: "teacher-1", Role: models.RoleTeacher},
	"admin":   {UserID: "admin-1", Role: models.RoleAdmin},
}

// Embedding the interfaces lets each stub override only what a test calls.
type majorAssignmentStub struct {
	majorAssignmentService
	created dto.CreateMajorAssignmentRequest
	actor   *models.JWTClaims
	query   dto.MajorAssignmentQuery
}

func (m *majorAssignmentStub) Create(_ context.Context, actor *models.JWTClaims, req dto.CreateMajorAssignmentRequest) (*models.MajorAssignment, error) {
	m.actor = actor
	m.created = req
	return &models.MajorAssignment{ID: "ma-1", Title: req.Title, ClassID: req.ClassID}, nil
}

func (m *majorAssignmentStub) List(_ context.Context, _ *models.JWTClaims, query dto.MajorAssignmentQuery) ([]models.MajorAssignment, *models.Pagination, error) {
	m.query = query
	return []models.MajorAssignment{}, &models.Pagination{Page: query.Page, PageSize: query.PageSize}, nil
}

type teamStub struct {
	teamService
	accepted      *bool
	leaderDecided bool
	teacherDecide bool
	confirmReason string
	inviteErr     error
}

func (t *teamStub) RespondToInvitation(_ context.Context, _ *models.JWTClaims, id string, accept bool) (*models.TeamInvitation, error) {
	t.accepted = &accept
	return &models.TeamInvitation{ID: id, Status: models.InvitationStatusAccepted}, nil
}

func (t *teamStub) Invite(_ context.Context, _ *models.JWTClaims, teamID, inviteeID string) (*models.TeamInvitation, error) {
	if t.inviteErr != nil {
		return nil, t.inviteErr
	}
	return &models.TeamInvitation{ID: "inv-1", TeamID: teamID, InviteeID: inviteeID}, nil
}

func (t *teamStub) LeaderDecideLeave(_ context.Context, _ *models.JWTClaims, id string, _ bool, _ string) (*models.LeaveTeamRequest, error) {
	t.leaderDecided = true
	return &models.LeaveTeamRequest{ID: id}, nil
}

func (t *teamStub) TeacherDecideLeave(_ context.Context, _ *models.JWTClaims, id string, _ bool, _ string) (*models.LeaveTeamRequest, error) {
	t.teacherDecide = true
	return &models.LeaveTeamRequest{ID: id}, nil
}

func (t *teamStub) RequestConfirmation(_ context.Context, _ *models.JWTClaims, teamID, reason string) (*models.Team, error) {
	t.confirmReason = reason
	return &models.Team{ID: teamID}, nil
}

type stageStub struct {
	stageService
	action string
}

func (s *stageStub) Transition(_ context.Context, _ *models.JWTClaims, stageID string, req dto.StageTransitionRequest) (*models.Stage, error) {
	s.action = req.Action
	if req.Action == "restart" {
		return nil, appErrors.ErrInvalidTransition
	}
	return &models.Stage{ID: stageID}, nil
}

type notificationStub struct {
	notificationService
	query dto.NotificationQuery
}

func (n *notificationStub) List(_ context.Context, _ *models.JWTClaims, query dto.NotificationQuery) ([]models.Notification, *models.Pagination, error) {
	n.query = query
	return []models.Notification{}, &models.Pagination{Page: query.Page, PageSize: query.PageSize}, nil
}

type fixture struct {
	router *gin.Engine
	ma     *majorAssignmentStub
	teams  *teamStub
	stages *stageStub
	notes  *notificationStub
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		ma:     &majorAssignmentStub{},
		teams:  &teamStub{},
		stages: &stageStub{},
		notes:  &notificationStub{},
	}
	f.router = gin.New()
	RegisterRoutes(f.router.Group("/api/v1"), Handlers{
		MajorAssignments: NewMajorAssignmentHandler(f.ma),
		Teams:            NewTeamHandler(f.teams),
		Stages:           NewStageHandler(f.stages),
		Divisions:        NewDivisionHandler(nil),
		Notifications:    NewNotificationHandler(f.notes),
	}, testTokens)
	return f
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestRoutesRequireBearerToken(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/v1/major-assignments", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/v1/major-assignments", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMajorAssignmentRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/v1/major-assignments", "student", `{"class_id":"class-1","title":"Capstone"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/v1/major-assignments", "teacher", `{"class_id":"class-1","title":"Capstone"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "teacher-1", f.ma.actor.UserID)
	assert.Equal(t, "Capstone", f.ma.created.Title)

	w = f.do(http.MethodPost, "/api/v1/major-assignments", "teacher", `{"class_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodGet, "/api/v1/major-assignments?class_id=class-1&active=true&page=2&page_size=5", "student", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "class-1", f.ma.query.ClassID)
	require.NotNil(t, f.ma.query.Active)
	assert.True(t, *f.ma.query.Active)
	assert.Equal(t, 2, f.ma.query.Page)
	assert.Equal(t, 5, f.ma.query.PageSize)

	w = f.do(http.MethodGet, "/api/v1/major-assignments?active=sometimes", "student", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvitationRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/v1/invitations/inv-1/respond", "student", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, f.teams.accepted)

	w = f.do(http.MethodPost, "/api/v1/invitations/inv-1/respond", "student", `{"accept":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.teams.accepted)
	assert.False(t, *f.teams.accepted)

	w = f.do(http.MethodPost, "/api/v1/invitations/inv-1/respond", "teacher", `{"accept":true}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/v1/invitations?status=lost", "student", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/teams/team-1/invitations", "student", `{"invitee_id":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.teams.inviteErr = appErrors.ErrTeamLocked
	w = f.do(http.MethodPost, "/api/v1/teams/team-1/invitations", "student", `{"invitee_id":"stu-2"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrTeamLocked.Code, errorCode(t, w))
}

func TestLeaveDecisionDispatchesByRole(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/v1/leave-requests/lr-1/decision", "student", `{"approve":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.teams.leaderDecided)
	assert.False(t, f.teams.teacherDecide)

	w = f.do(http.MethodPost, "/api/v1/leave-requests/lr-1/decision", "admin", `{"approve":false,"comment":"stay"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.teams.teacherDecide)

	w = f.do(http.MethodPost, "/api/v1/leave-requests/lr-1/decision", "admin", `{"comment":"?"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmationRequestAcceptsEmptyBody(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/v1/teams/team-1/confirmation-request", "student", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.teams.confirmReason)

	w = f.do(http.MethodPost, "/api/v1/teams/team-1/confirmation-request", "student", `{"reason":"one short"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "one short", f.teams.confirmReason)

	w = f.do(http.MethodPost, "/api/v1/teams/team-1/confirm", "student", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStageTransitionRoute(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/v1/stages/stage-1/transition", "teacher", `{"action":"complete"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "complete", f.stages.action)

	w = f.do(http.MethodPost, "/api/v1/stages/stage-1/transition", "teacher", `{"action":"restart"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/v1/stages/stage-1/transition", "student", `{"action":"complete"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotificationRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/v1/notifications?unread=true", "student", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.notes.query.UnreadOnly)
	assert.Equal(t, 1, f.notes.query.Page)
	assert.Equal(t, 20, f.notes.query.PageSize)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
