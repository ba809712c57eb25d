package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/dto"
	"github.com/noah-isme/sma-teamwork-api/internal/models"
	appErrors "github.com/noah-isme/sma-teamwork-api/pkg/errors"
)

func newTestMajorAssignmentService(w *memWorld) *MajorAssignmentService {
	return NewMajorAssignmentService(MajorAssignmentServiceDeps{
		Tx:          memTx{w},
		Assignments: memAssignments{w},
		Teams:       memTeams{w},
		Users:       memUsers{w},
		Audit:       memAudit{w},
		Now:         func() time.Time { return fxNow },
	})
}

func intPtr(v int) *int { return &v }

func TestCreateMajorAssignmentDefaultsAndBounds(t *testing.T) {
	w := seedWorld(t, 1)
	svc := newTestMajorAssignmentService(w)
	ctx := context.Background()

	ma, err := svc.Create(ctx, teacher(fxCreator), dto.CreateMajorAssignmentRequest{
		ClassID:    fxClass,
		Title:      " Robotics ",
		TeacherIDs: []string{fxCoTeacher, fxCoTeacher, fxCreator},
	})
	require.NoError(t, err)
	assert.Equal(t, "Robotics", ma.Title)
	assert.Equal(t, 2, ma.MinTeamSize)
	assert.Equal(t, 5, ma.MaxTeamSize)
	assert.True(t, ma.Active)
	assert.Equal(t, []string{fxCoTeacher}, ma.TeacherIDs)

	_, err = svc.Create(ctx, teacher(fxCreator), dto.CreateMajorAssignmentRequest{ClassID: fxClass, Title: "Bad", MinTeamSize: 4, MaxTeamSize: 3})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTeamSize)

	_, err = svc.Create(ctx, student(1), dto.CreateMajorAssignmentRequest{ClassID: fxClass, Title: "Mine"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	start, end := fxNow.Add(time.Hour), fxNow
	_, err = svc.Create(ctx, teacher(fxCreator), dto.CreateMajorAssignmentRequest{ClassID: fxClass, Title: "Window", StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUpdateMajorAssignmentKeepsSizeInvariant(t *testing.T) {
	w := seedWorld(t, 1)
	svc := newTestMajorAssignmentService(w)
	ctx := context.Background()

	_, err := svc.Update(ctx, teacher(fxCreator), fxAssignment, dto.UpdateMajorAssignmentRequest{MinTeamSize: intPtr(4)})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTeamSize)
	assert.Equal(t, 2, w.assignments[fxAssignment].MinTeamSize)

	_, err = svc.Update(ctx, teacher(fxOutsider), fxAssignment, dto.UpdateMajorAssignmentRequest{MaxTeamSize: intPtr(6)})
	assert.ErrorIs(t, err, appErrors.ErrNotManager)

	inactive := false
	ma, err := svc.Update(ctx, teacher(fxCoTeacher), fxAssignment, dto.UpdateMajorAssignmentRequest{MinTeamSize: intPtr(4), MaxTeamSize: intPtr(6), Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 4, ma.MinTeamSize)
	assert.Equal(t, 6, ma.MaxTeamSize)
	assert.False(t, w.assignments[fxAssignment].Active)
}

func TestDeleteMajorAssignmentCascades(t *testing.T) {
	w := seedWorld(t, 3)
	formTeam(t, newTestTeamService(w), 1, 2)
	putStage(w, "stage-div", models.StageTypeDivision, models.StageStatusActive, fxNow, fxNow.Add(time.Hour))
	w.roles["role-1"] = models.DivisionRole{ID: "role-1", StageID: "stage-div", Name: "Lead"}
	svc := newTestMajorAssignmentService(w)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, student(1), fxAssignment), appErrors.ErrNotManager)
	assert.Len(t, w.teamsOf(fxAssignment), 1)

	require.NoError(t, svc.Delete(ctx, teacher(fxCreator), fxAssignment))
	assert.Empty(t, w.assignments)
	assert.Empty(t, w.teams)
	assert.Empty(t, w.invitations)
	assert.Empty(t, w.stages)
	assert.Empty(t, w.roles)

	_, err := svc.Get(ctx, teacher(fxCreator), fxAssignment)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestMajorAssignmentVisibility(t *testing.T) {
	w := seedWorld(t, 1)
	svc := newTestMajorAssignmentService(w)
	ctx := context.Background()

	_, err := svc.Get(ctx, student(1), fxAssignment)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, teacher(fxOutsider), fxAssignment)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, _, err = svc.List(ctx, student(1), dto.MajorAssignmentQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	items, page, err := svc.List(ctx, student(1), dto.MajorAssignmentQuery{ClassID: fxClass})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 20, page.PageSize)

	_, _, err = svc.List(ctx, student(1), dto.MajorAssignmentQuery{ClassID: "class-2"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
