package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
)

func TestAssignUngroupedStudentsPacksIntoCeilTeams(t *testing.T) {
	cases := []struct{ students, max int }{
		{1, 3}, {3, 3}, {7, 3}, {10, 4}, {11, 5}, {12, 2},
	}
	for _, strategy := range []GroupingStrategy{GreedyGrouping{}, BalancedGrouping{}} {
		for _, tc := range cases {
			t.Run(fmt.Sprintf("%s/%d-%d", strategy.Name(), tc.students, tc.max), func(t *testing.T) {
				w := seedWorld(t, tc.students)
				ma := w.assignments[fxAssignment]
				ma.MaxTeamSize = tc.max
				w.assignments[fxAssignment] = ma

				result, err := newTestAutoAssigner(w, strategy).AssignUngroupedStudents(context.Background(), fxAssignment)
				require.NoError(t, err)

				expected := (tc.students + tc.max - 1) / tc.max
				assert.Equal(t, expected, result.TeamsCreated)
				assert.Equal(t, tc.students, result.StudentsAssigned)
				assert.Zero(t, result.Skipped)

				teams := w.teamsOf(fxAssignment)
				require.Len(t, teams, expected)
				seen := map[string]int{}
				for _, team := range teams {
					assert.LessOrEqual(t, team.Size(), tc.max)
					assert.Equal(t, models.TeamStatusConfirmed, team.Status)
					assert.False(t, team.IsLocked)
					assert.Nil(t, team.ConfirmedBy)
					for _, id := range team.UserIDs() {
						seen[id]++
					}
				}
				require.Len(t, seen, tc.students)
				for i := 1; i <= tc.students; i++ {
					assert.Equal(t, 1, seen[fmt.Sprintf("stu-%d", i)])
				}
			})
		}
	}
}

func TestAssignUngroupedStudentsLeavesExistingTeamsAlone(t *testing.T) {
	w := seedWorld(t, 4)
	existing := formTeam(t, newTestTeamService(w), 1, 2)

	result, err := newTestAutoAssigner(w, nil).AssignUngroupedStudents(context.Background(), fxAssignment)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TeamsCreated)
	assert.Equal(t, 2, result.StudentsAssigned)
	assert.Len(t, w.team(existing.ID).Members, 1)

	result, err = newTestAutoAssigner(w, nil).AssignUngroupedStudents(context.Background(), fxAssignment)
	require.NoError(t, err)
	assert.Equal(t, AutoAssignResult{}, result)
}

func TestAssignUngroupedStudentsSkipsFailedPlacement(t *testing.T) {
	w := seedWorld(t, 3)
	w.failTeamCreate["stu-2"] = errors.New("insert failed")
	ma := w.assignments[fxAssignment]
	ma.MaxTeamSize = 1
	w.assignments[fxAssignment] = ma

	result, err := newTestAutoAssigner(w, nil).AssignUngroupedStudents(context.Background(), fxAssignment)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TeamsCreated)
	assert.Equal(t, 1, result.Skipped)

	for _, team := range w.teamsOf(fxAssignment) {
		assert.NotEqual(t, "stu-2", team.LeaderID)
	}
	assert.Empty(t, w.notesFor("stu-2"))
	assert.Len(t, w.notesFor("stu-1"), 1)
}

func TestFillRequiredRoles(t *testing.T) {
	w := seedWorld(t, 6)
	teamSvc := newTestTeamService(w)
	full := formTeam(t, teamSvc, 1, 2)
	empty := formTeam(t, teamSvc, 3, 4)
	vacant := formTeam(t, teamSvc, 5, 6)

	putStage(w, "stage-div", models.StageTypeDivision, models.StageStatusCompleted, fxNow.Add(-time.Hour), fxNow)
	w.roles["role-req"] = models.DivisionRole{ID: "role-req", StageID: "stage-div", Name: "Presenter", IsRequired: true}
	w.roles["role-opt"] = models.DivisionRole{ID: "role-opt", StageID: "stage-div", Name: "Notes", IsRequired: false}

	roleID := "role-req"
	holder := "stu-2"
	w.divisions = append(w.divisions,
		models.TeamDivision{ID: "d-full", TeamID: full.ID, StageID: "stage-div", DivisionRoleID: &roleID, RoleName: "Presenter", MemberID: &holder},
		models.TeamDivision{ID: "d-vacant", TeamID: vacant.ID, StageID: "stage-div", DivisionRoleID: &roleID, RoleName: "Presenter"},
	)
	stage := w.stages["stage-div"]

	result, err := newTestAutoAssigner(w, nil).FillRequiredRoles(context.Background(), &stage)
	require.NoError(t, err)
	assert.Equal(t, RoleFillResult{Filled: 2}, result)

	byTeam := map[string][]models.TeamDivision{}
	for _, row := range w.divisions {
		byTeam[row.TeamID] = append(byTeam[row.TeamID], row)
	}

	require.Len(t, byTeam[full.ID], 1)
	assert.Equal(t, "stu-2", *byTeam[full.ID][0].MemberID)

	require.Len(t, byTeam[empty.ID], 1)
	row := byTeam[empty.ID][0]
	require.NotNil(t, row.MemberID)
	assert.Contains(t, []string{"stu-3", "stu-4"}, *row.MemberID)
	assert.Nil(t, row.AssignedBy)
	assert.Equal(t, "Presenter", row.RoleName)

	require.Len(t, byTeam[vacant.ID], 1)
	assert.Equal(t, "d-vacant", byTeam[vacant.ID][0].ID)
	require.NotNil(t, byTeam[vacant.ID][0].MemberID)
	assert.Contains(t, []string{"stu-5", "stu-6"}, *byTeam[vacant.ID][0].MemberID)
}

func TestFillRequiredRolesWithoutRequiredRolesIsNoop(t *testing.T) {
	w := seedWorld(t, 2)
	formTeam(t, newTestTeamService(w), 1, 2)
	putStage(w, "stage-div", models.StageTypeDivision, models.StageStatusCompleted, fxNow.Add(-time.Hour), fxNow)
	stage := w.stages["stage-div"]

	result, err := newTestAutoAssigner(w, nil).FillRequiredRoles(context.Background(), &stage)
	require.NoError(t, err)
	assert.Equal(t, RoleFillResult{}, result)
	assert.Empty(t, w.divisions)
}
