package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

var teamRowColumns = []string{"id", "major_assignment_id", "name", "leader_id", "status", "is_locked", "confirmation_request_reason",
	"reject_reason", "confirmation_requested_at", "confirmed_at", "confirmed_by", "created_at"}

var memberRowColumns = []string{"id", "team_id", "major_assignment_id", "user_id", "joined_at"}

func TestTeamRepositoryGetByIDAttachesMembers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teams t WHERE t.id = $1")).
		WithArgs("team-1").
		WillReturnRows(sqlmock.NewRows(teamRowColumns).
			AddRow("team-1", "ma-1", "Alpha", "s-1", "PENDING", false, nil, nil, nil, nil, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM team_members")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(memberRowColumns).
			AddRow("m-1", "team-1", "ma-1", "s-2", now).
			AddRow("m-2", "team-1", "ma-1", "s-3", now))

	team, err := repo.GetByID(context.Background(), "team-1")
	require.NoError(t, err)
	assert.Equal(t, 3, team.Size())
	assert.Equal(t, []string{"s-1", "s-2", "s-3"}, team.UserIDs())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryFindByUserReturnsNilWhenUngrouped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM teams t")).
		WithArgs("ma-1", "s-9").
		WillReturnError(sql.ErrNoRows)

	team, err := repo.FindByUser(context.Background(), "ma-1", "s-9")
	require.NoError(t, err)
	assert.Nil(t, team)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryAddMemberMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO team_members")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.AddMember(context.Background(), &models.TeamMember{TeamID: "team-1", MajorAssignmentID: "ma-1", UserID: "s-2"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryDeleteCascadesInOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"team_divisions", "team_invitations", "leave_team_requests", "dissolve_team_requests", "team_members"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table + " WHERE team_id = $1")).
			WithArgs("team-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teams WHERE id = $1")).
		WithArgs("team-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := database.NewTransactor(db).WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.Delete(ctx, "team-1")
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamRepositoryRemoveMemberMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeamRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM team_divisions WHERE team_id = $1 AND member_id = $2")).
		WithArgs("team-1", "s-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM team_members WHERE team_id = $1 AND user_id = $2")).
		WithArgs("team-1", "s-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveMember(context.Background(), "team-1", "s-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepositoryResolveOnlyPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE team_invitations SET status = $2, responded_at = $3 WHERE id = $1 AND status = $4")).
		WithArgs("inv-1", "ACCEPTED", at, "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resolve(context.Background(), "inv-1", models.InvitationStatusAccepted, at)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepositoryCreateDuplicatePending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO team_invitations")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "team_invitations_pending_key"})

	inv := &models.TeamInvitation{TeamID: "team-1", InviterID: "s-1", InviteeID: "s-2"}
	err := repo.Create(context.Background(), inv)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, models.InvitationStatusPending, inv.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveRequestRepositoryTransition(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaveRequestRepository(db)

	now := time.Now().UTC()
	comment := "need you for the demo"
	reviewer := "s-1"
	req := &models.LeaveTeamRequest{
		ID:                "lr-1",
		Status:            models.LeaveStatusLeaderRejected,
		ReviewerID:        &reviewer,
		ReviewComment:     &comment,
		LeaderRespondedAt: &now,
	}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE leave_team_requests SET status = $2")).
		WithArgs("lr-1", "LEADER_REJECTED", reviewer, comment, now, nil, "PENDING_LEADER").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Transition(context.Background(), req, models.LeaveStatusPendingLeader))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDissolveRequestRepositoryHasPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDissolveRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM dissolve_team_requests WHERE team_id = $1 AND status = $2")).
		WithArgs("team-1", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	pending, err := repo.HasPending(context.Background(), "team-1")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
