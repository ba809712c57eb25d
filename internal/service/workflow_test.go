package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
)

func TestEmitAuditRecordsOrigin(t *testing.T) {
	w := &memWorld{}
	actor := "stu-1"

	emitAudit(context.Background(), memAudit{w}, zap.NewNop(), nil, models.AuditActionStageTransition, "stage", "stage-1", map[string]string{"to": "ACTIVE"})
	ctx := WithAuditOrigin(context.Background(), "10.0.0.7", "student-app/1.0")
	emitAudit(ctx, memAudit{w}, zap.NewNop(), &actor, models.AuditActionTeamCreate, "team", "team-1", nil)

	require.Len(t, w.audits, 2)
	assert.Equal(t, "system", w.audits[0].IPAddress)
	assert.Nil(t, w.audits[0].UserID)
	assert.JSONEq(t, `{"to":"ACTIVE"}`, string(w.audits[0].NewValues))

	assert.Equal(t, "10.0.0.7", w.audits[1].IPAddress)
	assert.Equal(t, "student-app/1.0", w.audits[1].UserAgent)
	require.NotNil(t, w.audits[1].ResourceID)
	assert.Equal(t, "team-1", *w.audits[1].ResourceID)
}

func TestOutboxSkipsSelfNotifications(t *testing.T) {
	w := &memWorld{}
	leader := "stu-1"

	var box outbox
	box.add(&leader, "stu-1", models.NotificationTypeTeamInvitation, "t", "c", "ma-1", "")
	box.add(&leader, "stu-2", models.NotificationTypeTeamInvitation, "t", "c", "ma-1", "team-1")
	box.add(nil, "", models.NotificationTypeTeamInvitation, "t", "c", "", "")
	box.flush(context.Background(), memNotifier{w})
	box.flush(context.Background(), memNotifier{w})

	require.Len(t, w.notes, 1)
	assert.Equal(t, "stu-2", w.notes[0].ReceiverID)
	require.NotNil(t, w.notes[0].RelatedTeamID)
	assert.Equal(t, "team-1", *w.notes[0].RelatedTeamID)
}
