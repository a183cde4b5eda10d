package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

func newTestConsumer(t *testing.T) (*Consumer, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	c := NewConsumer("amqp://localhost",
		repository.NewConversationRepo(db),
		repository.NewNotificationRepo(db),
		repository.NewApplicationRepo(db),
		zap.NewNop())
	return c, mock, func() { db.Close() }
}

func TestSystemMessage(t *testing.T) {
	tests := []struct {
		name string
		ev   ApplicationEvent
		want string
	}{
		{
			"tier advanced",
			ApplicationEvent{Kind: EventTierAdvanced, LocationName: "Harbour Kitchen", Tier: 2},
			"Your application for Harbour Kitchen has advanced to tier 2.",
		},
		{
			"document verified",
			ApplicationEvent{Kind: EventDocumentVerified, LocationName: "Harbour Kitchen", DocumentKind: "insurance"},
			"Your insurance document for Harbour Kitchen has been verified.",
		},
		{
			"approved",
			ApplicationEvent{Kind: EventApplicationApproved, LocationName: "Harbour Kitchen"},
			"Congratulations! Your application for Harbour Kitchen has been approved and kitchen access has been granted.",
		},
		{
			"rejected with feedback",
			ApplicationEvent{Kind: EventApplicationRejected, LocationName: "Harbour Kitchen", Feedback: "insurance expired"},
			"Your application for Harbour Kitchen was rejected: insurance expired",
		},
		{
			"rejected without feedback",
			ApplicationEvent{Kind: EventApplicationRejected, LocationName: "Harbour Kitchen"},
			"Your application for Harbour Kitchen was rejected.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := systemMessage(tt.ev)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := systemMessage(ApplicationEvent{Kind: "SOMETHING_ELSE"})
	assert.False(t, ok)
}

func TestConsumerHandle(t *testing.T) {
	c, mock, closeDB := newTestConsumer(t)
	defer closeDB()

	ev := ApplicationEvent{
		Kind:          EventTierAdvanced,
		ApplicationID: 1,
		ChefID:        10,
		LocationID:    20,
		ManagerID:     2,
		LocationName:  "Harbour Kitchen",
		Tier:          2,
	}
	body, err := json.Marshal(ev)
	assert.NoError(t, err)

	// first event for the application: the thread is created and linked
	mock.ExpectQuery("FROM conversations").
		WithArgs(ev.ApplicationID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs(ev.ApplicationID, ev.ChefID, ev.ManagerID).
		WillReturnResult(sqlmock.NewResult(33, 1))
	mock.ExpectExec("SET conversation_id").
		WithArgs(uint64(33), ev.ApplicationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, c.handle(context.Background(), body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumerHandleRejectsBadEvents(t *testing.T) {
	c, mock, closeDB := newTestConsumer(t)
	defer closeDB()

	assert.Error(t, c.handle(context.Background(), []byte("{not json")))

	missingIDs, _ := json.Marshal(ApplicationEvent{Kind: EventTierAdvanced})
	assert.Error(t, c.handle(context.Background(), missingIDs))

	unknownKind, _ := json.Marshal(ApplicationEvent{Kind: "MYSTERY", ApplicationID: 1, ChefID: 10})
	assert.Error(t, c.handle(context.Background(), unknownKind))

	assert.NoError(t, mock.ExpectationsWereMet())
}
