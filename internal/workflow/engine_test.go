package workflow

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/queue"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

type fakePublisher struct {
	events []queue.ApplicationEvent
}

func (p *fakePublisher) PublishApplicationEvent(_ context.Context, ev queue.ApplicationEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock, *fakePublisher, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	pub := &fakePublisher{}
	eng := NewEngine(
		repository.NewApplicationRepo(db),
		repository.NewDocumentRepo(db),
		repository.NewRequirementsRepo(db),
		repository.NewAccessRepo(db),
		repository.NewLocationRepo(db),
		pub,
		zap.NewNop(),
	)
	return eng, mock, pub, func() { db.Close() }
}

func documentRows(docs ...model.ApplicationDocument) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "application_id", "kind", "url", "status",
		"expires_at", "reviewed_by", "reviewed_at", "created_at", "updated_at",
	})
	now := time.Now()
	for i, d := range docs {
		var expires interface{}
		if d.ExpiresAt != nil {
			expires = *d.ExpiresAt
		}
		rows.AddRow(uint64(i+1), d.ApplicationID, d.Kind, d.URL, d.Status,
			expires, nil, nil, now, now)
	}
	return rows
}

func locationRow(id uint64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "manager_id", "name", "address", "kitchen_rate_cents", "storage_rate_cents", "created_at", "updated_at",
	}).AddRow(id, uint64(2), name, "12 Harbour Dr", uint32(5000), uint32(1200), now, now)
}

// the location has no stored requirements row, so defaults apply
func expectDefaultRequirements(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM location_requirements").WillReturnError(sql.ErrNoRows)
}

func TestEngineAdvance(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(1)
	app.FirstName = "Ada"
	app.LastName = "Chen"
	app.Email = "ada@example.com"
	app.Version = 3

	expectDefaultRequirements(mock)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			URL:           "https://bucket/applications/1/foodHandlerCert/a.pdf",
			Status:        model.DocumentApproved,
		}))
	mock.ExpectExec("SET current_tier").
		WithArgs(uint8(2), "{}", model.ApplicationInReview, app.ID, app.Version).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM locations").
		WithArgs(app.LocationID).
		WillReturnRows(locationRow(app.LocationID, "Harbour Kitchen"))

	got, err := eng.Advance(context.Background(), app, 2, 2, "{}")
	assert.NoError(t, err)
	assert.Equal(t, uint8(2), got.CurrentTier)
	assert.Equal(t, model.ApplicationInReview, got.Status)
	assert.Equal(t, app.Version+1, got.Version)

	if assert.Len(t, pub.events, 1) {
		ev := pub.events[0]
		assert.Equal(t, queue.EventTierAdvanced, ev.Kind)
		assert.Equal(t, uint8(2), ev.Tier)
		assert.Equal(t, app.ID, ev.ApplicationID)
		assert.Equal(t, app.ChefID, ev.ChefID)
		assert.Equal(t, "Harbour Kitchen", ev.LocationName)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineAdvanceRequirementsUnmet(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(1)
	app.FirstName = "Ada"
	app.LastName = "Chen"
	app.Email = "ada@example.com"

	expectDefaultRequirements(mock)
	// food handler certificate uploaded but still pending review
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			Status:        model.DocumentPending,
		}))

	_, err := eng.Advance(context.Background(), app, 2, 2, "")
	var rerr *RuleError
	if assert.ErrorAs(t, err, &rerr) {
		assert.Equal(t, "requirements_unmet", rerr.Code)
		assert.Contains(t, rerr.Details, "documents."+model.DocFoodHandlerCert)
	}
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineAdvanceFinalTierApproves(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(3)
	app.FirstName = "Ada"
	app.LastName = "Chen"
	app.Email = "ada@example.com"
	app.TierData = `{"menu":"tapas"}`
	app.Version = 7

	expectDefaultRequirements(mock)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			Status:        model.DocumentApproved,
		}))
	// tier bump and status flip are one statement
	mock.ExpectExec("SET current_tier").
		WithArgs(uint8(4), app.TierData, model.ApplicationApproved, app.ID, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// no grant yet, so one is inserted
	mock.ExpectQuery("FROM chef_location_access").
		WithArgs(app.ChefID, app.LocationID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO chef_location_access").
		WithArgs(app.ChefID, app.LocationID, uint64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM locations").
		WithArgs(app.LocationID).
		WillReturnRows(locationRow(app.LocationID, "Harbour Kitchen"))

	got, err := eng.Advance(context.Background(), app, 2, 4, "")
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, got.Status)
	assert.Equal(t, uint8(4), got.CurrentTier)

	if assert.Len(t, pub.events, 1) {
		assert.Equal(t, queue.EventApplicationApproved, pub.events[0].Kind)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed final-tier approval must leave the row untouched so a retry of
// the same call can still succeed.
func TestEngineAdvanceFinalTierFailureIsRetryable(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(3)
	app.FirstName = "Ada"
	app.LastName = "Chen"
	app.Email = "ada@example.com"
	app.TierData = `{"menu":"tapas"}`
	app.Version = 7

	expectDefaultRequirements(mock)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			Status:        model.DocumentApproved,
		}))
	mock.ExpectExec("SET current_tier").
		WithArgs(uint8(4), app.TierData, model.ApplicationApproved, app.ID, uint64(7)).
		WillReturnError(errors.New("connection reset"))

	got, err := eng.Advance(context.Background(), app, 2, 4, "")
	assert.Error(t, err)
	assert.Equal(t, uint8(3), got.CurrentTier)
	assert.Equal(t, model.ApplicationInReview, got.Status)
	assert.Equal(t, uint64(7), got.Version)
	assert.Empty(t, pub.events)

	// retrying the same transition from the unchanged row succeeds
	expectDefaultRequirements(mock)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			Status:        model.DocumentApproved,
		}))
	mock.ExpectExec("SET current_tier").
		WithArgs(uint8(4), app.TierData, model.ApplicationApproved, app.ID, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM chef_location_access").
		WithArgs(app.ChefID, app.LocationID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO chef_location_access").
		WithArgs(app.ChefID, app.LocationID, uint64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM locations").
		WithArgs(app.LocationID).
		WillReturnRows(locationRow(app.LocationID, "Harbour Kitchen"))

	got, err = eng.Advance(context.Background(), got, 2, 4, "")
	assert.NoError(t, err)
	assert.Equal(t, uint8(4), got.CurrentTier)
	assert.Equal(t, model.ApplicationApproved, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineAdvanceVersionConflict(t *testing.T) {
	eng, mock, _, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(1)
	app.FirstName = "Ada"
	app.LastName = "Chen"
	app.Email = "ada@example.com"

	expectDefaultRequirements(mock)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(app.ID).
		WillReturnRows(documentRows(model.ApplicationDocument{
			ApplicationID: app.ID,
			Kind:          model.DocFoodHandlerCert,
			Status:        model.DocumentApproved,
		}))
	// another reviewer already bumped the version
	mock.ExpectExec("SET current_tier").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := eng.Advance(context.Background(), app, 2, 2, "")
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineReject(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(2)
	app.Version = 4

	mock.ExpectExec("SET status").
		WithArgs(model.ApplicationRejected, "insurance expired", app.ID, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM locations").
		WithArgs(app.LocationID).
		WillReturnRows(locationRow(app.LocationID, "Harbour Kitchen"))

	got, err := eng.Reject(context.Background(), app, 2, "insurance expired")
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, got.Status)
	assert.Equal(t, uint8(2), got.CurrentTier, "rejection keeps the tier")
	assert.Equal(t, "insurance expired", got.Feedback)

	if assert.Len(t, pub.events, 1) {
		assert.Equal(t, queue.EventApplicationRejected, pub.events[0].Kind)
		assert.Equal(t, "insurance expired", pub.events[0].Feedback)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineRejectWithoutFeedback(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	_, err := eng.Reject(context.Background(), inReviewApp(2), 2, "")
	var rerr *RuleError
	if assert.ErrorAs(t, err, &rerr) {
		assert.Equal(t, "feedback_required", rerr.Code)
	}
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineCancel(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(1)
	mock.ExpectExec("SET status").
		WithArgs(model.ApplicationCancelled, "", app.ID, app.Version).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := eng.Cancel(context.Background(), app)
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationCancelled, got.Status)
	assert.Empty(t, pub.events, "cancellation publishes no event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineResubmit(t *testing.T) {
	eng, mock, _, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(2)
	app.Status = model.ApplicationRejected
	app.Version = 5

	updated := app
	updated.Phone = "555-0199"
	updated.TierData = `{"revised":true}`

	mock.ExpectExec("SET first_name").
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := eng.Resubmit(context.Background(), app, updated)
	assert.NoError(t, err)
	assert.Equal(t, model.ApplicationInReview, got.Status)
	assert.Equal(t, app.CurrentTier, got.CurrentTier)
	assert.Equal(t, "555-0199", got.Phone)
	assert.Equal(t, app.Version+1, got.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEngineVerifyDocument(t *testing.T) {
	eng, mock, pub, closeDB := newTestEngine(t)
	defer closeDB()

	app := inReviewApp(1)

	mock.ExpectExec("UPDATE application_documents").
		WithArgs(model.DocumentApproved, uint64(2), app.ID, model.DocFoodHandlerCert).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM locations").
		WithArgs(app.LocationID).
		WillReturnRows(locationRow(app.LocationID, "Harbour Kitchen"))

	err := eng.VerifyDocument(context.Background(), app, 2, model.DocFoodHandlerCert, model.DocumentApproved)
	assert.NoError(t, err)
	if assert.Len(t, pub.events, 1) {
		assert.Equal(t, queue.EventDocumentVerified, pub.events[0].Kind)
		assert.Equal(t, model.DocFoodHandlerCert, pub.events[0].DocumentKind)
	}

	// rejection is recorded but not announced
	mock.ExpectExec("UPDATE application_documents").
		WithArgs(model.DocumentRejected, uint64(2), app.ID, model.DocInsurance).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err = eng.VerifyDocument(context.Background(), app, 2, model.DocInsurance, model.DocumentRejected)
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)

	err = eng.VerifyDocument(context.Background(), app, 2, model.DocInsurance, "maybe")
	var rerr *RuleError
	assert.ErrorAs(t, err, &rerr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
