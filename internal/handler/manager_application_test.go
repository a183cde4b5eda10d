package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

func newManagerApplicationHandler(t *testing.T) (*ManagerApplicationHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	apps := repository.NewApplicationRepo(db)
	docs := repository.NewDocumentRepo(db)
	engine := workflow.NewEngine(apps, docs, repository.NewRequirementsRepo(db),
		repository.NewAccessRepo(db), repository.NewLocationRepo(db), nil, zap.NewNop())
	h := NewManagerApplicationHandler(apps, docs, repository.NewLocationRepo(db), engine, &fakeStore{})
	return h, mock, func() { db.Close() }
}

func managerContext(method, body, appID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	c.SetParamNames("id")
	c.SetParamValues(appID)
	return c, rec
}

// expectManagedApplication covers the ownership probe and reload that
// every manager-side operation starts with.
func expectManagedApplication(mock sqlmock.Sqlmock, app model.KitchenApplication, managerID uint64) {
	mock.ExpectQuery("SELECT l.manager_id").
		WithArgs(app.ID).
		WillReturnRows(sqlmock.NewRows([]string{"manager_id"}).AddRow(managerID))
	mock.ExpectQuery("FROM chef_kitchen_applications").
		WithArgs(app.ID).
		WillReturnRows(applicationRow(app))
}

func TestManagerAdvance(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		FirstName: "Ada", LastName: "Chen", Email: "ada@example.com",
		CurrentTier: 1, TierData: "{}", Status: model.ApplicationInReview, Version: 1,
	}
	expectManagedApplication(mock, app, 2)
	mock.ExpectQuery("FROM location_requirements").
		WithArgs(uint64(20)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM application_documents").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "kind", "url", "status",
			"expires_at", "reviewed_by", "reviewed_at", "created_at", "updated_at",
		}).AddRow(1, 5, model.DocFoodHandlerCert, "https://cdn/x.pdf", model.DocumentApproved,
			nil, nil, nil, time.Now(), time.Now()))
	mock.ExpectExec("SET current_tier").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := managerContext(http.MethodPatch, `{"target_tier":2}`, "5")
	assert.NoError(t, h.Advance(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body applicationResp
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint8(2), body.CurrentTier)
	assert.Equal(t, model.ApplicationInReview, body.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerAdvanceForeignLocation(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	mock.ExpectQuery("SELECT l.manager_id").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"manager_id"}).AddRow(99))

	c, rec := managerContext(http.MethodPatch, `{"target_tier":2}`, "5")
	assert.NoError(t, h.Advance(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerAdvanceTierSkip(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		CurrentTier: 1, TierData: "{}", Status: model.ApplicationInReview, Version: 1,
	}
	expectManagedApplication(mock, app, 2)

	c, rec := managerContext(http.MethodPatch, `{"target_tier":3}`, "5")
	assert.NoError(t, h.Advance(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tier_skip")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerReject(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		CurrentTier: 2, TierData: "{}", Status: model.ApplicationInReview, Version: 3,
	}
	expectManagedApplication(mock, app, 2)
	mock.ExpectExec("SET status").
		WithArgs(model.ApplicationRejected, "missing insurance", uint64(5), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := managerContext(http.MethodPatch, `{"feedback":"missing insurance"}`, "5")
	assert.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body applicationResp
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, model.ApplicationRejected, body.Status)
	assert.Equal(t, "missing insurance", body.Feedback)
	assert.Equal(t, uint8(2), body.CurrentTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerRejectWithoutFeedback(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		CurrentTier: 2, TierData: "{}", Status: model.ApplicationInReview, Version: 3,
	}
	expectManagedApplication(mock, app, 2)

	c, rec := managerContext(http.MethodPatch, `{"feedback":"  "}`, "5")
	assert.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "feedback_required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerVerifyDocument(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		CurrentTier: 1, TierData: "{}", Status: model.ApplicationInReview, Version: 1,
	}
	expectManagedApplication(mock, app, 2)
	mock.ExpectExec("UPDATE application_documents").
		WithArgs(model.DocumentApproved, uint64(2), uint64(5), model.DocInsurance).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM application_documents").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "application_id", "kind", "url", "status",
			"expires_at", "reviewed_by", "reviewed_at", "created_at", "updated_at",
		}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	c.SetParamNames("id", "kind")
	c.SetParamValues("5", model.DocInsurance)

	assert.NoError(t, h.VerifyDocument(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerVerifyDocumentUnknownKind(t *testing.T) {
	h, mock, closeDB := newManagerApplicationHandler(t)
	defer closeDB()

	app := model.KitchenApplication{
		ID: 5, ChefID: 10, LocationID: 20,
		CurrentTier: 1, TierData: "{}", Status: model.ApplicationInReview, Version: 1,
	}
	expectManagedApplication(mock, app, 2)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	c.SetParamNames("id", "kind")
	c.SetParamValues("5", "passport")

	assert.NoError(t, h.VerifyDocument(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
