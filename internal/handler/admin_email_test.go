package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/email"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

type fakeBroadcaster struct {
	recipients []string
	subject    string
	result     email.BatchResult
}

func (f *fakeBroadcaster) SendBatch(_ context.Context, recipients []string, subject, _ string, _ map[string]string) email.BatchResult {
	f.recipients = recipients
	f.subject = subject
	return f.result
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAdminEmailSendExplicitRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	fake := &fakeBroadcaster{result: email.BatchResult{Sent: 2}}
	h := NewAdminEmailHandler(repository.NewUserRepo(db), fake)

	e := echo.New()
	c, rec := postJSON(e, "/v1/admin/emails/send",
		`{"recipients":["a@example.com","b@example.com"],"subject":"News","body":"Hello {{name}}"}`)

	assert.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, fake.recipients)

	var body email.BatchResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Sent)
	assert.NotNil(t, body.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminEmailSendByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT email FROM users").
		WithArgs("CHEF").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).
			AddRow("chef1@example.com").
			AddRow("chef2@example.com"))

	fake := &fakeBroadcaster{result: email.BatchResult{Sent: 2}}
	h := NewAdminEmailHandler(repository.NewUserRepo(db), fake)

	e := echo.New()
	c, rec := postJSON(e, "/v1/admin/emails/send",
		`{"role":"chef","subject":"News","body":"Hello"}`)

	assert.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"chef1@example.com", "chef2@example.com"}, fake.recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminEmailSendRejectsBadRequests(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	h := NewAdminEmailHandler(repository.NewUserRepo(db), &fakeBroadcaster{})
	e := echo.New()

	c, rec := postJSON(e, "/v1/admin/emails/send", `{"recipients":["a@example.com"],"subject":"","body":"x"}`)
	assert.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// neither recipients nor a known role
	c, rec = postJSON(e, "/v1/admin/emails/send", `{"role":"ADMIN","subject":"s","body":"b"}`)
	assert.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminEmailSendWithoutMailer(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	h := NewAdminEmailHandler(repository.NewUserRepo(db), nil)
	e := echo.New()

	c, rec := postJSON(e, "/v1/admin/emails/send", `{"recipients":["a@example.com"],"subject":"s","body":"b"}`)
	assert.NoError(t, h.Send(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
