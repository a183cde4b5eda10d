package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

func testContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWriteWorkflowError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			"rule violation",
			&workflow.RuleError{Code: "tier_skip", Message: "cannot skip tiers"},
			http.StatusBadRequest, "tier_skip",
		},
		{"version conflict", repository.ErrVersionConflict, http.StatusConflict, "conflict"},
		{"conflict", repository.ErrConflict, http.StatusConflict, "conflict"},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := testContext()
			assert.NoError(t, writeWorkflowError(c, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestWriteWorkflowErrorValidationDetails(t *testing.T) {
	c, rec := testContext()
	err := &workflow.RuleError{
		Code:    "requirements_unmet",
		Message: "current tier requirements are not satisfied",
		Details: []string{"phone", "documents.insurance"},
	}
	assert.NoError(t, writeWorkflowError(c, err))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Details []struct {
			Path []string `json:"path"`
		} `json:"details"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	if assert.Len(t, body.Details, 2) {
		assert.Equal(t, []string{"phone"}, body.Details[0].Path)
		assert.Equal(t, []string{"documents", "insurance"}, body.Details[1].Path)
	}
}

func TestCurrentUser(t *testing.T) {
	c, _ := testContext()

	_, ok := currentUser(c)
	assert.False(t, ok)

	c.Set("user_id", "42")
	id, ok := currentUser(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", float64(7))
	id, ok = currentUser(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)

	c.Set("user_id", "not-a-number")
	_, ok = currentUser(c)
	assert.False(t, ok)
}
