package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/email"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// Broadcaster sends a templated email batch. Satisfied by email.Mailer.
type Broadcaster interface {
	SendBatch(ctx context.Context, recipients []string, subject, body string, vars map[string]string) email.BatchResult
}

// AdminEmailHandler serves the admin broadcast tooling: sending a
// templated email to an explicit recipient list or to every user of a
// role. Per-recipient failures are aggregated, never fatal.
type AdminEmailHandler struct {
	Users  *repository.UserRepo
	Mailer Broadcaster
}

func NewAdminEmailHandler(users *repository.UserRepo, mailer Broadcaster) *AdminEmailHandler {
	if users == nil {
		panic("nil repository passed to NewAdminEmailHandler")
	}
	return &AdminEmailHandler{Users: users, Mailer: mailer}
}

type sendEmailReq struct {
	Recipients []string          `json:"recipients"`
	Role       string            `json:"role"` // alternative to an explicit list
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Vars       map[string]string `json:"vars"`
}

// Send delivers the batch and returns {sent, failed: [{email, error}]}.
func (h *AdminEmailHandler) Send(c echo.Context) error {
	if h.Mailer == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "email is not configured"})
	}
	var req sendEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject/body required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	recipients := req.Recipients
	if len(recipients) == 0 {
		role := strings.ToUpper(strings.TrimSpace(req.Role))
		if role != model.RoleChef && role != model.RoleManager {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipients or role required"})
		}
		var err error
		recipients, err = h.Users.ListEmailsByRole(ctx, role)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	if len(recipients) == 0 {
		return c.JSON(http.StatusOK, email.BatchResult{Failed: []email.SendFailure{}})
	}

	result := h.Mailer.SendBatch(ctx, recipients, req.Subject, req.Body, req.Vars)
	if result.Failed == nil {
		result.Failed = []email.SendFailure{}
	}
	return c.JSON(http.StatusOK, result)
}
