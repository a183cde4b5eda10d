package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

// currentUser extracts the authenticated user id set by the JWT middleware.
func currentUser(c echo.Context) (uint64, bool) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, true
	case int:
		return uint64(t), true
	case int64:
		return uint64(t), true
	case float64:
		return uint64(t), true
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeWorkflowError maps workflow and repository errors onto the JSON
// error envelope. Rule violations are 400, lost CAS races and duplicates
// are 409, ownership failures 403.
func writeWorkflowError(c echo.Context, err error) error {
	var rerr *workflow.RuleError
	if errors.As(err, &rerr) {
		body := echo.Map{"error": rerr.Code, "message": rerr.Message}
		if len(rerr.Details) > 0 {
			body["details"] = errDetails(rerr.Details)
		}
		return c.JSON(http.StatusBadRequest, body)
	}
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "application was modified concurrently, retry"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "resource already exists"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// errDetails shapes missing-field paths as objects so clients can key on
// the path directly. Dotted paths become segments, so
// "documents.insurance" yields path ["documents", "insurance"].
func errDetails(paths []string) []echo.Map {
	out := make([]echo.Map, 0, len(paths))
	for _, p := range paths {
		out = append(out, echo.Map{"path": strings.Split(p, ".")})
	}
	return out
}
