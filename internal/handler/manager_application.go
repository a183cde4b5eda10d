package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

// ManagerApplicationHandler serves the review side of the workflow:
// listing applications per location, advancing and rejecting tiers, and
// verifying individual documents.
type ManagerApplicationHandler struct {
	Apps      *repository.ApplicationRepo
	Docs      *repository.DocumentRepo
	Locations *repository.LocationRepo
	Engine    *workflow.Engine
	Store     DocumentStore
}

func NewManagerApplicationHandler(apps *repository.ApplicationRepo, docs *repository.DocumentRepo,
	locations *repository.LocationRepo, engine *workflow.Engine, store DocumentStore) *ManagerApplicationHandler {
	if apps == nil || docs == nil || locations == nil || engine == nil {
		panic("nil dependency passed to NewManagerApplicationHandler")
	}
	return &ManagerApplicationHandler{Apps: apps, Docs: docs, Locations: locations, Engine: engine, Store: store}
}

type advanceReq struct {
	TargetTier uint8  `json:"target_tier"`
	TierData   string `json:"tier_data"`
}
type rejectReq struct {
	Feedback string `json:"feedback"`
}
type verifyDocReq struct {
	Status string `json:"status"` // approved | rejected
}

// ListByLocation returns every application filed against one of the
// manager's locations.
func (h *ManagerApplicationHandler) ListByLocation(c echo.Context) error {
	managerID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locationID, err := paramID(c, "location_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Locations.OwnedBy(ctx, locationID, managerID); err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	apps, err := h.Apps.ListByLocation(ctx, locationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]applicationResp, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResp(a, nil))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one application with its documents, presigning each
// document URL so the reviewer can open private uploads.
func (h *ManagerApplicationHandler) Get(c echo.Context) error {
	_, app, ok := h.managedApplication(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	docs, err := h.Docs.ListByApplication(ctx, app.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if h.Store != nil {
		for i := range docs {
			if signed, err := h.Store.PresignGet(ctx, h.Store.KeyFromURL(docs[i].URL)); err == nil {
				docs[i].URL = signed
			}
		}
	}
	return c.JSON(http.StatusOK, toApplicationResp(app, docs))
}

// Advance moves the application one tier forward. Reaching the final
// tier approves the application and grants the chef location access.
func (h *ManagerApplicationHandler) Advance(c echo.Context) error {
	managerID, app, ok := h.managedApplication(c)
	if !ok {
		return nil
	}
	var req advanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	updated, err := h.Engine.Advance(ctx, app, managerID, req.TargetTier, req.TierData)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, toApplicationResp(updated, nil))
}

// Reject marks the application rejected with mandatory feedback.
func (h *ManagerApplicationHandler) Reject(c echo.Context) error {
	managerID, app, ok := h.managedApplication(c)
	if !ok {
		return nil
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	updated, err := h.Engine.Reject(ctx, app, managerID, strings.TrimSpace(req.Feedback))
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, toApplicationResp(updated, nil))
}

// VerifyDocument records an approval or rejection of one document slot.
func (h *ManagerApplicationHandler) VerifyDocument(c echo.Context) error {
	managerID, app, ok := h.managedApplication(c)
	if !ok {
		return nil
	}
	kind := c.Param("kind")
	known := false
	for _, k := range model.KnownDocumentKinds {
		if k == kind {
			known = true
			break
		}
	}
	if !known {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown document kind"})
	}
	var req verifyDocReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Engine.VerifyDocument(ctx, app, managerID, kind, req.Status); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not uploaded"})
		}
		return writeWorkflowError(c, err)
	}
	docs, _ := h.Docs.ListByApplication(ctx, app.ID)
	return c.JSON(http.StatusOK, toApplicationResp(app, docs))
}

// managedApplication loads the application and verifies the caller
// manages its location, writing the error response on failure.
func (h *ManagerApplicationHandler) managedApplication(c echo.Context) (uint64, model.KitchenApplication, bool) {
	managerID, ok := currentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, model.KitchenApplication{}, false
	}
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return 0, model.KitchenApplication{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app, err := h.Apps.GetForManager(ctx, id, managerID)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		case repository.ErrForbidden:
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return 0, model.KitchenApplication{}, false
	}
	return managerID, app, true
}
