package handler

import (
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/storage"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/workflow"
)

// DocumentStore is the slice of the object storage layer the handlers
// need: streaming uploads plus presigned download links for reviewers.
type DocumentStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
	PresignGet(ctx context.Context, objectKey string) (string, error)
	KeyFromURL(raw string) string
}

// ChefApplicationHandler serves the chef-side application surface:
// multipart submission with named document slots, listing, cancellation,
// resubmission and document re-upload.
type ChefApplicationHandler struct {
	Apps   *repository.ApplicationRepo
	Docs   *repository.DocumentRepo
	Reqs   *repository.RequirementsRepo
	Engine *workflow.Engine
	Store  DocumentStore
}

func NewChefApplicationHandler(apps *repository.ApplicationRepo, docs *repository.DocumentRepo,
	reqs *repository.RequirementsRepo, engine *workflow.Engine, store DocumentStore) *ChefApplicationHandler {
	if apps == nil || docs == nil || reqs == nil || engine == nil {
		panic("nil dependency passed to NewChefApplicationHandler")
	}
	return &ChefApplicationHandler{Apps: apps, Docs: docs, Reqs: reqs, Engine: engine, Store: store}
}

type applicationResp struct {
	ID              uint64         `json:"id"`
	LocationID      uint64         `json:"location_id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	BusinessName    string         `json:"business_name,omitempty"`
	BusinessType    string         `json:"business_type,omitempty"`
	BusinessDesc    string         `json:"business_description,omitempty"`
	ExperienceYears uint8          `json:"experience_years,omitempty"`
	UsageFrequency  string         `json:"usage_frequency,omitempty"`
	SessionHours    uint8          `json:"session_duration_hours,omitempty"`
	CurrentTier     uint8          `json:"current_tier"`
	Status          string         `json:"status"`
	Feedback        string         `json:"feedback,omitempty"`
	ConversationID  *uint64        `json:"conversation_id,omitempty"`
	Documents       []documentResp `json:"documents,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type documentResp struct {
	Kind      string     `json:"kind"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func toApplicationResp(a model.KitchenApplication, docs []model.ApplicationDocument) applicationResp {
	out := applicationResp{
		ID:              a.ID,
		LocationID:      a.LocationID,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Phone:           a.Phone,
		BusinessName:    a.BusinessName,
		BusinessType:    a.BusinessType,
		BusinessDesc:    a.BusinessDesc,
		ExperienceYears: a.ExperienceYears,
		UsageFrequency:  a.UsageFrequency,
		SessionHours:    a.SessionHours,
		CurrentTier:     a.CurrentTier,
		Status:          a.Status,
		Feedback:        a.Feedback,
		ConversationID:  a.ConversationID,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	for _, d := range docs {
		out.Documents = append(out.Documents, documentResp{Kind: d.Kind, URL: d.URL, Status: d.Status, ExpiresAt: d.ExpiresAt})
	}
	return out
}

// applicationFromForm reads the tier-1 form fields of a multipart
// submission into a model.
func applicationFromForm(c echo.Context) model.KitchenApplication {
	app := model.KitchenApplication{
		FirstName:      strings.TrimSpace(c.FormValue("first_name")),
		LastName:       strings.TrimSpace(c.FormValue("last_name")),
		Email:          strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
		Phone:          strings.TrimSpace(c.FormValue("phone")),
		BusinessName:   strings.TrimSpace(c.FormValue("business_name")),
		BusinessType:   strings.TrimSpace(c.FormValue("business_type")),
		BusinessDesc:   strings.TrimSpace(c.FormValue("business_description")),
		UsageFrequency: strings.TrimSpace(c.FormValue("usage_frequency")),
		TierData:       strings.TrimSpace(c.FormValue("tier_data")),
	}
	if n, err := strconv.ParseUint(c.FormValue("experience_years"), 10, 8); err == nil {
		app.ExperienceYears = uint8(n)
	}
	if n, err := strconv.ParseUint(c.FormValue("session_duration_hours"), 10, 8); err == nil {
		app.SessionHours = uint8(n)
	}
	if app.TierData == "" {
		app.TierData = "{}"
	}
	return app
}

// documentSlots collects the named file slots present in the multipart
// form, keyed by document kind.
func documentSlots(c echo.Context) map[string]*multipart.FileHeader {
	slots := make(map[string]*multipart.FileHeader)
	for _, kind := range model.KnownDocumentKinds {
		if fh, err := c.FormFile(kind); err == nil && fh != nil {
			slots[kind] = fh
		}
	}
	return slots
}

// uploadSlots streams each file slot to object storage and upserts the
// document rows. The food handler certificate may carry an expiry date
// in the cert_expiry form field (YYYY-MM-DD).
func (h *ChefApplicationHandler) uploadSlots(ctx context.Context, c echo.Context, appID uint64, slots map[string]*multipart.FileHeader) error {
	var certExpiry *time.Time
	if raw := strings.TrimSpace(c.FormValue("cert_expiry")); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			certExpiry = &t
		}
	}
	for kind, fh := range slots {
		src, err := fh.Open()
		if err != nil {
			return err
		}
		key := storage.ObjectKey(appID, kind, fh.Filename)
		url, err := h.Store.UploadFile(ctx, src, key, fh.Header.Get("Content-Type"))
		_ = src.Close()
		if err != nil {
			return err
		}
		var exp *time.Time
		if kind == model.DocFoodHandlerCert {
			exp = certExpiry
		}
		if err := h.Docs.Upsert(ctx, appID, kind, url, exp); err != nil {
			return err
		}
	}
	return nil
}

// Submit files a new application for a location. The body is multipart:
// tier-1 form fields plus up to seven named file slots. Mandatory fields
// come from the location's requirement configuration; a missing one is a
// 400 carrying the offending field paths.
func (h *ChefApplicationHandler) Submit(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	locationID, err := strconv.ParseUint(c.FormValue("location_id"), 10, 64)
	if err != nil || locationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	req, _, err := h.Reqs.Get(ctx, locationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load requirements failed"})
	}

	app := applicationFromForm(c)
	app.ChefID = chefID
	app.LocationID = locationID

	slots := documentSlots(c)
	uploadedKinds := make(map[string]bool, len(slots))
	for kind := range slots {
		uploadedKinds[kind] = true
	}
	if missing := workflow.MissingSubmissionFields(req, app, uploadedKinds); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation_failed",
			"message": "required fields are missing",
			"details": errDetails(missing),
		})
	}

	if err := h.Apps.Create(ctx, &app); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "application already exists for this location"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create application failed"})
	}
	if err := h.uploadSlots(ctx, c, app.ID, slots); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document upload failed"})
	}

	docs, _ := h.Docs.ListByApplication(ctx, app.ID)
	return c.JSON(http.StatusCreated, toApplicationResp(app, docs))
}

// List returns the chef's applications across all locations.
func (h *ChefApplicationHandler) List(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	apps, err := h.Apps.ListByChef(ctx, chefID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]applicationResp, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResp(a, nil))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one of the chef's applications with its documents.
func (h *ChefApplicationHandler) Get(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app, err := h.ownApplication(ctx, c, id, chefID)
	if err != nil {
		return nil // response already written
	}
	docs, _ := h.Docs.ListByApplication(ctx, app.ID)
	return c.JSON(http.StatusOK, toApplicationResp(app, docs))
}

// Cancel terminates an in-review application.
func (h *ChefApplicationHandler) Cancel(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app, err := h.ownApplication(ctx, c, id, chefID)
	if err != nil {
		return nil
	}
	updated, err := h.Engine.Cancel(ctx, app)
	if err != nil {
		return writeWorkflowError(c, err)
	}
	return c.JSON(http.StatusOK, toApplicationResp(updated, nil))
}

// Resubmit returns a rejected application to review with updated answers.
// The body is multipart like Submit so documents can be replaced in the
// same call; the tier is preserved.
func (h *ChefApplicationHandler) Resubmit(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	app, err := h.ownApplication(ctx, c, id, chefID)
	if err != nil {
		return nil
	}

	req, _, err := h.Reqs.Get(ctx, app.LocationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load requirements failed"})
	}

	updated := applicationFromForm(c)
	slots := documentSlots(c)

	// Resubmission rewrites every applicant field, so it must satisfy the
	// same intake contract as the first submission. Documents already on
	// file keep counting alongside freshly supplied slots.
	uploadedKinds := make(map[string]bool, len(slots))
	if docs, derr := h.Docs.ListByApplication(ctx, app.ID); derr == nil {
		for _, d := range docs {
			if d.URL != "" {
				uploadedKinds[d.Kind] = true
			}
		}
	}
	for kind := range slots {
		uploadedKinds[kind] = true
	}
	if missing := workflow.MissingSubmissionFields(req, updated, uploadedKinds); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation_failed",
			"message": "required fields are missing",
			"details": errDetails(missing),
		})
	}

	result, werr := h.Engine.Resubmit(ctx, app, updated)
	if werr != nil {
		return writeWorkflowError(c, werr)
	}
	if err := h.uploadSlots(ctx, c, result.ID, slots); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document upload failed"})
	}
	docs, _ := h.Docs.ListByApplication(ctx, result.ID)
	return c.JSON(http.StatusOK, toApplicationResp(result, docs))
}

// UpdateDocuments replaces one or more document slots of an application
// under review. Each replaced document resets to pending.
func (h *ChefApplicationHandler) UpdateDocuments(c echo.Context) error {
	chefID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	app, err := h.ownApplication(ctx, c, id, chefID)
	if err != nil {
		return nil
	}
	if app.Status == model.ApplicationCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application is cancelled"})
	}

	slots := documentSlots(c)
	if len(slots) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no document slots provided"})
	}
	if err := h.uploadSlots(ctx, c, app.ID, slots); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document upload failed"})
	}
	docs, _ := h.Docs.ListByApplication(ctx, app.ID)
	return c.JSON(http.StatusOK, toApplicationResp(app, docs))
}

// ownApplication loads an application and enforces that it belongs to the
// caller, writing the error response itself on failure.
func (h *ChefApplicationHandler) ownApplication(ctx context.Context, c echo.Context, id, chefID uint64) (model.KitchenApplication, error) {
	app, err := h.Apps.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.KitchenApplication{}, err
	}
	if app.ChefID != chefID {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.KitchenApplication{}, repository.ErrForbidden
	}
	return app, nil
}
