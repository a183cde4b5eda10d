package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/queue"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// Publisher emits application events to the message broker. Publish errors
// are logged and swallowed: a broker outage must not fail the transition
// that already committed.
type Publisher interface {
	PublishApplicationEvent(ctx context.Context, ev queue.ApplicationEvent) error
}

// Engine applies tier transitions against the repositories. All writes go
// through version compare-and-swap updates; a concurrent reviewer surfaces
// as repository.ErrVersionConflict which handlers map to 409.
type Engine struct {
	Apps      *repository.ApplicationRepo
	Docs      *repository.DocumentRepo
	Reqs      *repository.RequirementsRepo
	Access    *repository.AccessRepo
	Locations *repository.LocationRepo
	Publisher Publisher
	Log       *zap.Logger
}

func NewEngine(apps *repository.ApplicationRepo, docs *repository.DocumentRepo, reqs *repository.RequirementsRepo,
	access *repository.AccessRepo, locations *repository.LocationRepo, pub Publisher, log *zap.Logger) *Engine {
	if apps == nil || docs == nil || reqs == nil || access == nil || locations == nil {
		panic("nil repository passed to NewEngine")
	}
	return &Engine{Apps: apps, Docs: docs, Reqs: reqs, Access: access, Locations: locations, Publisher: pub, Log: log}
}

// Advance moves an application one tier forward on behalf of a manager.
// The target tier must be exactly current+1 and every requirement of the
// current tier must be satisfied. When the final tier is reached the
// application becomes approved and the chef receives an idempotent access
// grant.
func (e *Engine) Advance(ctx context.Context, app model.KitchenApplication, managerID uint64, targetTier uint8, tierData string) (model.KitchenApplication, error) {
	if rerr := CheckAdvance(app, targetTier); rerr != nil {
		return app, rerr
	}
	req, _, err := e.Reqs.Get(ctx, app.LocationID)
	if err != nil {
		return app, err
	}
	docs, err := e.Docs.ListByApplication(ctx, app.ID)
	if err != nil {
		return app, err
	}
	if missing := MissingFields(req, app, docs); len(missing) > 0 {
		return app, &RuleError{
			Code:    "requirements_unmet",
			Message: "current tier requirements are not satisfied",
			Details: missing,
		}
	}

	if tierData == "" {
		tierData = app.TierData
	}

	// Reaching the final tier is full approval. The tier bump and the
	// status flip ride a single CAS update: if it fails the row is
	// untouched and the same Advance call can simply be retried. The
	// access grant is idempotent, so a repeated approval cannot create a
	// duplicate row.
	if targetTier == model.MaxTier {
		if err := e.Apps.ApproveFinalTier(ctx, app.ID, app.Version, tierData); err != nil {
			return app, err
		}
		app.CurrentTier = targetTier
		app.TierData = tierData
		app.Status = model.ApplicationApproved
		app.Version++
		if err := e.Access.Grant(ctx, app.ChefID, app.LocationID, managerID); err != nil {
			return app, err
		}
		e.emit(ctx, app, managerID, queue.ApplicationEvent{Kind: queue.EventApplicationApproved})
		return app, nil
	}

	if err := e.Apps.AdvanceTier(ctx, app.ID, app.Version, targetTier, tierData); err != nil {
		return app, err
	}
	app.CurrentTier = targetTier
	app.TierData = tierData
	app.Status = model.ApplicationInReview
	app.Version++
	e.emit(ctx, app, managerID, queue.ApplicationEvent{Kind: queue.EventTierAdvanced, Tier: targetTier})
	return app, nil
}

// Reject marks the application rejected with the manager's feedback. The
// tier is left unchanged so a resubmission resumes where the chef left off.
func (e *Engine) Reject(ctx context.Context, app model.KitchenApplication, managerID uint64, feedback string) (model.KitchenApplication, error) {
	if rerr := CheckReject(app, feedback); rerr != nil {
		return app, rerr
	}
	if err := e.Apps.SetStatus(ctx, app.ID, app.Version, model.ApplicationRejected, feedback); err != nil {
		return app, err
	}
	app.Status = model.ApplicationRejected
	app.Feedback = feedback
	app.Version++
	e.emit(ctx, app, managerID, queue.ApplicationEvent{Kind: queue.EventApplicationRejected, Feedback: feedback})
	return app, nil
}

// Cancel terminates an in-review application on the chef's request.
func (e *Engine) Cancel(ctx context.Context, app model.KitchenApplication) (model.KitchenApplication, error) {
	if rerr := CheckCancel(app); rerr != nil {
		return app, rerr
	}
	if err := e.Apps.SetStatus(ctx, app.ID, app.Version, model.ApplicationCancelled, app.Feedback); err != nil {
		return app, err
	}
	app.Status = model.ApplicationCancelled
	app.Version++
	return app, nil
}

// Resubmit returns a rejected application to review at its current tier
// with the chef's updated answers.
func (e *Engine) Resubmit(ctx context.Context, app model.KitchenApplication, updated model.KitchenApplication) (model.KitchenApplication, error) {
	if rerr := CheckResubmit(app); rerr != nil {
		return app, rerr
	}
	updated.ID = app.ID
	if err := e.Apps.UpdateSubmission(ctx, updated, app.Version); err != nil {
		return app, err
	}
	updated.ChefID = app.ChefID
	updated.LocationID = app.LocationID
	updated.CurrentTier = app.CurrentTier
	updated.Status = model.ApplicationInReview
	updated.Version = app.Version + 1
	return updated, nil
}

// VerifyDocument records a manager's decision on one document. Approval is
// announced in the application's chat thread; tier state is untouched.
func (e *Engine) VerifyDocument(ctx context.Context, app model.KitchenApplication, managerID uint64, kind, status string) error {
	if status != model.DocumentApproved && status != model.DocumentRejected {
		rerr := ruleErr("invalid_status", "document status must be approved or rejected")
		rerr.Details = []string{"status"}
		return rerr
	}
	if err := e.Docs.SetStatus(ctx, app.ID, kind, status, managerID); err != nil {
		return err
	}
	if status == model.DocumentApproved {
		e.emit(ctx, app, managerID, queue.ApplicationEvent{Kind: queue.EventDocumentVerified, DocumentKind: kind})
	}
	return nil
}

// emit fills the common event fields and publishes, logging failures.
func (e *Engine) emit(ctx context.Context, app model.KitchenApplication, managerID uint64, ev queue.ApplicationEvent) {
	if e.Publisher == nil {
		return
	}
	ev.ApplicationID = app.ID
	ev.ChefID = app.ChefID
	ev.LocationID = app.LocationID
	ev.ManagerID = managerID
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if loc, err := e.Locations.GetByID(ctx, app.LocationID); err == nil {
		ev.LocationName = loc.Name
	}
	if err := e.Publisher.PublishApplicationEvent(ctx, ev); err != nil && e.Log != nil {
		e.Log.Warn("publish application event failed",
			zap.String("kind", ev.Kind), zap.Uint64("application_id", app.ID), zap.Error(err))
	}
}
