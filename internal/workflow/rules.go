// Package workflow implements the tiered application approval engine:
// ordered tier advancement gated by per-location requirements, manager
// rejection with mandatory feedback, chef-side resubmission and
// cancellation, and the idempotent access grant on final approval.
//
// The rule checks in this file are pure functions over models so they can
// be exercised without a database; Engine applies them against the
// repositories.
package workflow

import (
	"fmt"
	"strings"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

// RuleError describes a refused transition or a validation failure. Details
// lists the offending field paths for 400 responses.
type RuleError struct {
	Code    string   // machine-readable reason
	Message string   // human-readable explanation
	Details []string // offending field paths, if any
}

func (e *RuleError) Error() string { return e.Message }

func ruleErr(code, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CheckAdvance validates that an application may move to targetTier. Tiers
// advance one step at a time and only while the application is under
// review; terminal applications never advance.
func CheckAdvance(app model.KitchenApplication, targetTier uint8) *RuleError {
	switch app.Status {
	case model.ApplicationCancelled:
		return ruleErr("cancelled", "application is cancelled")
	case model.ApplicationApproved:
		return ruleErr("already_approved", "application is already fully approved")
	case model.ApplicationRejected:
		return ruleErr("rejected", "application is rejected; chef must resubmit first")
	}
	if targetTier < model.MinTier || targetTier > model.MaxTier {
		return ruleErr("invalid_tier", "tier must be between %d and %d", model.MinTier, model.MaxTier)
	}
	if targetTier <= app.CurrentTier {
		return ruleErr("tier_not_ahead", "application is already at tier %d", app.CurrentTier)
	}
	if targetTier != app.CurrentTier+1 {
		return ruleErr("tier_skip", "cannot skip from tier %d to tier %d", app.CurrentTier, targetTier)
	}
	return nil
}

// CheckReject validates a manager rejection. Feedback is mandatory so the
// chef knows what to fix before resubmitting.
func CheckReject(app model.KitchenApplication, feedback string) *RuleError {
	if strings.TrimSpace(feedback) == "" {
		e := ruleErr("feedback_required", "rejection requires feedback")
		e.Details = []string{"feedback"}
		return e
	}
	if app.Status != model.ApplicationInReview {
		return ruleErr("not_in_review", "only applications under review can be rejected")
	}
	return nil
}

// CheckCancel validates a chef-initiated cancellation, permitted only while
// the application is under review.
func CheckCancel(app model.KitchenApplication) *RuleError {
	if app.Status != model.ApplicationInReview {
		return ruleErr("not_in_review", "only applications under review can be cancelled")
	}
	return nil
}

// CheckResubmit validates a chef-side resubmission after rejection. The
// application stays at its current tier; only the status resets.
func CheckResubmit(app model.KitchenApplication) *RuleError {
	if app.Status != model.ApplicationRejected {
		return ruleErr("not_rejected", "only rejected applications can be resubmitted")
	}
	return nil
}

// MissingFields returns the field paths required by the location
// configuration for the application's current tier that the submission does
// not satisfy. An empty result means the tier's prerequisites are complete.
// Tier 1 gates form fields and the two certificates; tier 2 additionally
// gates the configured document uploads. Documents count only once
// approved.
func MissingFields(req model.LocationRequirements, app model.KitchenApplication, docs []model.ApplicationDocument) []string {
	approved := make(map[string]bool, len(docs))
	uploaded := make(map[string]model.ApplicationDocument, len(docs))
	for _, d := range docs {
		uploaded[d.Kind] = d
		if d.Status == model.DocumentApproved {
			approved[d.Kind] = true
		}
	}

	var missing []string
	field := func(required bool, value, path string) {
		if required && strings.TrimSpace(value) == "" {
			missing = append(missing, path)
		}
	}

	field(req.RequireFirstName, app.FirstName, "firstName")
	field(req.RequireLastName, app.LastName, "lastName")
	field(req.RequireEmail, app.Email, "email")
	field(req.RequirePhone, app.Phone, "phone")
	field(req.RequireBusinessName, app.BusinessName, "businessName")
	field(req.RequireBusinessType, app.BusinessType, "businessType")
	field(req.RequireBusinessDesc, app.BusinessDesc, "businessDescription")
	field(req.RequireUsageFrequency, app.UsageFrequency, "usageFrequency")
	if req.RequireExperience && app.ExperienceYears == 0 {
		missing = append(missing, "experienceYears")
	}
	if req.RequireSessionDuration && app.SessionHours == 0 {
		missing = append(missing, "sessionDuration")
	}
	if req.RequireFoodHandlerCert && !approved[model.DocFoodHandlerCert] {
		missing = append(missing, "documents."+model.DocFoodHandlerCert)
	}
	if req.RequireCertExpiry {
		if d, ok := uploaded[model.DocFoodHandlerCert]; !ok || d.ExpiresAt == nil {
			missing = append(missing, "documents."+model.DocFoodHandlerCert+".expiry")
		}
	}
	if req.RequireEstablishCert && !approved[model.DocEstablishCert] {
		missing = append(missing, "documents."+model.DocEstablishCert)
	}

	// tier 2 document requirements gate advancement beyond tier 2
	if app.CurrentTier >= 2 {
		if req.RequireInsuranceDoc && !approved[model.DocInsurance] {
			missing = append(missing, "documents."+model.DocInsurance)
		}
		if req.RequireAllergenPlan && !approved[model.DocAllergenPlan] {
			missing = append(missing, "documents."+model.DocAllergenPlan)
		}
	}
	return missing
}

// MissingSubmissionFields checks only the tier-1 form fields of a fresh
// submission, before any document has been reviewed. Used at intake so a
// chef cannot file an application that omits configured mandatory fields.
func MissingSubmissionFields(req model.LocationRequirements, app model.KitchenApplication, uploadedKinds map[string]bool) []string {
	var missing []string
	field := func(required bool, value, path string) {
		if required && strings.TrimSpace(value) == "" {
			missing = append(missing, path)
		}
	}
	field(req.RequireFirstName, app.FirstName, "firstName")
	field(req.RequireLastName, app.LastName, "lastName")
	field(req.RequireEmail, app.Email, "email")
	field(req.RequirePhone, app.Phone, "phone")
	field(req.RequireBusinessName, app.BusinessName, "businessName")
	field(req.RequireBusinessType, app.BusinessType, "businessType")
	field(req.RequireBusinessDesc, app.BusinessDesc, "businessDescription")
	field(req.RequireUsageFrequency, app.UsageFrequency, "usageFrequency")
	if req.RequireExperience && app.ExperienceYears == 0 {
		missing = append(missing, "experienceYears")
	}
	if req.RequireSessionDuration && app.SessionHours == 0 {
		missing = append(missing, "sessionDuration")
	}
	if req.RequireFoodHandlerCert && !uploadedKinds[model.DocFoodHandlerCert] {
		missing = append(missing, "documents."+model.DocFoodHandlerCert)
	}
	if req.RequireEstablishCert && !uploadedKinds[model.DocEstablishCert] {
		missing = append(missing, "documents."+model.DocEstablishCert)
	}
	return missing
}
