package model

import "time"

// Document verification statuses, tracked independently of tier status.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// Document kinds accepted as named multipart file slots on submission.
const (
	DocFoodHandlerCert  = "foodHandlerCert"
	DocEstablishCert    = "establishmentCert"
	DocInsurance        = "insurance"
	DocAllergenPlan     = "allergenPlan"
	DocBusinessLicense  = "businessLicense"
	DocMenuSample       = "menuSample"
	DocKitchenPhoto     = "kitchenPhoto"
)

// KnownDocumentKinds lists every accepted document slot in upload order.
var KnownDocumentKinds = []string{
	DocFoodHandlerCert,
	DocEstablishCert,
	DocInsurance,
	DocAllergenPlan,
	DocBusinessLicense,
	DocMenuSample,
	DocKitchenPhoto,
}

// ApplicationDocument is one uploaded document attached to an application.
// At most one row exists per (application, kind); re-uploading replaces the
// URL and resets the status to pending.
//
// Fields:
//
//	ID            – primary key identifier.
//	ApplicationID – owning application.
//	Kind          – one of the Doc* constants.
//	URL           – object storage URL of the uploaded file.
//	Status        – pending/approved/rejected.
//	ExpiresAt     – certificate expiry where applicable (nullable).
//	ReviewedBy    – manager who last reviewed the document (nullable).
//	ReviewedAt    – when the document was last reviewed (nullable).
//	CreatedAt     – upload timestamp.
//	UpdatedAt     – last update timestamp.
type ApplicationDocument struct {
	ID            uint64     // application_documents.id
	ApplicationID uint64     // application_documents.application_id
	Kind          string     // application_documents.kind
	URL           string     // application_documents.url
	Status        string     // application_documents.status
	ExpiresAt     *time.Time // application_documents.expires_at (nullable)
	ReviewedBy    *uint64    // application_documents.reviewed_by (nullable)
	ReviewedAt    *time.Time // application_documents.reviewed_at (nullable)
	CreatedAt     time.Time  // application_documents.created_at
	UpdatedAt     time.Time  // application_documents.updated_at
}
