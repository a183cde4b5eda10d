package model

import "time"

// Application statuses. An application is created inReview, moves between
// inReview and rejected while documents and tiers are reviewed, and ends in
// approved or cancelled. Rows are never hard-deleted.
const (
	ApplicationInReview  = "inReview"
	ApplicationApproved  = "approved"
	ApplicationRejected  = "rejected"
	ApplicationCancelled = "cancelled"
)

// Tier bounds. Tiers are ordered approval stages; current_tier only
// advances one step at a time and never decreases.
const (
	MinTier = 1
	MaxTier = 4
)

// KitchenApplication tracks a chef's progress through the tiered approval
// workflow for one location. One row exists per (chef, location) pair.
//
// Fields:
//
//	ID             – primary key identifier.
//	ChefID         – applying chef's user ID.
//	LocationID     – kitchen location applied to.
//	FirstName      – applicant identity, collected at tier 1.
//	LastName       – applicant identity.
//	Email          – contact email.
//	Phone          – contact phone, required per location config.
//	BusinessName   – chef's business name.
//	BusinessType   – e.g. caterer, baker, food truck.
//	BusinessDesc   – free-text description.
//	ExperienceYears – years of professional experience.
//	UsageFrequency – expected sessions per week.
//	SessionHours   – expected session duration in hours.
//	CurrentTier    – 1–4, monotonically non-decreasing.
//	TierData       – free-form JSON with tier-specific answers.
//	Status         – inReview/approved/rejected/cancelled.
//	Feedback       – manager feedback, set on rejection.
//	ConversationID – chat thread, created lazily on first tier-1 approval.
//	Version        – optimistic lock counter bumped on every transition.
//	CreatedAt      – creation timestamp.
//	UpdatedAt      – last update timestamp.
type KitchenApplication struct {
	ID              uint64    // chef_kitchen_applications.id
	ChefID          uint64    // chef_kitchen_applications.chef_id
	LocationID      uint64    // chef_kitchen_applications.location_id
	FirstName       string    // chef_kitchen_applications.first_name
	LastName        string    // chef_kitchen_applications.last_name
	Email           string    // chef_kitchen_applications.email
	Phone           string    // chef_kitchen_applications.phone
	BusinessName    string    // chef_kitchen_applications.business_name
	BusinessType    string    // chef_kitchen_applications.business_type
	BusinessDesc    string    // chef_kitchen_applications.business_desc
	ExperienceYears uint8     // chef_kitchen_applications.experience_years
	UsageFrequency  string    // chef_kitchen_applications.usage_frequency
	SessionHours    uint8     // chef_kitchen_applications.session_hours
	CurrentTier     uint8     // chef_kitchen_applications.current_tier
	TierData        string    // chef_kitchen_applications.tier_data (JSON)
	Status          string    // chef_kitchen_applications.status
	Feedback        string    // chef_kitchen_applications.feedback
	ConversationID  *uint64   // chef_kitchen_applications.conversation_id (nullable)
	Version         uint64    // chef_kitchen_applications.version
	CreatedAt       time.Time // chef_kitchen_applications.created_at
	UpdatedAt       time.Time // chef_kitchen_applications.updated_at
}
