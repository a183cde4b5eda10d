package model

import "time"

// LocationRequirements is the per-location configuration of which
// application fields and documents are mandatory at each tier, plus the
// overstay penalty settings used for storage bookings. A row is created
// lazily on the first manager edit; locations without a row fall back to
// DefaultRequirements. Rows are never deleted.
//
// The boolean flags gate tier-1 form fields; the *Doc flags gate tier-2
// document uploads. FloorPlanURL and VentilationSpec are free-text policy
// fields shown to applicants.
type LocationRequirements struct {
	LocationID uint64 // location_requirements.location_id (unique)

	// tier 1 field flags
	RequireFirstName       bool
	RequireLastName        bool
	RequireEmail           bool
	RequirePhone           bool
	RequireBusinessName    bool
	RequireBusinessType    bool
	RequireBusinessDesc    bool
	RequireExperience      bool
	RequireFoodHandlerCert bool
	RequireCertExpiry      bool
	RequireEstablishCert   bool
	RequireUsageFrequency  bool
	RequireSessionDuration bool

	// tier 2 document flags
	RequireInsuranceDoc bool
	RequireAllergenPlan bool

	// free-text policy fields
	FloorPlanURL    string
	VentilationSpec string

	// overstay penalty settings
	GracePeriodDays    uint8  // 0–14
	PenaltyRatePercent uint8  // 0–50, per day, of the booking's daily rate
	MaxPenaltyCents    uint32 // cap on the final penalty, 0 = no cap
	TaxRatePercent     uint8  // applied to the calculated penalty

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultRequirements returns the configuration applied to a location with
// no stored override: tier-1 minimal required fields only, no tier-2
// documents, a one week grace period and a 10% daily penalty rate.
func DefaultRequirements(locationID uint64) LocationRequirements {
	return LocationRequirements{
		LocationID:             locationID,
		RequireFirstName:       true,
		RequireLastName:        true,
		RequireEmail:           true,
		RequireFoodHandlerCert: true,
		GracePeriodDays:        7,
		PenaltyRatePercent:     10,
		TaxRatePercent:         0,
	}
}
