package model

import "time"

// Overstay penalty statuses. A penalty is calculated when a storage booking
// is checked out past its end date, approved by the manager, then charged.
const (
	PenaltyPending  = "PENDING"
	PenaltyApproved = "APPROVED"
	PenaltyCharged  = "CHARGED"
	PenaltyWaived   = "WAIVED"
)

// OverstayPenalty records the charge owed for returning a storage unit
// late. Amounts are derived from the booking's daily rate and the
// location's requirement settings (grace period, rate, cap, tax).
//
// Fields:
//
//	ID              – primary key identifier.
//	BookingID       – storage booking the penalty belongs to.
//	DaysOverdue     – checkout days past the booking end, before grace.
//	CalculatedCents – pre-tax penalty after grace and cap.
//	TaxCents        – tax on the calculated amount.
//	FinalCents      – calculated + tax.
//	Status          – PENDING/APPROVED/CHARGED/WAIVED.
//	PaymentRef      – external payment reference once charged (nullable).
//	RetryCount      – number of charge attempts made.
//	ApprovedAt      – manager approval time (nullable).
//	ChargedAt       – successful charge time (nullable).
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type OverstayPenalty struct {
	ID              uint64     // overstay_penalties.id
	BookingID       uint64     // overstay_penalties.booking_id
	DaysOverdue     uint32     // overstay_penalties.days_overdue
	CalculatedCents uint32     // overstay_penalties.calculated_cents
	TaxCents        uint32     // overstay_penalties.tax_cents
	FinalCents      uint32     // overstay_penalties.final_cents
	Status          string     // overstay_penalties.status
	PaymentRef      *string    // overstay_penalties.payment_ref (nullable)
	RetryCount      uint8      // overstay_penalties.retry_count
	ApprovedAt      *time.Time // overstay_penalties.approved_at (nullable)
	ChargedAt       *time.Time // overstay_penalties.charged_at (nullable)
	CreatedAt       time.Time  // overstay_penalties.created_at
	UpdatedAt       time.Time  // overstay_penalties.updated_at
}
