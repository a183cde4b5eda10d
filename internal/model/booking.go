package model

import "time"

// Booking kinds and statuses. Kitchen bookings reserve cooking time;
// storage bookings reserve a named storage unit between two dates and are
// subject to overstay penalties when checked out late.
const (
	BookingKitchen = "KITCHEN"
	BookingStorage = "STORAGE"

	BookingActive    = "ACTIVE"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

// Booking is a chef's reservation of kitchen time or a storage unit at a
// location. Creating one requires an active access grant for the location.
//
// Fields:
//
//	ID            – primary key identifier.
//	ChefID        – booking chef.
//	LocationID    – booked location.
//	Kind          – KITCHEN or STORAGE.
//	StorageUnit   – unit label for storage bookings (empty for kitchen).
//	StartsAt      – booking start.
//	EndsAt        – booking end.
//	DailyRateCents – rate snapshot taken from the location at creation.
//	Status        – ACTIVE/CANCELLED/COMPLETED.
//	CheckedOutAt  – actual checkout time for storage bookings (nullable).
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Booking struct {
	ID             uint64     // bookings.id
	ChefID         uint64     // bookings.chef_id
	LocationID     uint64     // bookings.location_id
	Kind           string     // bookings.kind
	StorageUnit    string     // bookings.storage_unit
	StartsAt       time.Time  // bookings.starts_at
	EndsAt         time.Time  // bookings.ends_at
	DailyRateCents uint32     // bookings.daily_rate_cents
	Status         string     // bookings.status
	CheckedOutAt   *time.Time // bookings.checked_out_at (nullable)
	CreatedAt      time.Time  // bookings.created_at
	UpdatedAt      time.Time  // bookings.updated_at
}
