package model

import "time"

// Location represents a commercial kitchen location owned by a manager.
// A location can receive chef applications and, once access is granted,
// kitchen and storage bookings. This struct corresponds to a row in the
// `locations` table.
//
// Fields:
//
//	ID               – primary key identifier.
//	ManagerID        – user ID of the managing owner.
//	Name             – display name of the kitchen.
//	Address          – street address.
//	KitchenRateCents – hourly rate for kitchen time in cents.
//	StorageRateCents – daily rate for a storage unit in cents.
//	CreatedAt        – timestamp when the location was created.
//	UpdatedAt        – timestamp of last update.
type Location struct {
	ID               uint64    // locations.id
	ManagerID        uint64    // locations.manager_id
	Name             string    // locations.name
	Address          string    // locations.address
	KitchenRateCents uint32    // locations.kitchen_rate_cents
	StorageRateCents uint32    // locations.storage_rate_cents
	CreatedAt        time.Time // locations.created_at
	UpdatedAt        time.Time // locations.updated_at
}
