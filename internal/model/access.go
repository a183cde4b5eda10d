package model

import "time"

// ChefLocationAccess is the durable grant created when an application
// reaches final tier approval. At most one active grant exists per
// (chef, location) pair; inserts are idempotent. Grants are never mutated
// and revocation is out of scope.
//
// Fields:
//
//	ID         – primary key identifier.
//	ChefID     – chef holding access.
//	LocationID – location the chef may book.
//	GrantedBy  – manager who approved the final tier.
//	GrantedAt  – grant timestamp.
type ChefLocationAccess struct {
	ID         uint64    // chef_location_access.id
	ChefID     uint64    // chef_location_access.chef_id
	LocationID uint64    // chef_location_access.location_id
	GrantedBy  uint64    // chef_location_access.granted_by
	GrantedAt  time.Time // chef_location_access.granted_at
}
