// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios: ErrForbidden indicates
// that the current user is not authorized to act on a resource owned by
// someone else, ErrConflict signals conflicting state (e.g. overlapping
// storage bookings), and ErrVersionConflict reports a lost optimistic-lock
// race on an application transition.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state, such as an overlapping storage booking or a
// duplicate application for the same location. Handlers translate this into
// HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrVersionConflict is returned when an application transition loses a
// compare-and-swap race against a concurrent writer. Handlers translate
// this into HTTP 409 and clients should re-read and retry.
var ErrVersionConflict = errors.New("version conflict")

// ErrEmailExists is returned by UserRepo.Create on a duplicate email.
var ErrEmailExists = errors.New("email already exists")
