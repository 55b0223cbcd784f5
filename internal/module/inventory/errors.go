package inventory

import "errors"

// Module errors.
var (
	ErrReservationNotFound  = errors.New("consumed reservation not found")
	ErrInventoryNotFound    = errors.New("supplier variant inventory not found")
	ErrAmbiguousReservation = errors.New("multiple consumed reservations match, variant required")
)
