package storage

import "errors"

// Domain error kinds. Services wrap these with operation context via %w;
// the HTTP layer maps them to status codes with errors.Is. Repository I/O
// failures are returned as distinct infrastructure errors, never these.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrPreconditionFailed     = errors.New("transition precondition failed")
	ErrIncompatibleStation    = errors.New("station cannot execute work type")
	ErrStationInactive        = errors.New("station is inactive")
	ErrInvalidQuantity        = errors.New("quantity out of allowed bounds")
	ErrMissingReason          = errors.New("rework reason is required")
	ErrInvalidState           = errors.New("operation not allowed in current status")
	ErrConcurrentModification = errors.New("job was modified concurrently")
	ErrUnknownWorkType        = errors.New("unknown work type code")
	ErrInvalidPriority        = errors.New("priority tier out of range")
)
