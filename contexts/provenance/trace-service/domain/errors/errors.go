package errors

import "errors"

var (
	ErrUnauthorized           = errors.New("caller is not authorized")
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidTransition      = errors.New("event kind not reachable from current lifecycle state")
	ErrInvalidMetadata        = errors.New("metadata must be non-empty and within the size bound")
	ErrInvalidEventKind       = errors.New("unknown event kind")
	ErrInvalidAccountID       = errors.New("account id must be non-empty")
	ErrProductExists          = errors.New("product identifier already exists")
	ErrCounterOverflow        = errors.New("identifier counter would overflow")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyKeyConflict = errors.New("idempotency key conflict")
)
