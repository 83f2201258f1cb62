package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Repository persists the authorized-account set. The admin account is host
// configuration, not a row; it is passed into the module explicitly.
type Repository interface {
	// AddMember is idempotent; adding a present account is a no-op.
	AddMember(ctx context.Context, accountID string, grantedAt time.Time) error
	// RemoveMember is a no-op for accounts that are not members.
	RemoveMember(ctx context.Context, accountID string) error
	IsMember(ctx context.Context, accountID string) (bool, error)
}

// MembershipCache is an advisory read-through cache in front of Repository.
// Implementations must treat misses and errors as "ask the repository".
type MembershipCache interface {
	Get(ctx context.Context, accountID string) (authorized bool, found bool, err error)
	Set(ctx context.Context, accountID string, authorized bool, ttl time.Duration) error
	Invalidate(ctx context.Context, accountID string) error
}
