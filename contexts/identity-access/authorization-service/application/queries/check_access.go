package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "tracechain/contexts/identity-access/authorization-service/application"
	"tracechain/contexts/identity-access/authorization-service/ports"
)

// CheckAccessUseCase answers whether an account may record lifecycle events.
// The admin account is always authorized; everyone else must hold an explicit
// membership granted through GrantAccessUseCase.
type CheckAccessUseCase struct {
	Repo     ports.Repository
	Cache    ports.MembershipCache
	AdminID  string
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// IsAuthorized reports whether accountID may perform write operations. Cache
// failures are logged and the repository consulted directly, so a degraded
// cache never blocks a legitimate caller.
func (uc CheckAccessUseCase) IsAuthorized(ctx context.Context, accountID string) (bool, error) {
	account := strings.TrimSpace(accountID)
	if account == "" {
		return false, nil
	}
	if account == uc.AdminID {
		return true, nil
	}

	logger := application.ResolveLogger(uc.Logger)
	if uc.Cache != nil {
		authorized, found, err := uc.Cache.Get(ctx, account)
		if err != nil {
			logger.Warn("membership cache read failed",
				"event", "authz_cache_read_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"account_id", account,
				"error", err.Error(),
			)
		} else if found {
			return authorized, nil
		}
	}

	member, err := uc.Repo.IsMember(ctx, account)
	if err != nil {
		return false, err
	}
	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, account, member, uc.CacheTTL); err != nil {
			logger.Warn("membership cache set failed",
				"event", "authz_cache_set_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"account_id", account,
				"error", err.Error(),
			)
		}
	}
	return member, nil
}
