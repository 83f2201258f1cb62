package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "tracechain/contexts/identity-access/authorization-service/application"
	domainerrors "tracechain/contexts/identity-access/authorization-service/domain/errors"
	"tracechain/contexts/identity-access/authorization-service/ports"
)

type RevokeAccessCommand struct {
	CallerID  string
	AccountID string
}

type RevokeAccessUseCase struct {
	Repo     ports.Repository
	Cache    ports.MembershipCache
	Clock    ports.Clock
	AdminID  string
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func (uc RevokeAccessUseCase) Execute(ctx context.Context, cmd RevokeAccessCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	account := strings.TrimSpace(cmd.AccountID)
	if caller == "" || account == "" {
		return domainerrors.ErrInvalidAccountID
	}
	if caller != uc.AdminID {
		return domainerrors.ErrAdminOnly
	}

	// Revoking an account that was never authorized is a no-op.
	if err := uc.Repo.RemoveMember(ctx, account); err != nil {
		return err
	}
	if uc.Cache != nil {
		if err := uc.Cache.Invalidate(ctx, account); err != nil {
			logger.Warn("membership cache invalidate failed",
				"event", "authz_cache_invalidate_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"account_id", account,
				"error", err.Error(),
			)
		}
	}

	logger.Info("account access revoked",
		"event", "account_access_revoked",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"account_id", account,
	)
	return nil
}
