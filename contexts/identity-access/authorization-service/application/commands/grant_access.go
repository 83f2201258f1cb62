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

type GrantAccessCommand struct {
	CallerID  string
	AccountID string
}

type GrantAccessUseCase struct {
	Repo     ports.Repository
	Cache    ports.MembershipCache
	Clock    ports.Clock
	AdminID  string
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func (uc GrantAccessUseCase) Execute(ctx context.Context, cmd GrantAccessCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	account := strings.TrimSpace(cmd.AccountID)
	if caller == "" || account == "" {
		return domainerrors.ErrInvalidAccountID
	}
	if caller != uc.AdminID {
		return domainerrors.ErrAdminOnly
	}

	if err := uc.Repo.AddMember(ctx, account, uc.Clock.Now().UTC()); err != nil {
		return err
	}
	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, account, true, uc.CacheTTL); err != nil {
			logger.Warn("membership cache set failed",
				"event", "authz_cache_set_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"account_id", account,
				"error", err.Error(),
			)
		}
	}

	logger.Info("account authorized",
		"event", "account_authorized",
		"module", "identity-access/authorization-service",
		"layer", "application",
		"account_id", account,
	)
	return nil
}
