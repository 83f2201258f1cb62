package authorization

import (
	"log/slog"
	"time"

	httpadapter "tracechain/contexts/identity-access/authorization-service/adapters/http"
	"tracechain/contexts/identity-access/authorization-service/adapters/memory"
	"tracechain/contexts/identity-access/authorization-service/application/commands"
	"tracechain/contexts/identity-access/authorization-service/application/queries"
	"tracechain/contexts/identity-access/authorization-service/ports"
)

type Module struct {
	Handler     httpadapter.Handler
	CheckAccess queries.CheckAccessUseCase
	Store       *memory.Store
}

type Dependencies struct {
	Repo ports.Repository
	// Cache is optional; nil disables the membership cache entirely.
	Cache    ports.MembershipCache
	Clock    ports.Clock
	AdminID  string
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	grantAccess := commands.GrantAccessUseCase{
		Repo:     deps.Repo,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		AdminID:  deps.AdminID,
		CacheTTL: deps.CacheTTL,
		Logger:   deps.Logger,
	}
	revokeAccess := commands.RevokeAccessUseCase{
		Repo:     deps.Repo,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		AdminID:  deps.AdminID,
		CacheTTL: deps.CacheTTL,
		Logger:   deps.Logger,
	}
	checkAccess := queries.CheckAccessUseCase{
		Repo:     deps.Repo,
		Cache:    deps.Cache,
		AdminID:  deps.AdminID,
		CacheTTL: deps.CacheTTL,
		Logger:   deps.Logger,
	}
	getAdmin := queries.GetAdminUseCase{AdminID: deps.AdminID}

	return Module{
		Handler: httpadapter.Handler{
			GrantAccess:  grantAccess,
			RevokeAccess: revokeAccess,
			CheckAccess:  checkAccess,
			GetAdmin:     getAdmin,
			Logger:       deps.Logger,
		},
		CheckAccess: checkAccess,
	}
}

// NewInMemoryModule wires the module against the in-memory membership store.
func NewInMemoryModule(adminID string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:    store,
		Clock:   store,
		AdminID: adminID,
		Logger:  logger,
	})
	module.Store = store
	return module
}
