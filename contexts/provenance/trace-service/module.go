package traceservice

import (
	"log/slog"
	"time"

	httpadapter "tracechain/contexts/provenance/trace-service/adapters/http"
	"tracechain/contexts/provenance/trace-service/adapters/memory"
	"tracechain/contexts/provenance/trace-service/application/commands"
	"tracechain/contexts/provenance/trace-service/application/queries"
	"tracechain/contexts/provenance/trace-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo             ports.Repository
	Idempotency      ports.IdempotencyStore
	Authorizer       ports.Authorizer
	Clock            ports.Clock
	MaxMetadataBytes int
	// RepeatLimit caps repeatable kinds (Inspected/Verified); 0 is unlimited.
	RepeatLimit    int
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registerProduct := commands.RegisterProductUseCase{
		Repo:             deps.Repo,
		Idempotency:      deps.Idempotency,
		Authorizer:       deps.Authorizer,
		Clock:            deps.Clock,
		MaxMetadataBytes: deps.MaxMetadataBytes,
		IdempotencyTTL:   deps.IdempotencyTTL,
		Logger:           deps.Logger,
	}
	logEvent := commands.LogEventUseCase{
		Repo:        deps.Repo,
		Authorizer:  deps.Authorizer,
		Clock:       deps.Clock,
		RepeatLimit: deps.RepeatLimit,
		Logger:      deps.Logger,
	}

	getProduct := queries.GetProductUseCase{Repo: deps.Repo, Logger: deps.Logger}
	getEventHistory := queries.GetEventHistoryUseCase{Repo: deps.Repo, Logger: deps.Logger}
	getCurrentOwner := queries.GetCurrentOwnerUseCase{Repo: deps.Repo, Logger: deps.Logger}
	getOwnershipHistory := queries.GetOwnershipHistoryUseCase{Repo: deps.Repo, Logger: deps.Logger}
	verifyProduct := queries.VerifyProductUseCase{Repo: deps.Repo, Logger: deps.Logger}
	listByOwner := queries.ListProductsByOwnerUseCase{Repo: deps.Repo, Logger: deps.Logger}
	listByManufacturer := queries.ListProductsByManufacturerUseCase{Repo: deps.Repo, Logger: deps.Logger}

	return Module{
		Handler: httpadapter.Handler{
			RegisterProduct:     registerProduct,
			LogEvent:            logEvent,
			GetProduct:          getProduct,
			GetEventHistory:     getEventHistory,
			GetCurrentOwner:     getCurrentOwner,
			GetOwnershipHistory: getOwnershipHistory,
			VerifyProduct:       verifyProduct,
			ListByOwner:         listByOwner,
			ListByManufacturer:  listByManufacturer,
			Logger:              deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory substrate double.
// The caller supplies the authorization gate so tests can drive both modules
// together.
func NewInMemoryModule(authorizer ports.Authorizer, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:             store,
		Idempotency:      store,
		Authorizer:       authorizer,
		Clock:            store,
		MaxMetadataBytes: 4096,
		IdempotencyTTL:   7 * 24 * time.Hour,
		Logger:           logger,
	})
	module.Store = store
	return module
}
