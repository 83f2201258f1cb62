package queries

import (
	"context"
	"log/slog"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	"tracechain/contexts/provenance/trace-service/ports"
)

type GetEventHistoryUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

// Execute returns the full sequence-ordered event history for a product.
func (uc GetEventHistoryUseCase) Execute(ctx context.Context, productID uint64) ([]entities.Event, error) {
	if _, err := uc.Repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return uc.Repo.ListEvents(ctx, productID)
}
