package queries

import (
	"context"
	"log/slog"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	"tracechain/contexts/provenance/trace-service/ports"
)

type GetCurrentOwnerUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

// Execute reads the cached owner column; the cache is maintained inside the
// same transaction as every Received append.
func (uc GetCurrentOwnerUseCase) Execute(ctx context.Context, productID uint64) (string, error) {
	product, err := uc.Repo.GetProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	return product.Owner, nil
}

type GetOwnershipHistoryUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

// Execute reconstructs ownership by replaying Received events in sequence
// order, prefixed with the manufacturer at creation time.
func (uc GetOwnershipHistoryUseCase) Execute(ctx context.Context, productID uint64) ([]entities.OwnershipRecord, error) {
	product, err := uc.Repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	events, err := uc.Repo.ListEvents(ctx, productID)
	if err != nil {
		return nil, err
	}
	return entities.DeriveOwnershipHistory(product, events), nil
}
