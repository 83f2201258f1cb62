package queries

import (
	"context"
	"log/slog"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	"tracechain/contexts/provenance/trace-service/ports"
)

type GetProductUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

// Execute returns an immutable snapshot; callers cannot mutate stored state
// through it.
func (uc GetProductUseCase) Execute(ctx context.Context, productID uint64) (entities.Product, error) {
	product, err := uc.Repo.GetProduct(ctx, productID)
	if err != nil {
		return entities.Product{}, err
	}
	return product.Clone(), nil
}
