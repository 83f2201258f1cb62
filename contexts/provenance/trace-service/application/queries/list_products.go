package queries

import (
	"context"
	"log/slog"
	"strings"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"
)

type ListProductsByOwnerUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (uc ListProductsByOwnerUseCase) Execute(ctx context.Context, ownerID string) ([]entities.Product, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domainerrors.ErrInvalidAccountID
	}
	return uc.Repo.ListProductsByOwner(ctx, strings.TrimSpace(ownerID))
}

type ListProductsByManufacturerUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (uc ListProductsByManufacturerUseCase) Execute(ctx context.Context, manufacturerID string) ([]entities.Product, error) {
	if strings.TrimSpace(manufacturerID) == "" {
		return nil, domainerrors.ErrInvalidAccountID
	}
	return uc.Repo.ListProductsByManufacturer(ctx, strings.TrimSpace(manufacturerID))
}
