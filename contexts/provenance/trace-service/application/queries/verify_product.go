package queries

import (
	"context"
	"log/slog"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	"tracechain/contexts/provenance/trace-service/ports"
)

type VerificationStatus string

const (
	StatusAuthentic  VerificationStatus = "authentic"
	StatusUnverified VerificationStatus = "unverified"
)

type VerifyProductUseCase struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

// Execute reports Authentic iff at least one Verified event exists in the
// product's history. An unregistered identifier is a NotFound error, not
// Unverified.
func (uc VerifyProductUseCase) Execute(ctx context.Context, productID uint64) (VerificationStatus, error) {
	if _, err := uc.Repo.GetProduct(ctx, productID); err != nil {
		return "", err
	}
	events, err := uc.Repo.ListEvents(ctx, productID)
	if err != nil {
		return "", err
	}
	for _, event := range events {
		if event.Kind == entities.EventKindVerified {
			return StatusAuthentic, nil
		}
	}
	return StatusUnverified, nil
}
