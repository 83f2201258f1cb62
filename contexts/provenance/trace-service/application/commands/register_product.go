package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "tracechain/contexts/provenance/trace-service/application"
	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"
)

type RegisterProductCommand struct {
	CallerID       string
	IdempotencyKey string
	Metadata       []byte
}

type RegisterProductUseCase struct {
	Repo             ports.Repository
	Idempotency      ports.IdempotencyStore
	Authorizer       ports.Authorizer
	Clock            ports.Clock
	MaxMetadataBytes int
	IdempotencyTTL   time.Duration
	Logger           *slog.Logger
}

type RegisterProductResult struct {
	Product      entities.Product
	CreatedEvent entities.Event
	Replayed     bool
}

type registerProductReplayPayload struct {
	ProductID    uint64    `json:"product_id"`
	Manufacturer string    `json:"manufacturer"`
	Owner        string    `json:"owner"`
	Metadata     []byte    `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	EventCount   uint32    `json:"event_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (uc RegisterProductUseCase) Execute(ctx context.Context, cmd RegisterProductCommand) (RegisterProductResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	if caller == "" {
		return RegisterProductResult{}, domainerrors.ErrInvalidAccountID
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return RegisterProductResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	authorized, err := uc.Authorizer.IsAuthorized(ctx, caller)
	if err != nil {
		return RegisterProductResult{}, err
	}
	if !authorized {
		return RegisterProductResult{}, domainerrors.ErrUnauthorized
	}
	if !entities.ValidMetadata(cmd.Metadata, uc.MaxMetadataBytes) {
		return RegisterProductResult{}, domainerrors.ErrInvalidMetadata
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashRegisterProductCommand(caller, cmd.Metadata)
	if record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now); err != nil {
		return RegisterProductResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return RegisterProductResult{}, domainerrors.ErrIdempotencyKeyConflict
		}
		var payload registerProductReplayPayload
		if err := json.Unmarshal(record.ResponsePayload, &payload); err != nil {
			return RegisterProductResult{}, err
		}
		return RegisterProductResult{
			Product: entities.Product{
				ProductID:    payload.ProductID,
				Manufacturer: payload.Manufacturer,
				Owner:        payload.Owner,
				Metadata:     append([]byte(nil), payload.Metadata...),
				CreatedAt:    payload.CreatedAt,
				EventCount:   payload.EventCount,
			},
			CreatedEvent: entities.Event{
				ProductID:  payload.ProductID,
				Sequence:   1,
				Kind:       entities.EventKindCreated,
				Actor:      payload.Manufacturer,
				OccurredAt: payload.OccurredAt,
			},
			Replayed: true,
		}, nil
	}

	product, created, err := uc.Repo.CreateProduct(ctx, ports.CreateProductInput{
		Manufacturer: caller,
		Metadata:     append([]byte(nil), cmd.Metadata...),
		Now:          now,
	})
	if err != nil {
		return RegisterProductResult{}, err
	}

	serialized, err := json.Marshal(registerProductReplayPayload{
		ProductID:    product.ProductID,
		Manufacturer: product.Manufacturer,
		Owner:        product.Owner,
		Metadata:     append([]byte(nil), product.Metadata...),
		CreatedAt:    product.CreatedAt,
		EventCount:   product.EventCount,
		OccurredAt:   created.OccurredAt,
	})
	if err != nil {
		return RegisterProductResult{}, err
	}
	if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		RequestHash:     requestHash,
		ResponsePayload: serialized,
		ExpiresAt:       now.Add(uc.IdempotencyTTL),
	}); err != nil {
		return RegisterProductResult{}, err
	}

	logger.Info("product registered",
		"event", "product_registered",
		"module", "provenance/trace-service",
		"layer", "application",
		"product_id", product.ProductID,
		"manufacturer", product.Manufacturer,
	)
	return RegisterProductResult{Product: product, CreatedEvent: created}, nil
}

func hashRegisterProductCommand(caller string, metadata []byte) string {
	sum := sha256.New()
	sum.Write([]byte("register_product|"))
	sum.Write([]byte(caller))
	sum.Write([]byte("|"))
	sum.Write(metadata)
	return hex.EncodeToString(sum.Sum(nil))
}
