package httpadapter

import (
	"context"
	"log/slog"

	"tracechain/contexts/provenance/trace-service/application/commands"
	"tracechain/contexts/provenance/trace-service/application/queries"
	"tracechain/contexts/provenance/trace-service/domain/entities"
	httptransport "tracechain/contexts/provenance/trace-service/transport/http"
)

type Handler struct {
	RegisterProduct     commands.RegisterProductUseCase
	LogEvent            commands.LogEventUseCase
	GetProduct          queries.GetProductUseCase
	GetEventHistory     queries.GetEventHistoryUseCase
	GetCurrentOwner     queries.GetCurrentOwnerUseCase
	GetOwnershipHistory queries.GetOwnershipHistoryUseCase
	VerifyProduct       queries.VerifyProductUseCase
	ListByOwner         queries.ListProductsByOwnerUseCase
	ListByManufacturer  queries.ListProductsByManufacturerUseCase
	Logger              *slog.Logger
}

func (h Handler) RegisterProductHandler(
	ctx context.Context,
	accountID string,
	idempotencyKey string,
	req httptransport.RegisterProductRequest,
) (httptransport.RegisterProductResponse, error) {
	result, err := h.RegisterProduct.Execute(ctx, commands.RegisterProductCommand{
		CallerID:       accountID,
		IdempotencyKey: idempotencyKey,
		Metadata:       []byte(req.Metadata),
	})
	if err != nil {
		return httptransport.RegisterProductResponse{}, err
	}
	return httptransport.RegisterProductResponse{
		Product:  mapProduct(result.Product),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) LogEventHandler(
	ctx context.Context,
	accountID string,
	productID uint64,
	req httptransport.LogEventRequest,
) (httptransport.LogEventResponse, error) {
	result, err := h.LogEvent.Execute(ctx, commands.LogEventCommand{
		CallerID:  accountID,
		ProductID: productID,
		Kind:      req.Kind,
	})
	if err != nil {
		return httptransport.LogEventResponse{}, err
	}
	return httptransport.LogEventResponse{
		Event:         mapEvent(result.Event),
		Product:       mapProduct(result.Product),
		OwnerChanged:  result.OwnerChanged,
		PreviousOwner: result.PreviousOwner,
	}, nil
}

func (h Handler) GetProductHandler(ctx context.Context, productID uint64) (httptransport.GetProductResponse, error) {
	product, err := h.GetProduct.Execute(ctx, productID)
	if err != nil {
		return httptransport.GetProductResponse{}, err
	}
	return httptransport.GetProductResponse{Product: mapProduct(product)}, nil
}

func (h Handler) GetEventHistoryHandler(ctx context.Context, productID uint64) (httptransport.EventHistoryResponse, error) {
	events, err := h.GetEventHistory.Execute(ctx, productID)
	if err != nil {
		return httptransport.EventHistoryResponse{}, err
	}
	items := make([]httptransport.EventDTO, 0, len(events))
	for _, event := range events {
		items = append(items, mapEvent(event))
	}
	return httptransport.EventHistoryResponse{Items: items}, nil
}

func (h Handler) GetCurrentOwnerHandler(ctx context.Context, productID uint64) (httptransport.CurrentOwnerResponse, error) {
	owner, err := h.GetCurrentOwner.Execute(ctx, productID)
	if err != nil {
		return httptransport.CurrentOwnerResponse{}, err
	}
	return httptransport.CurrentOwnerResponse{ProductID: productID, Owner: owner}, nil
}

func (h Handler) GetOwnershipHistoryHandler(ctx context.Context, productID uint64) (httptransport.OwnershipHistoryResponse, error) {
	history, err := h.GetOwnershipHistory.Execute(ctx, productID)
	if err != nil {
		return httptransport.OwnershipHistoryResponse{}, err
	}
	items := make([]httptransport.OwnershipRecordDTO, 0, len(history))
	for _, record := range history {
		items = append(items, httptransport.OwnershipRecordDTO{
			Owner:      record.Owner,
			OccurredAt: record.OccurredAt,
		})
	}
	return httptransport.OwnershipHistoryResponse{Items: items}, nil
}

func (h Handler) VerifyProductHandler(ctx context.Context, productID uint64) (httptransport.VerifyProductResponse, error) {
	status, err := h.VerifyProduct.Execute(ctx, productID)
	if err != nil {
		return httptransport.VerifyProductResponse{}, err
	}
	return httptransport.VerifyProductResponse{
		ProductID: productID,
		Status:    string(status),
	}, nil
}

func (h Handler) ListByOwnerHandler(ctx context.Context, ownerID string) (httptransport.ListProductsResponse, error) {
	products, err := h.ListByOwner.Execute(ctx, ownerID)
	if err != nil {
		return httptransport.ListProductsResponse{}, err
	}
	return httptransport.ListProductsResponse{Items: mapProducts(products)}, nil
}

func (h Handler) ListByManufacturerHandler(ctx context.Context, manufacturerID string) (httptransport.ListProductsResponse, error) {
	products, err := h.ListByManufacturer.Execute(ctx, manufacturerID)
	if err != nil {
		return httptransport.ListProductsResponse{}, err
	}
	return httptransport.ListProductsResponse{Items: mapProducts(products)}, nil
}

func mapProduct(item entities.Product) httptransport.ProductDTO {
	return httptransport.ProductDTO{
		ProductID:    item.ProductID,
		Manufacturer: item.Manufacturer,
		Owner:        item.Owner,
		Metadata:     string(item.Metadata),
		CreatedAt:    item.CreatedAt,
		EventCount:   item.EventCount,
	}
}

func mapProducts(items []entities.Product) []httptransport.ProductDTO {
	result := make([]httptransport.ProductDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapProduct(item))
	}
	return result
}

func mapEvent(item entities.Event) httptransport.EventDTO {
	return httptransport.EventDTO{
		ProductID:  item.ProductID,
		Sequence:   item.Sequence,
		Kind:       string(item.Kind),
		Actor:      item.Actor,
		OccurredAt: item.OccurredAt,
	}
}
