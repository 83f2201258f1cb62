package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProductDTO struct {
	ProductID    uint64    `json:"product_id"`
	Manufacturer string    `json:"manufacturer"`
	Owner        string    `json:"owner"`
	Metadata     string    `json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
	EventCount   uint32    `json:"event_count"`
}

type EventDTO struct {
	ProductID  uint64    `json:"product_id"`
	Sequence   uint32    `json:"sequence"`
	Kind       string    `json:"kind"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OwnershipRecordDTO struct {
	Owner      string    `json:"owner"`
	OccurredAt time.Time `json:"occurred_at"`
}

type RegisterProductRequest struct {
	Metadata string `json:"metadata"`
}

type RegisterProductResponse struct {
	Product  ProductDTO `json:"product"`
	Replayed bool       `json:"replayed"`
}

type LogEventRequest struct {
	Kind string `json:"kind"`
}

type LogEventResponse struct {
	Event         EventDTO   `json:"event"`
	Product       ProductDTO `json:"product"`
	OwnerChanged  bool       `json:"owner_changed"`
	PreviousOwner string     `json:"previous_owner,omitempty"`
}

type GetProductResponse struct {
	Product ProductDTO `json:"product"`
}

type EventHistoryResponse struct {
	Items []EventDTO `json:"items"`
}

type OwnershipHistoryResponse struct {
	Items []OwnershipRecordDTO `json:"items"`
}

type CurrentOwnerResponse struct {
	ProductID uint64 `json:"product_id"`
	Owner     string `json:"owner"`
}

type VerifyProductResponse struct {
	ProductID uint64 `json:"product_id"`
	Status    string `json:"status"`
}

type ListProductsResponse struct {
	Items []ProductDTO `json:"items"`
}
