package ports

import (
	"context"
	"time"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	contractsv1 "tracechain/contracts/gen/events/v1"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Authorizer is the gate every mutating operation passes before it touches
// product or event state. The authorization module satisfies it.
type Authorizer interface {
	IsAuthorized(ctx context.Context, accountID string) (bool, error)
}

type EventEnvelope = contractsv1.Envelope

type CreateProductInput struct {
	Manufacturer string
	Metadata     []byte
	Now          time.Time
}

type AppendEventInput struct {
	ProductID uint64
	Actor     string
	Kind      entities.EventKind
	Now       time.Time
	// RepeatLimit caps repeatable kinds (Inspected/Verified); 0 is unlimited.
	RepeatLimit int
}

type AppendEventResult struct {
	Event         entities.Event
	Product       entities.Product
	OwnerChanged  bool
	PreviousOwner string
}

// Repository is the persistence substrate for products and their event
// ledger. Every mutating method must apply its full effect atomically or
// leave state untouched; callers rely on that contract for the no-partial-
// state guarantee.
type Repository interface {
	// CreateProduct allocates the next product identifier, stores the product
	// with owner = manufacturer, appends the Created event with sequence 1 and
	// writes the registration outbox row, all in one commit.
	CreateProduct(ctx context.Context, input CreateProductInput) (entities.Product, entities.Event, error)
	// AppendEvent validates the lifecycle transition against the most recent
	// event, assigns the next sequence number, increments the product event
	// count and, for Received, updates the cached owner, all in one commit.
	AppendEvent(ctx context.Context, input AppendEventInput) (AppendEventResult, error)
	GetProduct(ctx context.Context, productID uint64) (entities.Product, error)
	ListEvents(ctx context.Context, productID uint64) ([]entities.Event, error)
	ListProductsByOwner(ctx context.Context, ownerID string) ([]entities.Product, error)
	ListProductsByManufacturer(ctx context.Context, manufacturerID string) ([]entities.Product, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
