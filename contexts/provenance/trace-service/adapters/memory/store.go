package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type outboxRow struct {
	ports.OutboxMessage
	Status      string
	PublishedAt time.Time
}

// Store is the in-memory substrate double. A single mutex stands in for the
// host transaction model: every mutating method computes its full effect
// before touching state, so a failed call leaves nothing behind.
type Store struct {
	mu            sync.RWMutex
	products      map[uint64]entities.Product
	events        map[uint64][]entities.Event
	idempotency   map[string]ports.IdempotencyRecord
	outbox        []outboxRow
	lastProductID uint64
}

func NewStore() *Store {
	return &Store{
		products:    make(map[uint64]entities.Product),
		events:      make(map[uint64][]entities.Event),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) CreateProduct(ctx context.Context, input ports.CreateProductInput) (entities.Product, entities.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	productID, ok := entities.NextProductID(s.lastProductID)
	if !ok {
		return entities.Product{}, entities.Event{}, domainerrors.ErrCounterOverflow
	}
	if _, exists := s.products[productID]; exists {
		return entities.Product{}, entities.Event{}, domainerrors.ErrProductExists
	}

	now := input.Now.UTC()
	product := entities.Product{
		ProductID:    productID,
		Manufacturer: input.Manufacturer,
		Owner:        input.Manufacturer,
		Metadata:     append([]byte(nil), input.Metadata...),
		CreatedAt:    now,
		EventCount:   1,
	}
	created := entities.Event{
		ProductID:  productID,
		Sequence:   1,
		Kind:       entities.EventKindCreated,
		Actor:      input.Manufacturer,
		OccurredAt: now,
	}

	eventID, err := s.NewID(ctx)
	if err != nil {
		return entities.Product{}, entities.Event{}, err
	}
	registered, err := newTraceEnvelope(eventID, "product.registered", productID, now, map[string]any{
		"product_id":   productID,
		"manufacturer": product.Manufacturer,
	})
	if err != nil {
		return entities.Product{}, entities.Event{}, err
	}
	registeredRow, err := newOutboxRow(registered)
	if err != nil {
		return entities.Product{}, entities.Event{}, err
	}

	s.lastProductID = productID
	s.products[productID] = product
	s.events[productID] = []entities.Event{created}
	s.outbox = append(s.outbox, registeredRow)
	return product.Clone(), created, nil
}

func (s *Store) AppendEvent(ctx context.Context, input ports.AppendEventInput) (ports.AppendEventResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[input.ProductID]
	if !exists {
		return ports.AppendEventResult{}, domainerrors.ErrProductNotFound
	}
	history := s.events[input.ProductID]
	current := history[len(history)-1].Kind
	if !entities.CanFollow(current, input.Kind) {
		return ports.AppendEventResult{}, domainerrors.ErrInvalidTransition
	}
	if !entities.WithinRepeatLimit(input.Kind, countKind(history, input.Kind), input.RepeatLimit) {
		return ports.AppendEventResult{}, domainerrors.ErrInvalidTransition
	}
	sequence, ok := entities.NextSequence(history[len(history)-1].Sequence)
	if !ok {
		return ports.AppendEventResult{}, domainerrors.ErrCounterOverflow
	}

	now := input.Now.UTC()
	event := entities.Event{
		ProductID:  input.ProductID,
		Sequence:   sequence,
		Kind:       input.Kind,
		Actor:      input.Actor,
		OccurredAt: now,
	}
	previousOwner := product.Owner
	ownerChanged := input.Kind == entities.EventKindReceived && input.Actor != product.Owner

	loggedID, err := s.NewID(ctx)
	if err != nil {
		return ports.AppendEventResult{}, err
	}
	logged, err := newTraceEnvelope(loggedID, "product.lifecycle_event_logged", input.ProductID, now, map[string]any{
		"product_id": input.ProductID,
		"kind":       string(input.Kind),
		"sequence":   sequence,
		"actor":      input.Actor,
	})
	if err != nil {
		return ports.AppendEventResult{}, err
	}
	rows := make([]outboxRow, 0, 2)
	loggedRow, err := newOutboxRow(logged)
	if err != nil {
		return ports.AppendEventResult{}, err
	}
	rows = append(rows, loggedRow)
	if input.Kind == entities.EventKindReceived {
		transferredID, err := s.NewID(ctx)
		if err != nil {
			return ports.AppendEventResult{}, err
		}
		transferred, err := newTraceEnvelope(transferredID, "product.ownership_transferred", input.ProductID, now, map[string]any{
			"product_id": input.ProductID,
			"from_owner": previousOwner,
			"to_owner":   input.Actor,
		})
		if err != nil {
			return ports.AppendEventResult{}, err
		}
		transferredRow, err := newOutboxRow(transferred)
		if err != nil {
			return ports.AppendEventResult{}, err
		}
		rows = append(rows, transferredRow)
	}

	product.EventCount = sequence
	if input.Kind == entities.EventKindReceived {
		product.Owner = input.Actor
	}
	s.products[input.ProductID] = product
	s.events[input.ProductID] = append(history, event)
	s.outbox = append(s.outbox, rows...)

	return ports.AppendEventResult{
		Event:         event,
		Product:       product.Clone(),
		OwnerChanged:  ownerChanged,
		PreviousOwner: previousOwner,
	}, nil
}

func (s *Store) GetProduct(ctx context.Context, productID uint64) (entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[productID]
	if !exists {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return product.Clone(), nil
}

func (s *Store) ListEvents(ctx context.Context, productID uint64) ([]entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.events[productID]
	if !exists {
		return nil, domainerrors.ErrProductNotFound
	}
	return append([]entities.Event(nil), history...), nil
}

func (s *Store) ListProductsByOwner(ctx context.Context, ownerID string) ([]entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterProductsLocked(func(p entities.Product) bool {
		return p.Owner == ownerID
	}), nil
}

func (s *Store) ListProductsByManufacturer(ctx context.Context, manufacturerID string) ([]entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterProductsLocked(func(p entities.Product) bool {
		return p.Manufacturer == manufacturerID
	}), nil
}

func (s *Store) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, found := s.idempotency[key]
	if !found {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	record.ResponsePayload = append([]byte(nil), record.ResponsePayload...)
	return record, true, nil
}

func (s *Store) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ResponsePayload = append([]byte(nil), record.ResponsePayload...)
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, row := range s.outbox {
		if row.Status != outboxStatusPending {
			continue
		}
		message := row.OutboxMessage
		message.Payload = append([]byte(nil), message.Payload...)
		items = append(items, message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].Status = outboxStatusPublished
			s.outbox[i].PublishedAt = publishedAt.UTC()
			return nil
		}
	}
	// Marking an unknown row is a no-op; the relay may retry after a publish.
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) filterProductsLocked(match func(entities.Product) bool) []entities.Product {
	items := make([]entities.Product, 0)
	for _, product := range s.products {
		if match(product) {
			items = append(items, product.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})
	return items
}

func newOutboxRow(envelope ports.EventEnvelope) (outboxRow, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return outboxRow{}, err
	}
	return outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
		Status: outboxStatusPending,
	}, nil
}

func countKind(history []entities.Event, kind entities.EventKind) int {
	count := 0
	for _, event := range history {
		if event.Kind == kind {
			count++
		}
	}
	return count
}

func newTraceEnvelope(
	eventID string,
	eventType string,
	productID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "trace-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "product_id",
		PartitionKey:     strconv.FormatUint(productID, 10),
		Data:             payload,
	}, nil
}
