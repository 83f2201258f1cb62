package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"
)

func mustCreateProduct(t *testing.T, store *Store, manufacturer string) entities.Product {
	t.Helper()
	product, event, err := store.CreateProduct(context.Background(), ports.CreateProductInput{
		Manufacturer: manufacturer,
		Metadata:     []byte(`{"batch":"B-1"}`),
		Now:          time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if event.Kind != entities.EventKindCreated || event.Sequence != 1 {
		t.Fatalf("unexpected registration event: %+v", event)
	}
	return product
}

func TestStoreCreateProductAssignsSequentialIDs(t *testing.T) {
	store := NewStore()

	first := mustCreateProduct(t, store, "acct-m")
	second := mustCreateProduct(t, store, "acct-m")

	if first.ProductID != 1 || second.ProductID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ProductID, second.ProductID)
	}
	if first.Owner != "acct-m" {
		t.Fatalf("initial owner must be the manufacturer, got %s", first.Owner)
	}
	if first.EventCount != 1 {
		t.Fatalf("expected event count 1, got %d", first.EventCount)
	}
}

func TestStoreAppendEventKeepsSequencesContiguous(t *testing.T) {
	store := NewStore()
	product := mustCreateProduct(t, store, "acct-m")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	kinds := []entities.EventKind{
		entities.EventKindShipped,
		entities.EventKindReceived,
		entities.EventKindInspected,
		entities.EventKindVerified,
	}
	for i, kind := range kinds {
		result, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
			ProductID: product.ProductID,
			Actor:     "acct-m",
			Kind:      kind,
			Now:       now.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %s failed: %v", kind, err)
		}
		if result.Event.Sequence != uint32(i+2) {
			t.Fatalf("append %s: expected sequence %d, got %d", kind, i+2, result.Event.Sequence)
		}
	}

	events, err := store.ListEvents(context.Background(), product.ProductID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != len(kinds)+1 {
		t.Fatalf("expected %d events, got %d", len(kinds)+1, len(events))
	}
	for i, event := range events {
		if event.Sequence != uint32(i+1) {
			t.Fatalf("sequence gap at index %d: got %d", i, event.Sequence)
		}
	}

	stored, err := store.GetProduct(context.Background(), product.ProductID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if int(stored.EventCount) != len(events) {
		t.Fatalf("event count %d does not match ledger length %d", stored.EventCount, len(events))
	}
}

func TestStoreAppendEventRejectsInvalidTransition(t *testing.T) {
	store := NewStore()
	product := mustCreateProduct(t, store, "acct-m")

	_, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-m",
		Kind:      entities.EventKindDelivered,
		Now:       time.Now().UTC(),
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	stored, err := store.GetProduct(context.Background(), product.ProductID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if stored.EventCount != 1 {
		t.Fatalf("failed append must not change event count, got %d", stored.EventCount)
	}
}

func TestStoreAppendEventUpdatesOwnerOnReceipt(t *testing.T) {
	store := NewStore()
	product := mustCreateProduct(t, store, "acct-m")
	now := time.Now().UTC()

	if _, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-m",
		Kind:      entities.EventKindShipped,
		Now:       now,
	}); err != nil {
		t.Fatalf("shipped failed: %v", err)
	}

	result, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-d",
		Kind:      entities.EventKindReceived,
		Now:       now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("received failed: %v", err)
	}
	if !result.OwnerChanged || result.PreviousOwner != "acct-m" {
		t.Fatalf("expected ownership transfer from acct-m, got %+v", result)
	}
	if result.Product.Owner != "acct-d" {
		t.Fatalf("expected new owner acct-d, got %s", result.Product.Owner)
	}

	owned, err := store.ListProductsByOwner(context.Background(), "acct-d")
	if err != nil {
		t.Fatalf("list by owner failed: %v", err)
	}
	if len(owned) != 1 || owned[0].ProductID != product.ProductID {
		t.Fatalf("owner index not updated: %+v", owned)
	}
}

func TestStoreUnknownProduct(t *testing.T) {
	store := NewStore()

	if _, err := store.GetProduct(context.Background(), 99); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: 99,
		Actor:     "acct-m",
		Kind:      entities.EventKindShipped,
		Now:       time.Now().UTC(),
	}); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreOutboxRowsCarryGeneratedEnvelopeIDs(t *testing.T) {
	store := NewStore()
	product := mustCreateProduct(t, store, "acct-m")
	now := time.Now().UTC()

	if _, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-m",
		Kind:      entities.EventKindShipped,
		Now:       now,
	}); err != nil {
		t.Fatalf("shipped failed: %v", err)
	}
	if _, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-d",
		Kind:      entities.EventKindReceived,
		Now:       now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("received failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 4 {
		t.Fatalf("expected 4 outbox rows, got %d", len(pending))
	}

	seen := make(map[string]bool, len(pending))
	for _, message := range pending {
		if message.OutboxID == "" {
			t.Fatalf("outbox id must come from the id generator, got empty for %s", message.EventType)
		}
		if seen[message.OutboxID] {
			t.Fatalf("duplicate outbox id %s", message.OutboxID)
		}
		seen[message.OutboxID] = true

		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("outbox payload must be an envelope: %v", err)
		}
		if envelope.EventID != message.OutboxID {
			t.Fatalf("envelope id %s does not match outbox id %s", envelope.EventID, message.OutboxID)
		}
	}
}

func TestStoreWritesOutboxRows(t *testing.T) {
	store := NewStore()
	product := mustCreateProduct(t, store, "acct-m")
	now := time.Now().UTC()

	if _, err := store.AppendEvent(context.Background(), ports.AppendEventInput{
		ProductID: product.ProductID,
		Actor:     "acct-m",
		Kind:      entities.EventKindShipped,
		Now:       now,
	}); err != nil {
		t.Fatalf("shipped failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected registration and lifecycle outbox rows, got %d", len(pending))
	}
	if pending[0].EventType != "product.registered" {
		t.Fatalf("expected product.registered first, got %s", pending[0].EventType)
	}

	var envelope ports.EventEnvelope
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("outbox payload must be an envelope: %v", err)
	}
	if envelope.EventType != "product.registered" {
		t.Fatalf("envelope event type mismatch: %s", envelope.EventType)
	}

	if err := store.MarkOutboxPublished(context.Background(), pending[0].OutboxID, now); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	remaining, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 pending row after publish, got %d", len(remaining))
	}
}
