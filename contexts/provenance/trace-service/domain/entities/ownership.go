package entities

import "time"

type OwnershipRecord struct {
	Owner      string
	OccurredAt time.Time
}

// DeriveOwnershipHistory replays the event history into the ordered owner
// list: the manufacturer at creation time, then one entry per Received event
// in sequence order. The cached Product.Owner field must always equal the
// last element of this list.
func DeriveOwnershipHistory(product Product, events []Event) []OwnershipRecord {
	history := []OwnershipRecord{{
		Owner:      product.Manufacturer,
		OccurredAt: product.CreatedAt,
	}}
	for _, event := range events {
		if event.Kind != EventKindReceived {
			continue
		}
		history = append(history, OwnershipRecord{
			Owner:      event.Actor,
			OccurredAt: event.OccurredAt,
		})
	}
	return history
}

// CurrentOwner is the pure-replay definition of ownership used to cross-check
// the cached owner column in tests.
func CurrentOwner(product Product, events []Event) string {
	history := DeriveOwnershipHistory(product, events)
	return history[len(history)-1].Owner
}
