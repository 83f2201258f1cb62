package entities

import (
	"math"
	"strings"
	"time"
)

type EventKind string

const (
	EventKindCreated   EventKind = "created"
	EventKindShipped   EventKind = "shipped"
	EventKindInTransit EventKind = "in_transit"
	EventKindReceived  EventKind = "received"
	EventKindInspected EventKind = "inspected"
	EventKindVerified  EventKind = "verified"
	EventKindDelivered EventKind = "delivered"
)

type Event struct {
	ProductID  uint64
	Sequence   uint32
	Kind       EventKind
	Actor      string
	OccurredAt time.Time
}

func ParseEventKind(value string) (EventKind, bool) {
	kind := EventKind(strings.ToLower(strings.TrimSpace(value)))
	switch kind {
	case EventKindCreated, EventKindShipped, EventKindInTransit, EventKindReceived,
		EventKindInspected, EventKindVerified, EventKindDelivered:
		return kind, true
	default:
		return "", false
	}
}

// NextSequence yields the sequence number after last. Sequences per product
// start at 1 and form a contiguous series; ok is false on wrap.
func NextSequence(last uint32) (uint32, bool) {
	if last >= math.MaxUint32 {
		return 0, false
	}
	return last + 1, true
}
