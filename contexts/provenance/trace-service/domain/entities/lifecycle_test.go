package entities

import (
	"math"
	"testing"
	"time"
)

func TestCanFollowTable(t *testing.T) {
	cases := []struct {
		name    string
		current EventKind
		next    EventKind
		want    bool
	}{
		{"created to shipped", EventKindCreated, EventKindShipped, true},
		{"created to inspected", EventKindCreated, EventKindInspected, true},
		{"created to verified", EventKindCreated, EventKindVerified, true},
		{"created to received", EventKindCreated, EventKindReceived, false},
		{"created to delivered", EventKindCreated, EventKindDelivered, false},
		{"shipped to in_transit", EventKindShipped, EventKindInTransit, true},
		{"shipped to received", EventKindShipped, EventKindReceived, true},
		{"shipped to delivered", EventKindShipped, EventKindDelivered, false},
		{"in_transit to received", EventKindInTransit, EventKindReceived, true},
		{"in_transit to shipped", EventKindInTransit, EventKindShipped, false},
		{"received to shipped", EventKindReceived, EventKindShipped, true},
		{"received to delivered", EventKindReceived, EventKindDelivered, true},
		{"inspected to inspected", EventKindInspected, EventKindInspected, true},
		{"inspected to delivered", EventKindInspected, EventKindDelivered, true},
		{"verified to verified", EventKindVerified, EventKindVerified, true},
		{"verified to inspected", EventKindVerified, EventKindInspected, false},
		{"delivered is terminal", EventKindDelivered, EventKindShipped, false},
		{"delivered to delivered", EventKindDelivered, EventKindDelivered, false},
		{"created never recurs", EventKindShipped, EventKindCreated, false},
	}

	for _, tc := range cases {
		if got := CanFollow(tc.current, tc.next); got != tc.want {
			t.Fatalf("%s: CanFollow(%s, %s) = %v, want %v", tc.name, tc.current, tc.next, got, tc.want)
		}
	}
}

func TestIsTerminalAndRepeatable(t *testing.T) {
	if !IsTerminal(EventKindDelivered) {
		t.Fatalf("delivered must be terminal")
	}
	if IsTerminal(EventKindReceived) {
		t.Fatalf("received must not be terminal")
	}
	if !IsRepeatable(EventKindInspected) || !IsRepeatable(EventKindVerified) {
		t.Fatalf("inspected and verified must be repeatable")
	}
	if IsRepeatable(EventKindShipped) {
		t.Fatalf("shipped must not be repeatable")
	}
}

func TestWithinRepeatLimit(t *testing.T) {
	if !WithinRepeatLimit(EventKindInspected, 100, 0) {
		t.Fatalf("limit 0 must be unlimited")
	}
	if !WithinRepeatLimit(EventKindInspected, 2, 3) {
		t.Fatalf("occurrences below limit must pass")
	}
	if WithinRepeatLimit(EventKindVerified, 3, 3) {
		t.Fatalf("occurrences at limit must fail")
	}
}

func TestParseEventKind(t *testing.T) {
	kind, ok := ParseEventKind("  Shipped ")
	if !ok || kind != EventKindShipped {
		t.Fatalf("expected shipped, got %q ok=%v", kind, ok)
	}
	if _, ok := ParseEventKind("teleported"); ok {
		t.Fatalf("unknown kind must not parse")
	}
}

func TestNextSequenceOverflow(t *testing.T) {
	next, ok := NextSequence(1)
	if !ok || next != 2 {
		t.Fatalf("expected 2, got %d ok=%v", next, ok)
	}
	if _, ok := NextSequence(math.MaxUint32); ok {
		t.Fatalf("sequence must not wrap")
	}
}

func TestNextProductIDOverflow(t *testing.T) {
	next, ok := NextProductID(0)
	if !ok || next != 1 {
		t.Fatalf("expected first id 1, got %d ok=%v", next, ok)
	}
	if _, ok := NextProductID(math.MaxUint64); ok {
		t.Fatalf("product counter must not wrap")
	}
}

func TestDeriveOwnershipHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	product := Product{
		ProductID:    7,
		Manufacturer: "acct-m",
		Owner:        "acct-d",
		CreatedAt:    base,
	}
	events := []Event{
		{ProductID: 7, Sequence: 1, Kind: EventKindCreated, Actor: "acct-m", OccurredAt: base},
		{ProductID: 7, Sequence: 2, Kind: EventKindShipped, Actor: "acct-m", OccurredAt: base.Add(time.Hour)},
		{ProductID: 7, Sequence: 3, Kind: EventKindReceived, Actor: "acct-d", OccurredAt: base.Add(2 * time.Hour)},
	}

	history := DeriveOwnershipHistory(product, events)
	if len(history) != 2 {
		t.Fatalf("expected 2 ownership records, got %d", len(history))
	}
	if history[0].Owner != "acct-m" {
		t.Fatalf("first owner must be the manufacturer, got %s", history[0].Owner)
	}
	if history[1].Owner != "acct-d" {
		t.Fatalf("second owner must be the receiver, got %s", history[1].Owner)
	}

	if owner := CurrentOwner(product, events); owner != "acct-d" {
		t.Fatalf("replayed owner %s does not match receiver", owner)
	}
	if owner := CurrentOwner(product, events[:2]); owner != "acct-m" {
		t.Fatalf("owner before any receipt must be the manufacturer, got %s", owner)
	}
}
