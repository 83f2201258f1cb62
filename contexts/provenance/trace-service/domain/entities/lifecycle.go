package entities

// lifecycleTransitions is the single source of truth for the lifecycle state
// machine. The current state of a product is the kind of its most recent
// event; a logged kind must appear in the allowed set for that state.
var lifecycleTransitions = map[EventKind][]EventKind{
	EventKindCreated:   {EventKindShipped, EventKindInspected, EventKindVerified},
	EventKindShipped:   {EventKindInTransit, EventKindReceived},
	EventKindInTransit: {EventKindReceived},
	EventKindReceived:  {EventKindShipped, EventKindInspected, EventKindVerified, EventKindDelivered},
	EventKindInspected: {EventKindShipped, EventKindVerified, EventKindDelivered, EventKindInspected},
	EventKindVerified:  {EventKindShipped, EventKindDelivered, EventKindVerified},
	EventKindDelivered: {},
}

// CanFollow reports whether next may be logged while current is the most
// recent event kind. Created is only ever set by registration.
func CanFollow(current EventKind, next EventKind) bool {
	if next == EventKindCreated {
		return false
	}
	for _, allowed := range lifecycleTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func AllowedNext(current EventKind) []EventKind {
	return append([]EventKind(nil), lifecycleTransitions[current]...)
}

// IsTerminal reports whether no further events may follow the kind.
func IsTerminal(kind EventKind) bool {
	return len(lifecycleTransitions[kind]) == 0
}

// IsRepeatable reports whether the kind may recur (the transition table has a
// self loop for it).
func IsRepeatable(kind EventKind) bool {
	return CanFollow(kind, kind)
}

// WithinRepeatLimit applies the recurrence policy for repeatable kinds.
// limit <= 0 means unlimited; occurrences counts events of the same kind
// already logged for the product.
func WithinRepeatLimit(kind EventKind, occurrences int, limit int) bool {
	if !IsRepeatable(kind) || limit <= 0 {
		return true
	}
	return occurrences < limit
}
