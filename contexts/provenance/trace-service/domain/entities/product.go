package entities

import (
	"math"
	"time"
)

type Product struct {
	ProductID    uint64
	Manufacturer string
	Owner        string
	Metadata     []byte
	CreatedAt    time.Time
	EventCount   uint32
}

// Clone copies the metadata slice so read paths cannot mutate stored state.
func (p Product) Clone() Product {
	copied := p
	copied.Metadata = append([]byte(nil), p.Metadata...)
	return copied
}

// NextProductID yields the identifier after last. Identifiers start at 1 and
// are never reused; ok is false when the counter would wrap.
func NextProductID(last uint64) (uint64, bool) {
	if last >= math.MaxUint64 {
		return 0, false
	}
	return last + 1, true
}

func ValidMetadata(metadata []byte, maxBytes int) bool {
	if len(metadata) == 0 {
		return false
	}
	if maxBytes > 0 && len(metadata) > maxBytes {
		return false
	}
	return true
}
