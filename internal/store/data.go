package store

// Store boundary

// StoredValue is a raw value read from the key-value store together with
// its remaining time to live in seconds.
//
// Invariant: ttlRemaining is within [0, totalTTL-for-that-value-class].
// A value with ttlRemaining == 0 is still a valid read result; only the
// store decides when an entry physically disappears.
type StoredValue struct {
	value        string
	ttlRemaining int
}

func NewStoredValue(value string, ttlRemaining int) StoredValue {
	if ttlRemaining < 0 {
		ttlRemaining = 0
	}
	return StoredValue{
		value:        value,
		ttlRemaining: ttlRemaining,
	}
}

func (v StoredValue) Value() string {
	return v.value
}

func (v StoredValue) TTLRemaining() int {
	return v.ttlRemaining
}
