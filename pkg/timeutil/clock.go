package timeutil

import "time"

// Clock abstracts wall-clock reads so that time-window logic
// (freshness expiry, the migration cut-over window) can be tested
// without depending on the real clock.
//
// Properties:
//   - Components never call time.Now directly; they hold a Clock.
//   - Production code uses SystemClock.
//   - Tests inject a fixed or manually-advanced clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}
