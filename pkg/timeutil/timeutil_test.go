package timeutil

import (
	"math/rand"
	"testing"
	"time"
)

func TestMaxDuration(t *testing.T) {
	tests := []struct {
		name      string
		durations []time.Duration
		want      time.Duration
	}{
		{
			name:      "multiple values returns maximum",
			durations: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 200 * time.Millisecond},
			want:      500 * time.Millisecond,
		},
		{
			name:      "single value returns that value",
			durations: []time.Duration{300 * time.Millisecond},
			want:      300 * time.Millisecond,
		},
		{
			name:      "empty slice returns zero",
			durations: []time.Duration{},
			want:      0,
		},
		{
			name:      "all same values returns that value",
			durations: []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond},
			want:      100 * time.Millisecond,
		},
		{
			name:      "negative durations handled correctly",
			durations: []time.Duration{-100 * time.Millisecond, 50 * time.Millisecond, -200 * time.Millisecond},
			want:      50 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDuration(tt.durations)
			if got != tt.want {
				t.Errorf("MaxDuration(%v) = %v, want %v", tt.durations, got, tt.want)
			}
		})
	}
}

func TestMaxDurationDoesNotMutateInput(t *testing.T) {
	original := []time.Duration{300 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
	expected := []time.Duration{300 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

	_ = MaxDuration(original)

	for i := range original {
		if original[i] != expected[i] {
			t.Errorf("MaxDuration mutated input slice: got %v at index %d, want %v", original[i], i, expected[i])
		}
	}
}

func TestDurationPtr(t *testing.T) {
	d := 5 * time.Second
	ptr := DurationPtr(d)

	if ptr == nil {
		t.Fatal("DurationPtr returned nil")
	}

	if *ptr != d {
		t.Errorf("DurationPtr() = %v, want %v", *ptr, d)
	}
}

func TestExponentialBackoffDelay(t *testing.T) {
	tests := []struct {
		name         string
		attempt      int
		jitter       time.Duration
		backoffParam BackoffParam
		wantMin      time.Duration
		wantMax      time.Duration
	}{
		{
			name:         "first attempt with no jitter",
			attempt:      1,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			wantMin:      1 * time.Second,
			wantMax:      1 * time.Second,
		},
		{
			name:         "second attempt doubles",
			attempt:      2,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			wantMin:      2 * time.Second,
			wantMax:      2 * time.Second,
		},
		{
			name:         "third attempt quadruples",
			attempt:      3,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			wantMin:      4 * time.Second,
			wantMax:      4 * time.Second,
		},
		{
			name:         "delay hits max cap",
			attempt:      10,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 10*time.Second),
			wantMin:      10 * time.Second,
			wantMax:      10 * time.Second,
		},
		{
			name:         "jitter adds positive variance",
			attempt:      2,
			jitter:       100 * time.Millisecond,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			wantMin:      2 * time.Second,
			wantMax:      2*time.Second + 100*time.Millisecond,
		},
		{
			name:         "zero initial duration",
			attempt:      5,
			jitter:       0,
			backoffParam: NewBackoffParam(0, 2.0, 30*time.Second),
			wantMin:      0,
			wantMax:      0,
		},
		{
			name:         "multiplier of 1 means no growth",
			attempt:      5,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 1.0, 30*time.Second),
			wantMin:      1 * time.Second,
			wantMax:      1 * time.Second,
		},
		{
			name:         "fractional multiplier",
			attempt:      2,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 1.5, 30*time.Second),
			wantMin:      time.Duration(float64(1*time.Second) * 1.5),
			wantMax:      time.Duration(float64(1*time.Second) * 1.5),
		},
		{
			name:         "attempt below 1 clamped to first attempt",
			attempt:      0,
			jitter:       0,
			backoffParam: NewBackoffParam(1*time.Second, 2.0, 30*time.Second),
			wantMin:      1 * time.Second,
			wantMax:      1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			got := ExponentialBackoffDelay(tt.attempt, tt.jitter, rng, tt.backoffParam)

			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("ExponentialBackoffDelay() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestExponentialBackoffDelay_NilRngSkipsJitter(t *testing.T) {
	param := NewBackoffParam(1*time.Second, 2.0, 30*time.Second)

	got := ExponentialBackoffDelay(2, 100*time.Millisecond, nil, param)

	if got != 2*time.Second {
		t.Errorf("ExponentialBackoffDelay with nil rng = %v, want exactly 2s", got)
	}
}

func TestExponentialBackoffDelay_JitterIsDeterministic(t *testing.T) {
	param := NewBackoffParam(1*time.Second, 2.0, 30*time.Second)
	jitter := 250 * time.Millisecond

	d1 := ExponentialBackoffDelay(3, jitter, rand.New(rand.NewSource(7)), param)
	d2 := ExponentialBackoffDelay(3, jitter, rand.New(rand.NewSource(7)), param)

	if d1 != d2 {
		t.Errorf("same seed produced different delays: %v and %v", d1, d2)
	}

	base := 4 * time.Second
	if d1 < base || d1 > base+jitter {
		t.Errorf("delay %v outside [%v, %v]", d1, base, base+jitter)
	}
}

func TestSystemClock(t *testing.T) {
	clock := NewSystemClock()

	before := time.Now()
	got := clock.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("SystemClock.Now() = %v, want between %v and %v", got, before, after)
	}
}
