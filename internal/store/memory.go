package store

import (
	"context"
	"sync"
	"time"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
	"github.com/Global19-atlassian-net/wayback/pkg/timeutil"
)

// MemoryStore is an in-memory implementation of the ValueStore port.
// It uses maps for storage and provides thread-safe operations via RWMutex.
//
// Remaining TTL is computed against an injected clock, which lets tests
// age entries deterministically by advancing a fake clock. Entries whose
// TTL has reached zero are still returned, matching the port contract.
type MemoryStore struct {
	mu     sync.RWMutex
	clock  timeutil.Clock
	data   map[string]memoryEntry
	queues map[string][]string
}

type memoryEntry struct {
	value      string
	ttlSeconds int
	writtenAt  time.Time
}

// NewMemoryStore creates a new in-memory store instance.
func NewMemoryStore(clock timeutil.Clock) *MemoryStore {
	return &MemoryStore{
		clock:  clock,
		data:   make(map[string]memoryEntry),
		queues: make(map[string][]string),
	}
}

func (s *MemoryStore) GetValue(_ context.Context, key string) (StoredValue, bool, failure.ClassifiedError) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.data[key]
	if !exists {
		return StoredValue{}, false, nil
	}

	plain, err := maybeDecompress(entry.value)
	if err != nil {
		return StoredValue{}, false, &StoreError{
			Message:   "failed to decompress " + key,
			Retryable: false,
			Cause:     ErrCauseCorruptPayload,
		}
	}

	elapsed := int(s.clock.Now().Sub(entry.writtenAt) / time.Second)
	remaining := entry.ttlSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return NewStoredValue(plain, remaining), true, nil
}

func (s *MemoryStore) UpdateValue(_ context.Context, key string, value *string, ttlSeconds int, compress bool) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	// TTL-only touch: keep content, restart the freshness clock.
	// Touching an absent key is a no-op, as with a real store.
	if value == nil {
		entry, exists := s.data[key]
		if !exists {
			return nil
		}
		entry.ttlSeconds = ttlSeconds
		entry.writtenAt = s.clock.Now()
		s.data[key] = entry
		return nil
	}

	payload := *value
	if compress {
		compressed, err := compressPayload(payload)
		if err != nil {
			return &StoreError{
				Message:   "failed to compress " + key,
				Retryable: false,
				Cause:     ErrCauseWriteFailure,
			}
		}
		payload = compressed
	}

	s.data[key] = memoryEntry{
		value:      payload,
		ttlSeconds: ttlSeconds,
		writtenAt:  s.clock.Now(),
	}
	return nil
}

func (s *MemoryStore) PushKey(_ context.Context, queueKey string, member string, maxSize int) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := append([]string{member}, s.queues[queueKey]...)
	if len(queue) > maxSize {
		queue = queue[:maxSize]
	}
	s.queues[queueKey] = queue
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Size returns the number of entries in the store.
// This method is primarily useful for testing and diagnostics.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// QueueMembers returns a copy of the queue at queueKey, newest first.
// This method is primarily useful for testing.
func (s *MemoryStore) QueueMembers(queueKey string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queue := s.queues[queueKey]
	members := make([]string, len(queue))
	copy(members, queue)
	return members
}

// RawValue returns the payload exactly as stored (possibly compressed).
// This method is primarily useful for testing.
func (s *MemoryStore) RawValue(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.data[key]
	return entry.value, exists
}
