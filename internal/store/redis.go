package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
	"github.com/Global19-atlassian-net/wayback/pkg/retry"
)

/*
RedisStore

Responsibilities:
- Map the ValueStore port onto a Redis connection
- Read value and remaining TTL in a single round trip (pipelined GET+TTL)
- Write values with expiry, or refresh expiry alone for TTL-only touches
- Keep the background-refresh queue capped via LPUSH+LTRIM
- Transparently gzip payloads when asked, sniffing the magic header on read

Retry characteristics live here, not in the cache core: the core performs
no retries of its own, and a store operation that still fails after the
configured attempts surfaces as a single classified error.
*/
type RedisStore struct {
	client     *redis.Client
	retryParam retry.RetryParam
}

func NewRedisStore(addr string, db int, retryParam retry.RetryParam) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStore{
		client:     client,
		retryParam: retryParam,
	}
}

// NewRedisStoreWithClient creates a RedisStore around an existing client.
// This is useful for testing.
func NewRedisStoreWithClient(client *redis.Client, retryParam retry.RetryParam) *RedisStore {
	return &RedisStore{
		client:     client,
		retryParam: retryParam,
	}
}

type redisReadResult struct {
	value string
	ttl   time.Duration
	found bool
}

func (s *RedisStore) GetValue(ctx context.Context, key string) (StoredValue, bool, failure.ClassifiedError) {
	readTask := func() (redisReadResult, failure.ClassifiedError) {
		pipe := s.client.Pipeline()
		getCmd := pipe.Get(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)
		_, err := pipe.Exec(ctx)

		if err != nil && !errors.Is(err, redis.Nil) {
			return redisReadResult{}, &StoreError{
				Message:   fmt.Sprintf("failed to read %q: %v", key, err),
				Retryable: true,
				Cause:     ErrCauseUnavailable,
			}
		}
		if errors.Is(getCmd.Err(), redis.Nil) {
			return redisReadResult{found: false}, nil
		}
		return redisReadResult{
			value: getCmd.Val(),
			ttl:   ttlCmd.Val(),
			found: true,
		}, nil
	}

	result, err := retry.Retry(s.retryParam, readTask)
	if err != nil {
		return StoredValue{}, false, &StoreError{
			Message:   fmt.Sprintf("failed to read %q: %v", key, err),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}
	if !result.found {
		return StoredValue{}, false, nil
	}

	plain, decErr := maybeDecompress(result.value)
	if decErr != nil {
		return StoredValue{}, false, &StoreError{
			Message:   fmt.Sprintf("failed to decompress %q: %v", key, decErr),
			Retryable: false,
			Cause:     ErrCauseCorruptPayload,
		}
	}

	// TTL returns a negative duration for keys without expiry; clamp to
	// zero so the freshness policy treats them as maximally aged.
	ttlSeconds := int(result.ttl / time.Second)
	if ttlSeconds < 0 {
		ttlSeconds = 0
	}

	return NewStoredValue(plain, ttlSeconds), true, nil
}

func (s *RedisStore) UpdateValue(ctx context.Context, key string, value *string, ttlSeconds int, compress bool) failure.ClassifiedError {
	expiry := time.Duration(ttlSeconds) * time.Second

	// TTL-only touch: reset the freshness clock without rewriting content.
	if value == nil {
		if err := s.client.Expire(ctx, key, expiry).Err(); err != nil {
			return &StoreError{
				Message:   fmt.Sprintf("failed to touch %q: %v", key, err),
				Retryable: true,
				Cause:     ErrCauseWriteFailure,
			}
		}
		return nil
	}

	payload := *value
	if compress {
		compressed, err := compressPayload(payload)
		if err != nil {
			return &StoreError{
				Message:   fmt.Sprintf("failed to compress %q: %v", key, err),
				Retryable: false,
				Cause:     ErrCauseWriteFailure,
			}
		}
		payload = compressed
	}

	if err := s.client.Set(ctx, key, payload, expiry).Err(); err != nil {
		return &StoreError{
			Message:   fmt.Sprintf("failed to write %q: %v", key, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return nil
}

func (s *RedisStore) PushKey(ctx context.Context, queueKey string, member string, maxSize int) failure.ClassifiedError {
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, queueKey, member)
	pipe.LTrim(ctx, queueKey, 0, int64(maxSize)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return &StoreError{
			Message:   fmt.Sprintf("failed to push onto %q: %v", queueKey, err),
			Retryable: true,
			Cause:     ErrCausePushFailure,
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
