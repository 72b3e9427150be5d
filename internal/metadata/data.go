package metadata

import (
	"time"
)

type StoreReadEvent struct {
	key      string
	hit      bool
	duration time.Duration
}

type LiveFetchEvent struct {
	fetchUrl   string
	httpStatus int
	duration   time.Duration
	sizeBytes  int
}

type CacheWriteEvent struct {
	key        string
	ttlSeconds int
	ttlOnly    bool
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Component packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply retryability.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability
    during a live robots.txt fetch.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Connection resets

# CauseStoreFailure

Meaning:
  - The key-value store could not be reached or a store operation failed.

Examples:
  - Connection refused by the store
  - Write-back failure after a successful live fetch
  - Enqueue failure on the refresh queue

# CauseContentInvalid

Meaning:
  - A stored or fetched value could not be decoded meaningfully.

Examples:
  - Error token with an unparsable status suffix
  - Corrupt compressed payload

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.

Examples:
  - Negative remaining TTL reported by the store
  - Internal consistency checks failing
*/
const (
	CauseUnknown = iota
	CauseNetworkFailure
	CauseStoreFailure
	CauseContentInvalid
	CauseInvariantViolation
)

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrStatus      AttributeKey = "status"
	AttrContentHash AttributeKey = "content_hash"
	AttrQueueKey    AttributeKey = "queue_key"
	AttrMessage     AttributeKey = "message"
)
