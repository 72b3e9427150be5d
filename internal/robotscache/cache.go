package robotscache

import (
	"context"
	"net/url"
	"time"

	"github.com/Global19-atlassian-net/wayback/internal/config"
	"github.com/Global19-atlassian-net/wayback/internal/liveweb"
	"github.com/Global19-atlassian-net/wayback/internal/metadata"
	"github.com/Global19-atlassian-net/wayback/internal/store"
	"github.com/Global19-atlassian-net/wayback/pkg/failure"
	"github.com/Global19-atlassian-net/wayback/pkg/timeutil"
)

/*
Cache is the freshness and consistency layer in front of the slow,
unreliable live fetch of robots.txt resources.

Responsibilities:
- Read cached values from the key-value store and apply the freshness
  policy
- Fall back to the live-fetch adapter on a miss and write the classified
  outcome back
- Queue background refreshes for expired-but-present entries without ever
  blocking the caller on them
- Suppress overwrites that would let a transient error clobber a
  known-good cached ruleset

Consistency model:
- All shared state lives in the external store; the cache holds only
  immutable configuration. Lookups and forced refreshes may run fully in
  parallel, including for the same URL; concurrent refreshes race with
  last-writer-wins semantics, which is acceptable because every write is
  internally consistent.
- Store unavailability on read degrades to a miss. Store failures on
  write-back are recorded and swallowed: a failed write-back must never
  turn a successful fetch into a caller-visible failure.
- No operation here is retried; each call returns one result or signals
  one failure.
*/
type Cache struct {
	store        store.ValueStore
	liveweb      liveweb.LiveWebReader
	policy       FreshnessPolicy
	metadataSink metadata.MetadataSink
	clock        timeutil.Clock

	gzipStorage      bool
	totalTTL         int
	notAvailTotalTTL int
	queueKey         string
	queueMaxSize     int
}

func NewCache(
	cfg config.Config,
	valueStore store.ValueStore,
	reader liveweb.LiveWebReader,
	metadataSink metadata.MetadataSink,
) Cache {
	return NewCacheWithClock(cfg, valueStore, reader, metadataSink, timeutil.NewSystemClock())
}

// NewCacheWithClock creates a Cache with an injected clock.
// This is useful for testing the freshness and migration windows.
func NewCacheWithClock(
	cfg config.Config,
	valueStore store.ValueStore,
	reader liveweb.LiveWebReader,
	metadataSink metadata.MetadataSink,
	clock timeutil.Clock,
) Cache {
	return Cache{
		store:            valueStore,
		liveweb:          reader,
		policy:           NewFreshnessPolicy(cfg, clock),
		metadataSink:     metadataSink,
		clock:            clock,
		gzipStorage:      cfg.GzipStorage(),
		totalTTL:         cfg.TotalTTL(),
		notAvailTotalTTL: cfg.NotAvailTotalTTL(),
		queueKey:         cfg.QueueKey(),
		queueMaxSize:     cfg.QueueMaxSize(),
	}
}

// Policy exposes the cache's freshness policy.
func (c *Cache) Policy() *FreshnessPolicy {
	return &c.policy
}

// Lookup returns the robots.txt rules for target.
//
// A cached hit is served as-is, even when stale: expiry only queues a
// background refresh, it never triggers a synchronous re-fetch. A miss
// falls through to the live fetch, whose classified outcome is cached
// (failures included) before being returned or signaled.
//
// The returned error is a *NotAvailableError carrying the normalized
// status when no usable rules exist. Store unavailability is degraded to
// a miss and never surfaced.
func (c *Cache) Lookup(ctx context.Context, target url.URL, maxCacheAge time.Duration, allowStale bool) (string, failure.ClassifiedError) {
	key := target.String()

	readStart := time.Now()
	value, found, storeErr := c.store.GetValue(ctx, key)
	c.metadataSink.RecordStoreRead(key, found, time.Since(readStart))

	if storeErr != nil {
		// An unreachable store is a cache miss, not a lookup failure.
		c.recordStoreError("Cache.Lookup", key, storeErr)
		found = false
	}

	// Migration compatibility: an untrusted legacy error token is
	// re-fetched as if it were absent.
	if found && c.policy.TreatAsMiss(value) {
		found = false
	}

	if !found {
		outcome := c.loadExternal(ctx, target, maxCacheAge, allowStale)
		c.updateCache(ctx, outcome.contentPtr(), key, nil, outcome.status, true)

		if outcome.status != StatusOK {
			return "", &NotAvailableError{URL: key, Status: outcome.status}
		}
		return outcome.content, nil
	}

	if c.policy.IsExpired(value, 0) {
		// Fire-and-forget: queue-full policy and enqueue failures belong
		// to the store, never to this caller.
		if pushErr := c.store.PushKey(ctx, c.queueKey, key, c.queueMaxSize); pushErr != nil {
			c.recordStoreError("Cache.Lookup", key, pushErr)
		}
	}

	parsed := ParseStored(value.Value())
	switch parsed.Kind() {
	case KindFailure:
		return "", &NotAvailableError{URL: key, Status: parsed.Status()}
	case KindEmpty:
		return "", nil
	default:
		return parsed.Text(), nil
	}
}

// ForceRefresh bypasses the cache-read fast path and fetches live,
// subject to a minimum-interval guard: when minUpdateIntervalSeconds > 0
// and the current entry is younger than that interval, the prior value is
// returned untouched without contacting the origin.
//
// The outcome is written back when the fetch succeeded, when it differs
// from the prior value, or unconditionally when cacheFails is set. A
// malformed URL returns the prior state unchanged.
func (c *Cache) ForceRefresh(ctx context.Context, rawURL string, minUpdateIntervalSeconds int, cacheFails bool) RefreshResult {
	var prior *string

	readStart := time.Now()
	value, found, storeErr := c.store.GetValue(ctx, rawURL)
	c.metadataSink.RecordStoreRead(rawURL, found, time.Since(readStart))

	if storeErr != nil {
		// Store unavailability is tolerated: proceed with no usable
		// prior, keeping the error text as a diagnostic placeholder.
		c.recordStoreError("Cache.ForceRefresh", rawURL, storeErr)
		diagnostic := storeErr.Error()
		prior = &diagnostic
	} else if found {
		// Just in case, avoid too many updates
		if minUpdateIntervalSeconds > 0 && !c.policy.IsExpired(value, minUpdateIntervalSeconds) {
			current := value.Value()
			return newUnchangedResult(&current)
		}
		current := value.Value()
		prior = &current
	}

	target, parseErr := url.Parse(rawURL)
	if parseErr != nil || target.Scheme == "" || target.Host == "" {
		return newUnchangedResult(prior)
	}

	outcome := c.loadExternal(ctx, *target, 0, false)
	result := RefreshResult{
		prior:   prior,
		content: outcome.contentPtr(),
		status:  outcome.status,
	}

	if outcome.status == StatusOK || !result.SameAsPrior() || cacheFails {
		c.updateCache(ctx, result.content, rawURL, prior, outcome.status, cacheFails)
	}

	return result
}

// updateCache is the shared write-back path of Lookup and ForceRefresh.
//
// TTL class: success and non-hard failures (4xx, redirects) use the
// success budget: a real 4xx from the target is meaningful and
// long-lived. Hard failures (status 0 or >= 500) use the shorter
// not-available budget, and are skipped entirely unless cacheFails asks
// for them.
//
// Overwrite suppression: a write identical to the prior value becomes a
// TTL-only touch. Separately, a non-redirect failure never overwrites
// prior valid robots text; the entry is touched with the success TTL and
// the known-good ruleset stays.
func (c *Cache) updateCache(ctx context.Context, contents *string, key string, current *string, status int, cacheFails bool) {
	var newValue string
	newTTL := 0
	ttlOnly := false

	if status == StatusOK {
		newTTL = c.totalTTL
		if contents != nil {
			newValue = EncodeSuccess(*contents)
		} else {
			newValue = EncodeSuccess("")
		}
	} else {
		if isFailedStatus(status) {
			newTTL = c.notAvailTotalTTL

			// Only caching successful lookups
			if !cacheFails {
				return
			}
		} else {
			newTTL = c.totalTTL
		}

		newValue = EncodeFailure(status)
	}

	if current != nil {
		if *current == newValue {
			ttlOnly = true
		}

		// Don't override a valid robots with a timeout error
		if !isRedirect(status) && !ParseStored(newValue).IsValidRobots() && ParseStored(*current).IsValidRobots() {
			newTTL = c.totalTTL
			ttlOnly = true
		}
	}

	var payload *string
	if !ttlOnly {
		payload = &newValue
	}

	if writeErr := c.store.UpdateValue(ctx, key, payload, newTTL, c.gzipStorage); writeErr != nil {
		// A failed write-back must not fail the lookup that produced it.
		c.recordStoreError("Cache.updateCache", key, writeErr)
		return
	}

	c.metadataSink.RecordCacheWrite(key, newTTL, ttlOnly)
}

func (c *Cache) recordStoreError(action string, key string, err error) {
	c.metadataSink.RecordError(
		c.clock.Now(),
		"robotscache",
		action,
		metadata.CauseStoreFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, key),
		},
	)
}
