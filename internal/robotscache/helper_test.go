package robotscache_test

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Global19-atlassian-net/wayback/internal/config"
	"github.com/Global19-atlassian-net/wayback/internal/liveweb"
	"github.com/Global19-atlassian-net/wayback/internal/metadata"
	"github.com/Global19-atlassian-net/wayback/internal/robotscache"
	"github.com/Global19-atlassian-net/wayback/internal/store"
	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

const testRobotsURL = "https://example.com/robots.txt"

const testRobotsBody = `User-agent: *
Disallow: /private/
Allow: /public/
`

// fixedClock is a manually advanced clock for freshness-window tests.
type fixedClock struct {
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// liveWebMock is a testify mock for the LiveWebReader port
type liveWebMock struct {
	mock.Mock
}

func (l *liveWebMock) Fetch(
	ctx context.Context,
	target url.URL,
	maxCacheAge time.Duration,
	allowStale bool,
) (*liveweb.Resource, failure.ClassifiedError) {
	args := l.Called(ctx, target, maxCacheAge, allowStale)
	var resource *liveweb.Resource
	if args.Get(0) != nil {
		resource = args.Get(0).(*liveweb.Resource)
	}
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return resource, err
}

// OnFetchBody sets up the mock to serve a body with the given status for
// any URL. It returns the mock.Call so tests can chain .Once(), .Times(n).
func (l *liveWebMock) OnFetchBody(statusCode int, body string) *mock.Call {
	resource := liveweb.NewResource(statusCode, io.NopCloser(strings.NewReader(body)))
	return l.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(resource, nil)
}

// OnFetchError sets up the mock to fail with the given cause for any URL.
func (l *liveWebMock) OnFetchError(cause liveweb.FailureCause, originalStatus int) *mock.Call {
	err := &liveweb.NotAvailableError{
		Message:        "fetch failed",
		OriginalStatus: originalStatus,
		Cause:          cause,
	}
	return l.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, err)
}

func newLiveWebMockForTest(t *testing.T) *liveWebMock {
	t.Helper()
	return new(liveWebMock)
}

func anyFetchArgs() []interface{} {
	return []interface{}{mock.Anything, mock.Anything, mock.Anything, mock.Anything}
}

// sinkStub is a write-only metadata sink that counts what it sees.
type sinkStub struct {
	errorCount     int
	storeReads     int
	cacheWrites    int
	ttlOnlyWrites  int
	lastWriteTTL   int
	lastWriteKey   string
	liveFetchCount int
}

func (s *sinkStub) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.errorCount++
}

func (s *sinkStub) RecordStoreRead(key string, hit bool, duration time.Duration) {
	s.storeReads++
}

func (s *sinkStub) RecordLiveFetch(fetchUrl string, httpStatus int, duration time.Duration, sizeBytes int) {
	s.liveFetchCount++
}

func (s *sinkStub) RecordCacheWrite(key string, ttlSeconds int, ttlOnly bool) {
	s.cacheWrites++
	s.lastWriteTTL = ttlSeconds
	s.lastWriteKey = key
	if ttlOnly {
		s.ttlOnlyWrites++
	}
}

func testConfig(t *testing.T, clock *fixedClock) config.Config {
	t.Helper()
	cfg, err := config.WithDefault().
		WithProcessStart(clock.Now()).
		Build()
	if err != nil {
		t.Fatalf("building test config: %s", err)
	}
	return cfg
}

// createCacheForTest wires a Cache against the in-memory store, a liveweb
// mock and a counting sink, all sharing one fixed clock.
func createCacheForTest(
	t *testing.T,
	cfg config.Config,
	clock *fixedClock,
	memStore *store.MemoryStore,
	reader *liveWebMock,
	sink *sinkStub,
) robotscache.Cache {
	t.Helper()
	return robotscache.NewCacheWithClock(cfg, memStore, reader, sink, clock)
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %s", raw, err)
	}
	return *parsed
}
