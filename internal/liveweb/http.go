package liveweb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Global19-atlassian-net/wayback/internal/metadata"
	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

/*
HttpLiveWeb

Responsibilities:
- Perform the actual HTTP retrieval of robots.txt documents
- Apply headers and the configured timeout
- Classify transport failures into the FailureCause sum
- Surface non-2xx responses as NotAvailableError with the origin status

The reader never interprets robots content; it only returns a status and
an open body. Classification of statuses into cache semantics happens in
the cache core.
*/
type HttpLiveWeb struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
}

func NewHttpLiveWeb(
	metadataSink metadata.MetadataSink,
	userAgent string,
	timeout time.Duration,
) HttpLiveWeb {
	return HttpLiveWeb{
		metadataSink: metadataSink,
		httpClient:   &http.Client{Timeout: timeout},
		userAgent:    userAgent,
	}
}

// NewHttpLiveWebWithClient creates a HttpLiveWeb with a custom HTTP client.
// This is useful for testing.
func NewHttpLiveWebWithClient(
	metadataSink metadata.MetadataSink,
	userAgent string,
	httpClient *http.Client,
) HttpLiveWeb {
	return HttpLiveWeb{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		userAgent:    userAgent,
	}
}

func (l *HttpLiveWeb) Fetch(ctx context.Context, target url.URL, maxCacheAge time.Duration, allowStale bool) (*Resource, failure.ClassifiedError) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &NotAvailableError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   CauseOther,
		}
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/plain,*/*")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		notAvail := classifyTransportError(target, err)
		l.metadataSink.RecordLiveFetch(target.String(), 0, time.Since(start), 0)
		return nil, notAvail
	}

	l.metadataSink.RecordLiveFetch(target.String(), resp.StatusCode, time.Since(start), int(resp.ContentLength))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &NotAvailableError{
			Message:        fmt.Sprintf("origin answered %d for %s", resp.StatusCode, target.String()),
			OriginalStatus: resp.StatusCode,
			Cause:          CauseStatusCode,
		}
	}

	// The caller owns the resource and must Release it.
	return NewResource(resp.StatusCode, resp.Body), nil
}

// classifyTransportError maps a transport-level error from the HTTP client
// into the FailureCause sum.
func classifyTransportError(target url.URL, err error) *NotAvailableError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &NotAvailableError{
			Message: fmt.Sprintf("host of %s does not resolve: %v", target.String(), err),
			Cause:   CauseHostUnresolved,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &NotAvailableError{
			Message: fmt.Sprintf("io failure fetching %s: %v", target.String(), err),
			Cause:   CauseIOFailure,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Transport errors from http.Client arrive wrapped; anything that
		// is not a DNS or timeout condition is still an I/O failure.
		return &NotAvailableError{
			Message: fmt.Sprintf("io failure fetching %s: %v", target.String(), err),
			Cause:   CauseIOFailure,
		}
	}

	return &NotAvailableError{
		Message: fmt.Sprintf("fetch failed for %s: %v", target.String(), err),
		Cause:   CauseOther,
	}
}
