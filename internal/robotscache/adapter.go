package robotscache

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/Global19-atlassian-net/wayback/internal/liveweb"
	"github.com/Global19-atlassian-net/wayback/internal/metadata"
)

/*
Live-fetch adapter

Maps the liveweb collaborator's outcome into the normalized
(content, status) pair of the fixed taxonomy:

  - success (200): body read as UTF-8 text, capped at MaxRobotsSize
  - failure with an origin status 0: StatusOldError (legacy collaborator)
  - failure with an origin status > 0: passed through unchanged
  - transport-level failure, by cause: host unresolved -> StatusNXDomain,
    I/O failure -> StatusIOError, anything else -> StatusError
  - any other unexpected failure: StatusError

The resource is released on every exit path. No retries happen here;
retrying is entirely the refresh-queue worker's concern.
*/
func (c *Cache) loadExternal(ctx context.Context, target url.URL, maxCacheAge time.Duration, allowStale bool) fetchOutcome {
	resource, fetchErr := c.liveweb.Fetch(ctx, target, maxCacheAge, allowStale)

	if fetchErr != nil {
		return c.classifyFetchFailure(target, fetchErr)
	}
	defer resource.Release()

	status := resource.StatusCode()
	if status != StatusOK {
		return fetchOutcome{status: status}
	}

	body, readErr := io.ReadAll(io.LimitReader(resource.Body(), MaxRobotsSize))
	if readErr != nil {
		c.metadataSink.RecordError(
			c.clock.Now(),
			"robotscache",
			"Cache.loadExternal",
			metadata.CauseNetworkFailure,
			readErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, target.String()),
			},
		)
		return fetchOutcome{status: StatusError}
	}

	return fetchOutcome{content: string(body), status: StatusOK}
}

func (c *Cache) classifyFetchFailure(target url.URL, fetchErr error) fetchOutcome {
	status := StatusError

	var notAvail *liveweb.NotAvailableError
	if errors.As(fetchErr, &notAvail) {
		switch notAvail.Cause {
		case liveweb.CauseStatusCode:
			if notAvail.OriginalStatus == 0 {
				// Old collaborator versions did not communicate the
				// specific status code. Map it to the dedicated value.
				status = StatusOldError
			} else {
				status = notAvail.OriginalStatus
			}
		case liveweb.CauseHostUnresolved:
			// Host no longer exists. In robots.txt exclusion, disposition
			// differs from other fetch errors.
			status = StatusNXDomain
		case liveweb.CauseIOFailure:
			status = StatusIOError
		default:
			status = StatusError
		}
	}

	c.metadataSink.RecordError(
		c.clock.Now(),
		"robotscache",
		"Cache.loadExternal",
		mapStatusToMetadataCause(status),
		fetchErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, target.String()),
			metadata.NewAttr(metadata.AttrStatus, strconv.Itoa(status)),
		},
	)

	return fetchOutcome{status: status}
}
