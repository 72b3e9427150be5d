package liveweb

import (
	"context"
	"net/url"
	"time"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

// LiveWebReader is the port interface for the slow live-fetch collaborator
// that retrieves robots.txt documents from origin servers.
//
// Contract:
//   - A successful fetch returns a Resource whose body the caller must
//     Release on every path.
//   - A failed fetch returns a NotAvailableError describing why, using an
//     explicit cause rather than a transport-specific error type.
//   - The call may block for a full network round trip; callers bound it
//     through ctx. No retries happen at this layer.
//
// maxCacheAge and allowStale are forwarded hints for proxy-backed
// implementations that keep their own short-lived cache; the direct HTTP
// implementation ignores them.
type LiveWebReader interface {
	Fetch(ctx context.Context, target url.URL, maxCacheAge time.Duration, allowStale bool) (*Resource, failure.ClassifiedError)
}
