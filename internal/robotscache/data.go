package robotscache

import (
	"github.com/Global19-atlassian-net/wayback/pkg/hashutil"
)

// Normalized status taxonomy, used both for cache encoding and
// caller-visible failure signaling.
const (
	StatusOK = 200

	// StatusNXDomain represents an "unknown host" (aka NXDOMAIN) failure.
	// While disposition is the same as an HTTP 404 response, it has a
	// distinct value so that NXDOMAIN can be distinguished from 404.
	// A positive 4xx value is convenient because the exclusion filter
	// treats all 4xx as "no robots.txt".
	StatusNXDomain = 498

	// StatusOldError marks failures reported by an old collaborator
	// version that did not communicate a specific status code. All such
	// failures used to be marked 502 and interpreted as "all allowed";
	// now that 5xx means "all disallow", this non-standard 4xx status is
	// used for backward compatibility.
	StatusOldError = 499

	// StatusError represents other kinds of robots.txt fetch failure.
	// Note this value is indistinguishable from a 502 HTTP response from
	// a responsive target server. May want to revise this.
	StatusError = 502

	// StatusIOError represents an I/O failure while fetching robots.txt.
	// The 5xx choice reflects commonly implemented search-engine
	// behavior: treat it as block-all until it resolves.
	StatusIOError = 599
)

// MaxRobotsSize caps stored robots.txt bodies in bytes.
const MaxRobotsSize = 500000

// minUpdateIntervalSeconds rate-limits migration-period re-fetches of the
// legacy generic-error token.
const minUpdateIntervalSeconds = 30 * 60

// fetchOutcome is the normalized result of one live fetch.
// content is meaningful only when status == StatusOK.
type fetchOutcome struct {
	content string
	status  int
}

func (o fetchOutcome) contentPtr() *string {
	if o.status != StatusOK {
		return nil
	}
	content := o.content
	return &content
}

// RefreshResult reports the outcome of a forced refresh: the prior cached
// raw value (if any), the newly fetched content (if the fetch succeeded)
// and the normalized status. It is a working record, never persisted
// as-is; only its derived stored value is written back.
type RefreshResult struct {
	prior   *string
	content *string
	status  int
}

func newUnchangedResult(prior *string) RefreshResult {
	return RefreshResult{
		prior:  prior,
		status: 0,
	}
}

func (r RefreshResult) Status() int {
	return r.status
}

func (r RefreshResult) Content() (string, bool) {
	if r.content == nil {
		return "", false
	}
	return *r.content, true
}

func (r RefreshResult) Prior() (string, bool) {
	if r.prior == nil {
		return "", false
	}
	return *r.prior, true
}

// SameAsPrior reports whether the refresh outcome matches the previously
// cached value. A successful fetch compares raw text; a failed fetch
// compares its status against a decoded prior error token. No prior plus
// a non-success outcome is always "different".
func (r RefreshResult) SameAsPrior() bool {
	if r.content == nil {
		// new robots.txt is a failure. compare status.
		if r.prior != nil {
			priorValue := ParseStored(*r.prior)
			if priorValue.Kind() == KindFailure {
				return r.status == priorValue.Status()
			}
		}
		// no cached robots.txt or prior success -> different.
		return false
	}
	return r.prior != nil && *r.content == *r.prior
}

// Fingerprint returns a blake3 hash of the fetched content, for refresh
// diagnostics. Absent content yields ok == false.
func (r RefreshResult) Fingerprint() (string, bool) {
	if r.content == nil {
		return "", false
	}
	hash, err := hashutil.HashBytes([]byte(*r.content), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return "", false
	}
	return hash, true
}

// NewRefreshResultForTest creates a RefreshResult for testing purposes.
// This allows test packages to construct RefreshResult values without
// accessing unexported fields directly.
func NewRefreshResultForTest(prior *string, content *string, status int) RefreshResult {
	return RefreshResult{
		prior:   prior,
		content: content,
		status:  status,
	}
}
