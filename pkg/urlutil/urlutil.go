package urlutil

import (
	"net/url"

	"golang.org/x/net/idna"
)

// Canonicalize applies a deterministic normalization to a URL, producing a
// canonical form. It maps equivalent URL spellings to a single canonical
// representation so that one origin resolves to one cache key.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Internationalized hostnames are converted to their ASCII (punycode) form
//   - Fragments and query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Map internationalized hostnames to their ASCII form.
	// Conversion failures leave the lowercased host untouched.
	if ascii, err := idna.Lookup.ToASCII(canonical.Hostname()); err == nil && ascii != canonical.Hostname() {
		if port := canonical.Port(); port != "" {
			canonical.Host = ascii + ":" + port
		} else {
			canonical.Host = ascii
		}
	}

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Remove query parameters
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// RobotsURL maps an arbitrary URL to the robots.txt URL of its origin.
// The result is canonicalized, so equivalent spellings of the same origin
// produce the same robots URL (and therefore the same cache key).
func RobotsURL(sourceUrl url.URL) url.URL {
	robots := Canonicalize(sourceUrl)
	robots.Path = "/robots.txt"
	robots.RawPath = ""
	robots.User = nil
	return robots
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
