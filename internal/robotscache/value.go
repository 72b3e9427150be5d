package robotscache

import (
	"strconv"
	"strings"
)

// Stored-value string encoding, kept wire-compatible with entries written
// by earlier cache generations:
//
//	0_ROBOTS_EMPTY       site has no robots.txt (or an empty one)
//	0_ROBOTS_ERROR-<n>   fetch failed with normalized status n
//	anything else        literal robots.txt text
const (
	tokenEmpty       = "0_ROBOTS_EMPTY"
	tokenErrorPrefix = "0_ROBOTS_ERROR-"
)

// legacyGenericErrorToken is the token the previous cache generation wrote
// for every failure, conflating HTTP 404 with HTTP 502.
const legacyGenericErrorToken = tokenErrorPrefix + "502"

type ValueKind int

const (
	KindSuccess ValueKind = iota
	KindEmpty
	KindFailure
)

// Value is the decoded form of a stored robots cache entry. The tagged
// variant exists only inside the process; values are serialized back to
// the string-prefix encoding at the store boundary.
type Value struct {
	kind   ValueKind
	text   string
	status int
}

func SuccessValue(text string) Value {
	if text == "" {
		return EmptyValue()
	}
	return Value{kind: KindSuccess, text: text}
}

func EmptyValue() Value {
	return Value{kind: KindEmpty}
}

func FailureValue(status int) Value {
	return Value{kind: KindFailure, status: status}
}

// ParseStored decodes a raw stored string. An error token whose status
// suffix fails to parse decodes to status 0.
func ParseStored(raw string) Value {
	if strings.HasPrefix(raw, tokenErrorPrefix) {
		status, err := strconv.Atoi(raw[len(tokenErrorPrefix):])
		if err != nil {
			status = 0
		}
		return FailureValue(status)
	}
	if raw == tokenEmpty {
		return EmptyValue()
	}
	return Value{kind: KindSuccess, text: raw}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Text() string {
	if v.kind == KindSuccess {
		return v.text
	}
	return ""
}

func (v Value) Status() int {
	return v.status
}

// IsValidRobots reports whether the value is usable robots-rule text,
// i.e. neither an error token nor the empty marker.
func (v Value) IsValidRobots() bool {
	return v.kind == KindSuccess
}

// Encode serializes the value to the stored string form.
func (v Value) Encode() string {
	switch v.kind {
	case KindEmpty:
		return tokenEmpty
	case KindFailure:
		return EncodeFailure(v.status)
	default:
		return EncodeSuccess(v.text)
	}
}

// EncodeSuccess encodes successfully fetched robots content. Empty
// content becomes the empty marker; oversized content is truncated to
// MaxRobotsSize bytes; everything else is stored verbatim.
func EncodeSuccess(content string) string {
	if content == "" {
		return tokenEmpty
	}
	if len(content) > MaxRobotsSize {
		return content[:MaxRobotsSize]
	}
	return content
}

// EncodeFailure encodes a normalized failure status.
func EncodeFailure(status int) string {
	return tokenErrorPrefix + strconv.Itoa(status)
}

// isFailedStatus reports whether status belongs to the hard-failure
// class: no usable response, or a server error. Hard failures get the
// shorter not-available TTL budget.
func isFailedStatus(status int) bool {
	return status == 0 || status >= 500
}

func isRedirect(status int) bool {
	return status == 301 || status == 302
}
