package metadata

import (
	"time"
)

/*
Metadata Collected
- Store read timings and hit/miss outcomes
- Live fetch status codes and durations
- Cache write TTLs (including TTL-only touches)
- Classified failures

Logging Goals
- Debuggable cache behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations

Determinism guarantees:
 - Metadata does not affect control flow
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence cache decisions.
*/

/*
Recorder captures structured cache events.
It must not:
- perform I/O decisions
- affect control flow
- impose a logging backend
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	workerId string
}

func NewRecorder(workerId string) Recorder {
	return Recorder{
		workerId: workerId,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {

}

func (r *Recorder) RecordStoreRead(
	key string,
	hit bool,
	duration time.Duration,
) {
}

func (r *Recorder) RecordLiveFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	sizeBytes int,
) {
}

func (r *Recorder) RecordCacheWrite(
	key string,
	ttlSeconds int,
	ttlOnly bool,
) {
}

// MetadataSink is the write-only port every component records through.
type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		errorString string,
		attrs []Attribute,
	)
	RecordStoreRead(
		key string,
		hit bool,
		duration time.Duration,
	)
	RecordLiveFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		sizeBytes int,
	)
	RecordCacheWrite(
		key string,
		ttlSeconds int,
		ttlOnly bool,
	)
}
