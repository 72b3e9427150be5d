package store

import (
	"errors"
	"fmt"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseUnavailable    = "store unreachable"
	ErrCauseReadFailure    = "read failed"
	ErrCauseWriteFailure   = "write failed"
	ErrCausePushFailure    = "queue push failed"
	ErrCauseCorruptPayload = "corrupt payload"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s", e.Cause)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}

// IsUnavailable reports whether err represents a store that could not be
// reached at all. Callers degrade this condition to a cache miss.
func IsUnavailable(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Cause == StoreErrorCause(ErrCauseUnavailable)
	}
	return false
}
