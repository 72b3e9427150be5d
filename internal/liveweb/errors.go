package liveweb

import (
	"fmt"

	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

// FailureCause is a closed sum describing why a live fetch failed. It
// replaces inspection of wrapped transport errors: the collaborator
// classifies its own failure, and downstream code switches on the cause.
type FailureCause int

const (
	// CauseStatusCode: the origin answered with a non-success HTTP
	// status; OriginalStatus carries it. An OriginalStatus of 0 marks a
	// legacy collaborator that did not communicate a specific status.
	CauseStatusCode FailureCause = iota
	// CauseHostUnresolved: the hostname does not resolve (NXDOMAIN).
	CauseHostUnresolved
	// CauseIOFailure: an I/O failure during the fetch (timeout,
	// connection reset, closed socket).
	CauseIOFailure
	// CauseOther: any other, uncategorized failure.
	CauseOther
)

func (c FailureCause) String() string {
	switch c {
	case CauseStatusCode:
		return "http status"
	case CauseHostUnresolved:
		return "host unresolved"
	case CauseIOFailure:
		return "io failure"
	default:
		return "other"
	}
}

type NotAvailableError struct {
	Message        string
	OriginalStatus int
	Cause          FailureCause
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("liveweb error: %s", e.Cause)
}

func (e *NotAvailableError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
