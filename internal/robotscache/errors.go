package robotscache

import (
	"fmt"

	"github.com/Global19-atlassian-net/wayback/internal/metadata"
	"github.com/Global19-atlassian-net/wayback/pkg/failure"
)

// NotAvailableError signals that no usable robots.txt could be produced
// for a URL. Status carries the normalized taxonomy value so that the
// caller's exclusion policy can distinguish "no robots.txt" (4xx) from
// "block-all until it resolves" (5xx).
type NotAvailableError struct {
	URL    string
	Status int
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("robots not available for %s: status %d", e.URL, e.Status)
}

func (e *NotAvailableError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapStatusToMetadataCause maps taxonomy statuses to the canonical
// metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStatusToMetadataCause(status int) metadata.ErrorCause {
	switch status {
	case StatusNXDomain, StatusIOError:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
