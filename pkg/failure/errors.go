package failure

type Severity int

// caller control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every component.
// Each package defines its own error type carrying a local Cause,
// and exposes a coarse severity for callers that only need to know
// whether the operation is worth attempting again.
type ClassifiedError interface {
	error
	Severity() Severity
}
