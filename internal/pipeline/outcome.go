package pipeline

// Outcome is the terminal state of one redemption run. Every rejection
// outcome implies a refund was attempted before the run terminated.
type Outcome int

const (
	// Committed: the name was added to the allow-list and the registry
	// entry was written through.
	Committed Outcome = iota

	// RejectedFormat: the candidate name failed the syntactic check.
	RejectedFormat

	// RejectedNotFound: the identity service reported the name does not
	// exist, or was unreachable after retries (fail-closed).
	RejectedNotFound

	// RejectedConflict: the name is already registered by a different
	// requester.
	RejectedConflict

	// RejectedApplyFailed: the allow-list add directive was not accepted.
	RejectedApplyFailed
)

// String returns the log-friendly name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case RejectedFormat:
		return "rejected_format"
	case RejectedNotFound:
		return "rejected_not_found"
	case RejectedConflict:
		return "rejected_conflict"
	case RejectedApplyFailed:
		return "rejected_apply_failed"
	default:
		return "unknown"
	}
}

// Rejected reports whether the outcome is a rejection.
func (o Outcome) Rejected() bool {
	return o != Committed
}
