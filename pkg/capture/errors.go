package capture

import "errors"

// ErrCaptureInProgress rejects an overlapping capture request. Requests
// are never queued; the caller decides whether to retry later.
var ErrCaptureInProgress = errors.New("capture: session already in progress")

// FailureClass is the machine classification of why a session stopped.
type FailureClass string

const (
	// FailureTargetUnreachable means the surface was destroyed or
	// became a restricted context.
	FailureTargetUnreachable FailureClass = "TargetUnreachable"
	// FailureAgentUnavailable means injection and re-injection both failed.
	FailureAgentUnavailable FailureClass = "AgentUnavailable"
	// FailureChannelTimeout means no agent reply within the deadline.
	FailureChannelTimeout FailureClass = "ChannelTimeout"
	// FailureCaptureFailed means the host capture call errored past its
	// retry budget.
	FailureCaptureFailed FailureClass = "CaptureFailed"
	// FailureNavigationExhausted means every strategy ran without motion.
	FailureNavigationExhausted FailureClass = "NavigationExhausted"
	// FailureDuplicateConfirmed means the fingerprint stayed unchanged
	// through the full retry budget. This is end-of-content, not an error.
	FailureDuplicateConfirmed FailureClass = "DuplicateConfirmed"
)

// endOfContent reports whether the class is a clean termination rather
// than a failure.
func (f FailureClass) endOfContent() bool {
	return f == FailureNavigationExhausted || f == FailureDuplicateConfirmed
}
