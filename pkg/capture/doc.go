// Package capture implements the capture-and-navigate orchestration
// engine: the control loop that steers a live browser session through a
// web-hosted presentation, screenshots each state, and decides from
// noisy best-effort signals whether the end of the content has been
// reached.
//
// # Architecture
//
// The engine coordinates two execution contexts. The Controller runs
// outside the page and owns the session: it validates the target, paces
// and issues frame captures, and runs duplicate detection. The agent
// (pkg/capture/agent) is a script injected into the page's own
// execution context; it executes navigation strategies and answers
// status queries. The two sides talk over pkg/capture/channel, a
// request/response transport with per-call timeouts and a re-injection
// recovery path.
//
// # Session lifecycle
//
// One session runs per Capture call:
//
//	INIT → VALIDATE_TARGET → ENSURE_AGENT → (UNLOCK) → PREPARE →
//	[CAPTURE → DEDUP_CHECK → NAVIGATE]* → TERMINATE
//
// The loop is strictly sequential; the host capture mechanism and the
// browsing surface are single-writer resources. A controller rejects
// overlapping capture requests instead of queueing them.
//
// # Termination
//
// The session ends when the frame cap is reached, when navigation can
// no longer produce motion, when the fingerprint stays unchanged
// through the full re-capture budget plus one last-resort navigate, or
// on a hard failure (target destroyed, agent unreachable). Hard
// failures return the frames captured so far rather than discarding
// them.
package capture
