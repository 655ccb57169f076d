package capture

import (
	"context"
	"time"

	"github.com/deckshot/deckshot/pkg/capture/agent"
	"github.com/deckshot/deckshot/pkg/capture/platform"
)

// Surface is the live browsing context a session captures from. The
// playwright-backed implementation lives in pkg/browser; tests substitute
// their own.
type Surface interface {
	// URL returns the surface's current address.
	URL() string
	// Closed reports whether the surface has been destroyed.
	Closed() bool
	// Evaluate runs a script in the page and returns its JSON-encoded result.
	Evaluate(ctx context.Context, script string) (string, error)
	// Content returns the page's serialized HTML.
	Content(ctx context.Context) (string, error)
	// Screenshot captures one frame of the visible viewport.
	Screenshot(ctx context.Context) ([]byte, error)
	// Activate brings the surface back to a capturable state after a
	// transient capture failure.
	Activate(ctx context.Context) error
}

// Request is one external capture request.
type Request struct {
	// MaxFrames caps the frame count for the session.
	MaxFrames int
	// PlatformHint overrides platform detection when set.
	PlatformHint string
	// Gate holds optional credentials for a best-effort unlock.
	Gate *agent.Credentials
}

// FrameRecord is one captured (or failed) frame slot. Records are
// immutable once appended; indices are 1-based and gapless in emission
// order even when a slot fails.
type FrameRecord struct {
	Index      int       `json:"index"`
	Image      []byte    `json:"-"`
	CapturedAt time.Time `json:"captured_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Result is the structured outcome of one capture session. No failure
// escapes as a panic or raw error: callers always get whatever frames
// were captured before the stop.
type Result struct {
	// Success means the session produced at least one good frame.
	Success bool `json:"success"`
	// Frames holds every slot in capture order.
	Frames []FrameRecord `json:"frames"`
	// ReachedEnd means the engine concluded the content was exhausted
	// rather than stopping on a failure or the frame cap.
	ReachedEnd bool `json:"reached_end"`
	// Platform is the chain the session navigated with.
	Platform platform.Platform `json:"platform"`
	// FailureClass classifies why the session stopped.
	FailureClass FailureClass `json:"failure_class,omitempty"`
	// Reason is the human-readable stop explanation.
	Reason string `json:"reason,omitempty"`
}

// EndOfContent reports whether the session stopped because the content
// was exhausted rather than on a failure.
func (r *Result) EndOfContent() bool {
	return r.FailureClass.endOfContent()
}

// GoodFrames counts successfully captured slots.
func (r *Result) GoodFrames() int {
	n := 0
	for _, f := range r.Frames {
		if f.Success {
			n++
		}
	}
	return n
}

// session is the per-run mutable state threaded through the loop. It is
// a plain value owned by one Capture call, never ambient package state,
// so independent sessions cannot interfere.
type session struct {
	maxFrames  int
	frames     []FrameRecord
	last       Fingerprint
	reachedEnd bool
}

func (s *session) appendGood(image []byte) {
	s.frames = append(s.frames, FrameRecord{
		Index:      len(s.frames) + 1,
		Image:      image,
		CapturedAt: time.Now(),
		Success:    true,
	})
}

func (s *session) appendFailed(err error) {
	s.frames = append(s.frames, FrameRecord{
		Index:      len(s.frames) + 1,
		CapturedAt: time.Now(),
		Success:    false,
		Error:      err.Error(),
	})
}

func (s *session) full() bool { return len(s.frames) >= s.maxFrames }

// Policies are the named budgets of the capture loop. They are plain
// configuration so tests can inject tight values for fast deterministic
// runs.
type Policies struct {
	// MinCaptureInterval spaces consecutive frame captures.
	MinCaptureInterval time.Duration
	// RecaptureAttempts bounds the re-capture loop after a duplicate.
	RecaptureAttempts int
	// RecaptureDelay is the base delay before re-capture n (n×delay).
	RecaptureDelay time.Duration
	// NavigateRetries is the attempt budget for one navigate call.
	NavigateRetries int
	// NavigateBackoff is the base backoff between navigate attempts.
	NavigateBackoff time.Duration
	// CallTimeout bounds every agent call.
	CallTimeout time.Duration
	// ReactivateDelay is the settle after re-activating the surface
	// following a transient capture failure.
	ReactivateDelay time.Duration
	// ReinjectSettle is the settle after re-injecting a missing agent
	// before the retried send.
	ReinjectSettle time.Duration
}

// DefaultPolicies returns the production budgets. The capture interval
// honors the host capture API's two-calls-per-second ceiling.
func DefaultPolicies() Policies {
	return Policies{
		MinCaptureInterval: 500 * time.Millisecond,
		RecaptureAttempts:  3,
		RecaptureDelay:     400 * time.Millisecond,
		NavigateRetries:    3,
		NavigateBackoff:    500 * time.Millisecond,
		CallTimeout:        10 * time.Second,
		ReactivateDelay:    300 * time.Millisecond,
		ReinjectSettle:     750 * time.Millisecond,
	}
}

func (p Policies) agentPolicy() agent.Policy {
	return agent.Policy{
		CallTimeout:     p.CallTimeout,
		NavigateRetries: p.NavigateRetries,
		Backoff:         p.NavigateBackoff,
	}
}
