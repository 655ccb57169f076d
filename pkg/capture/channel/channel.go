// Package channel implements the request/response transport between the
// capture orchestrator and the agent injected into the target page.
// Every send carries an explicit timeout, verifies the target is still
// addressable before doing any work, and recovers once from a missing
// agent by re-injecting it.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Classified transport failures. Callers branch on these with errors.Is.
var (
	// ErrTimeout means no reply arrived within the send deadline.
	ErrTimeout = errors.New("channel: call timed out")
	// ErrUnreachable means the target surface is gone or restricted.
	ErrUnreachable = errors.New("channel: target unreachable")
	// ErrAgentMissing means the agent did not answer even after one
	// re-injection attempt.
	ErrAgentMissing = errors.New("channel: agent missing")
)

// noAgentReply is returned by the call script when the agent global is
// absent, so a missing agent is distinguishable from a failed call.
const noAgentReply = "__DECKSHOT_NO_AGENT__"

// Surface is the minimal handle the channel needs on the target page.
type Surface interface {
	// URL returns the surface's current address.
	URL() string
	// Closed reports whether the surface has been destroyed.
	Closed() bool
	// Evaluate runs a script in the page and returns its JSON-encoded
	// result. The call may block until the page answers.
	Evaluate(ctx context.Context, script string) (string, error)
}

// Request is one typed message to the agent.
type Request struct {
	Op      string `json:"op"`
	Payload any    `json:"payload,omitempty"`
}

// Channel sends requests to the in-page agent.
type Channel struct {
	// InjectScript installs the agent global when evaluated.
	InjectScript string

	// ReinjectSettle is the extra delay after re-injecting the agent
	// before the retried send.
	ReinjectSettle time.Duration

	log zerolog.Logger
}

// New creates a channel that re-injects the given agent script on demand.
func New(injectScript string, log zerolog.Logger) *Channel {
	return &Channel{
		InjectScript:   injectScript,
		ReinjectSettle: 750 * time.Millisecond,
		log:            log,
	}
}

// restrictedSchemes are browser-internal contexts scripts cannot reach.
var restrictedSchemes = map[string]bool{
	"chrome":           true,
	"chrome-extension": true,
	"edge":             true,
	"devtools":         true,
	"about":            true,
	"view-source":      true,
}

// Addressable reports whether the surface can still receive messages.
func Addressable(s Surface) bool {
	if s == nil || s.Closed() {
		return false
	}
	u, err := url.Parse(s.URL())
	if err != nil {
		return false
	}
	return !restrictedSchemes[strings.ToLower(u.Scheme)]
}

// Send delivers one request and returns the agent's raw JSON reply.
// Failures are classified, never panicked: the returned error wraps
// ErrTimeout, ErrUnreachable, or ErrAgentMissing.
func (c *Channel) Send(ctx context.Context, s Surface, req Request, timeout time.Duration) (string, error) {
	if !Addressable(s) {
		return "", fmt.Errorf("%w: surface not addressable", ErrUnreachable)
	}

	reply, err := c.call(ctx, s, req, timeout)
	if err == nil {
		return reply, nil
	}
	if !errors.Is(err, ErrAgentMissing) {
		return "", err
	}

	// Agent absent: one re-injection, one retried send with a longer
	// settle before giving up.
	c.log.Debug().Str("op", req.Op).Msg("agent missing, re-injecting")
	if err := c.Inject(ctx, s); err != nil {
		return "", fmt.Errorf("%w: re-injection failed: %v", ErrAgentMissing, err)
	}
	select {
	case <-time.After(c.ReinjectSettle):
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}

	return c.call(ctx, s, req, timeout+c.ReinjectSettle)
}

// Inject installs the agent into the surface.
func (c *Channel) Inject(ctx context.Context, s Surface) error {
	if !Addressable(s) {
		return fmt.Errorf("%w: surface not addressable", ErrUnreachable)
	}
	if _, err := s.Evaluate(ctx, c.InjectScript); err != nil {
		return fmt.Errorf("agent injection failed: %w", err)
	}
	return nil
}

// call evaluates one guarded agent invocation under its own deadline.
// The evaluation runs in a goroutine because the underlying driver call
// cannot be interrupted; on timeout the result is abandoned.
func (c *Channel) call(ctx context.Context, s Surface, req Request, timeout time.Duration) (string, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	script := fmt.Sprintf(
		"window.__deckshotAgent ? window.__deckshotAgent.handle(%s) : %q",
		encoded, noAgentReply,
	)

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, evalErr := s.Evaluate(callCtx, script)
		done <- result{reply, evalErr}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if s.Closed() {
				return "", fmt.Errorf("%w: %v", ErrUnreachable, res.err)
			}
			if isMissingAgentError(res.err) {
				return "", fmt.Errorf("%w: %v", ErrAgentMissing, res.err)
			}
			return "", fmt.Errorf("channel: evaluate failed: %w", res.err)
		}
		if res.reply == noAgentReply {
			return "", fmt.Errorf("%w: agent global absent", ErrAgentMissing)
		}
		return res.reply, nil
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
		return "", fmt.Errorf("%w: no reply to %s within %s", ErrTimeout, req.Op, timeout)
	}
}

// isMissingAgentError matches driver errors that mean the page lost its
// script world (navigation wiped the agent, context was recreated).
func isMissingAgentError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "__deckshotagent is not defined") ||
		strings.Contains(msg, "execution context was destroyed") ||
		strings.Contains(msg, "cannot find context")
}
