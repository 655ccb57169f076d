package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckshot/deckshot/pkg/capture/agent"
	"github.com/deckshot/deckshot/pkg/capture/channel"
	"github.com/deckshot/deckshot/pkg/capture/platform"
)

// Controller owns capture sessions. One session runs at a time per
// controller; overlapping requests fail fast with ErrCaptureInProgress.
type Controller struct {
	policies Policies
	log      zerolog.Logger

	mu         sync.Mutex
	inProgress bool
}

// NewController creates a controller with the given budgets.
func NewController(policies Policies, log zerolog.Logger) *Controller {
	return &Controller{policies: policies, log: log}
}

// Capture runs one full capture session against the surface and returns
// the structured result. The only error condition is an overlapping
// request; every other failure is reported inside the Result, together
// with whatever frames were captured before the stop.
func (c *Controller) Capture(ctx context.Context, s Surface, req Request) (Result, error) {
	c.mu.Lock()
	if c.inProgress {
		c.mu.Unlock()
		return Result{}, ErrCaptureInProgress
	}
	c.inProgress = true
	c.mu.Unlock()

	// Guaranteed release on every exit path.
	defer func() {
		c.mu.Lock()
		c.inProgress = false
		c.mu.Unlock()
	}()

	if req.MaxFrames <= 0 {
		req.MaxFrames = 1
	}

	plat := platform.Detect(s.URL())
	if req.PlatformHint != "" {
		if hinted := platform.Parse(req.PlatformHint); hinted != platform.PlatformUnknown {
			plat = hinted
		}
	}

	ch := channel.New(agent.InjectScript, c.log)
	if c.policies.ReinjectSettle > 0 {
		ch.ReinjectSettle = c.policies.ReinjectSettle
	}
	cl := agent.NewClient(ch, platform.ProfileFor(plat), c.policies.agentPolicy(), c.log)
	pacer := NewPacer(c.policies.MinCaptureInterval)
	sess := &session{maxFrames: req.MaxFrames}

	c.log.Info().
		Str("url", s.URL()).
		Str("platform", string(plat)).
		Int("maxFrames", req.MaxFrames).
		Msg("capture session starting")

	res := c.run(ctx, s, cl, pacer, sess, req)
	res.Platform = plat
	res.Frames = sess.frames
	res.ReachedEnd = sess.reachedEnd
	res.Success = res.GoodFrames() > 0
	if !res.Success && res.FailureClass == "" {
		// The loop filled its slots without one good frame.
		res.FailureClass = FailureCaptureFailed
		res.Reason = "every frame capture failed"
	}

	c.log.Info().
		Int("frames", res.GoodFrames()).
		Bool("reachedEnd", res.ReachedEnd).
		Str("class", string(res.FailureClass)).
		Msg("capture session finished")
	return res, nil
}

// run executes VALIDATE_TARGET → ENSURE_AGENT → UNLOCK → PREPARE →
// [CAPTURE → DEDUP_CHECK → NAVIGATE]* and returns the termination
// classification. Frames accumulate on sess as a side effect.
func (c *Controller) run(ctx context.Context, s Surface, cl *agent.Client, pacer *Pacer, sess *session, req Request) Result {
	if !channel.Addressable(s) {
		return stopped(FailureTargetUnreachable, "target surface is not addressable")
	}

	if err := cl.Ensure(ctx, s); err != nil {
		return stopped(classify(err, FailureAgentUnavailable), fmt.Sprintf("agent injection failed: %v", err))
	}

	if req.Gate != nil {
		attempted, err := cl.Unlock(ctx, s, *req.Gate)
		if err != nil {
			c.log.Warn().Err(err).Msg("unlock call failed, continuing")
		} else if attempted {
			c.log.Info().Msg("access gate bypass attempted")
			// The unlock may have navigated; the agent is re-ensured
			// by the channel on the next call if it was wiped.
		}
	}

	if err := cl.Prepare(ctx, s); err != nil {
		// Prepare is best effort: an unscrolled first frame beats no frame.
		c.log.Warn().Err(err).Msg("prepare failed, continuing")
	}

	if info, err := cl.ProbePage(ctx, s); err == nil {
		c.log.Debug().
			Str("guess", info.PlatformGuess).
			Bool("affordance", info.HasNavigationAffordance).
			Int("units", info.EstimatedUnitCount).
			Msg("page probe")
	}

	for !sess.full() {
		// The target can die mid-loop; re-check before every capture.
		if !channel.Addressable(s) {
			return stopped(FailureTargetUnreachable, "target surface lost mid-session")
		}

		frame, err := c.captureFrame(ctx, s, pacer)
		if err != nil {
			if s.Closed() || errors.Is(err, context.Canceled) {
				return stopped(FailureTargetUnreachable, fmt.Sprintf("capture aborted: %v", err))
			}
			// Soft failure: the slot is recorded and the loop moves on.
			sess.appendFailed(err)
			c.log.Warn().Err(err).Int("slot", len(sess.frames)).Msg("frame capture failed")
			continue
		}

		fp := FingerprintOf(frame)
		if fp.Equal(sess.last) {
			verdict := c.dedup(ctx, s, cl, pacer, &frame, &fp)
			switch verdict {
			case dedupEnd:
				sess.reachedEnd = true
				return stopped(FailureDuplicateConfirmed, "content unchanged through full retry budget")
			case dedupAbort:
				return stopped(FailureTargetUnreachable, "target lost during duplicate recheck")
			}
			// dedupChanged: frame and fp now hold the fresh content.
		}

		sess.appendGood(frame)
		sess.last = fp
		c.log.Debug().Int("frame", len(sess.frames)).Msg("frame captured")

		// Navigate even after the final allowed frame: a clean
		// "no motion" reply there still means the content ended.
		out, err := cl.NextSlide(ctx, s)
		if err != nil {
			sess.reachedEnd = true
			class := classify(err, FailureAgentUnavailable)
			if class == FailureChannelTimeout {
				// Past the full retry budget a silent agent is treated
				// as unavailable, not as one more timeout.
				class = FailureAgentUnavailable
			}
			return stopped(class, fmt.Sprintf("navigation failed: %v", err))
		}
		if !out.Moved {
			sess.reachedEnd = true
			return stopped(FailureNavigationExhausted, "no strategy produced motion")
		}
		c.log.Debug().Str("method", out.Method).Msg("advanced")
	}
	return Result{}
}

// captureFrame issues one rate-limited screenshot, retrying a transient
// failure once after re-activating the surface.
func (c *Controller) captureFrame(ctx context.Context, s Surface, pacer *Pacer) ([]byte, error) {
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}
	frame, err := s.Screenshot(ctx)
	if err == nil {
		return frame, nil
	}
	if s.Closed() || ctx.Err() != nil {
		return nil, err
	}

	// Transient: the surface may have gone momentarily inactive.
	if actErr := s.Activate(ctx); actErr != nil {
		return nil, fmt.Errorf("capture failed and surface would not reactivate: %w", err)
	}
	select {
	case <-time.After(c.policies.ReactivateDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}
	return s.Screenshot(ctx)
}

type dedupVerdict int

const (
	dedupChanged dedupVerdict = iota
	dedupEnd
	dedupAbort
)

// dedup resolves a fingerprint collision: a bounded re-capture loop with
// increasing delay, then — only after the whole budget is spent — one
// last-resort navigate followed by one final capture-and-compare. On
// dedupChanged the caller's frame and fingerprint are updated in place.
func (c *Controller) dedup(ctx context.Context, s Surface, cl *agent.Client, pacer *Pacer, frame *[]byte, fp *Fingerprint) dedupVerdict {
	for attempt := 1; attempt <= c.policies.RecaptureAttempts; attempt++ {
		select {
		case <-time.After(time.Duration(attempt) * c.policies.RecaptureDelay):
		case <-ctx.Done():
			return dedupAbort
		}

		fresh, err := c.captureFrame(ctx, s, pacer)
		if err != nil {
			if s.Closed() || ctx.Err() != nil {
				return dedupAbort
			}
			continue
		}
		if newFP := FingerprintOf(fresh); !newFP.Equal(*fp) {
			*frame, *fp = fresh, newFP
			return dedupChanged
		}
		c.log.Debug().Int("attempt", attempt).Msg("re-capture still identical")
	}

	// Last resort: one extra navigate, then one recheck.
	out, err := cl.NextSlide(ctx, s)
	if err != nil || !out.Moved {
		return dedupEnd
	}
	fresh, err := c.captureFrame(ctx, s, pacer)
	if err != nil {
		if s.Closed() || ctx.Err() != nil {
			return dedupAbort
		}
		return dedupEnd
	}
	if newFP := FingerprintOf(fresh); !newFP.Equal(*fp) {
		*frame, *fp = fresh, newFP
		c.log.Debug().Str("method", out.Method).Msg("last-resort navigate unstuck the session")
		return dedupChanged
	}
	return dedupEnd
}

// stopped builds the termination result for a class and reason. Clean
// end-of-content classes carry no reason in the final result beyond the
// classification itself.
func stopped(class FailureClass, reason string) Result {
	return Result{FailureClass: class, Reason: reason}
}

// classify maps transport errors onto the failure taxonomy.
func classify(err error, fallback FailureClass) FailureClass {
	switch {
	case errors.Is(err, channel.ErrUnreachable):
		return FailureTargetUnreachable
	case errors.Is(err, channel.ErrTimeout):
		return FailureChannelTimeout
	case errors.Is(err, channel.ErrAgentMissing):
		return FailureAgentUnavailable
	}
	return fallback
}
