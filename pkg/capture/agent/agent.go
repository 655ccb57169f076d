// Package agent drives the script injected into the target page. The
// injected side executes navigation strategies inside the document's own
// execution context; the Client here builds typed requests, resolves the
// platform's strategy chain, and interprets the JSON replies.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/deckshot/deckshot/pkg/capture/channel"
	"github.com/deckshot/deckshot/pkg/capture/platform"
)

// Protocol operations understood by the injected agent.
const (
	OpPing        = "PING"
	OpPrepare     = "PREPARE"
	OpNextSlide   = "NEXT_SLIDE"
	OpUnlock      = "UNLOCK"
	OpGetPageInfo = "GET_PAGE_INFO"
)

// NavigationOutcome reports one navigate call.
type NavigationOutcome struct {
	// Moved is the agent's success hypothesis: presumptive for click
	// and key strategies, address-verified where possible.
	Moved bool
	// Method names the strategy that reported motion.
	Method string
	// AttemptsExhausted means every strategy in the chain ran without
	// reporting motion.
	AttemptsExhausted bool
}

// PageInfo is the reply to a GET_PAGE_INFO request.
type PageInfo struct {
	PlatformGuess           string
	HasNavigationAffordance bool
	EstimatedUnitCount      int
}

// Credentials are best-effort gate bypass inputs.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Passcode string `json:"passcode,omitempty"`
}

// navigatePayload carries the resolved chain and its parameters to the
// injected side.
type navigatePayload struct {
	Strategies      []platform.StrategyID `json:"strategies"`
	NextSelectors   []string              `json:"nextSelectors,omitempty"`
	Keys            []string              `json:"keys,omitempty"`
	ContentSelector string                `json:"contentSelector,omitempty"`
	HookNames       []string              `json:"hookNames,omitempty"`
	ScrollContainer string                `json:"scrollContainer,omitempty"`
	URLParams       []string              `json:"urlParams,omitempty"`
	AddressVerified bool                  `json:"addressVerified"`
}

// Policy bounds the outer retry loop around NEXT_SLIDE.
type Policy struct {
	// CallTimeout bounds every single agent call.
	CallTimeout time.Duration
	// NavigateRetries is the attempt budget for one navigate.
	NavigateRetries int
	// Backoff is the base delay between attempts; attempt n waits n×Backoff.
	Backoff time.Duration
}

// DefaultPolicy returns the production budgets.
func DefaultPolicy() Policy {
	return Policy{
		CallTimeout:     10 * time.Second,
		NavigateRetries: 3,
		Backoff:         500 * time.Millisecond,
	}
}

// Client talks to the injected agent over a channel. The strategy chain
// is resolved once at construction and reused for every navigate call.
type Client struct {
	ch      *channel.Channel
	profile *platform.Profile
	policy  Policy
	log     zerolog.Logger
}

// NewClient creates a client bound to the given platform profile.
func NewClient(ch *channel.Channel, profile *platform.Profile, policy Policy, log zerolog.Logger) *Client {
	return &Client{ch: ch, profile: profile, policy: policy, log: log}
}

// Profile returns the navigation profile this client was resolved with.
func (c *Client) Profile() *platform.Profile { return c.profile }

// Ping probes agent liveness.
func (c *Client) Ping(ctx context.Context, s channel.Surface) bool {
	reply, err := c.ch.Send(ctx, s, channel.Request{Op: OpPing}, c.policy.CallTimeout)
	return err == nil && gjson.Get(reply, "alive").Bool()
}

// Ensure makes sure the agent answers a liveness probe, injecting it
// when silent. Idempotent.
func (c *Client) Ensure(ctx context.Context, s channel.Surface) error {
	if c.Ping(ctx, s) {
		return nil
	}
	if err := c.ch.Inject(ctx, s); err != nil {
		return err
	}
	if !c.Ping(ctx, s) {
		return fmt.Errorf("%w: agent unresponsive after injection", channel.ErrAgentMissing)
	}
	return nil
}

// Prepare resets the page's scroll and visual state before capture.
func (c *Client) Prepare(ctx context.Context, s channel.Surface) error {
	reply, err := c.ch.Send(ctx, s, channel.Request{Op: OpPrepare}, c.policy.CallTimeout)
	if err != nil {
		return err
	}
	if !gjson.Get(reply, "success").Bool() {
		return errors.New("agent: prepare reported failure")
	}
	return nil
}

// Unlock attempts a best-effort gate bypass with the given credentials.
func (c *Client) Unlock(ctx context.Context, s channel.Surface, creds Credentials) (bool, error) {
	reply, err := c.ch.Send(ctx, s, channel.Request{
		Op:      OpUnlock,
		Payload: map[string]Credentials{"credentials": creds},
	}, c.policy.CallTimeout)
	if err != nil {
		return false, err
	}
	return gjson.Get(reply, "attempted").Bool(), nil
}

// NextSlide asks the agent to advance to the next unit of content,
// retrying transient chain failures inside the attempt budget with
// progressive backoff. Only an unreachable target aborts the loop early.
func (c *Client) NextSlide(ctx context.Context, s channel.Surface) (NavigationOutcome, error) {
	payload := navigatePayload{
		Strategies:      c.profile.Chain,
		NextSelectors:   c.profile.NextSelectors,
		Keys:            c.profile.Keys,
		ContentSelector: c.profile.ContentSelector,
		HookNames:       c.profile.HookNames,
		ScrollContainer: c.profile.ScrollContainer,
		URLParams:       c.profile.URLParams,
		AddressVerified: c.profile.AddressVerified,
	}

	var lastErr error
	reinjected := false
	attempts := c.policy.NavigateRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(time.Duration(attempt-1) * c.policy.Backoff):
			case <-ctx.Done():
				return NavigationOutcome{}, ctx.Err()
			}
		}

		reply, err := c.ch.Send(ctx, s, channel.Request{Op: OpNextSlide, Payload: payload}, c.policy.CallTimeout)
		if err != nil {
			if errors.Is(err, channel.ErrUnreachable) {
				return NavigationOutcome{}, err
			}
			lastErr = err
			c.log.Debug().Err(err).Int("attempt", attempt).Msg("navigate attempt failed")
			// A timed-out agent may be wedged; re-inject once before
			// spending the rest of the budget.
			if errors.Is(err, channel.ErrTimeout) && !reinjected {
				reinjected = true
				if injErr := c.ch.Inject(ctx, s); injErr != nil {
					c.log.Debug().Err(injErr).Msg("re-injection after timeout failed")
				}
			}
			continue
		}

		if gjson.Get(reply, "moved").Bool() {
			return NavigationOutcome{Moved: true, Method: gjson.Get(reply, "method").String()}, nil
		}
		lastErr = nil
		c.log.Debug().Int("attempt", attempt).Msg("strategy chain exhausted without motion")
	}

	if lastErr != nil {
		return NavigationOutcome{AttemptsExhausted: true}, lastErr
	}
	return NavigationOutcome{Moved: false, AttemptsExhausted: true}, nil
}

// PageInfo queries the agent for platform and affordance hints.
func (c *Client) PageInfo(ctx context.Context, s channel.Surface) (PageInfo, error) {
	reply, err := c.ch.Send(ctx, s, channel.Request{Op: OpGetPageInfo}, c.policy.CallTimeout)
	if err != nil {
		return PageInfo{}, err
	}
	return PageInfo{
		PlatformGuess:           gjson.Get(reply, "platformGuess").String(),
		HasNavigationAffordance: gjson.Get(reply, "hasNavigationAffordance").Bool(),
		EstimatedUnitCount:      int(gjson.Get(reply, "estimatedUnitCount").Int()),
	}, nil
}
