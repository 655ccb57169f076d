package channel

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeSurface scripts Evaluate responses for channel tests.
type fakeSurface struct {
	url     string
	closed  bool
	replies []func(script string) (string, error)
	calls   []string
	delay   time.Duration
}

func (f *fakeSurface) URL() string  { return f.url }
func (f *fakeSurface) Closed() bool { return f.closed }

func (f *fakeSurface) Evaluate(ctx context.Context, script string) (string, error) {
	f.calls = append(f.calls, script)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if len(f.replies) == 0 {
		return `{}`, nil
	}
	next := f.replies[0]
	f.replies = f.replies[1:]
	return next(script)
}

func reply(s string) func(string) (string, error) {
	return func(string) (string, error) { return s, nil }
}

func replyErr(err error) func(string) (string, error) {
	return func(string) (string, error) { return "", err }
}

func newTestChannel() *Channel {
	ch := New("window.__deckshotAgent = {}", zerolog.Nop())
	ch.ReinjectSettle = 5 * time.Millisecond
	return ch
}

func TestSendReturnsReply(t *testing.T) {
	s := &fakeSurface{url: "https://docsend.com/view/x", replies: []func(string) (string, error){
		reply(`{"alive":true}`),
	}}

	got, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
	require.NoError(t, err)
	assert.True(t, gjson.Get(got, "alive").Bool())
	require.Len(t, s.calls, 1)
	assert.Contains(t, s.calls[0], `"op":"PING"`)
}

func TestSendFailsFastOnClosedSurface(t *testing.T) {
	s := &fakeSurface{url: "https://example.com", closed: true}

	_, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Empty(t, s.calls, "no evaluate on a dead surface")
}

func TestSendFailsFastOnRestrictedScheme(t *testing.T) {
	for _, u := range []string{"chrome://settings", "about:blank", "devtools://devtools/x"} {
		s := &fakeSurface{url: u}
		_, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
		assert.ErrorIs(t, err, ErrUnreachable, u)
		assert.Empty(t, s.calls, u)
	}
}

func TestSendTimesOut(t *testing.T) {
	s := &fakeSurface{url: "https://example.com/deck", delay: time.Second}

	start := time.Now()
	_, err := newTestChannel().Send(context.Background(), s, Request{Op: "NEXT_SLIDE"}, 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSendReinjectsMissingAgentOnce(t *testing.T) {
	s := &fakeSurface{url: "https://example.com/deck", replies: []func(string) (string, error){
		reply("__DECKSHOT_NO_AGENT__"), // first call: agent absent
		reply(`{}`),             // injection
		reply(`{"moved":true}`), // retried call succeeds
	}}

	got, err := newTestChannel().Send(context.Background(), s, Request{Op: "NEXT_SLIDE"}, time.Second)
	require.NoError(t, err)
	assert.True(t, gjson.Get(got, "moved").Bool())
	require.Len(t, s.calls, 3)
	assert.Contains(t, s.calls[1], "window.__deckshotAgent =", "second call must be the injection")
}

func TestSendGivesUpWhenReinjectionDoesNotHelp(t *testing.T) {
	noAgent := reply("__DECKSHOT_NO_AGENT__")
	s := &fakeSurface{url: "https://example.com/deck", replies: []func(string) (string, error){
		noAgent,     // first call
		reply(`{}`), // injection
		noAgent,     // retried call still silent
	}}

	_, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentMissing)
}

func TestSendClassifiesDestroyedContextAsMissingAgent(t *testing.T) {
	s := &fakeSurface{url: "https://example.com/deck", replies: []func(string) (string, error){
		replyErr(fmt.Errorf("evaluate: Execution context was destroyed")),
		reply(`{}`),
		reply(`{"alive":true}`),
	}}

	got, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
	require.NoError(t, err)
	assert.True(t, gjson.Get(got, "alive").Bool())
}

func TestSendDoesNotRetryPlainEvaluateErrors(t *testing.T) {
	s := &fakeSurface{url: "https://example.com/deck", replies: []func(string) (string, error){
		replyErr(errors.New("protocol error")),
	}}

	_, err := newTestChannel().Send(context.Background(), s, Request{Op: "PING"}, time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAgentMissing)
	assert.Len(t, s.calls, 1)
}

func TestAddressable(t *testing.T) {
	assert.False(t, Addressable(nil))
	assert.False(t, Addressable(&fakeSurface{url: "https://x.test", closed: true}))
	assert.False(t, Addressable(&fakeSurface{url: "chrome://extensions"}))
	assert.True(t, Addressable(&fakeSurface{url: "https://pitch.com/p/deck"}))
}
