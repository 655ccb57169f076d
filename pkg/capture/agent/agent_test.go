package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/deckshot/deckshot/pkg/capture/channel"
	"github.com/deckshot/deckshot/pkg/capture/platform"
)

// scriptedSurface answers agent calls by op, recording the requests the
// channel evaluated.
type scriptedSurface struct {
	url      string
	closed   bool
	content  string
	requests []string
	answer   func(op string, req string) (string, error)
}

func (f *scriptedSurface) URL() string  { return f.url }
func (f *scriptedSurface) Closed() bool { return f.closed }

func (f *scriptedSurface) Content(ctx context.Context) (string, error) {
	return f.content, nil
}

func (f *scriptedSurface) Evaluate(ctx context.Context, script string) (string, error) {
	// Injection evaluates the raw agent script; answer only handle calls.
	if script == InjectScript {
		return "true", nil
	}
	f.requests = append(f.requests, script)
	op := gjson.Get(extractRequest(script), "op").String()
	return f.answer(op, extractRequest(script))
}

// extractRequest pulls the JSON request literal out of the handle call.
func extractRequest(script string) string {
	start := len("window.__deckshotAgent ? window.__deckshotAgent.handle(")
	end := len(script) - len(`) : "__DECKSHOT_NO_AGENT__"`)
	if start >= end {
		return "{}"
	}
	return script[start:end]
}

func testPolicy() Policy {
	return Policy{
		CallTimeout:     time.Second,
		NavigateRetries: 3,
		Backoff:         time.Millisecond,
	}
}

func newTestClient(p platform.Platform) *Client {
	ch := channel.New(InjectScript, zerolog.Nop())
	ch.ReinjectSettle = time.Millisecond
	return NewClient(ch, platform.ProfileFor(p), testPolicy(), zerolog.Nop())
}

func TestPing(t *testing.T) {
	s := &scriptedSurface{url: "https://pitch.com/p/deck", answer: func(op, _ string) (string, error) {
		require.Equal(t, OpPing, op)
		return `{"alive":true}`, nil
	}}
	assert.True(t, newTestClient(platform.PlatformPitch).Ping(context.Background(), s))
}

func TestEnsureSkipsInjectionWhenAlive(t *testing.T) {
	pings := 0
	s := &scriptedSurface{url: "https://pitch.com/p/deck", answer: func(op, _ string) (string, error) {
		pings++
		return `{"alive":true}`, nil
	}}
	require.NoError(t, newTestClient(platform.PlatformPitch).Ensure(context.Background(), s))
	assert.Equal(t, 1, pings)
}

func TestNextSlidePassesChainInOrder(t *testing.T) {
	var sent string
	s := &scriptedSurface{url: "https://pitch.com/p/deck", answer: func(op, req string) (string, error) {
		sent = req
		return `{"moved":true,"method":"next_button"}`, nil
	}}

	out, err := newTestClient(platform.PlatformPitch).NextSlide(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.Equal(t, "next_button", out.Method)

	var decoded struct {
		Payload navigatePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(sent), &decoded))
	assert.Equal(t, []platform.StrategyID(platform.ProfileFor(platform.PlatformPitch).Chain), decoded.Payload.Strategies)
	assert.True(t, decoded.Payload.AddressVerified)
}

func TestNextSlideRetriesThenReportsExhaustion(t *testing.T) {
	calls := 0
	s := &scriptedSurface{url: "https://example.com/deck", answer: func(op, _ string) (string, error) {
		calls++
		return `{"moved":false,"method":""}`, nil
	}}

	out, err := newTestClient(platform.PlatformUnknown).NextSlide(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, out.Moved)
	assert.True(t, out.AttemptsExhausted)
	assert.Equal(t, 3, calls, "full retry budget must be spent before giving up")
}

func TestNextSlideRecoversOnLaterAttempt(t *testing.T) {
	calls := 0
	s := &scriptedSurface{url: "https://example.com/deck", answer: func(op, _ string) (string, error) {
		calls++
		if calls < 3 {
			return `{"moved":false,"method":""}`, nil
		}
		return `{"moved":true,"method":"key_sequence"}`, nil
	}}

	out, err := newTestClient(platform.PlatformUnknown).NextSlide(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, out.Moved)
	assert.Equal(t, "key_sequence", out.Method)
}

func TestNextSlideStopsImmediatelyWhenUnreachable(t *testing.T) {
	s := &scriptedSurface{url: "chrome://crash", answer: func(op, _ string) (string, error) {
		t.Fatal("must not evaluate on a restricted surface")
		return "", nil
	}}

	_, err := newTestClient(platform.PlatformUnknown).NextSlide(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, channel.ErrUnreachable)
}

func TestUnlock(t *testing.T) {
	var sent string
	s := &scriptedSurface{url: "https://docsend.com/view/x", answer: func(op, req string) (string, error) {
		require.Equal(t, OpUnlock, op)
		sent = req
		return `{"attempted":true}`, nil
	}}

	attempted, err := newTestClient(platform.PlatformDocsend).Unlock(context.Background(), s, Credentials{Email: "viewer@example.com"})
	require.NoError(t, err)
	assert.True(t, attempted)
	assert.Equal(t, "viewer@example.com", gjson.Get(sent, "payload.credentials.email").String())
}

func TestPrepare(t *testing.T) {
	s := &scriptedSurface{url: "https://pitch.com/p/deck", answer: func(op, _ string) (string, error) {
		return `{"success":true}`, nil
	}}
	assert.NoError(t, newTestClient(platform.PlatformPitch).Prepare(context.Background(), s))
}

func TestPageInfo(t *testing.T) {
	s := &scriptedSurface{url: "https://docsend.com/view/x", answer: func(op, _ string) (string, error) {
		return `{"platformGuess":"docsend.com","hasNavigationAffordance":true,"estimatedUnitCount":24}`, nil
	}}

	info, err := newTestClient(platform.PlatformDocsend).PageInfo(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "docsend.com", info.PlatformGuess)
	assert.True(t, info.HasNavigationAffordance)
	assert.Equal(t, 24, info.EstimatedUnitCount)
}
