package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckshot/deckshot/pkg/capture/platform"
)

func TestScanAffordance(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "aria label",
			html: `<html><body><button aria-label="Next slide">→</button></body></html>`,
			want: true,
		},
		{
			name: "rel next link",
			html: `<html><body><a rel="next" href="/p/2">2</a></body></html>`,
			want: true,
		},
		{
			name: "class name",
			html: `<div><button class="nav-next-arrow"></button></div>`,
			want: true,
		},
		{
			name: "visible text",
			html: `<html><body><a href="#">Advance</a></body></html>`,
			want: true,
		},
		{
			name: "prev control does not count",
			html: `<html><body><button class="nav-prev-next-group prev"></button></body></html>`,
			want: false,
		},
		{
			name: "plain page",
			html: `<html><body><p>Quarterly results</p></body></html>`,
			want: false,
		},
		{
			name: "word in prose is not a control",
			html: `<html><body><p>The next chapter covers revenue.</p></body></html>`,
			want: false,
		},
		{
			name: "malformed markup is parsed tolerantly",
			html: `<button aria-label="Next`,
			want: true,
		},
		{
			name: "empty input",
			html: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScanAffordance(tt.html))
		})
	}
}

func TestProbePageMergesHTMLScan(t *testing.T) {
	s := &scriptedSurface{
		url:     "https://example.com/deck",
		content: `<html><body><button class="deck-next"></button></body></html>`,
		answer: func(op, _ string) (string, error) {
			return `{"platformGuess":"example.com","hasNavigationAffordance":false,"estimatedUnitCount":0}`, nil
		},
	}

	info, err := newTestClient(platform.PlatformUnknown).ProbePage(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, info.HasNavigationAffordance, "HTML scan must supplement the agent's report")
	assert.Equal(t, "example.com", info.PlatformGuess)
}

func TestProbePageKeepsAgentPositive(t *testing.T) {
	s := &scriptedSurface{
		url:     "https://example.com/deck",
		content: `<html><body></body></html>`,
		answer: func(op, _ string) (string, error) {
			return `{"platformGuess":"example.com","hasNavigationAffordance":true,"estimatedUnitCount":9}`, nil
		},
	}

	info, err := newTestClient(platform.PlatformUnknown).ProbePage(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, info.HasNavigationAffordance)
	assert.Equal(t, 9, info.EstimatedUnitCount)
}
