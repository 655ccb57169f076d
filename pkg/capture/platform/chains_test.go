package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileForKnownPlatforms(t *testing.T) {
	for _, p := range []Platform{
		PlatformPitch, PlatformSlideshare, PlatformDocsend, PlatformGamma,
		PlatformCanva, PlatformFigma, PlatformNotion, PlatformGoogleDocs,
		PlatformPDFViewer,
	} {
		prof := ProfileFor(p)
		require.NotNil(t, prof, p)
		assert.Equal(t, p, prof.Platform)
		assert.NotEmpty(t, prof.Chain, "%s must have a chain", p)
	}
}

func TestProfileForUnknownGetsFallback(t *testing.T) {
	prof := ProfileFor(PlatformUnknown)
	require.NotNil(t, prof)
	assert.Equal(t, PlatformUnknown, prof.Platform)
	assert.Contains(t, prof.Chain, StrategyURLParam)
	// Scroll descent comes last in the fallback chain.
	assert.Equal(t, StrategyRawScroll, prof.Chain[len(prof.Chain)-1])
}

func TestChainsAreDeterministic(t *testing.T) {
	a := ProfileFor(PlatformPitch).Chain
	b := ProfileFor(PlatformPitch).Chain
	assert.Equal(t, a, b)
}

func TestScrollStrategiesOnlyOnScrollCapablePlatforms(t *testing.T) {
	hasScroll := func(c Chain) bool {
		for _, s := range c {
			switch s {
			case StrategySmartScroll, StrategyPercentScroll, StrategyRawScroll:
				return true
			}
		}
		return false
	}

	for _, p := range []Platform{PlatformNotion, PlatformGoogleDocs, PlatformPDFViewer} {
		assert.True(t, hasScroll(ProfileFor(p).Chain), p)
	}
	for _, p := range []Platform{PlatformPitch, PlatformSlideshare, PlatformDocsend, PlatformCanva, PlatformFigma} {
		assert.False(t, hasScroll(ProfileFor(p).Chain), p)
	}
}

func TestDeckChainsPrioritizeStructuralControl(t *testing.T) {
	for _, p := range []Platform{PlatformPitch, PlatformSlideshare, PlatformDocsend, PlatformCanva} {
		prof := ProfileFor(p)
		require.NotEmpty(t, prof.Chain)
		assert.Equal(t, StrategyNextButton, prof.Chain[0], p)
		assert.NotEmpty(t, prof.NextSelectors, p)
	}
}
