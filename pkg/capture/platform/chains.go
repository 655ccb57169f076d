package platform

// StrategyID names one navigation strategy the in-page agent can run.
type StrategyID string

const (
	// StrategyNextButton clicks a dedicated next/advance control.
	StrategyNextButton StrategyID = "next_button"
	// StrategyKeySequence dispatches a platform-specific key list.
	StrategyKeySequence StrategyID = "key_sequence"
	// StrategyContentClick clicks the primary content region.
	StrategyContentClick StrategyID = "content_click"
	// StrategyGlobalHook calls a known page-global advance function.
	StrategyGlobalHook StrategyID = "global_hook"
	// StrategyGesture simulates a touch swipe.
	StrategyGesture StrategyID = "gesture"
	// StrategySmartScroll scrolls to the next content block boundary.
	StrategySmartScroll StrategyID = "smart_scroll"
	// StrategyPercentScroll scrolls by a viewport percentage.
	StrategyPercentScroll StrategyID = "percent_scroll"
	// StrategyRawScroll issues a plain scroll-by.
	StrategyRawScroll StrategyID = "raw_scroll"
	// StrategyURLParam increments a slide/page query parameter.
	StrategyURLParam StrategyID = "url_param"
)

// Chain is an ordered, immutable list of strategies tried until one
// reports motion.
type Chain []StrategyID

// Profile bundles the chain with the per-platform parameters the agent
// needs to execute it.
type Profile struct {
	Platform Platform

	// Chain is tried strictly in order on every navigate call.
	Chain Chain

	// NextSelectors are candidate selectors for the advance control,
	// most specific first.
	NextSelectors []string

	// Keys is the ordered key list for StrategyKeySequence.
	Keys []string

	// ContentSelector locates the primary content region for clicks
	// and gestures.
	ContentSelector string

	// HookNames are page-global function names for StrategyGlobalHook.
	HookNames []string

	// ScrollContainer is the scrollable element for document-style
	// platforms; empty means the window scrolls.
	ScrollContainer string

	// URLParams are query parameters StrategyURLParam may increment.
	URLParams []string

	// AddressVerified means the platform exposes slide position in the
	// URL, so the agent verifies motion by address compare instead of
	// presuming success.
	AddressVerified bool
}

var deckKeys = []string{"ArrowRight", "ArrowDown", " ", "PageDown"}

var profiles = map[Platform]*Profile{
	PlatformPitch: {
		Platform:        PlatformPitch,
		Chain:           Chain{StrategyNextButton, StrategyKeySequence, StrategyContentClick, StrategyGlobalHook, StrategyGesture},
		NextSelectors:   []string{"[data-testid='present-next-slide']", "button[aria-label='Next slide']", ".player-controls button:last-of-type"},
		Keys:            deckKeys,
		ContentSelector: ".slide-wrapper, [data-testid='slide']",
		AddressVerified: true,
	},
	PlatformSlideshare: {
		Platform:        PlatformSlideshare,
		Chain:           Chain{StrategyNextButton, StrategyKeySequence, StrategyContentClick, StrategyGesture},
		NextSelectors:   []string{"button[data-cy='next-slide']", "#next-slide", "button[aria-label='Next slide']"},
		Keys:            deckKeys,
		ContentSelector: "#slide-container, .slide-container",
	},
	PlatformDocsend: {
		Platform:        PlatformDocsend,
		Chain:           Chain{StrategyNextButton, StrategyKeySequence, StrategyContentClick, StrategyGesture},
		NextSelectors:   []string{"#nextPageIcon", ".toolbar-page-indicator + a", "a[aria-label='Next page']"},
		Keys:            []string{"ArrowRight", "PageDown"},
		ContentSelector: ".preso-view, #viewer",
		AddressVerified: true,
	},
	PlatformGamma: {
		Platform:        PlatformGamma,
		Chain:           Chain{StrategyNextButton, StrategyKeySequence, StrategyGlobalHook, StrategyContentClick, StrategyGesture, StrategySmartScroll, StrategyPercentScroll},
		NextSelectors:   []string{"button[aria-label='Next card']", ".navigation-arrow-next"},
		Keys:            deckKeys,
		ContentSelector: ".card-wrapper, main",
		HookNames:       []string{"__gammaNextCard"},
	},
	PlatformCanva: {
		Platform:        PlatformCanva,
		Chain:           Chain{StrategyNextButton, StrategyKeySequence, StrategyContentClick, StrategyGesture},
		NextSelectors:   []string{"button[aria-label='Next page']", "button[aria-label='Next']"},
		Keys:            deckKeys,
		ContentSelector: "canvas, .page-view",
	},
	PlatformFigma: {
		Platform:        PlatformFigma,
		Chain:           Chain{StrategyKeySequence, StrategyNextButton, StrategyContentClick},
		NextSelectors:   []string{"[data-testid='presentation-next-frame']"},
		Keys:            []string{"ArrowRight", "n"},
		ContentSelector: "canvas",
	},
	PlatformNotion: {
		Platform:        PlatformNotion,
		Chain:           Chain{StrategySmartScroll, StrategyPercentScroll, StrategyRawScroll},
		ContentSelector: ".notion-page-content",
		ScrollContainer: ".notion-frame .notion-scroller",
	},
	PlatformGoogleDocs: {
		Platform:        PlatformGoogleDocs,
		Chain:           Chain{StrategySmartScroll, StrategyPercentScroll, StrategyRawScroll},
		ContentSelector: ".kix-appview-editor",
		ScrollContainer: ".kix-appview-editor",
	},
	PlatformPDFViewer: {
		Platform:        PlatformPDFViewer,
		Chain:           Chain{StrategyKeySequence, StrategySmartScroll, StrategyPercentScroll, StrategyRawScroll},
		Keys:            []string{"PageDown", "ArrowDown"},
		ContentSelector: "embed, #viewer",
	},
}

// fallback is the generic chain for unrecognized hosts: every discrete
// strategy first, then the URL parameter trick, then scroll descent.
var fallback = &Profile{
	Platform: PlatformUnknown,
	Chain: Chain{
		StrategyNextButton, StrategyKeySequence, StrategyContentClick,
		StrategyGesture, StrategyGlobalHook, StrategyURLParam,
		StrategySmartScroll, StrategyPercentScroll, StrategyRawScroll,
	},
	NextSelectors: []string{
		"button[aria-label*='next' i]", "[class*='next']:not([class*='prev'])",
		"[data-testid*='next']", "a[rel='next']",
	},
	Keys:            deckKeys,
	ContentSelector: "main, body",
	HookNames:       []string{"nextSlide", "next", "goNext"},
	URLParams:       []string{"slide", "page", "index"},
}

// ProfileFor returns the navigation profile for a platform. The result
// is shared and must not be mutated.
func ProfileFor(p Platform) *Profile {
	if prof, ok := profiles[p]; ok {
		return prof
	}
	return fallback
}
