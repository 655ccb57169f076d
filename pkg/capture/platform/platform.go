// Package platform classifies presentation hosts and resolves the
// ordered list of navigation strategies appropriate for each.
package platform

import (
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Platform identifies a known presentation host category.
type Platform string

const (
	// Deck-style hosts: one slide visible at a time, advanced discretely.
	PlatformPitch      Platform = "pitch"
	PlatformSlideshare Platform = "slideshare"
	PlatformDocsend    Platform = "docsend"
	PlatformGamma      Platform = "gamma"
	PlatformCanva      Platform = "canva"
	PlatformFigma      Platform = "figma"

	// Scroll-style hosts: continuous documents advanced by scrolling.
	PlatformNotion     Platform = "notion"
	PlatformGoogleDocs Platform = "google-docs"
	PlatformPDFViewer  Platform = "pdf-viewer"

	// PlatformUnknown gets the generic fallback chain.
	PlatformUnknown Platform = "unknown"
)

// ScrollBased reports whether the platform presents content as a
// continuous document rather than discrete slides.
func (p Platform) ScrollBased() bool {
	switch p {
	case PlatformNotion, PlatformGoogleDocs, PlatformPDFViewer:
		return true
	}
	return false
}

// hostRule maps a hostname pattern to a platform.
type hostRule struct {
	pattern glob.Glob
	plat    Platform
}

var hostRules = []hostRule{
	{glob.MustCompile("{pitch.com,*.pitch.com}"), PlatformPitch},
	{glob.MustCompile("{slideshare.net,*.slideshare.net}"), PlatformSlideshare},
	{glob.MustCompile("{docsend.com,*.docsend.com}"), PlatformDocsend},
	{glob.MustCompile("{gamma.app,*.gamma.app}"), PlatformGamma},
	{glob.MustCompile("{canva.com,*.canva.com}"), PlatformCanva},
	{glob.MustCompile("{figma.com,*.figma.com}"), PlatformFigma},
	{glob.MustCompile("{notion.so,*.notion.so,*.notion.site}"), PlatformNotion},
	{glob.MustCompile("docs.google.com"), PlatformGoogleDocs},
}

// Detect resolves the platform for a page URL. PDF documents are
// recognized by path extension regardless of host; anything else
// unmatched is PlatformUnknown.
func Detect(pageURL string) Platform {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return PlatformUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, r := range hostRules {
		if r.pattern.Match(host) {
			return r.plat
		}
	}
	if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return PlatformPDFViewer
	}
	return PlatformUnknown
}

// Parse converts a platform hint string to a Platform, falling back to
// PlatformUnknown for unrecognized values.
func Parse(hint string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(hint))) {
	case PlatformPitch, PlatformSlideshare, PlatformDocsend, PlatformGamma,
		PlatformCanva, PlatformFigma, PlatformNotion, PlatformGoogleDocs,
		PlatformPDFViewer:
		return Platform(strings.ToLower(strings.TrimSpace(hint)))
	}
	return PlatformUnknown
}
