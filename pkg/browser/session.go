package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is one live browser tab. It satisfies the capture engine's
// surface contract.
type Session struct {
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	navTimeout time.Duration
	manager    *Manager
}

// Navigate loads the given URL and waits for the load event.
func (s *Session) Navigate(url string) error {
	timeout := float64(s.navTimeout.Milliseconds())
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   &timeout,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// URL returns the page's current address.
func (s *Session) URL() string {
	return s.page.URL()
}

// Closed reports whether the page has been destroyed.
func (s *Session) Closed() bool {
	return s.page.IsClosed()
}

// Evaluate runs a script expression in the page and returns its result
// as a JSON-encoded string. Promises are awaited by the driver before
// the result comes back.
func (s *Session) Evaluate(ctx context.Context, script string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := s.page.Evaluate(script)
	if err != nil {
		return "", fmt.Errorf("evaluate failed: %w", err)
	}
	return stringifyResult(v)
}

// Content returns the page's serialized HTML.
func (s *Session) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("content read failed: %w", err)
	}
	return html, nil
}

// Screenshot captures the visible viewport as a PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return img, nil
}

// Activate brings the tab to the front so a retried capture sees a
// rendered viewport.
func (s *Session) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.page.BringToFront(); err != nil {
		return fmt.Errorf("activate failed: %w", err)
	}
	return nil
}

// Close releases the tab's resources. Errors during cleanup are
// ignored so every layer gets a close attempt.
func (s *Session) Close() {
	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()
	if s.manager != nil {
		s.manager.release(s)
	}
}

// stringifyResult normalizes an evaluation result. Script replies are
// already JSON strings; anything else is re-encoded so callers always
// see one shape.
func stringifyResult(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", fmt.Errorf("encode evaluate result: %w", err)
		}
		return string(b), nil
	}
}
