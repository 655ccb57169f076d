// Package browser provides the Playwright-backed capture surface.
//
// The package wraps a single Chromium instance behind a Manager and
// exposes each tab as a Session. Sessions implement the surface
// contract the capture engine evaluates scripts against: address and
// liveness checks, script evaluation, HTML serialization, viewport
// screenshots, and re-activation after a transient failure.
//
// # Lifecycle
//
//  1. NewManager + Initialize start the Playwright driver (installing
//     it on first run).
//  2. Open launches a browser, creates an isolated context and page,
//     and returns the Session.
//  3. Session.Close releases the tab's resources; Manager.Shutdown
//     tears down every session and stops the driver.
//
// The Manager is safe for concurrent use. A Session is not: the
// capture engine drives one session from one goroutine.
package browser
