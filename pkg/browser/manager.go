package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

// Default values for session options.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultNavTimeout     = 30 * time.Second
)

// Options configures a new capture session.
type Options struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// ViewportWidth and ViewportHeight set the page size. Zero values
	// fall back to the defaults.
	ViewportWidth  int
	ViewportHeight int

	// NavTimeout bounds initial navigation and becomes the page's
	// default operation timeout.
	NavTimeout time.Duration
}

// Manager owns the Playwright driver and the sessions opened from it.
type Manager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	sessions    map[*Session]struct{}
	log         zerolog.Logger
	initialized bool
}

// NewManager creates a manager. Initialize must be called before Open.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[*Session]struct{}),
		log:      log,
	}
}

// Initialize installs (if needed) and starts the Playwright driver.
// Driver output is discarded so it cannot interleave with our own.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.pw = pw
	m.initialized = true
	m.log.Debug().Msg("playwright driver started")
	return nil
}

// Open launches a browser, creates an isolated context and page, and
// returns the session. The caller owns the session until Close.
func (m *Manager) Open(opts Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = DefaultNavTimeout
	}

	browser, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(float64(opts.NavTimeout.Milliseconds()))

	s := &Session{
		browser:    browser,
		context:    context,
		page:       page,
		navTimeout: opts.NavTimeout,
		manager:    m,
	}
	m.sessions[s] = struct{}{}
	m.log.Debug().
		Bool("headless", opts.Headless).
		Int("viewport_width", opts.ViewportWidth).
		Int("viewport_height", opts.ViewportHeight).
		Msg("browser session opened")
	return s, nil
}

// release drops a session from the manager's registry.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s)
}

// Shutdown closes every open session and stops the Playwright driver.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for s := range m.sessions {
		s.page.Close()
		s.context.Close()
		s.browser.Close()
		delete(m.sessions, s)
	}

	if m.initialized && m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
