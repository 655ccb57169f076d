// Package main provides the deckshot command, a headless capture tool
// that walks a browser-hosted slide deck and saves one image per slide.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/deckshot/deckshot/pkg/browser"
	"github.com/deckshot/deckshot/pkg/capture"
	"github.com/deckshot/deckshot/pkg/capture/agent"
	"github.com/deckshot/deckshot/pkg/config"
	"github.com/deckshot/deckshot/pkg/logging"
)

const version = "0.1.0"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// cliConfig holds command-line configuration.
type cliConfig struct {
	URL          string
	ConfigFile   string
	OutDir       string
	PlatformHint string
	Email        string
	Passcode     string
	LogLevel     string
	MaxFrames    int
	Headless     bool
	Timeout      time.Duration
	ShowVersion  bool

	set map[string]bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("deckshot v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, failStyle.Render("✗ ")+err.Error())
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags and records which were set
// explicitly so they can override config file values.
func parseFlags() *cliConfig {
	cli := &cliConfig{}

	flag.StringVar(&cli.URL, "url", "", "Target presentation URL (required if no config file)")
	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&cli.OutDir, "out", "", "Output directory for captured frames")
	flag.StringVar(&cli.PlatformHint, "platform", "", "Override platform detection (pitch, slideshare, docsend, ...)")
	flag.StringVar(&cli.Email, "email", "", "Email for access-gated decks")
	flag.StringVar(&cli.Passcode, "passcode", "", "Passcode for access-gated decks")
	flag.StringVar(&cli.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.IntVar(&cli.MaxFrames, "max-frames", 0, "Maximum number of frames to capture")
	flag.BoolVar(&cli.Headless, "headless", true, "Run the browser without a visible window")
	flag.DurationVar(&cli.Timeout, "timeout", 0, "Overall run timeout (0 means none)")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Deckshot - Slide Deck Capture\n\n")
		fmt.Fprintf(os.Stderr, "Usage: deckshot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Capture a public deck\n")
		fmt.Fprintf(os.Stderr, "  deckshot -url https://pitch.com/v/some-deck\n\n")
		fmt.Fprintf(os.Stderr, "  # Capture with a config file\n")
		fmt.Fprintf(os.Stderr, "  deckshot -config deckshot.yaml\n\n")
		fmt.Fprintf(os.Stderr, "  # Gated DocSend deck, visible browser\n")
		fmt.Fprintf(os.Stderr, "  deckshot -url https://docsend.com/view/abc -email me@example.com -headless=false\n\n")
	}

	flag.Parse()

	cli.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { cli.set[f.Name] = true })
	return cli
}

// run executes one capture session end to end.
func run(ctx context.Context, cli *cliConfig) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Configure(cfg.Logging.Level, cfg.Logging.Dir); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	log := logging.New("main")

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	mgr := browser.NewManager(logging.New("browser"))
	if err := mgr.Initialize(); err != nil {
		return err
	}
	defer mgr.Shutdown()

	sess, err := mgr.Open(browser.Options{
		Headless:       cfg.Browser.Headless,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		NavTimeout:     cfg.Browser.NavTimeout.Std(),
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	log.Info().Str("url", cfg.URL).Msg("loading target")
	if err := sess.Navigate(cfg.URL); err != nil {
		return err
	}

	ctrl := capture.NewController(policiesFrom(cfg), logging.New("capture"))
	req := capture.Request{
		MaxFrames:    cfg.Capture.MaxFrames,
		PlatformHint: cfg.Capture.PlatformHint,
	}
	if cfg.Capture.Gate.Email != "" || cfg.Capture.Gate.Passcode != "" {
		req.Gate = &agent.Credentials{
			Email:    cfg.Capture.Gate.Email,
			Passcode: cfg.Capture.Gate.Passcode,
		}
	}

	result, err := ctrl.Capture(ctx, sess, req)
	if err != nil {
		return err
	}

	written, err := writeFrames(cfg.Output.Dir, result.Frames)
	if err != nil {
		return err
	}
	if cfg.Output.Summary {
		if err := writeSummary(cfg.Output.Dir, cfg.URL, &result); err != nil {
			return err
		}
	}

	printResult(cfg, &result, written)
	if !result.Success {
		return fmt.Errorf("capture failed: %s", result.Reason)
	}
	return nil
}

// loadConfig loads the run configuration from file or defaults, then
// applies explicit CLI overrides on top.
func loadConfig(cli *cliConfig) (*config.Config, error) {
	cfg := config.Default()
	if cli.ConfigFile != "" {
		loaded, err := config.Load(cli.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cli.URL != "" {
		cfg.URL = cli.URL
	}
	if cli.MaxFrames > 0 {
		cfg.Capture.MaxFrames = cli.MaxFrames
	}
	if cli.OutDir != "" {
		cfg.Output.Dir = cli.OutDir
	}
	if cli.PlatformHint != "" {
		cfg.Capture.PlatformHint = cli.PlatformHint
	}
	if cli.Email != "" {
		cfg.Capture.Gate.Email = cli.Email
	}
	if cli.Passcode != "" {
		cfg.Capture.Gate.Passcode = cli.Passcode
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.set["headless"] {
		cfg.Browser.Headless = cli.Headless
	}

	return cfg, nil
}

// policiesFrom maps the capture section of the config onto engine
// budgets, falling back to defaults for anything unset.
func policiesFrom(cfg *config.Config) capture.Policies {
	p := capture.DefaultPolicies()
	if cfg.Capture.MinInterval > 0 {
		p.MinCaptureInterval = cfg.Capture.MinInterval.Std()
	}
	if cfg.Capture.RecaptureAttempts > 0 {
		p.RecaptureAttempts = cfg.Capture.RecaptureAttempts
	}
	if cfg.Capture.NavigateRetries > 0 {
		p.NavigateRetries = cfg.Capture.NavigateRetries
	}
	if cfg.Capture.CallTimeout > 0 {
		p.CallTimeout = cfg.Capture.CallTimeout.Std()
	}
	return p
}

// printResult renders the one-line run outcome.
func printResult(cfg *config.Config, result *capture.Result, written int) {
	status := okStyle.Render("✓ capture complete")
	if !result.Success {
		status = failStyle.Render("✗ capture failed")
	} else if !result.EndOfContent() {
		status = okStyle.Render("✓ capture complete") + dimStyle.Render(" (partial)")
	}

	detail := fmt.Sprintf("%d/%d frames", result.GoodFrames(), len(result.Frames))
	if result.ReachedEnd {
		detail += ", end of content"
	}
	if result.Reason != "" {
		detail += ", " + result.Reason
	}

	fmt.Printf("%s %s\n", status, dimStyle.Render(detail))
	if written > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("  frames written to %s", cfg.Output.Dir)))
	}
}
