package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deckshot/deckshot/pkg/capture"
	"github.com/deckshot/deckshot/pkg/logging"
)

// runSummary is the JSON document written next to the frames.
type runSummary struct {
	RunID      string          `json:"run_id"`
	URL        string          `json:"url"`
	FinishedAt time.Time       `json:"finished_at"`
	Result     *capture.Result `json:"result"`
}

// writeFrames saves every good frame as a numbered PNG and returns the
// count written. Failed slots keep their index so file numbering lines
// up with the frame records.
func writeFrames(dir string, frames []capture.FrameRecord) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	written := 0
	for _, f := range frames {
		if !f.Success || len(f.Image) == 0 {
			continue
		}
		name := filepath.Join(dir, fmt.Sprintf("frame-%03d.png", f.Index))
		if err := os.WriteFile(name, f.Image, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

// writeSummary writes the machine-readable run summary alongside the
// frames. Frame image bytes are excluded from the document.
func writeSummary(dir, url string, result *capture.Result) error {
	summary := runSummary{
		RunID:      logging.RunID(),
		URL:        url,
		FinishedAt: time.Now().UTC(),
		Result:     result,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	name := filepath.Join(dir, "summary.json")
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
