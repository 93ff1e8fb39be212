// Package synth invokes the LLM synthesis subprocess that turns raw
// reports into a readable digest. Failure here is never fatal; callers
// fall back to deterministic rendering.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/logging"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// Synthesizer renders markdown from a batch of reports.
type Synthesizer interface {
	Synthesize(ctx context.Context, reports []*report.Report, contextText string) (string, error)
}

// CommandSynthesizer pipes the reports as JSON into the synthesis
// subprocess and reads markdown from its stdout.
type CommandSynthesizer struct {
	Command string
	Timeout time.Duration
}

// NewCommandSynthesizer returns a synthesizer for the named command.
// A zero timeout defaults to five minutes; synthesis is allowed to run
// longer than a single topic query.
func NewCommandSynthesizer(command string, timeout time.Duration) *CommandSynthesizer {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CommandSynthesizer{Command: command, Timeout: timeout}
}

func (s *CommandSynthesizer) Synthesize(ctx context.Context, reports []*report.Report, contextText string) (string, error) {
	input, err := json.Marshal(reports)
	if err != nil {
		return "", fmt.Errorf("encoding reports: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Command, "--context", contextText)
	cmd.WaitDelay = 5 * time.Second
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	logging.Debug("synthesis finished", "elapsed", time.Since(start), "err", err)

	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("synthesis timed out after %s", s.Timeout)
	}
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.New("synthesis produced no output")
	}
	return out, nil
}
