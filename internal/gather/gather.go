// Package gather runs the research subprocess once per topic and fans
// the results back in, aligned to the original topic order.
package gather

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/logging"
	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// Gatherer produces one report for one topic.
type Gatherer interface {
	Gather(ctx context.Context, topic string, days int) (*report.Report, error)
}

// CommandGatherer shells out to the research subprocess. The command is
// given the topic and a lookback window and must emit one report as
// JSON on stdout within Timeout.
type CommandGatherer struct {
	Command string
	Timeout time.Duration
}

// NewCommandGatherer returns a gatherer for the named command. A zero
// timeout defaults to two minutes.
func NewCommandGatherer(command string, timeout time.Duration) *CommandGatherer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CommandGatherer{Command: command, Timeout: timeout}
}

func (g *CommandGatherer) Gather(ctx context.Context, topic string, days int) (*report.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.Command, topic, "--days", strconv.Itoa(days))
	// Reap the child shortly after the deadline kill fires.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logging.Debug("gather finished", "topic", topic, "elapsed", time.Since(start), "err", err)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("topic %q: research timed out after %s", topic, g.Timeout)
	}
	if err != nil {
		msg := firstLine(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("topic %q: %w: %s", topic, err, msg)
		}
		return nil, fmt.Errorf("topic %q: %w", topic, err)
	}

	r, err := report.Parse(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("topic %q: %w", topic, err)
	}
	return r, nil
}

// Result pairs a topic with its report or failure.
type Result struct {
	Topic  string
	Report *report.Report
	Err    error
}

// GatherAll queries every topic concurrently and returns one result per
// topic, in the original topic order. A failed topic yields a nil
// report and an error; it is never retried and never fails the run.
func GatherAll(ctx context.Context, g Gatherer, topics []string, days int) []Result {
	results := make([]Result, len(topics))

	var wg sync.WaitGroup
	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			r, err := g.Gather(ctx, topic, days)
			results[i] = Result{Topic: topic, Report: r, Err: err}
		}(i, topic)
	}
	wg.Wait()

	return results
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
