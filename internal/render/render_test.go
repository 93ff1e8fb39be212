package render

import (
	"strings"
	"testing"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

var renderTime = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func TestMarkdownEmpty(t *testing.T) {
	out := Markdown(nil, renderTime)
	if !strings.Contains(out, "2026-08-30") {
		t.Errorf("digest should carry the date, got:\n%s", out)
	}
	if !strings.Contains(out, "No topics returned results.") {
		t.Errorf("empty digest should say so, got:\n%s", out)
	}
}

func TestMarkdownSections(t *testing.T) {
	reports := []*report.Report{
		{
			Topic: "agentic coding tools",
			Reddit: []report.RedditPost{
				{Title: "Thread", URL: "https://reddit.com/t", Score: 42, Relevance: "widely discussed", Date: "2026-08-20"},
			},
			Web: []report.WebResult{
				{Title: "Post", URL: "https://blog.example/p", Score: 9, Relevance: "background"},
			},
		},
		nil,
		{Topic: "empty topic"},
	}

	out := Markdown(reports, renderTime)

	for _, want := range []string{
		"## agentic coding tools",
		"### Reddit",
		"[Thread](https://reddit.com/t)",
		"score 42",
		"2026-08-20",
		"widely discussed",
		"### Web",
		"## empty topic",
		"No results.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("digest missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "### X") {
		t.Error("digest should omit empty categories")
	}
}

func TestMarkdownDeterministic(t *testing.T) {
	reports := []*report.Report{{
		Topic: "t",
		X:     []report.XPost{{Text: "post", URL: "https://x.com/p", Score: 5, Relevance: "r"}},
	}}
	if Markdown(reports, renderTime) != Markdown(reports, renderTime) {
		t.Error("rendering must be deterministic")
	}
}
