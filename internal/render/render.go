// Package render produces the deterministic markdown digest used when
// LLM synthesis is unavailable or fails.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/nathanvale/side-quest-community-intel-cache/internal/report"
)

// Markdown renders a digest of the given reports. Output is a pure
// function of its inputs: same reports and date, same markdown.
func Markdown(reports []*report.Report, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Community Intel Digest: %s\n", now.Format("2006-01-02"))

	kept := make([]*report.Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			kept = append(kept, r)
		}
	}

	if len(kept) == 0 {
		b.WriteString("\nNo topics returned results.\n")
		return b.String()
	}

	for _, r := range kept {
		fmt.Fprintf(&b, "\n## %s\n", r.Topic)

		if len(r.Reddit) > 0 {
			b.WriteString("\n### Reddit\n\n")
			for _, p := range r.Reddit {
				writeItem(&b, p.Title, p.URL, p.Score, p.Relevance, p.Date)
			}
		}
		if len(r.X) > 0 {
			b.WriteString("\n### X\n\n")
			for _, p := range r.X {
				writeItem(&b, p.Text, p.URL, p.Score, p.Relevance, p.Date)
			}
		}
		if len(r.Web) > 0 {
			b.WriteString("\n### Web\n\n")
			for _, w := range r.Web {
				writeItem(&b, w.Title, w.URL, w.Score, w.Relevance, "")
			}
		}

		if len(r.Reddit) == 0 && len(r.X) == 0 && len(r.Web) == 0 {
			b.WriteString("\nNo results.\n")
		}
	}

	return b.String()
}

func writeItem(b *strings.Builder, title, url string, score int, relevance, date string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = url
	}
	fmt.Fprintf(b, "- [%s](%s) (score %d", title, url, score)
	if date != "" {
		fmt.Fprintf(b, ", %s", date)
	}
	b.WriteString(")")
	if relevance = strings.TrimSpace(relevance); relevance != "" {
		fmt.Fprintf(b, " - %s", relevance)
	}
	b.WriteString("\n")
}
