// Package report defines the structured result emitted by the research
// subprocess for a single topic, and validates it at the ingestion boundary.
package report

import (
	"encoding/json"
	"fmt"
)

// RedditPost is a single reddit result within a report.
type RedditPost struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit,omitempty"`
	Score     int    `json:"score"`
	Relevance string `json:"relevance"`
	Date      string `json:"date,omitempty"`
}

// XPost is a single X/Twitter result within a report. Score is the
// combined engagement count reported by the research subprocess.
type XPost struct {
	Text      string `json:"text"`
	URL       string `json:"url"`
	Author    string `json:"author,omitempty"`
	Score     int    `json:"score"`
	Relevance string `json:"relevance"`
	Date      string `json:"date,omitempty"`
}

// WebResult is a single web result within a report. Web sources carry
// no publication date.
type WebResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Score     int    `json:"score"`
	Relevance string `json:"relevance"`
}

// Report bundles the per-topic results from all three source categories.
type Report struct {
	Topic  string       `json:"topic"`
	Reddit []RedditPost `json:"reddit"`
	X      []XPost      `json:"x"`
	Web    []WebResult  `json:"web"`
}

// ValidationError describes why subprocess output failed validation.
// It is treated identically to malformed output by callers.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid report: %s: %s", e.Field, e.Msg)
}

// Parse decodes and validates a single report. Any shape problem is
// returned as a *ValidationError; callers treat it as a failed topic.
func Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &ValidationError{Field: "report", Msg: err.Error()}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the fields a downstream extractor depends on.
func (r *Report) Validate() error {
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Msg: "missing"}
	}
	for i, p := range r.Reddit {
		if p.URL == "" {
			return &ValidationError{Field: fmt.Sprintf("reddit[%d].url", i), Msg: "missing"}
		}
	}
	for i, p := range r.X {
		if p.URL == "" {
			return &ValidationError{Field: fmt.Sprintf("x[%d].url", i), Msg: "missing"}
		}
	}
	for i, w := range r.Web {
		if w.URL == "" {
			return &ValidationError{Field: fmt.Sprintf("web[%d].url", i), Msg: "missing"}
		}
	}
	return nil
}

// ParseList decodes an array of reports, as persisted in the raw-results
// artifact. Null entries (failed topics) are dropped.
func ParseList(data []byte) ([]*Report, error) {
	var reports []*Report
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, &ValidationError{Field: "reports", Msg: err.Error()}
	}
	out := reports[:0]
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
