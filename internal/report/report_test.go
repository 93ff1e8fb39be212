package report

import (
	"errors"
	"testing"
)

func TestParseValid(t *testing.T) {
	data := []byte(`{
		"topic": "llm evaluation",
		"reddit": [{"title": "A", "url": "https://reddit.com/a", "score": 10, "relevance": "why"}],
		"x": [{"text": "B", "url": "https://x.com/b", "score": 20, "relevance": "why"}],
		"web": [{"title": "C", "url": "https://c.example", "score": 30, "relevance": "why"}]
	}`)

	r, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Topic != "llm evaluation" {
		t.Errorf("topic = %q", r.Topic)
	}
	if len(r.Reddit) != 1 || len(r.X) != 1 || len(r.Web) != 1 {
		t.Errorf("unexpected item counts: %d/%d/%d", len(r.Reddit), len(r.X), len(r.Web))
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "definitely not json"},
		{"missing topic", `{"reddit":[],"x":[],"web":[]}`},
		{"reddit item without url", `{"topic":"t","reddit":[{"title":"A","score":1,"relevance":"r"}]}`},
		{"web item without url", `{"topic":"t","web":[{"title":"C","score":1,"relevance":"r"}]}`},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.data))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected *ValidationError, got %T", tt.name, err)
		}
	}
}

func TestParseEmptyCategories(t *testing.T) {
	r, err := Parse([]byte(`{"topic":"t"}`))
	if err != nil {
		t.Fatalf("a report with no items is still valid: %v", err)
	}
	if len(r.Reddit)+len(r.X)+len(r.Web) != 0 {
		t.Error("expected no items")
	}
}

func TestParseListDropsNulls(t *testing.T) {
	data := []byte(`[{"topic":"a"}, null, {"topic":"b"}]`)
	reports, err := ParseList(data)
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected nulls dropped, got %d reports", len(reports))
	}
	if reports[0].Topic != "a" || reports[1].Topic != "b" {
		t.Errorf("unexpected order: %s, %s", reports[0].Topic, reports[1].Topic)
	}
}

func TestParseListMalformed(t *testing.T) {
	if _, err := ParseList([]byte("nope")); err == nil {
		t.Error("expected error for malformed list")
	}
}
