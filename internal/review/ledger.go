// Package review tracks accept/reject decisions for findings, keyed by
// fingerprint, and answers which findings are still unreviewed.
package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Decision is the outcome recorded for a reviewed finding.
type Decision string

const (
	Accepted Decision = "accepted"
	Rejected Decision = "rejected"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == Accepted || d == Rejected
}

// Entry records one decision. The last recorded decision for a
// fingerprint is authoritative; prior decisions are not retained.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	Decision    Decision  `json:"decision"`
	Date        time.Time `json:"date"`
}

// Ledger is the persisted review state: at most one entry per
// fingerprint.
type Ledger struct {
	Version  int     `json:"version"`
	Reviewed []Entry `json:"reviewed"`
}

const currentVersion = 1

// Load reads the ledger at path. An absent or unreadable file yields an
// empty version-1 ledger; corruption is treated as absence, never as an
// error.
func Load(path string) Ledger {
	empty := Ledger{Version: currentVersion, Reviewed: []Entry{}}
	data, err := os.ReadFile(path)
	if err != nil {
		return empty
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return empty
	}
	if l.Version == 0 {
		l.Version = currentVersion
	}
	if l.Reviewed == nil {
		l.Reviewed = []Entry{}
	}
	return l
}

// Fingerprints returns the set of reviewed fingerprints.
func (l Ledger) Fingerprints() map[string]bool {
	set := make(map[string]bool, len(l.Reviewed))
	for _, e := range l.Reviewed {
		set[e.Fingerprint] = true
	}
	return set
}

// RecordDecisions applies one decision to a batch of fingerprints:
// any prior entry for a batch fingerprint is removed, then a fresh
// entry is appended for each. The ledger is persisted atomically.
func RecordDecisions(path string, fingerprints []string, decision Decision, now time.Time) error {
	if !decision.Valid() {
		return fmt.Errorf("unknown decision %q", decision)
	}
	if len(fingerprints) == 0 {
		return nil
	}

	l := Load(path)

	incoming := make(map[string]bool, len(fingerprints))
	for _, fp := range fingerprints {
		incoming[fp] = true
	}

	kept := l.Reviewed[:0]
	for _, e := range l.Reviewed {
		if !incoming[e.Fingerprint] {
			kept = append(kept, e)
		}
	}
	l.Reviewed = kept

	added := make(map[string]bool, len(fingerprints))
	for _, fp := range fingerprints {
		if added[fp] {
			continue
		}
		added[fp] = true
		l.Reviewed = append(l.Reviewed, Entry{Fingerprint: fp, Decision: decision, Date: now})
	}

	return save(path, l)
}

func save(path string, l Ledger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
