package cache

import "time"

// Metadata describes the freshness state of a cache directory. It is
// created or overwritten whole on every successful or backoff write,
// never partially updated. NextUpdateAfter is always >= LastUpdated.
type Metadata struct {
	LastUpdated      time.Time `json:"last_updated"`
	TopicsResearched []string  `json:"topics_researched"`
	NextUpdateAfter  time.Time `json:"next_update_after"`
}

// Intervals configures the refresh deadline policy.
type Intervals struct {
	RefreshIntervalDays   int
	ThinCacheIntervalDays int
}

// DefaultIntervals returns the standard refresh policy.
func DefaultIntervals() Intervals {
	return Intervals{RefreshIntervalDays: 30, ThinCacheIntervalDays: 7}
}

// Cache directory artifacts. The review ledger lives alongside the
// three refresh artifacts but is owned by the review package and
// survives a reset.
const (
	ContentFile    = "research.md"
	RawResultsFile = "raw_results.json"
	MetadataFile   = "cache_metadata.json"
	LedgerFile     = "reviewed_hashes.json"
)

// DefaultMaxAgeDays is the ceiling on cache age regardless of the
// computed refresh deadline; a clock-skew and indefinite-staleness guard.
const DefaultMaxAgeDays = 60

// backoffInterval is the fixed retry delay after a run in which every
// topic failed. Deliberately configuration-independent.
const backoffInterval = 4 * time.Hour
