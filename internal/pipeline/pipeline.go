package pipeline

import (
	"context"
	"time"

	"autoapply-engine/internal/domain"
)

// State tracks one run through the stages. Batching failures for a single
// listing never regress the state; only a ledger failure stops short of
// StatePersisted.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateFiltering
	StateBatching
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateFiltering:
		return "filtering"
	case StateBatching:
		return "batching"
	case StatePersisted:
		return "persisted"
	}
	return "unknown"
}

// Customizer renders the per-job application documents. Empty return means
// the stage failed for that listing; the record is still written.
type Customizer interface {
	CustomizeResume(l domain.Listing, ks domain.KeywordSet) string
	CustomizeCoverLetter(l domain.Listing, ks domain.KeywordSet) string
}

// FollowUpScheduler registers the reminder; false means it didn't happen,
// which is recorded, never escalated.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, jobTitle, company string, applicationDate time.Time, delayDays int) bool
}

// Store is the ledger surface the orchestrator needs. Store errors are the
// one fatal failure class in a run.
type Store interface {
	Has(ctx context.Context, canonicalURL string) (bool, error)
	Append(ctx context.Context, rec domain.ApplicationRecord) (bool, error)
	Supersede(ctx context.Context, rec domain.ApplicationRecord) error
	ExportCSV(ctx context.Context, path string) (string, error)
}

// Report is the run outcome handed back to the caller.
type Report struct {
	Found    int // raw records across all sources
	Unique   int // after dedup
	Filtered int // at or above min score
	Applied  int // records written this run
	Skipped  int // already in the ledger
	Partial  int // applied but with a failed customization or reminder

	Top        []domain.Listing // top scored listings, for display
	LedgerPath string
}

// Status distinguishes "completed cleanly" from "completed with partial
// failures". An aborted run surfaces as an error from Run instead.
func (r Report) Status() string {
	if r.Partial > 0 {
		return "completed with partial failures"
	}
	return "completed cleanly"
}
