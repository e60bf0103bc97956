package domain

import "time"

// ApplicationRecord is one row of the append-only application ledger,
// keyed by the listing's canonical URL. Empty artifact paths mean the
// customization stage failed for that listing.
type ApplicationRecord struct {
	URL             string
	Title           string
	Company         string
	Location        string
	AppliedAt       time.Time
	ResumePath      string
	CoverLetterPath string
	FollowUpSet     bool
}
