package domain

import "time"

// RawListing is what a source adapter emits, one record per job card.
// Adapters drop records missing Title or Company before emitting them.
type RawListing struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	Source      string
	RetrievedAt time.Time
}

// Listing is a deduplicated, centrally scored posting. Immutable after
// aggregation; identity is CanonicalURL.
type Listing struct {
	CanonicalURL string
	Title        string
	Company      string
	Location     string
	Description  string
	Source       string
	RetrievedAt  time.Time
	Score        int
}

// Query is one (keywords, location) search against one source.
type Query struct {
	Keywords string
	Location string
	MaxPages int
}
