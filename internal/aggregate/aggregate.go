package aggregate

import (
	"sort"
	"strings"

	"autoapply-engine/internal/domain"
	"autoapply-engine/internal/source/util"
)

// DefaultMinScore is the filter threshold when the caller doesn't set one.
const DefaultMinScore = 2

// MatchScore counts how many distinct query keywords occur as a substring in
// title+" "+description, case-insensitively. Purely lexical: no stemming, no
// synonyms. Scoring lives here, not in the adapters, so every source ranks
// through the same function.
func MatchScore(keywords, title, description string) int {
	text := strings.ToLower(title + " " + description)

	seen := map[string]bool{}
	score := 0
	for _, kw := range strings.Fields(strings.ToLower(keywords)) {
		if seen[kw] {
			continue
		}
		seen[kw] = true
		if strings.Contains(text, kw) {
			score++
		}
	}
	return score
}

// Aggregate merges raw records from all sources into scored listings.
// Dedup is first-seen-wins on canonical URL; duplicates are discarded, not
// merged. Result is ordered by score desc, ties by most recent RetrievedAt.
func Aggregate(raws []domain.RawListing, keywords string) []domain.Listing {
	seen := map[string]bool{}
	var out []domain.Listing
	for _, r := range raws {
		cu := util.CanonicalURL(r.URL)
		if cu == "" || seen[cu] {
			continue
		}
		seen[cu] = true

		out = append(out, domain.Listing{
			CanonicalURL: cu,
			Title:        r.Title,
			Company:      r.Company,
			Location:     r.Location,
			Description:  r.Description,
			Source:       r.Source,
			RetrievedAt:  r.RetrievedAt,
			Score:        MatchScore(keywords, r.Title, r.Description),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].RetrievedAt.After(out[j].RetrievedAt)
	})
	return out
}

// Filter keeps listings with score >= minScore, order preserved.
func Filter(listings []domain.Listing, minScore int) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Score >= minScore {
			out = append(out, l)
		}
	}
	return out
}
