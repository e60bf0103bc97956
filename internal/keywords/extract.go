package keywords

import (
	"regexp"
	"sort"
	"strings"

	"autoapply-engine/internal/domain"
)

// DefaultK caps the keyword set per the data model.
const DefaultK = 10

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Extract returns the top-k most discriminative terms of text: lowercased,
// tokenized on word boundaries, stopwords dropped, ranked by in-document
// frequency down-weighted by general commonness. Ties break by first
// occurrence. An all-stopword input yields an empty set; downstream
// customization tolerates zero keywords.
func Extract(text string, k int) domain.KeywordSet {
	if k <= 0 {
		k = DefaultK
	}

	type stat struct {
		count int
		first int
	}
	stats := map[string]*stat{}
	var order []string

	for i, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if stopwords[tok] {
			continue
		}
		s, ok := stats[tok]
		if !ok {
			s = &stat{first: i}
			stats[tok] = s
			order = append(order, tok)
		}
		s.count++
	}
	if len(order) == 0 {
		return domain.KeywordSet{}
	}

	ks := make(domain.KeywordSet, 0, len(order))
	for _, term := range order {
		w := float64(stats[term].count)
		if d, ok := commonness[term]; ok {
			w *= d
		}
		ks = append(ks, domain.Keyword{Term: term, Weight: w})
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].Weight != ks[j].Weight {
			return ks[i].Weight > ks[j].Weight
		}
		return stats[ks[i].Term].first < stats[ks[j].Term].first
	})

	if len(ks) > k {
		ks = ks[:k]
	}
	return ks
}
