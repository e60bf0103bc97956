package domain

// Keyword is one extracted term with its importance weight.
type Keyword struct {
	Term   string
	Weight float64
}

// KeywordSet is ordered by descending weight, no duplicate terms, len <= 10.
// Derived per listing description on demand; never persisted.
type KeywordSet []Keyword

func (ks KeywordSet) Terms() []string {
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		out = append(out, k.Term)
	}
	return out
}

// Top returns up to n leading terms.
func (ks KeywordSet) Top(n int) []string {
	if n > len(ks) {
		n = len(ks)
	}
	return ks.Terms()[:n]
}
