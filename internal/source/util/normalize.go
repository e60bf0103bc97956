package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	loc = strings.TrimPrefix(loc, "Location:")
	return strings.TrimSpace(loc)
}
