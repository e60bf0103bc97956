package util

import (
	"net/url"
	"strings"
)

// CanonicalURL reduces a listing URL to its identity key:
// lowercased scheme+host+path, query, fragment and userinfo stripped.
// Unparseable input is returned trimmed so callers can still log it.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.User = nil
	u.Fragment = ""
	u.RawQuery = ""

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

func IsJunkURL(u string) bool {
	lu := strings.ToLower(u)

	junks := []string{
		"unsubscribe",
		"preferences",
		"view-in-browser",
		"tracking",
		"pixel",
		"beacon",
		"/alerts",
		"/settings",
		"/help",
		"/legal",
	}
	for _, j := range junks {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}
