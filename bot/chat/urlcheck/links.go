package urlcheck

import (
	"net/url"
	"strings"
)

// IsValidURL reports whether s is an absolute http or https URL with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// NormalizeURL adds a scheme to bare host names such as "example.com/login".
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "://") {
		return s
	}
	return "http://" + s
}

// ExtractURLs returns the absolute links found in free text, in order and
// without duplicates.
func ExtractURLs(text string) []string {
	var links []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(text) {
		candidate := strings.Trim(field, `.,;:!?()[]{}<>"'`)
		if !IsValidURL(candidate) || seen[candidate] {
			continue
		}
		seen[candidate] = true
		links = append(links, candidate)
	}
	return links
}
