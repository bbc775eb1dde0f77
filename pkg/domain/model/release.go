package model

import "strings"

// Release represents one upstream release as returned by the release API,
// newest first. ID is strictly increasing with recency for a repository
// but not necessarily contiguous.
type Release struct {
	ID    int64  // Release ordinal (API release ID)
	Title string // Release name, may be empty
	Body  string // Release notes, may be empty
	URL   string // HTML URL, may be empty
}

// MatchKeyword returns the first keyword that occurs in the release's
// combined title and body, case-insensitively. Keywords are expected to be
// lowercased already by the configuration layer.
func (r *Release) MatchKeyword(keywords []string) (string, bool) {
	blob := strings.ToLower(r.Title + "\n" + r.Body)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(blob, kw) {
			return kw, true
		}
	}
	return "", false
}
