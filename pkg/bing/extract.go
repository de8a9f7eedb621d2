package bing

import "regexp"

// candidateMarker matches the full-resolution source field that Bing embeds,
// HTML-escaped, in each result tile's metadata attribute:
//
//	m="{&quot;murl&quot;:&quot;https://example.com/full.jpg&quot;,...}"
var candidateMarker = regexp.MustCompile(`murl&quot;:&quot;(.*?)&quot;`)

// ExtractCandidateURLs returns every marked source URL in body, in order of
// appearance. Duplicates are kept; deduplication happens downstream.
func ExtractCandidateURLs(body []byte) []string {
	matches := candidateMarker.FindAllSubmatch(body, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, string(m[1]))
	}
	return urls
}
