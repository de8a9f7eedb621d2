package bing

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is the asynchronous Bing image search page
const DefaultEndpoint = "https://www.bing.com/images/async"

// SearchRequest is one search page request
type SearchRequest struct {
	Query       string
	PageOffset  int
	ResultLimit int
	AdultFilter string
	ImageFilter string
}

// imageFilters maps shorthand style names to Bing qft values
var imageFilters = map[string]string{
	"line":        "+filterui:photo-linedrawing",
	"photo":       "+filterui:photo-photo",
	"clipart":     "+filterui:photo-clipart",
	"gif":         "+filterui:photo-animatedgif",
	"transparent": "+filterui:photo-transparent",
}

// MapImageFilter returns the Bing filter for a shorthand name, or "" when
// the name is unknown
func MapImageFilter(shorthand string) string {
	return imageFilters[strings.ToLower(strings.TrimSpace(shorthand))]
}

// ImageFilterNames lists the recognised shorthand filter names
func ImageFilterNames() []string {
	return []string{"line", "photo", "clipart", "gif", "transparent"}
}

// BuildSearchURL renders req against endpoint. The query is form-encoded;
// the filter is appended verbatim because its leading '+' is meaningful.
func BuildSearchURL(endpoint string, req SearchRequest) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}

	return fmt.Sprintf("%s%sq=%s&first=%d&count=%d&adlt=%s&qft=%s",
		endpoint,
		sep,
		url.QueryEscape(req.Query),
		req.PageOffset,
		req.ResultLimit,
		req.AdultFilter,
		req.ImageFilter,
	)
}
