// Package bing talks to the Bing image search page.
//
// It contains the HTTP client used for both search pages and image bytes,
// the search URL builder with its filter table, the candidate URL extractor
// and the Paginator that walks result pages for one query.
//
// The result page is mined with a single textual marker (see
// ExtractCandidateURLs) rather than parsed as HTML, so the surface that
// breaks when Bing changes its markup is one regular expression.
package bing
