package bing

import (
	"context"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"
)

// Transport fetches the body at a URL
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PaginatorOptions configures a Paginator
type PaginatorOptions struct {
	Endpoint    string
	Query       string
	AdultFilter string
	// ImageFilter is a shorthand name such as "photo"; unknown names mean no filter
	ImageFilter string
}

// Paginator walks the result pages of one query. It keeps the running page
// offset and is owned by a single run.
type Paginator struct {
	transport Transport
	opts      PaginatorOptions
	offset    int
	pages     int
	logger    logger.Logger
}

// NewPaginator creates a paginator starting at page offset 0
func NewPaginator(transport Transport, opts PaginatorOptions, log logger.Logger) *Paginator {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	return &Paginator{
		transport: transport,
		opts:      opts,
		logger:    logger.OrDefault(log),
	}
}

// Request builds the request for the current page with the given remaining quota
func (p *Paginator) Request(remaining int) SearchRequest {
	return SearchRequest{
		Query:       p.opts.Query,
		PageOffset:  p.offset,
		ResultLimit: remaining,
		AdultFilter: p.opts.AdultFilter,
		ImageFilter: MapImageFilter(p.opts.ImageFilter),
	}
}

// NextPage fetches the current page and returns its candidate URLs in page
// order. exhausted is true when the page holds no candidates; the offset
// only advances past pages that had some.
func (p *Paginator) NextPage(ctx context.Context, remaining int) ([]string, bool, error) {
	requestURL := BuildSearchURL(p.opts.Endpoint, p.Request(remaining))

	body, err := p.transport.Fetch(ctx, requestURL)
	if err != nil {
		return nil, false, errs.NewSearchError(requestURL, err)
	}
	p.pages++

	urls := ExtractCandidateURLs(body)
	logger.LogSearchPage(p.logger, p.opts.Query, p.offset, len(urls))

	if len(urls) == 0 {
		return nil, true, nil
	}

	p.offset++
	return urls, false, nil
}

// Offset returns the page offset of the next request
func (p *Paginator) Offset() int {
	return p.offset
}

// PagesFetched returns how many pages were fetched successfully
func (p *Paginator) PagesFetched() int {
	return p.pages
}
