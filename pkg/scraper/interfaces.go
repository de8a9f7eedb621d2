package scraper

import (
	"context"

	"imgharvest/pkg/fetcher"
)

// Transport fetches search pages and image bytes
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Observer receives progress events from a run. Implementations must not
// block; they are called on the run's goroutine.
type Observer interface {
	PageFetched(offset, candidates int)
	ImageSaved(img fetcher.DownloadedImage)
	ImageFailed(url string, err error)
	ImageNormalized(path string, err error)
}

type nopObserver struct{}

func (nopObserver) PageFetched(int, int)               {}
func (nopObserver) ImageSaved(fetcher.DownloadedImage) {}
func (nopObserver) ImageFailed(string, error)          {}
func (nopObserver) ImageNormalized(string, error)      {}
