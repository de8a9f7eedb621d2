package scraper

import (
	"time"

	"imgharvest/pkg/fetcher"
	"imgharvest/pkg/imageproc"
)

// Options describe one acquisition run
type Options struct {
	Query     string
	Limit     int
	OutputDir string
	Format    imageproc.Format

	// Resolution is the letterbox canvas; nil skips resizing
	Resolution       *imageproc.Resolution
	RemoveBackground bool

	AdultFilter string
	ImageFilter string

	// IsolateFailures records per-image download and normalization failures
	// in the Report instead of aborting the run. Search failures always abort.
	IsolateFailures bool
}

// Outcome is the result of one per-image step. Target is the image URL for
// downloads and the file path for normalization.
type Outcome struct {
	Target string
	Err    error
}

// OK reports whether the step succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report summarises a run. It is returned even when the run fails, holding
// whatever was done before the failure.
type Report struct {
	Query        string
	Downloaded   []fetcher.DownloadedImage
	Failed       []Outcome
	Normalized   []Outcome
	UniqueURLs   int
	PagesFetched int
	FinalOffset  int
	Duration     time.Duration
}

// NormalizationFailures returns the failed normalization outcomes
func (r *Report) NormalizationFailures() []Outcome {
	var failed []Outcome
	for _, o := range r.Normalized {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}
