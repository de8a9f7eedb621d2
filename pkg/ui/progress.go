package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"imgharvest/pkg/fetcher"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker keeps track of a run's progress and optionally animates a
// spinner with the latest status
type StatusTracker struct {
	Target          int
	Pages           int
	Downloaded      int
	Failed          int
	Normalized      int
	NormalizeFailed int
	StartTime       time.Time

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewStatusTracker creates a tracker for a run aiming at target images
func NewStatusTracker(target int) *StatusTracker {
	return &StatusTracker{
		Target:    target,
		StartTime: time.Now(),
	}
}

// StartSpinner animates a spinner on w until Stop is called
func (st *StatusTracker) StartSpinner(w io.Writer) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	st.spinner.Suffix = " " + Dim("searching...")
	st.spinner.Start()
}

// Stop stops the spinner, if any
func (st *StatusTracker) Stop() {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.spinner != nil {
		st.spinner.Stop()
		st.spinner = nil
	}
}

func (st *StatusTracker) status(msg string) {
	if st.spinner == nil {
		return
	}
	st.spinner.Lock()
	st.spinner.Suffix = fmt.Sprintf(" %s %s", st.progressBar(), msg)
	st.spinner.Unlock()
}

// PageFetched records a search page
func (st *StatusTracker) PageFetched(offset, candidates int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Pages++
	st.status(fmt.Sprintf("page %d: %d candidates", offset, candidates))
}

// ImageSaved records a saved image
func (st *StatusTracker) ImageSaved(img fetcher.DownloadedImage) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Downloaded++
	st.status(Green("saved ") + filepath.Base(img.Path))
}

// ImageFailed records a failed download
func (st *StatusTracker) ImageFailed(url string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Failed++
	st.status(Red("failed ") + formatURL(url))
}

// ImageNormalized records a normalization attempt
func (st *StatusTracker) ImageNormalized(path string, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		st.NormalizeFailed++
	} else {
		st.Normalized++
	}
	st.status("normalized " + filepath.Base(path))
}

// GetProgressBar returns a formatted progress bar of downloads against the target
func (st *StatusTracker) GetProgressBar() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.progressBar()
}

func (st *StatusTracker) progressBar() string {
	filled := 0
	if st.Target > 0 {
		filled = st.Downloaded * barWidth / st.Target
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Downloaded, st.Target)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate (items per minute)
func (st *StatusTracker) GetDownloadRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Downloaded) / elapsed
}

// Summary returns a one-line description of the run so far
func (st *StatusTracker) Summary() string {
	st.mu.Lock()
	defer st.mu.Unlock()

	parts := []string{
		fmt.Sprintf("%d/%d downloaded", st.Downloaded, st.Target),
		fmt.Sprintf("%d normalized", st.Normalized),
		fmt.Sprintf("%d pages", st.Pages),
	}
	if st.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d downloads failed", st.Failed))
	}
	if st.NormalizeFailed > 0 {
		parts = append(parts, fmt.Sprintf("%d normalizations failed", st.NormalizeFailed))
	}
	return strings.Join(parts, ", ")
}

// formatURL shortens a URL for single-line display
func formatURL(url string) string {
	const maxLen = 60
	if len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}
