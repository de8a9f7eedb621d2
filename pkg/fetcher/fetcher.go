// Package fetcher downloads single images and saves them under generated names.
package fetcher

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/storage"
)

// Transport fetches the body at a URL
type Transport interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// IDGenerator returns a fresh identifier for each saved file
type IDGenerator func() uuid.UUID

// DownloadedImage describes one saved image
type DownloadedImage struct {
	ID       uuid.UUID
	Sequence int
	URL      string
	Path     string
	Format   imageproc.Format
	Size     int
}

// Fetcher saves images into one storage manager. The sequence counter is
// local to the Fetcher, so a run should use its own.
type Fetcher struct {
	transport Transport
	storage   *storage.Manager
	newID     IDGenerator
	quality   imageproc.Quality
	sequence  int
	logger    logger.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithIDGenerator replaces the random UUID generator
func WithIDGenerator(gen IDGenerator) Option {
	return func(f *Fetcher) {
		f.newID = gen
	}
}

// WithQuality sets the lossy encoder quality
func WithQuality(q imageproc.Quality) Option {
	return func(f *Fetcher) {
		f.quality = q
	}
}

// New creates a new Fetcher
func New(transport Transport, store *storage.Manager, log logger.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: transport,
		storage:   store,
		newID:     uuid.New,
		quality:   imageproc.DefaultQuality(),
		logger:    logger.OrDefault(log),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Filename returns the on-disk name for an image
func Filename(id uuid.UUID, sequence int, format imageproc.Format) string {
	return fmt.Sprintf("%s_%d.%s", id, sequence, format.Extension())
}

// FetchAndSave downloads url, decodes it, converts it to the pixel layout
// of format and writes exactly one file. Every attempt consumes a sequence
// number, starting at 1. Failures are download errors carrying the URL.
func (f *Fetcher) FetchAndSave(ctx context.Context, url string, format imageproc.Format) (DownloadedImage, error) {
	f.sequence++
	downloaded := DownloadedImage{
		ID:       f.newID(),
		Sequence: f.sequence,
		URL:      url,
		Format:   format,
	}

	path, err := f.save(ctx, &downloaded)
	logger.LogDownload(f.logger, url, path, err)
	if err != nil {
		return DownloadedImage{}, errs.NewDownloadError(url, err)
	}

	downloaded.Path = path
	return downloaded, nil
}

func (f *Fetcher) save(ctx context.Context, downloaded *DownloadedImage) (string, error) {
	body, err := f.transport.Fetch(ctx, downloaded.URL)
	if err != nil {
		return "", err
	}

	img, _, err := imageproc.Decode(body)
	if err != nil {
		return "", err
	}

	data, err := imageproc.EncodeBytes(imageproc.Layout(img, downloaded.Format), downloaded.Format.String(), f.quality)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", downloaded.Format, err)
	}

	path, err := f.storage.Save(Filename(downloaded.ID, downloaded.Sequence, downloaded.Format), data)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	downloaded.Size = len(data)

	return path, nil
}

// Sequence returns the number of fetch attempts so far
func (f *Fetcher) Sequence() int {
	return f.sequence
}
