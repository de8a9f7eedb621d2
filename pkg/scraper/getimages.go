package scraper

import (
	"context"

	"imgharvest/pkg/config"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/logger"
)

type settings struct {
	cfg        *config.Config
	resolution *imageproc.Resolution
	resize     bool
	removeBG   *bool
	format     *imageproc.Format
	filter     *string
	adult      *string
	segmenter  imageproc.Segmenter
	transport  Transport
	logger     logger.Logger
}

// Option customises GetImages
type Option func(*settings)

// WithConfig uses cfg instead of the default configuration
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithResolution sets the letterbox canvas size
func WithResolution(width, height int) Option {
	return func(s *settings) {
		s.resolution = &imageproc.Resolution{Width: width, Height: height}
		s.resize = true
	}
}

// WithoutResize keeps images at their saved size
func WithoutResize() Option {
	return func(s *settings) {
		s.resolution = nil
		s.resize = false
	}
}

// WithBackgroundRemoval toggles background removal
func WithBackgroundRemoval(enabled bool) Option {
	return func(s *settings) {
		s.removeBG = &enabled
	}
}

// WithFormat sets the output format by name; unknown names mean PNG
func WithFormat(name string) Option {
	return func(s *settings) {
		f := imageproc.ParseFormat(name)
		s.format = &f
	}
}

// WithImageFilter sets the shorthand style filter
func WithImageFilter(name string) Option {
	return func(s *settings) {
		s.filter = &name
	}
}

// WithAdultFilter sets the adult content filter value
func WithAdultFilter(value string) Option {
	return func(s *settings) {
		s.adult = &value
	}
}

// WithSegmenter sets the background remover
func WithSegmenter(seg imageproc.Segmenter) Option {
	return func(s *settings) {
		s.segmenter = seg
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(t Transport) Option {
	return func(s *settings) {
		s.transport = t
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// GetImages downloads up to count images matching query into outputDir and
// normalizes every file there. By default images are letterboxed to
// 1080x1920, saved as PNG and keep their background.
func GetImages(ctx context.Context, query string, count int, outputDir string, opts ...Option) error {
	_, err := getImages(ctx, query, count, outputDir, opts...)
	return err
}

func getImages(ctx context.Context, query string, count int, outputDir string, opts ...Option) (*Report, error) {
	st := &settings{resize: true}
	for _, opt := range opts {
		opt(st)
	}
	if st.cfg == nil {
		st.cfg = config.DefaultConfig()
	}

	runOpts := OptionsFromConfig(st.cfg, query, count)
	runOpts.OutputDir = outputDir

	switch {
	case !st.resize:
		runOpts.Resolution = nil
	case st.resolution != nil:
		runOpts.Resolution = st.resolution
	case runOpts.Resolution == nil:
		res := imageproc.DefaultResolution
		runOpts.Resolution = &res
	}
	if st.removeBG != nil {
		runOpts.RemoveBackground = *st.removeBG
	}
	if st.format != nil {
		runOpts.Format = *st.format
	}
	if st.filter != nil {
		runOpts.ImageFilter = *st.filter
	}
	if st.adult != nil {
		runOpts.AdultFilter = *st.adult
	}

	s := New(st.cfg, st.logger)
	if st.transport != nil {
		s.SetTransport(st.transport)
	}
	if st.segmenter != nil {
		s.SetSegmenter(st.segmenter)
	}

	return s.Run(ctx, runOpts)
}
