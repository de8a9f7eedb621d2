package scraper

import (
	"context"
	"fmt"
	"time"

	"imgharvest/pkg/bing"
	"imgharvest/pkg/config"
	"imgharvest/pkg/dedupe"
	"imgharvest/pkg/fetcher"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/ratelimit"
	"imgharvest/pkg/segment"
	"imgharvest/pkg/storage"
)

// Scraper drives search, deduplication, download and normalization for
// one query at a time
type Scraper struct {
	transport Transport
	segmenter imageproc.Segmenter
	observer  Observer
	newID     fetcher.IDGenerator
	config    *config.Config
	logger    logger.Logger
}

// New creates a new Scraper. The default transport is a rate limited
// bing.Client built from cfg; background removal uses the rembg server in
// cfg unless SetSegmenter is called.
func New(cfg *config.Config, log logger.Logger) *Scraper {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log = logger.OrDefault(log)

	strategy, err := ratelimit.ParseStrategy(cfg.RateLimit.Strategy)
	if err != nil {
		log.WarnWithFields("Unknown rate limit strategy, using token bucket", map[string]interface{}{
			"strategy": cfg.RateLimit.Strategy,
		})
		strategy = ratelimit.StrategyTokenBucket
	}
	client := bing.NewClient(cfg.Download.RequestTimeout, ratelimit.New(strategy, cfg.RateLimit.RequestsPerMinute), log)
	client.SetHeaders(cfg.Search.Headers)
	if cfg.Search.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Search.UserAgent)
	}

	s := &Scraper{
		transport: client,
		observer:  nopObserver{},
		config:    cfg,
		logger:    log,
	}
	if cfg.Segmentation.Endpoint != "" {
		s.segmenter = segment.NewRembgClient(cfg.Segmentation.Endpoint, cfg.Segmentation.Model, cfg.Segmentation.Timeout, log)
	}
	return s
}

// SetTransport replaces the HTTP transport used for pages and images
func (s *Scraper) SetTransport(t Transport) {
	s.transport = t
}

// SetSegmenter replaces the background remover
func (s *Scraper) SetSegmenter(seg imageproc.Segmenter) {
	s.segmenter = seg
}

// SetObserver installs a progress observer
func (s *Scraper) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// SetIDGenerator replaces the filename identifier generator
func (s *Scraper) SetIDGenerator(gen fetcher.IDGenerator) {
	s.newID = gen
}

// OptionsFromConfig returns run options populated from the config
func OptionsFromConfig(cfg *config.Config, query string, limit int) Options {
	opts := Options{
		Query:            query,
		Limit:            limit,
		OutputDir:        cfg.Download.OutputDirectory,
		Format:           imageproc.ParseFormat(cfg.Download.Format),
		RemoveBackground: cfg.Processing.RemoveBackground,
		AdultFilter:      cfg.Search.AdultFilter,
		ImageFilter:      cfg.Search.ImageFilter,
		IsolateFailures:  cfg.Download.IsolateFailures,
	}
	if cfg.Processing.Resize {
		opts.Resolution = &imageproc.Resolution{Width: cfg.Processing.Width, Height: cfg.Processing.Height}
	}
	return opts
}

// Run downloads up to opts.Limit unique images for opts.Query into
// opts.OutputDir, then normalizes every file in that directory.
func (s *Scraper) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{Query: opts.Query}
	defer func() {
		report.Duration = time.Since(start)
	}()

	if opts.Limit < 0 {
		return report, fmt.Errorf("image limit must not be negative, got %d", opts.Limit)
	}
	if opts.Resolution != nil && !opts.Resolution.Valid() {
		return report, fmt.Errorf("invalid resolution %s", opts.Resolution)
	}

	store, err := storage.NewManager(opts.OutputDir)
	if err != nil {
		return report, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"query": opts.Query,
		"limit": opts.Limit,
	})
	log.InfoWithFields("Starting acquisition", map[string]interface{}{
		"output": store.GetOutputDir(),
		"format": opts.Format.String(),
	})

	if err := s.acquire(ctx, opts, store, report, log); err != nil {
		return report, err
	}
	if err := s.normalizeAll(ctx, opts, store, report, log); err != nil {
		return report, err
	}

	logger.LogMetrics(log, "acquisition", map[string]interface{}{
		"downloaded":  len(report.Downloaded),
		"failed":      len(report.Failed),
		"unique_urls": report.UniqueURLs,
		"normalized":  len(report.Normalized) - len(report.NormalizationFailures()),
		"pages":       report.PagesFetched,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return report, nil
}

func (s *Scraper) acquire(ctx context.Context, opts Options, store *storage.Manager, report *Report, log logger.Logger) error {
	pager := bing.NewPaginator(s.transport, bing.PaginatorOptions{
		Endpoint:    s.config.Search.Endpoint,
		Query:       opts.Query,
		AdultFilter: opts.AdultFilter,
		ImageFilter: opts.ImageFilter,
	}, log)
	defer func() {
		report.PagesFetched = pager.PagesFetched()
		report.FinalOffset = pager.Offset()
	}()

	var fetchOpts []fetcher.Option
	fetchOpts = append(fetchOpts, fetcher.WithQuality(s.quality()))
	if s.newID != nil {
		fetchOpts = append(fetchOpts, fetcher.WithIDGenerator(s.newID))
	}
	fetch := fetcher.New(s.transport, store, log, fetchOpts...)
	seen := dedupe.NewSeenURLSet()
	defer func() {
		report.UniqueURLs = seen.Len()
	}()

	for len(report.Downloaded) < opts.Limit {
		offset := pager.Offset()
		urls, exhausted, err := pager.NextPage(ctx, opts.Limit-len(report.Downloaded))
		if err != nil {
			return err
		}
		s.observer.PageFetched(offset, len(urls))

		for _, url := range urls {
			if len(report.Downloaded) >= opts.Limit {
				break
			}
			if !seen.Accept(url) {
				continue
			}

			img, err := fetch.FetchAndSave(ctx, url, opts.Format)
			if err != nil {
				s.observer.ImageFailed(url, err)
				if !opts.IsolateFailures {
					return err
				}
				report.Failed = append(report.Failed, Outcome{Target: url, Err: err})
				continue
			}

			report.Downloaded = append(report.Downloaded, img)
			s.observer.ImageSaved(img)
		}

		if exhausted {
			log.InfoWithFields("Search results exhausted", map[string]interface{}{
				"downloaded": len(report.Downloaded),
				"offset":     pager.Offset(),
			})
			break
		}
	}

	return nil
}

func (s *Scraper) normalizeAll(ctx context.Context, opts Options, store *storage.Manager, report *Report, log logger.Logger) error {
	files, err := store.ListFiles()
	if err != nil {
		return err
	}

	normalizer := imageproc.NewNormalizer(s.segmenter, imageproc.NormalizerOptions{
		Quality:   s.quality(),
		BlurSigma: s.config.Processing.BlurSigma,
	}, log)

	for _, path := range files {
		err := normalizer.Normalize(ctx, path, opts.Resolution, opts.RemoveBackground)
		logger.LogNormalize(log, path, err)
		s.observer.ImageNormalized(path, err)
		report.Normalized = append(report.Normalized, Outcome{Target: path, Err: err})

		if err != nil && !opts.IsolateFailures {
			return err
		}
	}

	return nil
}

func (s *Scraper) quality() imageproc.Quality {
	return imageproc.Quality{
		JPEG: s.config.Processing.JPEGQuality,
		WEBP: s.config.Processing.WEBPQuality,
	}
}
