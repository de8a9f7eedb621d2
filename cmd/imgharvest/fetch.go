package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"imgharvest/pkg/bing"
	"imgharvest/pkg/config"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/ratelimit"
	"imgharvest/pkg/scraper"
	"imgharvest/pkg/ui"
)

var (
	// Fetch command flags
	count           int
	outputDir       string
	resolution      string
	noResize        bool
	removeBG        bool
	format          string
	imageFilter     string
	adultFilter     string
	rembgURL        string
	requestTimeout  int
	rateLimit       int
	rateStrategy    string
	isolateFailures bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <query>",
	Short: "Download and normalize images for a search query",
	Long: `Search Bing Images for <query>, download up to --count unique images into the
output directory and normalize every file in that directory.

Normalization letterboxes each image onto a --resolution canvas padded with a
blurred copy of itself, and strips the background when --remove-bg is set.
Background removal needs a running rembg server ('rembg s').`,
	Example: `  # Five portrait wallpapers
  imgharvest fetch "northern lights" -n 5 -o ./aurora

  # Clipart as JPEG without resizing
  imgharvest fetch "cartoon cat" --filter clipart --format jpeg --no-resize

  # Cut-outs on a square canvas
  imgharvest fetch "sneakers" --resolution 1024x1024 --remove-bg --rembg-url http://localhost:7000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&count, "count", "n", 5, "number of images to download")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default ./images)")
	fetchCmd.Flags().StringVar(&resolution, "resolution", "", "letterbox canvas as WIDTHxHEIGHT (default 1080x1920)")
	fetchCmd.Flags().BoolVar(&noResize, "no-resize", false, "keep images at their downloaded size")
	fetchCmd.Flags().BoolVar(&removeBG, "remove-bg", false, "remove image backgrounds")
	fetchCmd.Flags().StringVar(&format, "format", "", "output format: png, jpeg or webp (default png)")
	fetchCmd.Flags().StringVar(&imageFilter, "filter", "", "style filter: "+strings.Join(bing.ImageFilterNames(), ", "))
	fetchCmd.Flags().StringVar(&adultFilter, "adult", "", "adult content filter: off, moderate, strict")
	fetchCmd.Flags().StringVar(&rembgURL, "rembg-url", "", "rembg server address")
	fetchCmd.Flags().IntVar(&requestTimeout, "timeout", 0, "request timeout in seconds")
	fetchCmd.Flags().IntVar(&rateLimit, "rate-limit", -1, "requests per minute, 0 for unlimited")
	fetchCmd.Flags().StringVar(&rateStrategy, "rate-limit-strategy", "", "rate limiter: token_bucket or sliding_window")
	fetchCmd.Flags().BoolVar(&isolateFailures, "isolate-failures", false, "skip images that fail instead of aborting")
}

func buildFetchFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if format != "" {
		flags["format"] = format
	}
	if resolution != "" {
		if _, _, err := config.ParseResolution(resolution); err != nil {
			return nil, err
		}
		flags["resolution"] = resolution
	}
	if noResize {
		flags["no-resize"] = true
	}
	if cmd.Flags().Changed("remove-bg") {
		flags["remove-bg"] = removeBG
	}
	if cmd.Flags().Changed("filter") {
		flags["filter"] = imageFilter
	}
	if adultFilter != "" {
		flags["adult"] = adultFilter
	}
	if rembgURL != "" {
		flags["rembg-url"] = rembgURL
	}
	if requestTimeout > 0 {
		flags["timeout"] = requestTimeout
	}
	if rateLimit >= 0 {
		flags["requests-per-minute"] = rateLimit
	}
	if rateStrategy != "" {
		if _, err := ratelimit.ParseStrategy(rateStrategy); err != nil {
			return nil, err
		}
		flags["rate-limit-strategy"] = rateStrategy
	}
	if cmd.Flags().Changed("isolate-failures") {
		flags["isolate-failures"] = isolateFailures
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if count < 0 {
		return fmt.Errorf("count must not be negative")
	}

	flags, err := buildFetchFlags(cmd)
	if err != nil {
		ui.PrintError("Invalid flags", err.Error())
		return reported(err)
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return reported(err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return reported(err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("imgharvest starting")

	opts := scraper.OptionsFromConfig(cfg, query, count)
	ui.PrintInfo("Query", query)
	ui.PrintInfo("Images", strconv.Itoa(count))
	ui.PrintInfo("Output", opts.OutputDir)
	ui.PrintInfo("Format", opts.Format.String())
	if opts.Resolution != nil {
		ui.PrintInfo("Canvas", opts.Resolution.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := ui.NewStatusTracker(count)
	if !ui.IsQuiet() {
		tracker.StartSpinner(os.Stderr)
	}

	s := scraper.New(cfg, log)
	s.SetObserver(tracker)

	report, err := s.Run(ctx, opts)
	tracker.Stop()

	notifier := ui.NewNotifier(notifications)
	if err != nil {
		log.WithError(err).WithField("query", query).Error("Run failed")
		notifier.SendError("RUN FAILED", err.Error())
		return reported(err)
	}

	for _, failure := range report.Failed {
		ui.PrintWarning("Download skipped", failure.Err)
	}
	for _, failure := range report.NormalizationFailures() {
		ui.PrintWarning("Normalization skipped", failure.Err)
	}
	if len(report.Downloaded) < count {
		ui.PrintWarning(fmt.Sprintf("Search ran out of results after %d of %d images", len(report.Downloaded), count))
	}

	log.WithFields(map[string]interface{}{
		"query":      query,
		"downloaded": len(report.Downloaded),
		"duration":   report.Duration,
	}).Info("Run completed")
	notifier.SendSuccess("RUN COMPLETE", tracker.Summary())
	return nil
}
