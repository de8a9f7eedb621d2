package scraper_test

import (
	"context"
	"fmt"
	"time"

	"imgharvest/pkg/config"
	"imgharvest/pkg/scraper"
)

func ExampleGetImages() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err := scraper.GetImages(ctx, "lighthouse at dusk", 10, "./lighthouses",
		scraper.WithResolution(1080, 1920),
		scraper.WithFormat("jpeg"),
		scraper.WithImageFilter("photo"),
	)
	if err != nil {
		fmt.Printf("Failed to get images: %v\n", err)
	}
}

func ExampleScraper_Run() {
	cfg := config.DefaultConfig()
	cfg.Download.IsolateFailures = true

	s := scraper.New(cfg, nil)
	report, err := s.Run(context.Background(), scraper.OptionsFromConfig(cfg, "paper cranes", 3))
	if err != nil {
		fmt.Printf("Run failed: %v\n", err)
		return
	}

	fmt.Printf("Downloaded %d images over %d pages\n", len(report.Downloaded), report.PagesFetched)
}
