// Package scraper is the acquisition pipeline.
//
// A run pages through Bing image results for one query, hands every new
// candidate URL to the fetcher until the requested number of images has been
// saved or a page comes back empty, and then normalizes every file in the
// output directory:
//
//	err := scraper.GetImages(ctx, "red fox", 5, "./images",
//	    scraper.WithResolution(1080, 1920),
//	    scraper.WithFormat("jpeg"),
//	    scraper.WithImageFilter("photo"),
//	)
//
// Normalization covers the whole directory, so files left there by earlier
// runs are processed again.
//
// Failures are fatal by default and surface as the errors from
// imgharvest/pkg/errors. Setting Options.IsolateFailures keeps going past
// individual download and normalization failures and records them in the
// Report; a failed search page always ends the run.
package scraper
