package imageproc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/storage"
)

// Segmenter separates the foreground of an image, returning an image whose
// alpha channel is transparent where the background was
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (image.Image, error)
}

// ErrNoSegmenter is returned when background removal is requested without a Segmenter
var ErrNoSegmenter = errors.New("no segmenter configured")

// NormalizerOptions configures a Normalizer
type NormalizerOptions struct {
	Quality   Quality
	BlurSigma float64
}

// DefaultNormalizerOptions returns the default options
func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		Quality:   DefaultQuality(),
		BlurSigma: DefaultBlurSigma,
	}
}

// Normalizer rewrites saved images in place
type Normalizer struct {
	segmenter Segmenter
	opts      NormalizerOptions
	logger    logger.Logger
}

// NewNormalizer creates a normalizer; segmenter may be nil when background
// removal is never requested
func NewNormalizer(segmenter Segmenter, opts NormalizerOptions, log logger.Logger) *Normalizer {
	if opts.Quality.JPEG <= 0 {
		opts.Quality.JPEG = DefaultQuality().JPEG
	}
	if opts.Quality.WEBP <= 0 {
		opts.Quality.WEBP = DefaultQuality().WEBP
	}
	return &Normalizer{
		segmenter: segmenter,
		opts:      opts,
		logger:    logger.OrDefault(log),
	}
}

// Normalize letterboxes the image at path into res when res is non-nil,
// then strips its background when removeBackground is set, and always
// re-encodes the file in place in its original container format. The file
// is left untouched unless every step succeeds. Failures are processing
// errors carrying the failed stage.
func (n *Normalizer) Normalize(ctx context.Context, path string, res *Resolution, removeBackground bool) error {
	if err := ctx.Err(); err != nil {
		return errs.NewProcessingError(path, errs.StageDecode, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errs.NewProcessingError(path, errs.StageDecode, err)
	}
	img, container, err := Decode(data)
	if err != nil {
		return errs.NewProcessingError(path, errs.StageDecode, err)
	}

	if res != nil {
		img, err = FitWithBlur(img, *res, n.opts.BlurSigma)
		if err != nil {
			return errs.NewProcessingError(path, errs.StageResize, err)
		}
	}

	if removeBackground {
		if n.segmenter == nil {
			return errs.NewProcessingError(path, errs.StageBackgroundRemoval, ErrNoSegmenter)
		}
		img, err = n.segmenter.Segment(ctx, img)
		if err != nil {
			return errs.NewProcessingError(path, errs.StageBackgroundRemoval, err)
		}
		if img == nil {
			return errs.NewProcessingError(path, errs.StageBackgroundRemoval, fmt.Errorf("segmenter returned no image"))
		}
		if container == "jpeg" {
			img = Flatten(img, color.Black)
		}
	}

	out, err := EncodeBytes(img, container, n.opts.Quality)
	if err != nil {
		return errs.NewProcessingError(path, errs.StageEncode, err)
	}
	if err := storage.WriteFileAtomic(path, out); err != nil {
		return errs.NewProcessingError(path, errs.StageEncode, err)
	}

	n.logger.DebugWithFields("Image normalized", map[string]interface{}{
		"path":              path,
		"format":            container,
		"resized":           res != nil,
		"background_remove": removeBackground,
	})
	return nil
}
