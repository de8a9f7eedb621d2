// Package webp registers a lossy WEBP encoder with imageproc.
//
// It links against libwebp through cgo, so it is imported for its side
// effect only by binaries that need WEBP output:
//
//	import _ "imgharvest/pkg/imageproc/webp"
package webp

import (
	"fmt"
	"image"
	"io"

	"github.com/kolesa-team/go-webp/encoder"
	gowebp "github.com/kolesa-team/go-webp/webp"

	"imgharvest/pkg/imageproc"
)

func init() {
	imageproc.RegisterEncoder("webp", Encode)
}

// Encode writes img as lossy WEBP with the given quality (0-100)
func Encode(w io.Writer, img image.Image, quality int) error {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return fmt.Errorf("failed to create webp encoder options: %w", err)
	}
	if err := gowebp.Encode(w, img, opts); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	return nil
}
