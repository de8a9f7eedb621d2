package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultBlurSigma is the backdrop blur strength
const DefaultBlurSigma = 15.0

// Resolution is a target canvas size in pixels
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolution is the portrait 1080x1920 canvas
var DefaultResolution = Resolution{Width: 1080, Height: 1920}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Valid reports whether both dimensions are positive
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// FitWithBlur letterboxes img into an opaque canvas of exactly res.
//
// The image is scaled down (never up) to fit inside res with its aspect
// ratio kept, then centered over a blurred copy of itself stretched to the
// full canvas. The remainder of the centering offset goes to the right and
// bottom edges.
func FitWithBlur(img image.Image, res Resolution, sigma float64) (*image.NRGBA, error) {
	if !res.Valid() {
		return nil, fmt.Errorf("invalid target resolution %s", res)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("source image is empty")
	}

	thumb := imaging.Fit(img, res.Width, res.Height, imaging.Lanczos)
	tb := thumb.Bounds()

	canvas := imaging.New(res.Width, res.Height, color.Black)

	backdrop := imaging.Resize(thumb, res.Width, res.Height, imaging.Lanczos)
	if sigma > 0 {
		backdrop = imaging.Blur(backdrop, sigma)
	}
	canvas = imaging.Paste(canvas, backdrop, image.Pt(0, 0))

	offset := image.Pt((res.Width-tb.Dx())/2, (res.Height-tb.Dy())/2)
	canvas = imaging.Paste(canvas, thumb, offset)

	return ToOpaqueLayout(canvas), nil
}
