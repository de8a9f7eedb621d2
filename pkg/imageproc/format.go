package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	// WEBP decoding; encoding is provided by a registered encoder
	_ "golang.org/x/image/webp"
)

// Format is a target image encoding for saved files
type Format int

const (
	PNG Format = iota
	WEBP
	JPEG
)

// String returns the container name of the format
func (f Format) String() string {
	switch f {
	case WEBP:
		return "webp"
	case JPEG:
		return "jpeg"
	default:
		return "png"
	}
}

// Extension returns the file extension used for the format, without the dot
func (f Format) Extension() string {
	return f.String()
}

// HasAlpha reports whether files of this format keep an alpha channel on save
func (f Format) HasAlpha() bool {
	return f == PNG
}

// ParseFormat maps a user supplied format name to a Format. Matching is
// case-insensitive and unrecognised names fall back to PNG.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "webp":
		return WEBP
	case "jpeg", "jpg":
		return JPEG
	default:
		return PNG
	}
}

// KnownFormat reports whether ParseFormat recognises name without falling back
func KnownFormat(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "png", "webp", "jpeg", "jpg":
		return true
	}
	return false
}

// EncoderFunc encodes img to w at the given quality
type EncoderFunc func(w io.Writer, img image.Image, quality int) error

var (
	encodersMu sync.RWMutex
	encoders   = make(map[string]EncoderFunc)
)

// ErrNoEncoder is returned when no encoder exists for a container
var ErrNoEncoder = errors.New("no encoder registered")

// RegisterEncoder installs an encoder for a container name such as "webp".
// Registered encoders take precedence over the built-in ones.
func RegisterEncoder(container string, fn EncoderFunc) {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	encoders[strings.ToLower(container)] = fn
}

func registeredEncoder(container string) (EncoderFunc, bool) {
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	fn, ok := encoders[container]
	return fn, ok
}

// HasEncoder reports whether images can be encoded into container
func HasEncoder(container string) bool {
	container = strings.ToLower(container)
	if _, ok := registeredEncoder(container); ok {
		return true
	}
	if container == "webp" {
		return false
	}
	_, err := imaging.FormatFromExtension(container)
	return err == nil
}

// Quality holds the lossy encoder settings
type Quality struct {
	JPEG int
	WEBP int
}

// DefaultQuality returns the default encoder settings
func DefaultQuality() Quality {
	return Quality{JPEG: 75, WEBP: 80}
}

// Encode writes img to w in the named container ("png", "jpeg", "webp", ...)
func Encode(w io.Writer, img image.Image, container string, q Quality) error {
	container = strings.ToLower(container)

	if fn, ok := registeredEncoder(container); ok {
		quality := q.JPEG
		if container == "webp" {
			quality = q.WEBP
		}
		return fn(w, img, quality)
	}

	if container == "webp" {
		return fmt.Errorf("%w for %s", ErrNoEncoder, container)
	}

	format, err := imaging.FormatFromExtension(container)
	if err != nil {
		return fmt.Errorf("%w for %s", ErrNoEncoder, container)
	}

	var opts []imaging.EncodeOption
	if format == imaging.JPEG && q.JPEG > 0 {
		opts = append(opts, imaging.JPEGQuality(q.JPEG))
	}
	return imaging.Encode(w, img, format, opts...)
}

// EncodeBytes is Encode into a fresh buffer
func EncodeBytes(img image.Image, container string, q Quality) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, container, q); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes data with any registered decoder and returns the image
// together with its container name
func Decode(data []byte) (image.Image, string, error) {
	img, container, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, container, nil
}

// ToAlphaLayout returns a copy of img in an alpha-capable pixel layout
func ToAlphaLayout(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ToOpaqueLayout returns a copy of img with the alpha channel discarded.
// Color values are kept as they are, without compositing.
func ToOpaqueLayout(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Flatten composites img over a solid background and returns an opaque copy
func Flatten(img image.Image, background color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), background)
	canvas = imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
	return ToOpaqueLayout(canvas)
}

// Layout converts img into the pixel layout the target format can store
func Layout(img image.Image, f Format) *image.NRGBA {
	if f.HasAlpha() {
		return ToAlphaLayout(img)
	}
	return ToOpaqueLayout(img)
}
