package imageproc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfSegmenter makes the left half of every image transparent
type halfSegmenter struct {
	calls int
	err   error
}

func (s *halfSegmenter) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := ToAlphaLayout(img)
	b := out.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx()/2; x++ {
			out.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		}
	}
	return out, nil
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checkerboard(w, h)))
	path := filepath.Join(dir, "img_1.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writeJPEG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, verticalGradient(w, h), nil))
	path := filepath.Join(dir, "img_1.jpeg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func decodeFile(t *testing.T, path string) (image.Image, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, container, err := Decode(data)
	require.NoError(t, err)
	return img, container
}

func TestNormalizeResizeAndRemoveBackground(t *testing.T) {
	path := writePNG(t, t.TempDir(), 800, 600)
	seg := &halfSegmenter{}
	n := NewNormalizer(seg, DefaultNormalizerOptions(), logger.NewNopLogger())

	err := n.Normalize(context.Background(), path, &Resolution{1080, 1920}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, seg.calls)

	img, container := decodeFile(t, path)
	assert.Equal(t, "png", container)
	assert.Equal(t, 1080, img.Bounds().Dx())
	assert.Equal(t, 1920, img.Bounds().Dy())

	_, _, _, a := img.At(10, 10).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(1000, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestNormalizeSegmentationFailureLeavesFile(t *testing.T) {
	path := writePNG(t, t.TempDir(), 800, 600)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	n := NewNormalizer(&halfSegmenter{err: errors.New("model unavailable")}, DefaultNormalizerOptions(), logger.NewNopLogger())
	err = n.Normalize(context.Background(), path, &Resolution{1080, 1920}, true)

	require.Error(t, err)
	assert.True(t, errs.IsProcessingError(err))
	assert.Equal(t, errs.StageBackgroundRemoval, errs.StageOf(err))
	assert.Contains(t, err.Error(), path)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNormalizeWithoutSegmenter(t *testing.T) {
	path := writePNG(t, t.TempDir(), 20, 20)
	n := NewNormalizer(nil, DefaultNormalizerOptions(), logger.NewNopLogger())

	err := n.Normalize(context.Background(), path, nil, true)
	assert.True(t, errors.Is(err, ErrNoSegmenter))
	assert.Equal(t, errs.StageBackgroundRemoval, errs.StageOf(err))
}

func TestNormalizeDecodeFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	n := NewNormalizer(nil, DefaultNormalizerOptions(), logger.NewNopLogger())
	err := n.Normalize(context.Background(), path, &DefaultResolution, false)
	assert.True(t, errs.IsProcessingError(err))
	assert.Equal(t, errs.StageDecode, errs.StageOf(err))
}

func TestNormalizeKeepsJPEGContainer(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), 300, 200)
	n := NewNormalizer(&halfSegmenter{}, DefaultNormalizerOptions(), logger.NewNopLogger())

	require.NoError(t, n.Normalize(context.Background(), path, &Resolution{200, 200}, true))

	img, container := decodeFile(t, path)
	assert.Equal(t, "jpeg", container)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	// transparent areas are flattened onto black
	r, g, b, _ := img.At(5, 100).RGBA()
	assert.Less(t, r>>8, uint32(30))
	assert.Less(t, g>>8, uint32(30))
	assert.Less(t, b>>8, uint32(30))
}

func TestNormalizeReencodesWithoutResizeOrBackgroundRemoval(t *testing.T) {
	path := writePNG(t, t.TempDir(), 20, 20)

	seg := &halfSegmenter{}
	n := NewNormalizer(seg, DefaultNormalizerOptions(), logger.NewNopLogger())
	require.NoError(t, n.Normalize(context.Background(), path, nil, false))

	img, container := decodeFile(t, path)
	assert.Equal(t, "png", container)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	assert.Zero(t, seg.calls)
}

func TestNormalizeRejectsNonImageWithoutResize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	n := NewNormalizer(nil, DefaultNormalizerOptions(), logger.NewNopLogger())
	err := n.Normalize(context.Background(), path, nil, false)
	require.Error(t, err)
	assert.True(t, errs.IsProcessingError(err))
	assert.Equal(t, errs.StageDecode, errs.StageOf(err))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("not an image"), data)
}

func TestNormalizeCanceledContext(t *testing.T) {
	path := writePNG(t, t.TempDir(), 20, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewNormalizer(nil, DefaultNormalizerOptions(), logger.NewNopLogger())
	err := n.Normalize(ctx, path, &DefaultResolution, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errs.IsProcessingError(err))
	assert.Equal(t, errs.StageDecode, errs.StageOf(err))
}
