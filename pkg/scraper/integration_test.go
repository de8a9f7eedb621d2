package scraper_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"imgharvest/pkg/config"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockServer plays Bing and a rembg server on one listener
type mockServer struct {
	server       *httptest.Server
	searchCalls  int32
	imageCalls   int32
	segmentCalls int32
}

func newMockServer(t *testing.T, imagesPerPage, pages int) *mockServer {
	t.Helper()
	m := &mockServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/images/async", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.searchCalls, 1)

		var first int
		fmt.Sscanf(r.URL.Query().Get("first"), "%d", &first)
		if first >= pages {
			w.Write([]byte("<html></html>"))
			return
		}

		var b strings.Builder
		for i := 0; i < imagesPerPage; i++ {
			fmt.Fprintf(&b, `<a m="{&quot;murl&quot;:&quot;%s/photos/%d-%d.png&quot;}"></a>`, m.server.URL, first, i)
		}
		w.Write([]byte(b.String()))
	})
	mux.HandleFunc("/photos/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.imageCalls, 1)
		img := image.NewNRGBA(image.Rect(0, 0, 800, 600))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 30, 160, 90, 255
		}
		png.Encode(w, img)
	})
	mux.HandleFunc("/api/remove", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.segmentCalls, 1)
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		src, err := png.Decode(file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := imageproc.ToAlphaLayout(src)
		b := out.Bounds()
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx()/2; x++ {
				out.SetNRGBA(x, y, color.NRGBA{})
			}
		}
		var buf bytes.Buffer
		png.Encode(&buf, out)
		w.Write(buf.Bytes())
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockServer) config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Search.Endpoint = m.server.URL + "/images/async"
	cfg.Segmentation.Endpoint = m.server.URL
	cfg.RateLimit.RequestsPerMinute = 0
	return cfg
}

func TestGetImagesEndToEnd(t *testing.T) {
	m := newMockServer(t, 2, 5)
	dir := t.TempDir()

	err := scraper.GetImages(context.Background(), "studio product shot", 3, dir,
		scraper.WithConfig(m.config()),
		scraper.WithLogger(logger.NewNopLogger()),
		scraper.WithResolution(800, 600),
		scraper.WithBackgroundRemoval(true),
	)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&m.searchCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&m.imageCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&m.segmentCalls))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.Equal(t, ".png", filepath.Ext(e.Name()))

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		img, container, err := imageproc.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "png", container)
		assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())

		_, _, _, a := img.At(100, 300).RGBA()
		assert.Zero(t, a)
		_, _, _, a = img.At(700, 300).RGBA()
		assert.Equal(t, uint32(0xffff), a)
	}
}

func TestRunReportEndToEnd(t *testing.T) {
	m := newMockServer(t, 3, 1)
	cfg := m.config()
	cfg.Processing.Resize = false

	s := scraper.New(cfg, logger.NewNopLogger())
	opts := scraper.OptionsFromConfig(cfg, "few results", 10)
	opts.OutputDir = t.TempDir()

	report, err := s.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Len(t, report.Downloaded, 3)
	assert.Equal(t, 2, report.PagesFetched)
	assert.Equal(t, 1, report.FinalOffset)
	assert.Len(t, report.Normalized, 3)
	assert.Zero(t, atomic.LoadInt32(&m.segmentCalls))
}
