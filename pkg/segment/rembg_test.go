package segment

import (
	"bytes"
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRembgClientSegment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/remove", r.URL.Path)
		assert.Equal(t, "u2net", r.FormValue("model"))

		file, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()

		src, err := png.Decode(file)
		if !assert.NoError(t, err) {
			return
		}

		out := image.NewNRGBA(src.Bounds())
		out.SetNRGBA(0, 0, color.NRGBA{R: 9, A: 255})
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, out)
	}))
	defer server.Close()

	client := NewRembgClient(server.URL+"/", "u2net", 5*time.Second, logger.NewNopLogger())
	img, err := client.Segment(context.Background(), image.NewNRGBA(image.Rect(0, 0, 4, 3)))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	_, _, _, a := img.At(1, 1).RGBA()
	assert.Zero(t, a)
	_, _, _, a = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestRembgClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewRembgClient(server.URL, "", 5*time.Second, logger.NewNopLogger())
	_, err := client.Segment(context.Background(), image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	var transportErr *errs.Error
	require.True(t, stderrors.As(err, &transportErr))
	assert.Equal(t, errs.ErrorTypeServerError, transportErr.Type)
	assert.Contains(t, transportErr.Message, "model not loaded")
}

func TestRembgClientUndecodableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 16))
	}))
	defer server.Close()

	client := NewRembgClient(server.URL, "", 5*time.Second, logger.NewNopLogger())
	_, err := client.Segment(context.Background(), image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	var transportErr *errs.Error
	require.True(t, stderrors.As(err, &transportErr))
	assert.Equal(t, errs.ErrorTypeParsing, transportErr.Type)
}

func TestRembgClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewRembgClient(url, "", time.Second, logger.NewNopLogger())
	_, err := client.Segment(context.Background(), image.NewNRGBA(image.Rect(0, 0, 1, 1)))

	var transportErr *errs.Error
	require.True(t, stderrors.As(err, &transportErr))
	assert.Equal(t, errs.ErrorTypeNetwork, transportErr.Type)
}
