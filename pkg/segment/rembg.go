// Package segment removes image backgrounds through a rembg HTTP server.
package segment

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/imageproc"
	"imgharvest/pkg/logger"
)

// DefaultEndpoint is where `rembg s` listens by default
const DefaultEndpoint = "http://localhost:7000"

const removePath = "/api/remove"

// RembgClient is an imageproc.Segmenter backed by rembg
type RembgClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

var _ imageproc.Segmenter = (*RembgClient)(nil)

// NewRembgClient creates a client for the server at endpoint. An empty
// model lets the server pick its default.
func NewRembgClient(endpoint, model string, timeout time.Duration, log logger.Logger) *RembgClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &RembgClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.OrDefault(log),
	}
}

// Segment uploads img as PNG and returns the server's cut-out
func (c *RembgClient) Segment(ctx context.Context, img image.Image) (image.Image, error) {
	body, contentType, err := c.buildForm(img)
	if err != nil {
		return nil, err
	}

	url := c.endpoint + removePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewNetworkError(err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("Segmentation request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &errs.Error{
			Type:    errs.TypeForStatus(resp.StatusCode),
			Message: fmt.Sprintf("segmentation failed: %s", strings.TrimSpace(string(msg))),
			Code:    resp.StatusCode,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewNetworkError(err)
	}

	out, _, err := imageproc.Decode(data)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: err.Error(),
			Code:    resp.StatusCode,
		}
	}
	return out, nil
}

func (c *RembgClient) buildForm(img image.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if c.model != "" {
		if err := w.WriteField("model", c.model); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, "", err
	}
	if err := png.Encode(part, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
