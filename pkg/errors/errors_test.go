package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunErrorPredicates(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name       string
		err        error
		search     bool
		download   bool
		processing bool
		stage      Stage
	}{
		{"search", NewSearchError("https://bing.test/images/async?q=x", cause), true, false, false, StageNone},
		{"download", NewDownloadError("https://img.test/a.jpg", cause), false, true, false, StageNone},
		{"processing", NewProcessingError("/tmp/a.png", StageBackgroundRemoval, cause), false, false, true, StageBackgroundRemoval},
		{"wrapped", fmt.Errorf("run failed: %w", NewProcessingError("/tmp/a.png", StageResize, cause)), false, false, true, StageResize},
		{"plain", cause, false, false, false, StageNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.search, IsSearchError(tt.err))
			assert.Equal(t, tt.download, IsDownloadError(tt.err))
			assert.Equal(t, tt.processing, IsProcessingError(tt.err))
			assert.Equal(t, tt.stage, StageOf(tt.err))
		})
	}
}

func TestRunErrorMessageAndUnwrap(t *testing.T) {
	cause := &Error{Type: ErrorTypeNetwork, Message: "dial tcp: timeout"}
	err := NewDownloadError("https://img.test/a.jpg", cause)

	assert.Contains(t, err.Error(), "download error")
	assert.Contains(t, err.Error(), "https://img.test/a.jpg")

	var transportErr *Error
	assert.True(t, stderrors.As(err, &transportErr))
	assert.Equal(t, ErrorTypeNetwork, transportErr.Type)

	procErr := NewProcessingError("/tmp/a.webp", StageEncode, cause)
	assert.Contains(t, procErr.Error(), "encode stage")
}

func TestTypeForStatus(t *testing.T) {
	assert.Equal(t, ErrorTypeNetwork, TypeForStatus(0))
	assert.Equal(t, ErrorTypeNotFound, TypeForStatus(404))
	assert.Equal(t, ErrorTypeRateLimit, TypeForStatus(429))
	assert.Equal(t, ErrorTypeServerError, TypeForStatus(503))
	assert.Equal(t, ErrorTypeUnknown, TypeForStatus(403))
}
