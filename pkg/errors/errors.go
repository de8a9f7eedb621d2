package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of transport errors
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a transport error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// NewNetworkError builds a network error for a failed round trip
func NewNetworkError(err error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: fmt.Sprintf("network error: %v", err),
	}
}

// TypeForStatus maps an HTTP status code to an error type
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// Kind classifies a run failure by the component that raised it
type Kind string

const (
	KindSearch     Kind = "search"
	KindDownload   Kind = "download"
	KindProcessing Kind = "processing"
)

// Stage names the normalization step that failed
type Stage string

const (
	StageNone              Stage = ""
	StageDecode            Stage = "decode"
	StageResize            Stage = "resize"
	StageBackgroundRemoval Stage = "background_removal"
	StageEncode            Stage = "encode"
)

// RunError is the error surfaced by an acquisition run. Target is the
// offending URL for search and download failures, the file path for
// processing failures.
type RunError struct {
	Kind   Kind
	Stage  Stage
	Target string
	Err    error
}

func (e *RunError) Error() string {
	if e.Stage != StageNone {
		return fmt.Sprintf("%s error at %s stage for %s: %v", e.Kind, e.Stage, e.Target, e.Err)
	}
	return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Target, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewSearchError wraps a failure to fetch or read a search page
func NewSearchError(requestURL string, err error) *RunError {
	return &RunError{Kind: KindSearch, Target: requestURL, Err: err}
}

// NewDownloadError wraps a failure to fetch, decode or save one image
func NewDownloadError(imageURL string, err error) *RunError {
	return &RunError{Kind: KindDownload, Target: imageURL, Err: err}
}

// NewProcessingError wraps a normalization failure at the given stage
func NewProcessingError(path string, stage Stage, err error) *RunError {
	return &RunError{Kind: KindProcessing, Stage: stage, Target: path, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var runErr *RunError
	if stderrors.As(err, &runErr) {
		return runErr.Kind, true
	}
	return "", false
}

// IsSearchError reports whether err is or wraps a search failure
func IsSearchError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindSearch
}

// IsDownloadError reports whether err is or wraps a download failure
func IsDownloadError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindDownload
}

// IsProcessingError reports whether err is or wraps a normalization failure
func IsProcessingError(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindProcessing
}

// StageOf returns the failing normalization stage carried by err
func StageOf(err error) Stage {
	var runErr *RunError
	if stderrors.As(err, &runErr) {
		return runErr.Stage
	}
	return StageNone
}
