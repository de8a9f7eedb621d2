package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSearchPage logs the outcome of one search page request
func LogSearchPage(l Logger, query string, offset, candidates int) {
	l.InfoWithFields("Search page fetched", map[string]interface{}{
		"query":      query,
		"page":       offset,
		"candidates": candidates,
	})
}

// LogDownload logs one fetch-and-save attempt
func LogDownload(l Logger, url, path string, err error) {
	fields := map[string]interface{}{
		"url":     url,
		"success": err == nil,
	}
	if path != "" {
		fields["path"] = path
	}

	if err != nil {
		l.WithError(err).ErrorWithFields("Download failed", fields)
		return
	}
	l.DebugWithFields("Download completed", fields)
}

// LogNormalize logs one normalization attempt
func LogNormalize(l Logger, path string, err error) {
	if err != nil {
		l.WithError(err).ErrorWithFields("Normalization failed", map[string]interface{}{"path": path})
		return
	}
	l.DebugWithFields("Normalization completed", map[string]interface{}{"path": path})
}

// LogMetrics logs run metrics under a single operation name
func LogMetrics(l Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	l.InfoWithFields("Performance metrics", fields)
}

// OrDefault returns l, or the global logger when l is nil
func OrDefault(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
