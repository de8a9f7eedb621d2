// Package logger provides the structured logging interface used across imgharvest.
//
// It wraps zerolog behind a small Logger interface with leveled methods,
// field helpers and a process-wide default logger:
//
//	cfg := &config.LoggingConfig{Level: "debug"}
//	if err := logger.Initialize(cfg); err != nil {
//	    return err
//	}
//	logger.WithField("query", "landscape").Info("Run started")
//
// Components accept a Logger and fall back to GetLogger when given nil.
// NewNopLogger and NewTestLogger are meant for tests.
package logger
