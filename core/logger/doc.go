// Package logger builds the zap logger used across the service.
//
// New reads the log section of the configuration: the level (debug, info,
// warn, error) and the encoding (json or console). Debug switches to zap's
// development preset.
//
// Request handlers derive a child logger with WithRayID so every entry of a
// request carries the ray id assigned by the rayid middleware:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Render failed", zap.Error(err))
package logger
