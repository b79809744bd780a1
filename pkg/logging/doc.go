// Package logging provides structured logging configuration for mockldap.
//
// This package wraps log/slog so every part of the test double logs the
// same way. It supports configurable log levels and output formats.
//
// # Usage
//
// Create a logger with the desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//
//	registry := mockldap.NewRegistry(mockldap.RegistryConfig{
//	    Default: content,
//	    Logger:  logger,
//	})
//
// # Integration
//
// Components accept a *slog.Logger in their constructor config. When none
// is given they fall back to logging.Nop(), so the double stays silent in
// test output unless a logger is asked for.
package logging
