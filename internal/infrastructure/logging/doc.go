// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Shell components receive a named child logger (Component) and, when they
// belong to one installation, a logger tagged with its ID (ForInstallation).
// Domain packages accept a plain *zap.Logger so they stay usable without
// this package; OrNop turns a nil logger into a no-op one.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	nav := navigation.NewManager(history, prober, opener).WithLogger(logger.Component("navigation"))
//	logger.Info("Shell starting", zap.String("port", "8000"))
package logging
