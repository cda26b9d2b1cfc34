// Package logging provides a minimal logging interface and adapters for Agora.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the registry, runner and server use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - AgoraLogger with run-scoped contextual helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	registry := sim.NewRegistry(factory, sink, func(o *sim.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
