// Package telemetry sets up structured logging and Prometheus metrics.
//
// Logging is log/slog. LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default INFO)
// and LOG_FORMAT ("json" default, or "text") select the handler.
//
// Metrics count lattice builds, traversals and node visits per model, and
// HTTP requests per route and status.
package telemetry
