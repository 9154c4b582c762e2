// Package monitoring provides Prometheus metrics for the shell service.
//
// Metrics are registered on a per-instance registry and exposed through
// Handler (mounted at /metrics by the server).
//
// Metric families:
//   - shell_http_*: request count and latency by route template
//   - shell_apps_*, shell_navigation_*, shell_back_*: process table activity
//   - shell_probe_*: escape-hatch probe outcomes and latency
//   - shell_layout_*: persistence reads and writes
//   - shell_drag_gestures_total: completed gestures by kind
//   - shell_messages_total: cross-document messages by kind and outcome
//   - shell_catalog_*: catalog size and update sources
//   - shell_ws_*: stream connections and messages
//
// Every domain component treats *Metrics as optional: a nil pointer disables
// recording (see the nil-safe helpers in each package).
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package monitoring
