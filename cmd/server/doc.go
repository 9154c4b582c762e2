// Package main is the entry point for the desktop shell server.
//
// The server owns one window manager per installation: the running-app
// table, the home/dock layout, drag gestures and the cross-document message
// router. Browser pages drive it over HTTP or a websocket stream and render
// the snapshots it returns.
//
// Architecture:
//
//	Shell page (browser) → REST /shells/:id/events → shell.Pool → Shell
//	                     ← WS   /shells/:id/stream ← state, history, open_window
//	Catalog (HTTP / push / seed files) → catalog.Store → every Shell
//
// The server provides:
//   - REST API for shell state and events
//   - WebSocket stream of state, history and top-level open commands
//   - Catalog fetch, push subscription and file seeding
//   - Layout persistence (sqlite or memory)
//   - Prometheus metrics on /metrics
//
// Configuration:
//   - Environment variables, grouped by prefix: PORT/HOST, SHELL_*,
//     CATALOG_*, PROBE_*, LAYOUT_*, STORAGE_*, LOG_*, RATE_LIMIT_*
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve the shell for a custom origin with local seed files
//	./server -port 8000 -origin https://os.example.com -apps ./apps
//
//	# Development logging
//	LOG_DEV=true LOG_LEVEL=debug ./server
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
