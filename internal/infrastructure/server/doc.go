// Package server composes the shell service.
//
// NewServer wires, in order:
//   - Logger and Prometheus metrics
//   - Shell origin and message origin policy
//   - Layout storage (SQLite or memory)
//   - Catalog: seed directory, remote fetch, push subscription
//   - Escape-hatch prober
//   - Shell pool
//   - Gin router: recovery, request ids, access log, metrics, CORS, rate limit
//
// Example Usage:
//
//	srv, err := server.NewServer(ctx, config.LoadOrDefault())
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
