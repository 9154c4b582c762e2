// Package storage provides the durable key/value store behind layout persistence.
//
// The shell persists one JSON document per installation under a fixed
// namespace key. This package only moves bytes; encoding belongs to callers.
//
// Backends:
//   - SQLite: single-file database (modernc.org/sqlite, no cgo)
//   - Memory: process-local map for tests and ephemeral deployments
//
// Values larger than CompressThreshold are zstd-compressed transparently.
// Background images stored as data URIs are the usual reason a value grows.
//
// Example Usage:
//
//	kv, err := storage.OpenSQLite(ctx, "/var/lib/shell/layout.db")
//	defer kv.Close()
//	err = kv.Set(ctx, "shell.layout:1f0c…", data)
//	data, err := kv.Get(ctx, "shell.layout:1f0c…")
package storage
