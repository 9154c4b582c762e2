// Package types provides shared data structures for the shell backend.
//
// This package defines the data model consumed by every shell component,
// ensuring the navigation, layout and message layers agree on shapes and
// JSON encodings.
//
// Core Types:
//   - SubApplication: Catalog entry (read-only, refreshed on demand)
//   - RunningApplication: Catalog entry plus open time and launch path
//   - NavigationState: Running set, foreground and overlay flags
//   - LayoutRecord: Persisted home/dock/widget/background layout
//   - HistoryEntry: Platform history state used to replay back navigation
//
// Request Types:
//   - OpenRequest: Open an app by id with an optional suffix
//   - WSMessage: WebSocket envelope
//
// Example Usage:
//
//	app := types.SubApplication{
//	    ID:         "settings:settings:sys",
//	    Label:      "Settings",
//	    LaunchPath: "/settings/",
//	}
package types
