// Package shell composes the window-manager components for one installation.
//
// A Shell owns a navigation manager, layout store, drag controller, card
// swipe tracker, message router and keyboard handler. Every inbound event
// goes through Dispatch, which holds the shell lock for the whole event:
// read, reduce, commit, persist, notify. No two events interleave and no
// observer sees a half-applied event.
//
// Outbound effects reach the page through Sinks:
//   - PushHistory: one entry per state changing navigation
//   - OpenWindow: escape-hatch URLs to open in a new browsing context
//   - StateChanged: a Snapshot after every event
//
// A Pool creates shells lazily per installation id, loads their persisted
// layout, seeds a first-run layout from the catalog, and forwards catalog
// updates to every live shell.
//
// Example Usage:
//
//	pool := shell.NewPool(shell.Options{Catalog: apps, KV: kv, Policy: policy})
//	sh, err := pool.Get(ctx, installation)
//	res, err := sh.Dispatch(ctx, shell.Event{Type: shell.EventOpen, AppID: "settings:settings:sys"})
package shell
