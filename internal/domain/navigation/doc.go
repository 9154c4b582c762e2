// Package navigation implements the shell's process table.
//
// The Manager tracks which sub-applications are running, which one is in
// the foreground and whether the app drawer or recent-apps switcher overlay
// is open. Every state changing transition pushes one HistoryEntry through
// a HistoryAdapter so the platform back signal can replay it.
//
// Transitions:
//   - Open: insert or refocus, close overlays, push {app}
//   - Close: remove, promote the last opened survivor, push {app|home}
//   - SwitchTo: foreground a running app, close the switcher, push {app}
//   - ToggleDrawer / ToggleSwitcher: at most one overlay is open
//   - CloseAllOverlays: back to home, push {home} only if an app was foregrounded
//   - HandlePlatformBack: overlays first, then app history, then home
//
// Before embedding, Open asks a Prober whether the app insists on its own
// top-level browsing context. Such apps are handed to an Opener and never
// enter the running set.
//
// Example Usage:
//
//	history := navigation.NewHistory(0)
//	nav := navigation.NewManager(history, logger).
//	    WithProber(prober, origin).
//	    WithOpener(opener)
//
//	if _, err := nav.Open(ctx, app, "?tab=2"); err != nil {
//	    // warn the user; nothing changed
//	}
//
//	entry, _ := history.Back()
//	nav.HandlePlatformBack(entry)
package navigation
