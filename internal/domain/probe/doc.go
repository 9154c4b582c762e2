// Package probe decides whether a sub-application can be embedded in the
// shell or must be opened in its own top-level browsing context.
//
// Some apps assert a stronger isolation boundary than the shell document by
// redirecting to a dedicated sub-origin. An embedded frame cannot follow that
// navigation, so before embedding the shell sends a zero-body HEAD request to
// the app's launch path with redirects intercepted:
//
//   - 3xx response: the app needs its own context ("escape hatch")
//   - 2xx/4xx/5xx response: embed
//   - error or timeout (~100ms): embed; the frame sandbox fails safely
//
// A per-host circuit breaker stops probing an origin that keeps failing.
//
// TopLevelURL builds {scheme}://{label}.{host}{:port}{path}{suffix} for the
// escape hatch.
package probe
