// Package http exposes the shell over a JSON API.
//
// Routes:
//   - GET    /health              Service health and metrics snapshot
//   - GET    /catalog             Current catalog
//   - POST   /catalog/refresh     Reload the catalog from its remote source
//   - GET    /shells              Live and persisted installations
//   - POST   /shells              Start a shell for a new installation
//   - GET    /shells/:id/state    Snapshot of an installation
//   - POST   /shells/:id/events   Apply one event
//   - DELETE /shells/:id/layout   Discard and reseed an installation's layout
//
// Domain errors are mapped to 4xx responses with a {"error": ...} body.
package http
