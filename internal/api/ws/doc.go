// Package ws streams a shell to its page over a WebSocket.
//
// Each connection attaches to one installation's shell as a sink and
// receives every effect of every event, whichever connection sent it.
//
// Message Types (Client → Server):
//   - any shell event: {"type": "open", "appId": ...}
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - state: Full snapshot, sent on connect and after every change
//   - history_push: Entry to push onto the page history
//   - open_window: URL to open in a new top-level context
//   - error: An event was rejected
//   - pong: Reply to ping
//
// Example Usage:
//
//	handler := ws.NewHandler(pool, policy.Allow, logger)
//	router.GET("/shells/:id/stream", handler.HandleConnection)
package ws
