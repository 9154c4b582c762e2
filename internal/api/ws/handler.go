package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

// Outbound message types
const (
	TypeState       = "state"
	TypeHistoryPush = "history_push"
	TypeOpenWindow  = "open_window"
	TypeError       = "error"
	TypePong        = "pong"
)

// TypePing is the keep-alive message sent by clients
const TypePing = "ping"

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	sendBuffer   = 64
	maxMessage   = utils.MaxBackgroundSize
)

// Envelope is one message on the stream
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Error string          `json:"error"`
	Event shell.EventType `json:"event,omitempty"`
}

// Handler manages WebSocket connections
type Handler struct {
	pool     *shell.Pool
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler. allowOrigin decides which
// page origins may connect; nil allows all.
func NewHandler(pool *shell.Pool, allowOrigin func(origin string) bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{pool: pool, logger: logger}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return h
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(metrics *monitoring.Metrics) *Handler {
	h.metrics = metrics
	return h
}

// HandleConnection upgrades the request and streams one installation's shell
func (h *Handler) HandleConnection(c *gin.Context) {
	s, err := h.pool.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &client{
		conn:    conn,
		send:    make(chan Envelope, sendBuffer),
		done:    make(chan struct{}),
		logger:  h.logger.With(zap.String("installation", s.Installation())),
		metrics: h.metrics,
	}
	handle := s.Attach(client)
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	client.logger.Info("Stream connected", zap.String("connection", handle.String()))

	defer func() {
		s.Detach(handle)
		client.close()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
		client.logger.Info("Stream disconnected", zap.String("connection", handle.String()))
	}()

	go client.writeLoop()
	client.enqueue(Envelope{Type: TypeState, Data: s.Snapshot()})

	// Events outlive the HTTP request context once upgraded
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.readLoop(ctx, s)
}

// client is one connection, attached to its shell as a sink
type client struct {
	conn    *websocket.Conn
	send    chan Envelope
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// PushHistory implements shell.Sink
func (cl *client) PushHistory(entry types.HistoryEntry) {
	cl.enqueue(Envelope{Type: TypeHistoryPush, Data: entry})
}

// OpenWindow implements shell.Sink
func (cl *client) OpenWindow(url string) {
	cl.enqueue(Envelope{Type: TypeOpenWindow, Data: map[string]string{"url": url}})
}

// StateChanged implements shell.Sink
func (cl *client) StateChanged(snapshot shell.Snapshot) {
	cl.enqueue(Envelope{Type: TypeState, Data: snapshot})
}

// enqueue never blocks the shell; a client that cannot keep up is dropped
func (cl *client) enqueue(env Envelope) {
	select {
	case <-cl.done:
		return
	default:
	}

	select {
	case cl.send <- env:
	default:
		cl.logger.Warn("Dropping slow stream client", zap.String("type", env.Type))
		cl.close()
	}
}

func (cl *client) close() {
	cl.once.Do(func() {
		close(cl.done)
		_ = cl.conn.Close()
	})
}

func (cl *client) readLoop(ctx context.Context, s *shell.Shell) {
	cl.conn.SetReadLimit(maxMessage)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev shell.Event
		if err := sonic.Unmarshal(data, &ev); err != nil {
			cl.enqueue(Envelope{Type: TypeError, Data: ErrorData{Error: "invalid event: " + err.Error()}})
			continue
		}
		if ev.Type == TypePing {
			cl.record("in", TypePing)
			cl.enqueue(Envelope{Type: TypePong})
			continue
		}
		cl.record("in", "event")
		if err := utils.EventValidatorFor(string(ev.Type)).ValidateSize(data); err != nil {
			cl.enqueue(Envelope{Type: TypeError, Data: ErrorData{Error: err.Error(), Event: ev.Type}})
			continue
		}

		if _, err := s.Dispatch(ctx, ev); err != nil {
			cl.enqueue(Envelope{Type: TypeError, Data: ErrorData{Error: err.Error(), Event: ev.Type}})
		}
	}
}

func (cl *client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case env := <-cl.send:
			data, err := sonic.Marshal(env)
			if err != nil {
				cl.logger.Error("Failed to encode stream message", zap.String("type", env.Type), zap.Error(err))
				continue
			}
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				cl.logger.Debug("WebSocket write failed", zap.Error(err))
				cl.close()
				return
			}
			cl.record("out", env.Type)
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.close()
				return
			}
		}
	}
}

func (cl *client) record(direction, msgType string) {
	if cl.metrics != nil {
		cl.metrics.RecordWSMessage(direction, msgType)
	}
}
