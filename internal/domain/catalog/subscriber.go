package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// KindAppsUpdate is the only envelope kind the subscriber acts on
const KindAppsUpdate = "apps_update"

// Envelope is a typed message on the catalog push channel
type Envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Subscriber keeps a push-channel connection open and feeds updates into a Store
type Subscriber struct {
	url        string
	store      *Store
	logger     *zap.Logger
	dialer     *websocket.Dialer
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewSubscriber creates a subscriber for the push channel at url
func NewSubscriber(url string, store *Store, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		url:        url,
		store:      store,
		logger:     logger,
		dialer:     &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// WithBackoff overrides the reconnect backoff bounds
func (s *Subscriber) WithBackoff(min, max time.Duration) *Subscriber {
	s.minBackoff = min
	s.maxBackoff = max
	return s
}

// Run connects and reconnects until ctx is done
func (s *Subscriber) Run(ctx context.Context) {
	backoff := s.minBackoff
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = s.minBackoff
		}
		if err != nil {
			s.logger.Warn("Catalog push channel lost", zap.Error(err), zap.Duration("retry_in", backoff))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = s.nextBackoff(backoff)
	}
}

func (s *Subscriber) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > s.maxBackoff {
		next = s.maxBackoff
	}
	return next
}

// session runs one connection until it fails or ctx ends. connected reports
// whether the dial succeeded.
func (s *Subscriber) session(ctx context.Context) (connected bool, err error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	// Unblock ReadJSON when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	s.logger.Info("Catalog push channel connected", zap.String("url", s.url))
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return true, err
		}
		s.handle(env)
	}
}

func (s *Subscriber) handle(env Envelope) {
	if env.Kind != KindAppsUpdate {
		s.logger.Debug("Ignoring push envelope", zap.String("kind", env.Kind))
		return
	}

	var apps []types.SubApplication
	if err := json.Unmarshal(env.Data, &apps); err != nil {
		s.logger.Warn("Malformed apps_update payload", zap.Error(err))
		return
	}
	s.store.Replace(apps, SourcePush)
}
