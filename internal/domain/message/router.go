package message

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

var (
	// ErrOriginRejected is returned for messages from untrusted origins
	ErrOriginRejected = errors.New("message origin rejected")
	// ErrUnknownApp is returned when no catalog id matches the request
	ErrUnknownApp = errors.New("no app matches requested id")
	// ErrAmbiguousApp is returned when several catalog ids match the request
	ErrAmbiguousApp = errors.New("requested id matches several apps")
)

// Catalog resolves requested ids
type Catalog interface {
	FindBySuffix(requested string) []types.SubApplication
}

// Opener opens catalog entries in the shell
type Opener interface {
	Open(ctx context.Context, app types.SubApplication, suffix string) (navigation.OpenResult, error)
}

// Router validates and dispatches cross-document messages
type Router struct {
	policy   *OriginPolicy
	catalog  Catalog
	opener   Opener
	storeApp string
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewRouter creates a router. storeApp is the requested id of the app that
// handles link_clicked messages.
func NewRouter(policy *OriginPolicy, catalog Catalog, opener Opener, storeApp string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		policy:   policy,
		catalog:  catalog,
		opener:   opener,
		storeApp: storeApp,
		logger:   logger,
	}
}

// WithMetrics adds metrics tracking to the router
func (r *Router) WithMetrics(metrics *monitoring.Metrics) *Router {
	r.metrics = metrics
	return r
}

// Policy returns the origin policy
func (r *Router) Policy() *OriginPolicy {
	return r.policy
}

// Route handles one message. Every failure is logged and reported as an
// error for the caller's bookkeeping; none of them is fatal and none
// changes shell state.
func (r *Router) Route(ctx context.Context, origin string, raw []byte) error {
	if !r.policy.Allow(origin) {
		r.logger.Warn("Dropping message from untrusted origin", zap.String("origin", origin))
		r.record("unknown", "origin_rejected")
		return fmt.Errorf("%w: %s", ErrOriginRejected, origin)
	}

	msg, err := Decode(raw)
	if err != nil {
		r.logger.Warn("Dropping undecodable message", zap.String("origin", origin), zap.Error(err))
		r.record("unknown", "invalid")
		return err
	}

	err = r.dispatch(ctx, msg)
	switch {
	case err == nil:
		r.record(string(msg.Kind()), "accepted")
	case errors.Is(err, ErrUnknownApp), errors.Is(err, ErrAmbiguousApp):
		r.logger.Error("Cannot resolve requested app",
			zap.String("kind", string(msg.Kind())),
			zap.String("origin", origin),
			zap.Error(err),
		)
		r.record(string(msg.Kind()), "unresolved")
	default:
		r.logger.Warn("Message not handled", zap.String("kind", string(msg.Kind())), zap.Error(err))
		r.record(string(msg.Kind()), "failed")
	}
	return err
}

func (r *Router) dispatch(ctx context.Context, msg Message) error {
	switch m := msg.(type) {
	case OpenApp:
		return r.open(ctx, m.AppID, m.Path)
	case LinkClicked:
		suffix, err := linkSuffix(m.Href)
		if err != nil {
			return err
		}
		return r.open(ctx, r.storeApp, suffix)
	case HostLinkClicked:
		app, suffix, err := splitHostLink(m.Href)
		if err != nil {
			return err
		}
		return r.open(ctx, app, suffix)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, msg)
	}
}

// Resolve finds the single catalog entry whose id ends with ":" + requested
func (r *Router) Resolve(requested string) (types.SubApplication, error) {
	matches := r.catalog.FindBySuffix(requested)
	switch len(matches) {
	case 0:
		return types.SubApplication{}, fmt.Errorf("%w: %q", ErrUnknownApp, requested)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, app := range matches {
			ids[i] = app.ID
		}
		return types.SubApplication{}, fmt.Errorf("%w: %q matches %v", ErrAmbiguousApp, requested, ids)
	}
}

func (r *Router) open(ctx context.Context, requested, suffix string) error {
	app, err := r.Resolve(requested)
	if err != nil {
		return err
	}
	if _, err := r.opener.Open(ctx, app, suffix); err != nil {
		return fmt.Errorf("failed to open %s: %w", app.ID, err)
	}
	return nil
}

func (r *Router) record(kind, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordMessage(kind, outcome)
	}
}
