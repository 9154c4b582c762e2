package shell

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/drag"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/keyboard"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/probe"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// ErrInvalidInstallation is returned for malformed installation ids
var ErrInvalidInstallation = errors.New("invalid installation id")

// Options configures every shell created by a Pool
type Options struct {
	Catalog *catalog.Store
	// KV persists layouts. Nil keeps layouts in memory only.
	KV storage.KV
	// Prober decides top-level opens. Nil never escapes the shell.
	Prober navigation.Prober
	Origin *url.URL
	Policy *message.OriginPolicy
	// StoreApp is the requested id of the app that handles link clicks
	StoreApp     string
	Dimensions   layout.Dimensions
	Bindings     keyboard.Bindings
	HistoryLimit int
	// Random overrides first-placement randomness (tests)
	Random  geometry.RandomSource
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Pool owns the shells of every active installation
type Pool struct {
	mu     sync.Mutex
	shells map[string]*Shell
	opts   Options
	logger *zap.Logger
}

// NewPool creates a pool and subscribes it to catalog updates
func NewPool(opts Options) *Pool {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.NewStore(opts.Logger.Component("catalog"))
	}
	if opts.Prober == nil {
		opts.Prober = probe.Never{}
	}
	if opts.Dimensions == (layout.Dimensions{}) {
		opts.Dimensions = layout.DefaultDimensions()
	}
	if opts.Bindings == (keyboard.Bindings{}) {
		opts.Bindings = keyboard.DefaultBindings()
	}

	p := &Pool{
		shells: make(map[string]*Shell),
		opts:   opts,
		logger: opts.Logger.Component("pool"),
	}
	opts.Catalog.Subscribe(p.catalogUpdated)
	return p
}

// Catalog returns the shared catalog store
func (p *Pool) Catalog() *catalog.Store {
	return p.opts.Catalog
}

// Create starts a shell for a new installation
func (p *Pool) Create(ctx context.Context) (*Shell, error) {
	return p.Get(ctx, id.NewInstallationID().String())
}

// Get returns the shell of an installation, creating and loading it on
// first use
func (p *Pool) Get(ctx context.Context, installation string) (*Shell, error) {
	if !id.ValidInstallation(installation) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInstallation, installation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.shells[installation]; ok {
		return s, nil
	}

	s := p.build(installation)
	if err := s.layout.Load(ctx); err != nil {
		s.logger.Warn("Layout load degraded to defaults", zap.Error(err))
	}
	p.seed(s)

	p.shells[installation] = s
	if p.opts.Metrics != nil {
		p.opts.Metrics.SetShells(len(p.shells))
	}
	p.logger.Info("Shell created", zap.String("installation", installation))
	return s, nil
}

// Lookup returns an existing shell without creating one
func (p *Pool) Lookup(installation string) (*Shell, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.shells[installation]
	return s, ok
}

// Evict drops an installation's shell from memory. Its layout stays
// persisted.
func (p *Pool) Evict(installation string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.shells[installation]; !ok {
		return false
	}
	delete(p.shells, installation)
	if p.opts.Metrics != nil {
		p.opts.Metrics.SetShells(len(p.shells))
	}
	return true
}

// Reset discards an installation's layout and seeds a fresh one. A live
// shell is reset in place and its sinks see the new state.
func (p *Pool) Reset(ctx context.Context, installation string) error {
	if !id.ValidInstallation(installation) {
		return fmt.Errorf("%w: %q", ErrInvalidInstallation, installation)
	}

	if s, ok := p.Lookup(installation); ok {
		return s.resetLayout(ctx, p.seed)
	}
	if p.opts.KV == nil {
		return nil
	}
	return layout.NewKVPersister(p.opts.KV, installation).Delete(ctx)
}

// Stored returns the ids of live shells and of installations with a
// persisted layout, sorted
func (p *Pool) Stored(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, inst := range p.Installations() {
		seen[inst] = struct{}{}
	}
	if p.opts.KV != nil {
		persisted, err := layout.Installations(ctx, p.opts.KV)
		if err != nil {
			return nil, err
		}
		for _, inst := range persisted {
			seen[inst] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for inst := range seen {
		out = append(out, inst)
	}
	sort.Strings(out)
	return out, nil
}

// Len returns the number of live shells
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shells)
}

// Installations returns the ids of live shells, sorted
func (p *Pool) Installations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.shells))
	for inst := range p.shells {
		out = append(out, inst)
	}
	sort.Strings(out)
	return out
}

func (p *Pool) build(installation string) *Shell {
	opts := p.opts
	logger := opts.Logger.ForInstallation(installation)

	s := &Shell{
		installation: installation,
		catalog:      opts.Catalog,
		history:      navigation.NewHistory(opts.HistoryLimit),
		swipe:        drag.NewSwipe(drag.DefaultSwipeThreshold),
		sinks:        make(map[id.ConnectionID]Sink),
		logger:       logger.Component("shell"),
		metrics:      opts.Metrics,
	}

	recorder := navigation.Fanout{s.history, navigation.HistoryFunc(s.forwardHistory)}
	s.nav = navigation.NewManager(recorder, logger.Component("navigation")).
		WithProber(opts.Prober, opts.Origin).
		WithOpener(s).
		WithMetrics(opts.Metrics)

	s.layout = layout.NewStore(opts.Dimensions, logger.Component("layout")).
		WithMetrics(opts.Metrics)
	if opts.KV != nil {
		s.layout.WithPersister(layout.NewKVPersister(opts.KV, installation))
	}
	if opts.Random != nil {
		s.layout.WithRandom(opts.Random)
	}

	s.drag = drag.NewController(drag.ConfigFromDimensions(opts.Dimensions), s.layout, logger.Component("drag")).
		WithMetrics(opts.Metrics)

	s.router = message.NewRouter(opts.Policy, opts.Catalog, s.nav, opts.StoreApp, logger.Component("router")).
		WithMetrics(opts.Metrics)

	s.keys = keyboard.NewHandler(opts.Bindings, s.nav, logger.Component("keyboard"))

	s.nav.UpdateCatalog(opts.Catalog.List())
	return s
}

// seed lays out a first-run home with every catalog app and docks the
// favorites
func (p *Pool) seed(s *Shell) {
	apps := p.opts.Catalog.List()
	if len(apps) == 0 {
		return
	}

	home := make([]string, 0, len(apps))
	for _, app := range apps {
		home = append(home, app.ID)
	}
	var dock []string
	for _, app := range p.opts.Catalog.Favorites() {
		if len(dock) == types.DockCapacity {
			break
		}
		dock = append(dock, app.ID)
	}

	if s.layout.Initialize(home, dock) {
		s.logger.Info("Seeded first-run layout", zap.Int("home", len(home)), zap.Int("dock", len(dock)))
	}
}

func (p *Pool) catalogUpdated(apps []types.SubApplication) {
	p.mu.Lock()
	shells := make([]*Shell, 0, len(p.shells))
	for _, s := range p.shells {
		shells = append(shells, s)
	}
	p.mu.Unlock()

	for _, s := range shells {
		s.catalogChanged(apps, p.seed)
	}
}
