package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Source names where a catalog replacement came from
type Source string

const (
	SourceFetch Source = "fetch"
	SourcePush  Source = "push"
	SourceSeed  Source = "seed"
)

// Listener is notified after every replacement with the new list
type Listener func(apps []types.SubApplication)

// Store holds the current catalog
type Store struct {
	mu        sync.RWMutex
	apps      []types.SubApplication
	byID      map[string]int
	listeners []Listener
	policy    *bluemonday.Policy
	logger    *zap.Logger
	metrics   *monitoring.Metrics
}

// NewStore creates an empty catalog
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		byID:   map[string]int{},
		policy: bluemonday.UGCPolicy(),
		logger: logger,
	}
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Subscribe registers a listener for future replacements
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Replace swaps in a new catalog. Entries without an id are dropped, later
// duplicates of an id are ignored, and the list is ordered by Order (stable).
func (s *Store) Replace(apps []types.SubApplication, source Source) {
	clean := make([]types.SubApplication, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if app.ID == "" {
			s.logger.Warn("Dropping catalog entry without id", zap.String("label", app.Label))
			continue
		}
		if _, dup := seen[app.ID]; dup {
			s.logger.Warn("Dropping duplicate catalog entry", zap.String("app_id", app.ID))
			continue
		}
		seen[app.ID] = struct{}{}

		if app.HasWidget() && !app.WidgetUsesPath() {
			app.WidgetContent = s.policy.Sanitize(app.WidgetContent)
		}
		clean = append(clean, app)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Order < clean[j].Order })

	byID := make(map[string]int, len(clean))
	for i, app := range clean {
		byID[app.ID] = i
	}

	s.mu.Lock()
	s.apps = clean
	s.byID = byID
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("Catalog replaced", zap.String("source", string(source)), zap.Int("apps", len(clean)))
	if s.metrics != nil {
		s.metrics.SetCatalogApps(len(clean))
		s.metrics.RecordCatalogUpdate(string(source))
	}

	for _, l := range listeners {
		l(s.List())
	}
}

// List returns a copy of the catalog
func (s *Store) List() []types.SubApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.SubApplication(nil), s.apps...)
}

// Len returns the number of entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apps)
}

// Get returns the entry with exactly this id
func (s *Store) Get(id string) (types.SubApplication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return types.SubApplication{}, false
	}
	return s.apps[i], true
}

// FindBySuffix returns every entry whose id ends with ":" + requested.
// Callers must treat anything other than exactly one match as unresolved.
func (s *Store) FindBySuffix(requested string) []types.SubApplication {
	if requested == "" {
		return nil
	}
	suffix := ":" + requested

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.SubApplication
	for _, app := range s.apps {
		if strings.HasSuffix(app.ID, suffix) {
			out = append(out, app)
		}
	}
	return out
}

// Favorites returns favorite entries in catalog order
func (s *Store) Favorites() []types.SubApplication {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.SubApplication
	for _, app := range s.apps {
		if app.Favorite {
			out = append(out, app)
		}
	}
	return out
}
