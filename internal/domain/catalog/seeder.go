package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Seeder loads catalog entries from files on disk. Each file holds either a
// single entry or a list; TOML files use an [[apps]] array.
type Seeder struct {
	dir    string
	logger *zap.Logger
}

// NewSeeder creates a seeder over dir
func NewSeeder(dir string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{dir: dir, logger: logger}
}

// Load walks the directory and returns every entry it could parse. Files
// that fail to parse are logged and skipped.
func (s *Seeder) Load() ([]types.SubApplication, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Catalog seed directory not found", zap.String("dir", s.dir))
		return nil, nil
	}

	var (
		apps           []types.SubApplication
		loaded, failed int
	)
	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		entries, err := s.loadFile(path)
		if err != nil {
			failed++
			s.logger.Warn("Failed to load catalog file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if entries != nil {
			loaded++
			apps = append(apps, entries...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.dir, err)
	}

	s.logger.Info("Catalog seed loaded", zap.Int("files", loaded), zap.Int("failed", failed), zap.Int("apps", len(apps)))
	return apps, nil
}

// Seed loads the directory into store
func (s *Seeder) Seed(store *Store) error {
	apps, err := s.Load()
	if err != nil {
		return err
	}
	if len(apps) > 0 {
		store.Replace(apps, SourceSeed)
	}
	return nil
}

// loadFile returns nil, nil for files it does not handle
func (s *Seeder) loadFile(path string) ([]types.SubApplication, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".toml":
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".json":
		return decodeJSON(data)
	case ".toml":
		var doc struct {
			Apps []types.SubApplication `toml:"apps"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Apps, nil
	default:
		return decodeYAML(data)
	}
}

func decodeJSON(data []byte) ([]types.SubApplication, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var apps []types.SubApplication
		err := json.Unmarshal(data, &apps)
		return apps, err
	}
	var app types.SubApplication
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, err
	}
	return []types.SubApplication{app}, nil
}

func decodeYAML(data []byte) ([]types.SubApplication, error) {
	var apps []types.SubApplication
	if err := yaml.Unmarshal(data, &apps); err == nil {
		return apps, nil
	}
	var app types.SubApplication
	if err := yaml.Unmarshal(data, &app); err != nil {
		return nil, err
	}
	return []types.SubApplication{app}, nil
}
