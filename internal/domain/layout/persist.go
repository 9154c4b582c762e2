package layout

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Namespace is the key prefix of persisted layout records
const Namespace = "shell.layout"

// Persister loads and saves one layout record
type Persister interface {
	Load(ctx context.Context) (types.LayoutRecord, error)
	Save(ctx context.Context, record types.LayoutRecord) error
	Delete(ctx context.Context) error
}

// Key returns the storage key for an installation
func Key(installation string) string {
	if installation == "" {
		return Namespace
	}
	return Namespace + ":" + installation
}

// KVPersister stores the record as JSON in a key/value store
type KVPersister struct {
	kv  storage.KV
	key string
}

// NewKVPersister creates a persister for one installation
func NewKVPersister(kv storage.KV, installation string) *KVPersister {
	return &KVPersister{kv: kv, key: Key(installation)}
}

// Load reads the record. storage.ErrNotFound is passed through for a fresh
// installation.
func (p *KVPersister) Load(ctx context.Context) (types.LayoutRecord, error) {
	data, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return types.LayoutRecord{}, err
	}

	var record types.LayoutRecord
	if err := sonic.Unmarshal(data, &record); err != nil {
		return types.LayoutRecord{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	record.Normalize()
	return record, nil
}

// Save writes the record
func (p *KVPersister) Save(ctx context.Context, record types.LayoutRecord) error {
	data, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	if err := p.kv.Set(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// Delete removes the record
func (p *KVPersister) Delete(ctx context.Context) error {
	if err := p.kv.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// Installations lists the installations with a persisted record
func Installations(ctx context.Context, kv storage.KV) ([]string, error) {
	prefix := Namespace + ":"
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	return out, nil
}
