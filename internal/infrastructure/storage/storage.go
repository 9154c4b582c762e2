package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned by Get for keys that were never written
var ErrNotFound = errors.New("storage: key not found")

// CompressThreshold is the value size above which values are compressed
const CompressThreshold = 4 << 10

// KV is a minimal durable key/value store
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open returns a KV for the configured driver ("sqlite" or "memory")
func Open(ctx context.Context, driver, path string) (KV, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(ctx, path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// codec flags stored alongside each value
const (
	flagRaw  = 0
	flagZstd = 1
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
)

func codecs() (*zstd.Encoder, *zstd.Decoder) {
	encoderOnce.Do(func() {
		// Both constructors only fail on invalid options.
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		decoder, _ = zstd.NewReader(nil)
	})
	return encoder, decoder
}

func pack(value []byte) ([]byte, int) {
	if len(value) <= CompressThreshold {
		return value, flagRaw
	}
	enc, _ := codecs()
	return enc.EncodeAll(value, make([]byte, 0, len(value)/2)), flagZstd
}

func unpack(data []byte, flag int) ([]byte, error) {
	switch flag {
	case flagRaw:
		return data, nil
	case flagZstd:
		_, dec := codecs()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress value: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value encoding %d", flag)
	}
}
