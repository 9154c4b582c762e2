// Package id provides centralized ID generation for the shell.
//
// ULIDs are used for short-lived, time-ordered identifiers:
//   - History entries pushed to the platform history stack (hist_*)
//   - Drag gestures (gst_*)
//   - Stream connections (conn_*)
//   - HTTP requests (req_*)
//
// Installations are long-lived and shared with the browser, so they use
// random UUIDs instead.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// EntryID identifies a pushed history entry
type EntryID string

// GestureID identifies a drag gesture
type GestureID string

// ConnectionID identifies a stream connection
type ConnectionID string

// RequestID identifies an API request
type RequestID string

// InstallationID identifies one browser installation of the shell
type InstallationID string

const (
	EntryPrefix      = "hist"
	GesturePrefix    = "gst"
	ConnectionPrefix = "conn"
	RequestPrefix    = "req"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by monotonic crypto entropy
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests pass a deterministic reader.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewEntryID generates a history entry ID
func NewEntryID() EntryID {
	return EntryID(Default().GenerateWithPrefix(EntryPrefix))
}

// NewGestureID generates a drag gesture ID
func NewGestureID() GestureID {
	return GestureID(Default().GenerateWithPrefix(GesturePrefix))
}

// NewConnectionID generates a stream connection ID
func NewConnectionID() ConnectionID {
	return ConnectionID(Default().GenerateWithPrefix(ConnectionPrefix))
}

// NewRequestID generates a request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewInstallationID generates a random installation ID
func NewInstallationID() InstallationID {
	return InstallationID(uuid.NewString())
}

func (id EntryID) String() string        { return string(id) }
func (id GestureID) String() string      { return string(id) }
func (id ConnectionID) String() string   { return string(id) }
func (id RequestID) String() string      { return string(id) }
func (id InstallationID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID, with or without a prefix
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a ULID string, stripping a known prefix
func Parse(id string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// ValidInstallation reports whether s is a well-formed installation ID
func ValidInstallation(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
