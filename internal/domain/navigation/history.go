package navigation

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// HistoryAdapter receives one entry per state changing transition.
// Implementations must not call back into the Manager.
type HistoryAdapter interface {
	PushEntry(entry types.HistoryEntry)
}

// HistoryFunc adapts a function to HistoryAdapter
type HistoryFunc func(entry types.HistoryEntry)

// PushEntry implements HistoryAdapter
func (f HistoryFunc) PushEntry(entry types.HistoryEntry) { f(entry) }

// Fanout pushes every entry to each adapter in order
type Fanout []HistoryAdapter

// PushEntry implements HistoryAdapter
func (f Fanout) PushEntry(entry types.HistoryEntry) {
	for _, h := range f {
		if h != nil {
			h.PushEntry(entry)
		}
	}
}

// Depth reports the depth of the first adapter that tracks one
func (f Fanout) Depth() int {
	for _, h := range f {
		if d, ok := h.(interface{ Depth() int }); ok {
			return d.Depth()
		}
	}
	return 0
}

// DefaultHistoryLimit bounds the in-memory stack
const DefaultHistoryLimit = 256

// History is an in-memory stand-in for the platform history stack. The
// initial page state sits below the first pushed entry and has no entry.
type History struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
	limit   int
}

// NewHistory creates an empty stack. A limit <= 0 uses DefaultHistoryLimit;
// the oldest entries are dropped beyond it.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// PushEntry implements HistoryAdapter
func (h *History) PushEntry(entry types.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = append([]types.HistoryEntry(nil), h.entries[over:]...)
	}
}

// Back pops the current entry and returns the one that becomes current,
// or nil when back lands on the initial page state. ok is false when there
// was nothing to pop.
func (h *History) Back() (entry *types.HistoryEntry, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == 0 {
		return nil, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	if len(h.entries) == 0 {
		return nil, true
	}
	top := h.entries[len(h.entries)-1]
	return &top, true
}

// Depth returns the number of pushed entries
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of the stack, oldest first
func (h *History) Entries() []types.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.HistoryEntry(nil), h.entries...)
}
