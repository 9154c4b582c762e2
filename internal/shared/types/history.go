package types

// HistoryType discriminates history entries
type HistoryType string

const (
	HistoryHome HistoryType = "home"
	HistoryApp  HistoryType = "app"
)

// HistoryEntry is pushed onto the platform history stack on every state
// changing transition. It is replayed on back navigation and is never
// authoritative state.
type HistoryEntry struct {
	ID            string      `json:"id,omitempty"`
	Type          HistoryType `json:"type"`
	AppID         string      `json:"appId,omitempty"`
	PreviousAppID string      `json:"previousAppId,omitempty"`
}
