package types

import "encoding/json"

// OpenRequest asks the shell to open a catalog entry
type OpenRequest struct {
	AppID  string `json:"appId" binding:"required"`
	Suffix string `json:"suffix,omitempty"`
}

// WSMessage is the envelope exchanged on the shell stream. Payload is kept raw
// and decoded by the event dispatcher according to Type.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
