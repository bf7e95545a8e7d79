package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// recordSeparator terminates every JSON hub message on the wire.
const recordSeparator = 0x1e

// Hub message types.
const (
	typeInvocation = 1
	typeStreamItem = 2
	typeCompletion = 3
	typePing       = 6
	typeClose      = 7
)

// Server-to-client targets.
const (
	TargetReceiveUnreadCount   = "ReceiveUnreadCount"
	TargetReceiveNotifications = "ReceiveNotifications"
	TargetReceiveNotification  = "ReceiveNotification"
)

// Client-to-server methods.
const (
	MethodRequestRecentNotifications = "RequestRecentNotifications"
	MethodRequestUnreadCount         = "RequestUnreadCount"
)

// handshakeRequest is the first record a client writes.
type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

// handshakeResponse is the first record the server writes. A non-empty
// Error rejects the connection.
type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// inbound is any record received after the handshake.
type inbound struct {
	Type           int               `json:"type"`
	Target         string            `json:"target,omitempty"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Error          string            `json:"error,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`
}

// outbound is a non-blocking invocation: no invocation id, so the server
// sends no completion.
type outbound struct {
	Type      int    `json:"type"`
	Target    string `json:"target"`
	Arguments []any  `json:"arguments"`
}

// encodeRecord marshals v and appends the record separator.
func encodeRecord(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding hub record: %w", err)
	}
	return append(data, recordSeparator), nil
}

// splitRecords splits a websocket payload into its JSON records. A single
// websocket message may carry several records.
func splitRecords(payload []byte) [][]byte {
	var out [][]byte
	for _, part := range bytes.Split(payload, []byte{recordSeparator}) {
		part = bytes.TrimSpace(part)
		if len(part) > 0 {
			out = append(out, part)
		}
	}
	return out
}
