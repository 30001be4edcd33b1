package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"food-delivery-relay/events"
	"food-delivery-relay/normalize"
)

// Frame is one message on the socket in either direction
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func encode(event string, payload any) ([]byte, error) {
	b, err := json.Marshal(outbound{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return b, nil
}

func decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("decode frame: event name is required")
	}
	return f, nil
}

// Membership events handled by the hub itself
const (
	EventJoinRoom  = "join-room"
	EventJoin      = "join"
	EventLeaveRoom = "leave-room"
	EventLeave     = "leave"
)

type roomRequest struct {
	Type string `json:"type"`
	ID   any    `json:"id"`
}

// parseRoomRequest accepts {type,id} or a ready-made "<type>:<id>" string
func parseRoomRequest(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		kind, id, ok := strings.Cut(s, ":")
		if !ok {
			return "", fmt.Errorf("room %q is not <type>:<id>", s)
		}
		return events.ParseRoom(kind, id)
	}
	var req roomRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", fmt.Errorf("room request: %w", err)
	}
	return events.ParseRoom(req.Type, normalize.ID(req.ID))
}
