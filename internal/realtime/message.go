package realtime

import (
	"encoding/json"
	"strings"
)

// Client to server events.
const (
	EventJoin     = "join"
	EventJoinRole = "join-role"
)

// EventNotification is the only server to client event.
const EventNotification = "notification"

const (
	userRoomPrefix = "user:"
	roleRoomPrefix = "role:"
)

// Inbound is a message read from a connection.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Notification is the payload of a notification event.
type Notification struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type outbound struct {
	Event string       `json:"event"`
	Data  Notification `json:"data"`
}

func encodeNotification(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(outbound{
		Event: EventNotification,
		Data:  Notification{Type: eventType, Data: data},
	})
}

// roomArgument accepts a JSON string or number as the join argument.
func roomArgument(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func userRoom(userID string) string { return userRoomPrefix + userID }

func roleRoom(role string) string { return roleRoomPrefix + role }
