package models

import (
	"encoding/json"
	"fmt"
)

// Push event types handled by the realtime session.
const (
	PipelineUserUpdate         = "user-update"
	PipelineNotification       = "notification"
	PipelineGroupMemberUpdated = "group-member-updated"
)

// PipelineFrame is a single inbound push frame. Content is usually a JSON
// document encoded as a string, but some event types carry an object.
type PipelineFrame struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Payload returns the frame content as a JSON document, unwrapping it when the
// server sent it as a string.
func (f PipelineFrame) Payload() (json.RawMessage, error) {
	if len(f.Content) == 0 || f.Content[0] != '"' {
		return f.Content, nil
	}
	var s string
	if err := json.Unmarshal(f.Content, &s); err != nil {
		return nil, fmt.Errorf("decode frame content: %w", err)
	}
	return json.RawMessage(s), nil
}

// UserUpdateEvent is the content of a user-update push event.
type UserUpdateEvent struct {
	UserID string          `json:"userId"`
	User   json.RawMessage `json:"user"`
}
