package models

import "time"

// InviteMessageType selects one of the server-side template categories.
// Each category exposes a fixed number of numbered slots.
type InviteMessageType string

const (
	InviteMessageTypeMessage         InviteMessageType = "message"
	InviteMessageTypeResponse        InviteMessageType = "response"
	InviteMessageTypeRequest         InviteMessageType = "request"
	InviteMessageTypeRequestResponse InviteMessageType = "requestResponse"
)

// InviteMessage is one numbered slot of a message category.
//
// RemainingCooldownMinutes and CanBeUpdated are reported by the server and are
// the only source of truth for whether the slot may be overwritten.
type InviteMessage struct {
	ID                       string            `json:"id"`
	Slot                     int               `json:"slot"`
	Message                  string            `json:"message"`
	MessageType              InviteMessageType `json:"messageType"`
	UpdatedAt                time.Time         `json:"updatedAt"`
	RemainingCooldownMinutes int               `json:"remainingCooldownMinutes"`
	CanBeUpdated             bool              `json:"canBeUpdated"`
}

// Writable reports whether the server currently allows the slot to be
// overwritten.
func (m InviteMessage) Writable() bool {
	return m.CanBeUpdated && m.RemainingCooldownMinutes <= 0
}

// InviteRequest is the body of an invite sent to another user.
type InviteRequest struct {
	InstanceID  string `json:"instanceId"`
	MessageSlot *int   `json:"messageSlot,omitempty"`
}

// RequestInviteRequest is the body of an invite request sent to another user.
type RequestInviteRequest struct {
	MessageSlot *int `json:"messageSlot,omitempty"`
}
