// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vrc-link/models"
)

func ptr[T any](v T) *T { return &v }

func TestNewRequestValidator(t *testing.T) {
	require.NotNil(t, NewRequestValidator())
}

func TestValidate_UnsupportedType(t *testing.T) {
	err := NewRequestValidator().Validate(context.Background(), "not a request")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// StatusUpdateRequest
// ---------------------------------------------------------------------------

func TestValidate_StatusUpdate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.StatusUpdateRequest
		fields  []string
		wantErr error
	}{
		{name: "status only", req: models.StatusUpdateRequest{Status: models.StatusBusy}},
		{name: "description only", req: models.StatusUpdateRequest{StatusDescription: ptr("brb")}},
		{name: "empty description clears it", req: models.StatusUpdateRequest{StatusDescription: ptr("")}},
		{
			name: "description at the limit",
			req:  models.StatusUpdateRequest{StatusDescription: ptr(strings.Repeat("я", MaxStatusDescriptionLength))},
		},
		{
			name:    "description over the limit",
			req:     models.StatusUpdateRequest{StatusDescription: ptr(strings.Repeat("a", MaxStatusDescriptionLength+1))},
			wantErr: ErrStatusDescriptionTooLong,
		},
		{name: "unknown status", req: models.StatusUpdateRequest{Status: "sleeping"}, wantErr: ErrInvalidStatus},
		{
			name:   "scoped to description ignores status",
			req:    models.StatusUpdateRequest{Status: "sleeping"},
			fields: []string{FieldStatusDescription},
		},
		{name: "unknown field", req: models.StatusUpdateRequest{}, fields: []string{"nope"}, wantErr: ErrUnknownField},
	}

	v := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.req, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_StatusUpdatePointer(t *testing.T) {
	err := NewRequestValidator().Validate(context.Background(), &models.StatusUpdateRequest{Status: "sleeping"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

// ---------------------------------------------------------------------------
// InviteRequest
// ---------------------------------------------------------------------------

func TestValidate_Invite(t *testing.T) {
	tests := []struct {
		name    string
		req     models.InviteRequest
		wantErr error
	}{
		{name: "instance without message", req: models.InviteRequest{InstanceID: "wrld_1:123"}},
		{name: "instance with slot", req: models.InviteRequest{InstanceID: "wrld_1:123", MessageSlot: ptr(11)}},
		{name: "blank instance", req: models.InviteRequest{InstanceID: "  "}, wantErr: ErrEmptyInstanceID},
		{name: "slot out of range", req: models.InviteRequest{InstanceID: "wrld_1:123", MessageSlot: ptr(12)}, wantErr: ErrInvalidInviteMessageSlot},
		{name: "negative slot", req: models.InviteRequest{InstanceID: "wrld_1:123", MessageSlot: ptr(-1)}, wantErr: ErrInvalidInviteMessageSlot},
	}

	v := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// InviteMessage
// ---------------------------------------------------------------------------

func TestValidate_InviteMessage(t *testing.T) {
	valid := models.InviteMessage{MessageType: models.InviteMessageTypeRequest, Slot: 3, Message: "can I join?"}

	tests := []struct {
		name    string
		mutate  func(m *models.InviteMessage)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.InviteMessage) {}},
		{name: "unknown type", mutate: func(m *models.InviteMessage) { m.MessageType = "broadcast" }, wantErr: ErrInvalidInviteMessageType},
		{name: "blank text", mutate: func(m *models.InviteMessage) { m.Message = "   " }, wantErr: ErrEmptyInviteMessage},
		{
			name:    "text over the limit",
			mutate:  func(m *models.InviteMessage) { m.Message = strings.Repeat("x", MaxInviteMessageLength+1) },
			wantErr: ErrInviteMessageTooLong,
		},
		{name: "slot out of range", mutate: func(m *models.InviteMessage) { m.Slot = InviteMessageSlots }, wantErr: ErrInvalidInviteMessageSlot},
	}

	v := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid
			tt.mutate(&msg)

			err := v.Validate(context.Background(), msg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_InviteMessageScoped(t *testing.T) {
	// слот не проверяется, если поле не запрошено
	draft := models.InviteMessage{MessageType: models.InviteMessageTypeMessage, Slot: 99, Message: "hi"}

	err := NewRequestValidator().Validate(context.Background(), &draft, FieldMessageType, FieldMessage)
	assert.NoError(t, err)
}
