package validators

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/MKhiriev/go-vrc-link/models"
)

const (
	FieldStatus            = "status"
	FieldStatusDescription = "status_description"
	FieldInstanceID        = "instance_id"
	FieldMessageSlot       = "message_slot"
	FieldMessageType       = "message_type"
	FieldMessage           = "message"
)

// Platform limits.
const (
	MaxStatusDescriptionLength = 32
	MaxInviteMessageLength     = 64
	InviteMessageSlots         = 12
)

var allowedStatuses = []models.UserStatus{
	models.StatusJoinMe,
	models.StatusActive,
	models.StatusAskMe,
	models.StatusBusy,
	models.StatusOffline,
}

var allowedMessageTypes = []models.InviteMessageType{
	models.InviteMessageTypeMessage,
	models.InviteMessageTypeResponse,
	models.InviteMessageTypeRequest,
	models.InviteMessageTypeRequestResponse,
}

type RequestValidator struct{}

func NewRequestValidator() Validator {
	return &RequestValidator{}
}

func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.StatusUpdateRequest:
		return v.validateStatusUpdate(ctx, value, fields...)
	case *models.StatusUpdateRequest:
		return v.validateStatusUpdate(ctx, *value, fields...)

	case models.InviteRequest:
		return v.validateInvite(ctx, value, fields...)
	case *models.InviteRequest:
		return v.validateInvite(ctx, *value, fields...)

	case models.InviteMessage:
		return v.validateInviteMessage(ctx, value, fields...)
	case *models.InviteMessage:
		return v.validateInviteMessage(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// An empty status leaves the current one in place.
func (v *RequestValidator) validateStatusUpdate(_ context.Context, req models.StatusUpdateRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldStatus, FieldStatusDescription}
	}

	for _, f := range fields {
		switch f {
		case FieldStatus:
			if req.Status != "" && !contains(allowedStatuses, req.Status) {
				return ErrInvalidStatus
			}
		case FieldStatusDescription:
			if req.StatusDescription != nil && utf8.RuneCountInString(*req.StatusDescription) > MaxStatusDescriptionLength {
				return ErrStatusDescriptionTooLong
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RequestValidator) validateInvite(_ context.Context, req models.InviteRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldInstanceID, FieldMessageSlot}
	}

	for _, f := range fields {
		switch f {
		case FieldInstanceID:
			if strings.TrimSpace(req.InstanceID) == "" {
				return ErrEmptyInstanceID
			}
		case FieldMessageSlot:
			if req.MessageSlot != nil && !validSlot(*req.MessageSlot) {
				return ErrInvalidInviteMessageSlot
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RequestValidator) validateInviteMessage(_ context.Context, msg models.InviteMessage, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMessageType, FieldMessageSlot, FieldMessage}
	}

	for _, f := range fields {
		switch f {
		case FieldMessageType:
			if !contains(allowedMessageTypes, msg.MessageType) {
				return ErrInvalidInviteMessageType
			}
		case FieldMessageSlot:
			if !validSlot(msg.Slot) {
				return ErrInvalidInviteMessageSlot
			}
		case FieldMessage:
			if strings.TrimSpace(msg.Message) == "" {
				return ErrEmptyInviteMessage
			}
			if utf8.RuneCountInString(msg.Message) > MaxInviteMessageLength {
				return ErrInviteMessageTooLong
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < InviteMessageSlots
}

func contains[T comparable](allowed []T, v T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
