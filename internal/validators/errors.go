package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidStatus            = errors.New("invalid user status")
	ErrStatusDescriptionTooLong = errors.New("status description is too long")
	ErrEmptyInstanceID          = errors.New("instance ID is required")
	ErrInvalidInviteMessageType = errors.New("invalid invite message type")
	ErrEmptyInviteMessage       = errors.New("invite message is empty")
	ErrInviteMessageTooLong     = errors.New("invite message is too long")
	ErrInvalidInviteMessageSlot = errors.New("invalid invite message slot")
)
