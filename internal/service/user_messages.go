package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-vrc-link/internal/app"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
	"github.com/MKhiriev/go-vrc-link/internal/session"
)

// UserMessage returns the sentence shown to the user for err, or "" for nil.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return app.TextInvalidCredentials
	case errors.Is(err, ErrEmailCheckRequired):
		return app.TextEmailCheckRequired
	case errors.Is(err, ErrTwoFactorRequiredEmail):
		return app.TextTwoFactorEmail
	case errors.Is(err, ErrTwoFactorRequiredTOTP):
		return app.TextTwoFactorTOTP
	case errors.Is(err, ErrTwoFactorRequiredOTP):
		return app.TextTwoFactorOTP
	case errors.Is(err, ErrInvalidCode):
		return app.TextInvalidCode
	case errors.Is(err, ErrLoginExpired):
		return app.TextLoginExpired
	case errors.Is(err, ErrNotLoggedIn):
		return app.TextNotLoggedIn
	case errors.Is(err, ErrInvalidRequest):
		return app.TextInvalidRequest
	case errors.Is(err, session.ErrNoRememberedCredentials), errors.Is(err, session.ErrNoMasterKey):
		return app.TextNoRememberedLogin
	case errors.Is(err, context.Canceled),
		errors.Is(err, queue.ErrTaskReplaced),
		errors.Is(err, queue.ErrQueueStopped):
		return ""
	default:
		return app.TextSomethingWentWrong
	}
}
