package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vrc-link/models"
)

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrRateLimitExhausted = errors.New("rate limit exhausted")
	ErrInvalidRequest     = errors.New("invalid request")

	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailCheckRequired   = errors.New("email check required")
	ErrInvalidCode          = errors.New("invalid two-factor code")
	ErrLoginExpired         = errors.New("login expired")
	ErrAlreadyLoggedIn      = errors.New("already logged in")
	ErrUnsupportedTwoFactor = errors.New("unsupported two-factor method")

	ErrTwoFactorRequiredTOTP  = errors.New("two-factor authentication required: authenticator app")
	ErrTwoFactorRequiredOTP   = errors.New("two-factor authentication required: recovery code")
	ErrTwoFactorRequiredEmail = errors.New("two-factor authentication required: email code")
)

// TwoFactorRequiredError is returned by Login when the platform accepted the
// password but wants a second factor. It unwraps to the sentinel of the
// preferred method; Methods lists every method the platform offered.
type TwoFactorRequiredError struct {
	Methods []models.TwoFactorMethod
}

func (e *TwoFactorRequiredError) Error() string {
	return fmt.Sprintf("two-factor authentication required (%v)", e.Methods)
}

// Preferred is the method the user should be prompted for: email OTP when
// that is the only option, otherwise the authenticator app, otherwise a
// recovery code.
func (e *TwoFactorRequiredError) Preferred() models.TwoFactorMethod {
	has := func(m models.TwoFactorMethod) bool {
		for _, x := range e.Methods {
			if x == m {
				return true
			}
		}
		return false
	}

	switch {
	case has(models.TwoFactorEmailOTP):
		return models.TwoFactorEmailOTP
	case has(models.TwoFactorTOTP):
		return models.TwoFactorTOTP
	default:
		return models.TwoFactorOTP
	}
}

func (e *TwoFactorRequiredError) Unwrap() error {
	switch e.Preferred() {
	case models.TwoFactorEmailOTP:
		return ErrTwoFactorRequiredEmail
	case models.TwoFactorTOTP:
		return ErrTwoFactorRequiredTOTP
	default:
		return ErrTwoFactorRequiredOTP
	}
}
