package models

import "time"

// AuthStatus is the state of the authentication state machine.
//
// PreInit is transient and only observed before session restore completes.
// LoggedOut and LoggedIn are the only steady states.
type AuthStatus string

const (
	AuthStatusPreInit   AuthStatus = "PRE_INIT"
	AuthStatusLoggedOut AuthStatus = "LOGGED_OUT"
	AuthStatusLoggedIn  AuthStatus = "LOGGED_IN"
)

// TwoFactorMethod is one of the verification methods the platform accepts.
type TwoFactorMethod string

const (
	TwoFactorTOTP     TwoFactorMethod = "totp"
	TwoFactorOTP      TwoFactorMethod = "otp"
	TwoFactorEmailOTP TwoFactorMethod = "emailotp"
)

// LoginResponse is the subset of the current-user endpoint response that is
// inspected during login to detect a pending second factor.
type LoginResponse struct {
	RequiresTwoFactorAuth []string `json:"requiresTwoFactorAuth,omitempty"`
}

// AuthUserResponse is the decoded answer of the current-user endpoint: either
// the user, or the list of second factors the platform still expects.
type AuthUserResponse struct {
	User                  *CurrentUser
	RequiresTwoFactorAuth []string
}

// TwoFactorVerifyRequest is the body of a two-factor verification call.
type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFactorVerifyResponse reports whether the submitted code was accepted.
type TwoFactorVerifyResponse struct {
	Verified bool `json:"verified"`
}

// StatusUpdateRequest is the body of a status change.
type StatusUpdateRequest struct {
	Status            UserStatus `json:"status,omitempty"`
	StatusDescription *string    `json:"statusDescription,omitempty"`
}

// SessionCredentials holds the persisted session cookies and the
// credential-remembering material.
//
// Expired cookie fields must be cleared before any request is built, see
// [SessionCredentials.PruneExpired].
type SessionCredentials struct {
	AuthCookie                     string    `json:"authCookie,omitempty"`
	AuthCookieExpiry               time.Time `json:"authCookieExpiry,omitempty"`
	TwoFactorCookie                string    `json:"twoFactorCookie,omitempty"`
	TwoFactorCookieExpiry          time.Time `json:"twoFactorCookieExpiry,omitempty"`
	EncryptedRememberedCredentials string    `json:"encryptedRememberedCredentials,omitempty"`
	WrappedStorageKey              string    `json:"wrappedStorageKey,omitempty"`
	StorageKeySalt                 string    `json:"storageKeySalt,omitempty"`
}

// PruneExpired clears cookie fields whose expiry is not after now. It reports
// whether anything changed. A zero expiry means the cookie has no expiry.
func (c *SessionCredentials) PruneExpired(now time.Time) bool {
	changed := false
	if c.AuthCookie != "" && !c.AuthCookieExpiry.IsZero() && !now.Before(c.AuthCookieExpiry) {
		c.AuthCookie = ""
		c.AuthCookieExpiry = time.Time{}
		changed = true
	}
	if c.TwoFactorCookie != "" && !c.TwoFactorCookieExpiry.IsZero() && !now.Before(c.TwoFactorCookieExpiry) {
		c.TwoFactorCookie = ""
		c.TwoFactorCookieExpiry = time.Time{}
		changed = true
	}
	return changed
}

// RememberedCredentials is the plaintext form of the remembered login.
// It only ever exists in memory; the persisted form is encrypted.
type RememberedCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
