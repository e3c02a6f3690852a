// Package service implements the platform access layer on top of the
// transport adapter: rate-limited queueing, caching, pagination, the auth
// state machine and the status polling fallback.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-vrc-link/models"
)

// Queue type ids. Each platform call is queued under one of them so it can be
// rate limited per operation.
const (
	TypeGetCurrentUser      = "GET_CURRENT_USER"
	TypeListFriends         = "LIST_FRIENDS"
	TypeListAvatars         = "LIST_AVATARS"
	TypeListGroups          = "LIST_GROUPS"
	TypeUpdateStatus        = "UPDATE_STATUS"
	TypeSelectAvatar        = "SELECT_AVATAR"
	TypeInviteUser          = "INVITE_USER"
	TypeRequestInvite       = "REQUEST_INVITE"
	TypeListInviteMessages  = "LIST_INVITE_MESSAGES"
	TypeUpdateInviteMessage = "UPDATE_INVITE_MESSAGE"
	TypeLogin               = "LOGIN"
	TypeVerifyTwoFactor     = "VERIFY_2FA"
	TypeLogout              = "LOGOUT"
)

// FetchOptions controls a collection read.
type FetchOptions struct {
	// Max caps the number of entries returned. Zero returns everything
	// cached. The cache itself always holds up to DefaultMaxEntries.
	Max int
	// Force bypasses the cache and refreshes it after a successful fetch.
	Force bool
}

// APIService is the only component that talks to the platform on behalf of
// a signed-in user. Every method except HandleGroupMemberUpdate, ClearCaches
// and LastUserFetch returns ErrNotLoggedIn without queueing anything when
// the session is not LOGGED_IN.
type APIService interface {
	GetCurrentUser(ctx context.Context, force bool) (*models.CurrentUser, error)
	ListFriends(ctx context.Context, opts FetchOptions) ([]models.LimitedUser, error)
	ListAvatars(ctx context.Context, opts FetchOptions) ([]models.Avatar, error)
	ListGroups(ctx context.Context, opts FetchOptions) ([]models.Group, error)

	UpdateStatus(ctx context.Context, status models.UserStatus, description *string) error
	SelectAvatar(ctx context.Context, avatarID string) error
	// InviteUser invites userID to instanceID. A non-empty message is put
	// into a message slot first; when no slot can be allocated the invite is
	// sent without a message.
	InviteUser(ctx context.Context, userID, instanceID, message string) error
	RequestInvite(ctx context.Context, userID, message string) error

	ListInviteMessages(ctx context.Context, messageType models.InviteMessageType, force bool) ([]models.InviteMessage, error)
	// AllocateMessageSlot returns a slot holding text, overwriting a slot if
	// needed. ok is false when every slot is still cooling down.
	AllocateMessageSlot(ctx context.Context, messageType models.InviteMessageType, text string) (slot int, ok bool, err error)

	// ReplaceCurrentUser installs a freshly authenticated user snapshot.
	ReplaceCurrentUser(ctx context.Context, user *models.CurrentUser)
	// PatchCurrentUser merges a partial user object into the snapshot.
	PatchCurrentUser(ctx context.Context, patch json.RawMessage) error
	HandleGroupMemberUpdate(ctx context.Context, content json.RawMessage) error
	ClearCaches(ctx context.Context)
	// LastUserFetch is the time of the last successful current-user fetch.
	LastUserFetch() time.Time
}

// AuthService drives the PRE_INIT → LOGGED_OUT ⇄ LOGGED_IN state machine.
type AuthService interface {
	// Init restores the session from the stored auth cookie.
	Init(ctx context.Context) error
	// Login exchanges credentials for a session. With remember set, the
	// credentials are encrypted and persisted once the login completes.
	Login(ctx context.Context, username, password string, remember bool) error
	// LoginWithRemembered logs in with the persisted credentials.
	LoginWithRemembered(ctx context.Context) error
	ForgetRemembered(ctx context.Context) error
	VerifyTwoFactor(ctx context.Context, method models.TwoFactorMethod, code string) error
	Logout(ctx context.Context) error

	// HandleUserUpdate applies a pushed user-update event.
	HandleUserUpdate(ctx context.Context, content json.RawMessage) error

	StalenessPoller
}

// StalenessPoller is the polling fallback for a missing push channel.
type StalenessPoller interface {
	// PollIfStale re-fetches the current user when neither a push nor a
	// fetch has refreshed it within the staleness threshold. It reports
	// whether a fetch was made.
	PollIfStale(ctx context.Context) (bool, error)
}

// StatusPollJob periodically calls StalenessPoller.PollIfStale.
type StatusPollJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
