// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport layer for the platform REST API.
//
// [PlatformAdapter] decouples the service layer from HTTP. The package ships
// a resty implementation ([NewHTTPPlatformAdapter]) that attaches the session
// cookies to every request and hands the Set-Cookie values of successful
// responses back to a [CookieJar].
//
// Non-2xx responses are mapped by mapHTTPError to an [*HTTPError] that
// unwraps to a status sentinel (e.g. [ErrTooManyRequests] for 429), so
// callers can branch with [errors.Is] and still read the platform message.
package adapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-vrc-link/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/platform_adapter_mock.go -package=mock

// CookieJar supplies the Cookie header for outgoing requests and receives
// the cookies set by responses. session.CredentialStore implements it.
type CookieJar interface {
	CookieHeader(ctx context.Context) string
	StoreCookies(ctx context.Context, cookies []*http.Cookie) error
}

// PlatformAdapter is one call per platform endpoint. It does no caching,
// queueing or retrying; that belongs to the service layer.
type PlatformAdapter interface {
	// Login fetches the current user with HTTP Basic credentials. The
	// response either carries the user or the second factors still required.
	Login(ctx context.Context, username, password string) (models.AuthUserResponse, error)

	// GetCurrentUser fetches the current user with the session cookies only.
	GetCurrentUser(ctx context.Context) (models.AuthUserResponse, error)

	// VerifyTwoFactor submits a code for method and reports whether the
	// platform accepted it.
	VerifyTwoFactor(ctx context.Context, method models.TwoFactorMethod, code string) (bool, error)

	// Logout invalidates the session on the platform.
	Logout(ctx context.Context) error

	// ListFriends returns one page of the friends list.
	ListFriends(ctx context.Context, offset, n int) ([]models.LimitedUser, error)

	// ListAvatars returns one page of the current user's avatars.
	ListAvatars(ctx context.Context, offset, n int) ([]models.Avatar, error)

	// ListGroups returns one page of userID's group memberships.
	ListGroups(ctx context.Context, userID string, offset, n int) ([]models.Group, error)

	// UpdateStatus changes the presence of userID and returns the updated
	// user object as sent by the platform.
	UpdateStatus(ctx context.Context, userID string, req models.StatusUpdateRequest) (json.RawMessage, error)

	// SelectAvatar switches the current avatar and returns the updated user.
	SelectAvatar(ctx context.Context, avatarID string) (json.RawMessage, error)

	// Invite sends an invite to userID.
	Invite(ctx context.Context, userID string, req models.InviteRequest) error

	// RequestInvite asks userID for an invite.
	RequestInvite(ctx context.Context, userID string, req models.RequestInviteRequest) error

	// ListInviteMessages returns every slot of a message category.
	ListInviteMessages(ctx context.Context, userID string, messageType models.InviteMessageType) ([]models.InviteMessage, error)

	// UpdateInviteMessage overwrites one slot and returns the whole category
	// as the platform now reports it.
	UpdateInviteMessage(ctx context.Context, userID string, messageType models.InviteMessageType, slot int, message string) ([]models.InviteMessage, error)
}
