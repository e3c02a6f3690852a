// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared message constants of the platform access
// layer.
//
// Msg* constants are the error messages the platform puts into its error
// envelope; the service layer matches them (case-insensitively, by
// substring) to tell named authentication conditions apart. Text* constants
// are the user-facing sentences returned by service.UserMessage.
package app

// Messages reported by the platform.
const (
	// MsgInvalidCredentials is returned by the current-user endpoint when the
	// Basic credentials do not match an account.
	MsgInvalidCredentials = "invalid username/email or password"

	// MsgMissingCredentials is returned when neither Basic credentials nor a
	// valid auth cookie were sent.
	MsgMissingCredentials = "missing credentials"

	// MsgEmailCheckRequired is returned when the platform wants the user to
	// confirm the login from their mailbox first.
	MsgEmailCheckRequired = "check your email"

	// MsgTwoFactorRequired is returned by authenticated endpoints while the
	// second factor of the session has not been verified.
	MsgTwoFactorRequired = "requires two-factor authentication"
)

// User-facing texts.
const (
	TextInvalidCredentials = "The username or password is incorrect."
	TextEmailCheckRequired = "Please confirm this login using the link sent to your email, then try again."
	TextTwoFactorTOTP      = "Enter the 6-digit code from your authenticator app."
	TextTwoFactorOTP       = "Enter one of your 8-character recovery codes."
	TextTwoFactorEmail     = "Enter the 6-digit code sent to your email."
	TextInvalidCode        = "The verification code is invalid. Please try again."
	TextLoginExpired       = "Your session has expired. Please log in again."
	TextNotLoggedIn        = "You need to log in first."
	TextNoRememberedLogin  = "No saved login is available."
	TextInvalidRequest     = "The request was not sent because some of its values are not accepted by the server."
	TextSomethingWentWrong = "Something went wrong while talking to the server. Please try again later."
)
