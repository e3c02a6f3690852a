// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-vrc-link/internal/adapter"
	"github.com/MKhiriev/go-vrc-link/internal/app"
	"github.com/MKhiriev/go-vrc-link/internal/queue"
)

// mapAdapterError translates the adapter's transport error into a service
// business error. Throttling is passed through untouched so pagination can
// retry it, and so are the queue's own outcomes (replaced, stopped);
// everything unrecognised becomes ErrUnexpectedResponse with the
// original error kept in the chain.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(platformMessage(err))

	switch {
	case errors.Is(err, adapter.ErrTooManyRequests),
		errors.Is(err, queue.ErrTaskReplaced),
		errors.Is(err, queue.ErrQueueStopped):
		return err

	case errors.Is(err, adapter.ErrUnauthorized):
		switch {
		case strings.Contains(msg, app.MsgInvalidCredentials):
			return ErrInvalidCredentials
		case strings.Contains(msg, app.MsgEmailCheckRequired):
			return ErrEmailCheckRequired
		default:
			return fmt.Errorf("%w: %w", ErrLoginExpired, err)
		}

	case errors.Is(err, adapter.ErrBadRequest), errors.Is(err, adapter.ErrForbidden):
		if strings.Contains(msg, app.MsgEmailCheckRequired) {
			return ErrEmailCheckRequired
		}
	}

	return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
}

// platformMessage extracts the platform's own message from an adapter error.
func platformMessage(err error) string {
	var httpErr *adapter.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	return err.Error()
}

// isTransportFailure reports whether err never reached the platform (network
// error, timeout) as opposed to a response the platform sent.
func isTransportFailure(err error) bool {
	var httpErr *adapter.HTTPError
	return !errors.As(err, &httpErr) && !errors.Is(err, adapter.ErrMalformedResponse)
}
