// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks outgoing platform requests before they are
// queued, so a request the platform would reject never spends rate budget.
//
// A [Validator] validates a value and can be scoped to named fields:
//
//	err := v.Validate(ctx, models.StatusUpdateRequest{...}, FieldStatus)
package validators

import "context"

// Validator validates the provided input and optionally restricts
// validation to specific named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
