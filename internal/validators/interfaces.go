// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks decoded sync payloads before they are applied to
// a collection. Validators are transport-agnostic: the HTTP handler and the
// in-process adapter run the same checks.
package validators

import "context"

// Validator checks one request value. fields restricts the check to the
// named rules; with no fields every rule of the value's type runs. Unknown
// types fail with ErrUnsupportedType.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
