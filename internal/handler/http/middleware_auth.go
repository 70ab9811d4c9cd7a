// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-collection-sync/internal/utils"
)

// auth resolves the host key of the envelope to an account login and
// stores it in the request context. Requests with a missing or invalid key
// are rejected with 403.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr, ok := syncRequestFromContext(r.Context())
		if !ok {
			h.writeError(w, r, ErrNoSyncRequest)
			return
		}

		ctx := r.Context()
		login, err := h.services.AuthService.ParseHostKey(ctx, sr.header.HostKey)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx = utils.WithUserLogin(ctx, login)
		ctx = h.requestLogger(r).WithUser(login).WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
