// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header the correlation ID is read from and
	// echoed back on.
	RequestIDHeader = "X-Request-ID"

	// requestIDKey is the context key for the request correlation ID.
	requestIDKey contextKey = "request_id"
)

// RequestID assigns every request a correlation ID. An ID supplied by a
// trusted proxy via X-Request-ID is kept; otherwise a new UUID is
// generated. The ID is stored in the context for the request logger and
// echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromCtx returns the request's correlation ID, or "" when the
// RequestID middleware did not run.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
