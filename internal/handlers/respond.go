// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP surface of the shopdesk server:
// auth flows backed by the credential store and session store, and product
// management backed by the catalog state container. Input validation lives
// here; commands are only dispatched once a payload has passed it.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shopdesk/internal/catalogapi"
)

// maxBodyBytes caps request bodies. Product payloads are small; anything
// bigger is malformed or hostile.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRemoteError maps a failed catalog command onto the response:
// remote-reported statuses pass through as 502 with the server's payload,
// transport failures and anything else become a 502 with a generic
// message. The error payload is opaque; nothing here interprets it.
func writeRemoteError(w http.ResponseWriter, err error) {
	var remote *catalogapi.RemoteError
	if errors.As(err, &remote) && remote.Payload != "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":  "catalog service request failed",
			"detail": remote.Payload,
		})
		return
	}
	writeError(w, http.StatusBadGateway, "catalog service request failed")
}

// decodeJSON reads the request body into dst, rejecting unknown fields
// and oversized payloads.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
