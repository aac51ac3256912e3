// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"shopdesk/internal/creds"
	"shopdesk/internal/middleware"
	"shopdesk/internal/session"
)

// Auth groups the authentication HTTP handlers.
type Auth struct {
	sessions *session.Store
	creds    *creds.Store
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, credStore *creds.Store) *Auth {
	return &Auth{
		sessions: sessions,
		creds:    credStore,
	}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
}

// Signup registers a new account. Duplicate usernames or emails yield 409.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := fieldErrors(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	err := a.creds.Register(req.Username, req.Email, req.Password)
	if errors.Is(err, creds.ErrDuplicateUser) {
		writeError(w, http.StatusConflict, "username or email already registered")
		return
	}
	if err != nil {
		slog.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// Login marks the named user as current and opens an HTTP session.
// Unknown usernames yield 401.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := fieldErrors(req); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	err := a.creds.Login(req.Username)
	if errors.Is(err, creds.ErrUserNotFound) {
		writeError(w, http.StatusUnauthorized, "user not found")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	user, err := a.creds.Find(req.Username)
	if err != nil || user == nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		Username: user.Username,
		Email:    user.Email,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Logout clears the current user and destroys the HTTP session. Logging
// out while logged out is a no-op.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.creds.Logout(); err != nil {
		slog.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	a.sessions.Destroy(r.Context(), w, r)

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated identity, or 401 when no session exists.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username": sess.Username,
		"email":    sess.Email,
	})
}
