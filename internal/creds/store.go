// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package creds persists registered users and the current session
// identity in a local bbolt key-value file. The store is durable across
// process restarts but deliberately local to one installation; it is not
// shared state. Passwords are stored as bcrypt hashes, but login is by
// username only — this store gates the UI, it is not an authentication
// authority for production trust decisions.
package creds

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"

	"shopdesk/internal/models"
)

var (
	// ErrDuplicateUser is returned by Register when the username or
	// email is already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserNotFound is returned by Login for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingFields is returned by Register when a required field is
	// empty.
	ErrMissingFields = errors.New("username, email, and password are required")
)

// Bucket and key names. currentUser and lastLogin live under fixed keys
// in the state bucket; users are keyed by username.
var (
	usersBucket = []byte("users")
	stateBucket = []byte("state")

	currentUserKey = []byte("currentUser")
	lastLoginKey   = []byte("lastLogin")
)

// Store is a bbolt-backed credential store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the credential database at path and ensures the
// buckets exist. Callers own the returned store and must Close it.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("creds open: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(usersBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creds init: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register stores a new user. The password is bcrypt-hashed before it is
// written. Fails with ErrDuplicateUser when the username or the email is
// already present.
func (s *Store) Register(username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(usersBucket)
		if users.Get([]byte(username)) != nil {
			return ErrDuplicateUser
		}
		// Emails are not keys, so scan for duplicates. The store holds an
		// installation's operators, not a user base; the scan is fine.
		err := users.ForEach(func(_, v []byte) error {
			var u models.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("decode stored user: %w", err)
			}
			if u.Email == email {
				return ErrDuplicateUser
			}
			return nil
		})
		if err != nil {
			return err
		}
		return users.Put([]byte(username), payload)
	})
}

// Login marks the named user as the current user and records the login
// time. Fails with ErrUserNotFound for unknown usernames.
func (s *Store) Login(username string) error {
	if username == "" {
		return ErrUserNotFound
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(usersBucket).Get([]byte(username)) == nil {
			return ErrUserNotFound
		}
		state := tx.Bucket(stateBucket)
		if err := state.Put(currentUserKey, []byte(username)); err != nil {
			return err
		}
		return state.Put(lastLoginKey, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// Logout clears the current user. Logging out when nobody is logged in is
// a no-op.
func (s *Store) Logout() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete(currentUserKey)
	})
}

// CurrentUser returns the logged-in username, or "" when nobody is logged
// in. A dangling current-user entry (user record deleted out of band) is
// treated as logged out.
func (s *Store) CurrentUser() (string, error) {
	var username string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get(currentUserKey)
		if v == nil {
			return nil
		}
		if tx.Bucket(usersBucket).Get(v) == nil {
			return nil
		}
		username = string(v)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("creds current user: %w", err)
	}
	return username, nil
}

// Find returns the stored user record for a username, or nil when absent.
func (s *Store) Find(username string) (*models.User, error) {
	var user *models.User
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(usersBucket).Get([]byte(username))
		if v == nil {
			return nil
		}
		var u models.User
		if err := json.Unmarshal(v, &u); err != nil {
			return fmt.Errorf("decode stored user: %w", err)
		}
		user = &u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creds find: %w", err)
	}
	return user, nil
}

// Exists reports whether the username or the email is already registered.
func (s *Store) Exists(username, email string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		users := tx.Bucket(usersBucket)
		if username != "" && users.Get([]byte(username)) != nil {
			found = true
			return nil
		}
		if email == "" {
			return nil
		}
		return users.ForEach(func(_, v []byte) error {
			var u models.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("decode stored user: %w", err)
			}
			if u.Email == email {
				found = true
			}
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("creds exists: %w", err)
	}
	return found, nil
}

// LastLogin returns the recorded time of the most recent login, or the
// zero time when nobody has logged in yet.
func (s *Store) LastLogin() (time.Time, error) {
	var ts time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get(lastLoginKey)
		if v == nil {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, string(v))
		if err != nil {
			return fmt.Errorf("parse last login: %w", err)
		}
		ts = parsed
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("creds last login: %w", err)
	}
	return ts, nil
}

// CheckPassword verifies a plaintext password against a stored record.
// Unused by the login flow (login is by username only) but kept for
// callers that want a stronger gate.
func (s *Store) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
