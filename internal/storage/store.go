// Package storage provides abstractions for session state storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitflow/internal/models"
)

// ErrNotFound is returned when a session does not exist (or has expired).
var ErrNotFound = errors.New("session not found")

// Store defines the interface for session storage operations.
// This abstraction keeps the session manager independent of the backend.
type Store interface {
	// CreateSession persists a new session.
	// The session ID, CreatedAt and UpdatedAt fields will be populated by the store.
	CreateSession(ctx context.Context, sess *models.Session) error

	// GetSession retrieves a session by ID, including its draft and splits.
	// Returns ErrNotFound (wrapped) if the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// UpdateSession saves view flags, selection and the draft. Splits are
	// append-only: any split beyond those already stored is inserted, stored
	// splits are never rewritten.
	UpdateSession(ctx context.Context, sess *models.Session) error

	// ListSplits returns a session's splits in creation order.
	ListSplits(ctx context.Context, sessionID string) ([]models.Split, error)

	// DeleteIdleSessions removes sessions not updated since before and
	// returns how many were removed.
	DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
