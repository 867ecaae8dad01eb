// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/storage"
)

// MemoryPath opens a private in-memory database. Its contents are gone once
// the store is closed.
const MemoryPath = ":memory:"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewInMemory creates a store backed by an in-memory database.
func NewInMemory() (*SQLiteStore, error) {
	return New(MemoryPath)
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != MemoryPath {
		// Create parent directory if it doesn't exist
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database, so keep exactly one.
	// Queries below never hold rows open while issuing another statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session, including any draft and splits it
// already carries.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	// Generate IDs if not set
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}
	if sess.Tab == "" {
		sess.Tab = models.TabRecipients
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, connected, show_create_split, has_draft, draft_name, selected, tab, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Connected, sess.ShowCreateSplit, sess.Draft != nil, draftName(sess.Draft),
		sess.Selected, string(sess.Tab), sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := saveDraftRecipients(ctx, tx, sess.ID, sess.Draft); err != nil {
		return err
	}
	for i := range sess.Splits {
		if err := insertSplit(ctx, tx, sess.ID, i, &sess.Splits[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID with its draft and splits.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	sess := &models.Session{}
	var (
		hasDraft             bool
		name, tab            string
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, connected, show_create_split, has_draft, draft_name, selected, tab, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&sess.ID, &sess.Connected, &sess.ShowCreateSplit, &hasDraft, &name, &sess.Selected, &tab, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.Tab = models.DashboardTab(tab)
	sess.CreatedAt = time.Unix(0, createdAt).UTC()
	sess.UpdatedAt = time.Unix(0, updatedAt).UTC()

	if hasDraft {
		recipients, err := loadDraftRecipients(ctx, s.db, sessionID)
		if err != nil {
			return nil, err
		}
		sess.Draft = &models.Draft{Name: name, Recipients: recipients}
	}

	sess.Splits, err = s.ListSplits(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

// UpdateSession saves the session's view state and draft, and appends splits
// that are not stored yet.
func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *models.Session) error {
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions
		 SET connected = ?, show_create_split = ?, has_draft = ?, draft_name = ?, selected = ?, tab = ?, updated_at = ?
		 WHERE id = ?`,
		sess.Connected, sess.ShowCreateSplit, sess.Draft != nil, draftName(sess.Draft),
		sess.Selected, string(sess.Tab), sess.UpdatedAt.UnixNano(), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, sess.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM draft_recipients WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("failed to clear draft recipients: %w", err)
	}
	if err := saveDraftRecipients(ctx, tx, sess.ID, sess.Draft); err != nil {
		return err
	}

	var stored int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM splits WHERE session_id = ?", sess.ID).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count splits: %w", err)
	}
	if stored > len(sess.Splits) {
		return fmt.Errorf("session %s has %d stored splits but only %d in memory; splits cannot be removed", sess.ID, stored, len(sess.Splits))
	}
	for i := stored; i < len(sess.Splits); i++ {
		if err := insertSplit(ctx, tx, sess.ID, i, &sess.Splits[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteIdleSessions removes sessions last updated before the cutoff.
// Drafts and splits go with them through ON DELETE CASCADE.
func (s *SQLiteStore) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}

func draftName(d *models.Draft) string {
	if d == nil {
		return ""
	}
	return d.Name
}
