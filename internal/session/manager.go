package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/splitflow/internal/metrics"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/splitform"
	"github.com/mmynk/splitflow/internal/storage"
)

// Manager applies view-state operations to stored sessions.
// Every mutation is a load, change, save cycle run under one lock, so
// concurrent requests for the same session cannot lose each other's updates.
type Manager struct {
	store storage.Store
	now   splitform.Clock
	mu    sync.Mutex
}

// NewManager creates a Manager over store. A nil clock means time.Now.
func NewManager(store storage.Store, now splitform.Clock) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, now: now}
}

// Start creates a new session on the landing page with no wallet connected.
func (m *Manager) Start(ctx context.Context) (*models.Session, error) {
	now := m.now().UTC()
	sess := &models.Session{
		Tab:       models.TabRecipients,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	metrics.SessionsStarted.Inc()
	slog.Debug("Session started", "session_id", sess.ID)
	return sess, nil
}

// Get loads a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.store.GetSession(ctx, sessionID)
}

// ConnectWallet simulates a wallet connection. It always succeeds.
func (m *Manager) ConnectWallet(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := m.update(ctx, sessionID, func(s *models.Session) error {
		ConnectWallet(s)
		return nil
	})
	if err == nil {
		metrics.WalletConnects.Inc()
	}
	return sess, err
}

// OpenCreateSplit opens the create-split form with a fresh draft.
func (m *Manager) OpenCreateSplit(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.update(ctx, sessionID, OpenCreateSplit)
}

// CloseCreateSplit discards the form and returns to the previous view.
func (m *Manager) CloseCreateSplit(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.update(ctx, sessionID, func(s *models.Session) error {
		CloseCreateSplit(s)
		return nil
	})
}

// EditForm runs fn against the open form and saves the result.
func (m *Manager) EditForm(ctx context.Context, sessionID string, fn func(*splitform.Form) error) (*models.Session, error) {
	return m.update(ctx, sessionID, func(s *models.Session) error {
		f, err := Form(s, m.now)
		if err != nil {
			return err
		}
		return fn(f)
	})
}

// SetSplitName sets the name on the open form.
func (m *Manager) SetSplitName(ctx context.Context, sessionID, name string) (*models.Session, error) {
	return m.EditForm(ctx, sessionID, func(f *splitform.Form) error {
		f.SetName(name)
		return nil
	})
}

// AddRecipient appends a blank recipient to the open form.
func (m *Manager) AddRecipient(ctx context.Context, sessionID string) (*models.Session, error) {
	return m.EditForm(ctx, sessionID, func(f *splitform.Form) error {
		f.AddRecipient()
		return nil
	})
}

// RemoveRecipient removes a recipient from the open form unless it is the last one.
func (m *Manager) RemoveRecipient(ctx context.Context, sessionID, recipientID string) (*models.Session, error) {
	return m.EditForm(ctx, sessionID, func(f *splitform.Form) error {
		f.RemoveRecipient(recipientID)
		return nil
	})
}

// UpdateRecipient sets one field of a recipient on the open form.
func (m *Manager) UpdateRecipient(ctx context.Context, sessionID, recipientID string, field splitform.Field, value string) (*models.Session, error) {
	return m.EditForm(ctx, sessionID, func(f *splitform.Form) error {
		return f.UpdateRecipient(recipientID, field, value)
	})
}

// SubmitSplit submits the open form and appends the resulting split.
func (m *Manager) SubmitSplit(ctx context.Context, sessionID string) (*models.Split, *models.Session, error) {
	var split *models.Split
	sess, err := m.update(ctx, sessionID, func(s *models.Session) error {
		var err error
		split, err = SubmitSplit(s, m.now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.SplitsCreated.Inc()
	metrics.SplitRecipients.Observe(float64(len(split.Recipients)))
	slog.Info("Split created",
		"session_id", sessionID,
		"split_id", split.ID,
		"name", split.Name,
		"recipients", len(split.Recipients),
		"contract", split.ContractAddress,
	)
	return split, sess, nil
}

// SelectSplit changes the split shown on the dashboard.
func (m *Manager) SelectSplit(ctx context.Context, sessionID, splitID string) (*models.Session, error) {
	return m.update(ctx, sessionID, func(s *models.Session) error {
		return SelectSplit(s, splitID)
	})
}

// SelectTab changes the dashboard detail tab.
func (m *Manager) SelectTab(ctx context.Context, sessionID string, tab models.DashboardTab) (*models.Session, error) {
	return m.update(ctx, sessionID, func(s *models.Session) error {
		return SelectTab(s, tab)
	})
}

// ExpireIdle removes sessions untouched for longer than ttl.
func (m *Manager) ExpireIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.store.DeleteIdleSessions(ctx, m.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	metrics.SessionsExpired.Add(float64(n))
	return n, nil
}

func (m *Manager) update(ctx context.Context, sessionID string, fn func(*models.Session) error) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = m.now().UTC()
	if err := m.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}
