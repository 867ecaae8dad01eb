package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/splitform"
	"github.com/mmynk/splitflow/internal/storage"
	"github.com/mmynk/splitflow/internal/storage/sqlite"
)

// testClock advances one millisecond per reading so every generated ID is distinct.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newTestManager(t *testing.T) (*Manager, *testClock) {
	t.Helper()
	store, err := sqlite.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &testClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	return NewManager(store, clock.Now), clock
}

// fillRecipient sets name, address and percentage of one recipient.
func fillRecipient(f *splitform.Form, id, name, address, pct string) error {
	if err := f.UpdateRecipient(id, splitform.FieldName, name); err != nil {
		return err
	}
	if err := f.UpdateRecipient(id, splitform.FieldAddress, address); err != nil {
		return err
	}
	return f.UpdateRecipient(id, splitform.FieldPercentage, pct)
}

// createSplit runs the whole form flow for a two-recipient split.
func createSplit(t *testing.T, m *Manager, sessionID, name string, a, b string) *models.Split {
	t.Helper()
	ctx := context.Background()

	_, err := m.OpenCreateSplit(ctx, sessionID)
	require.NoError(t, err)
	_, err = m.EditForm(ctx, sessionID, func(f *splitform.Form) error {
		f.SetName(name)
		second := f.AddRecipient()
		if err := fillRecipient(f, "1", a, "0x"+a, "60"); err != nil {
			return err
		}
		return fillRecipient(f, second.ID, b, "0x"+b, "40")
	})
	require.NoError(t, err)

	split, _, err := m.SubmitSplit(ctx, sessionID)
	require.NoError(t, err)
	return split
}

func TestCurrentView(t *testing.T) {
	tests := []struct {
		name string
		sess models.Session
		want models.View
	}{
		{name: "fresh session", sess: models.Session{}, want: models.ViewLanding},
		{name: "connected without splits", sess: models.Session{Connected: true}, want: models.ViewLanding},
		{name: "connected with splits", sess: models.Session{Connected: true, Splits: []models.Split{{ID: "1"}}}, want: models.ViewDashboard},
		{name: "splits but not connected", sess: models.Session{Splits: []models.Split{{ID: "1"}}}, want: models.ViewLanding},
		{name: "form open wins", sess: models.Session{Connected: true, ShowCreateSplit: true, Splits: []models.Split{{ID: "1"}}}, want: models.ViewCreateSplit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentView(&tt.sess))
		})
	}
}

func TestWalletDisplay(t *testing.T) {
	sess := &models.Session{}
	assert.Empty(t, WalletDisplay(sess))
	ConnectWallet(sess)
	assert.Equal(t, PlaceholderWallet, WalletDisplay(sess))
	ConnectWallet(sess)
	assert.True(t, sess.Connected)
}

func TestManager_FullFlow(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ViewLanding, CurrentView(sess))

	_, err = m.OpenCreateSplit(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrWalletNotConnected)

	sess, err = m.ConnectWallet(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, sess.Connected)
	assert.Equal(t, models.ViewLanding, CurrentView(sess))

	split := createSplit(t, m, sess.ID, "Test Split", "Alice", "Bob")
	require.Len(t, split.Recipients, 2)

	sess, err = m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ViewDashboard, CurrentView(sess))
	assert.Nil(t, sess.Draft)
	require.Len(t, sess.Splits, 1)
	assert.Equal(t, "Test Split", sess.Splits[0].Name)
	assert.Equal(t, split.ContractAddress, sess.Splits[0].ContractAddress)
}

func TestManager_BackDiscardsDraft(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.ConnectWallet(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.OpenCreateSplit(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.SetSplitName(ctx, sess.ID, "Abandoned")
	require.NoError(t, err)
	_, err = m.AddRecipient(ctx, sess.ID)
	require.NoError(t, err)

	sess, err = m.CloseCreateSplit(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ViewLanding, CurrentView(sess))

	// Reopening starts from scratch.
	sess, err = m.OpenCreateSplit(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, sess.Draft)
	assert.Empty(t, sess.Draft.Name)
	assert.Len(t, sess.Draft.Recipients, 1)

	// Editing with the form closed fails.
	_, err = m.CloseCreateSplit(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.AddRecipient(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrFormClosed)
}

func TestManager_SubmitGuard(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.ConnectWallet(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.OpenCreateSplit(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.SetSplitName(ctx, sess.ID, "Almost")
	require.NoError(t, err)
	_, err = m.UpdateRecipient(ctx, sess.ID, "1", splitform.FieldPercentage, "99")
	require.NoError(t, err)

	_, _, err = m.SubmitSplit(ctx, sess.ID)
	assert.ErrorIs(t, err, splitform.ErrNotSubmittable)

	sess, err = m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, sess.ShowCreateSplit, "form stays open after a refused submit")
	assert.Empty(t, sess.Splits)
}

func TestManager_RemoveRecipientKeepsOne(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.ConnectWallet(ctx, sess.ID)
	require.NoError(t, err)
	_, err = m.OpenCreateSplit(ctx, sess.ID)
	require.NoError(t, err)

	sess, err = m.RemoveRecipient(ctx, sess.ID, "1")
	require.NoError(t, err)
	assert.Len(t, sess.Draft.Recipients, 1)
}

func TestManager_SelectSplitShowsOwnRecipients(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.ConnectWallet(ctx, sess.ID)
	require.NoError(t, err)

	first := createSplit(t, m, sess.ID, "First", "Alice", "Bob")
	second := createSplit(t, m, sess.ID, "Second", "Carol", "Dave")

	sess, err = m.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, SelectedSplit(sess).ID, "defaults to the first split")

	sess, err = m.SelectSplit(ctx, sess.ID, second.ID)
	require.NoError(t, err)
	selected := SelectedSplit(sess)
	require.NotNil(t, selected)
	assert.Equal(t, "Second", selected.Name)
	assert.Equal(t, "Carol", selected.Recipients[0].Name)
	assert.Equal(t, "Dave", selected.Recipients[1].Name)

	sess, err = m.SelectSplit(ctx, sess.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", SelectedSplit(sess).Recipients[0].Name)

	_, err = m.SelectSplit(ctx, sess.ID, "missing")
	assert.ErrorIs(t, err, ErrSplitNotFound)
}

func TestManager_SelectTab(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TabRecipients, ActiveTab(sess))

	sess, err = m.SelectTab(ctx, sess.ID, models.TabTransactions)
	require.NoError(t, err)
	assert.Equal(t, models.TabTransactions, ActiveTab(sess))

	_, err = m.SelectTab(ctx, sess.ID, "charts")
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.ConnectWallet(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_ExpireIdle(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()

	sess, err := m.Start(ctx)
	require.NoError(t, err)

	clock.mu.Lock()
	clock.now = clock.now.Add(2 * time.Hour)
	clock.mu.Unlock()

	n, err := m.ExpireIdle(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = m.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewJanitor_Validation(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := NewJanitor(m, "@every 1m", 0)
	assert.Error(t, err)

	_, err = NewJanitor(m, "not a schedule", time.Hour)
	assert.Error(t, err)

	j, err := NewJanitor(m, "@every 1m", time.Hour)
	require.NoError(t, err)
	j.Start()
	j.Stop(context.Background())
}
