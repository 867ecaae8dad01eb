// Package session holds the top-level view state of a visitor: whether the
// wallet is connected, whether the create-split form is open, the splits
// created so far, and the dashboard selection.
package session

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/splitform"
)

// PlaceholderWallet is what the connected wallet control displays. There is
// no real account behind it.
const PlaceholderWallet = "0x1234...5678"

var (
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrFormClosed         = errors.New("create split form is not open")
	ErrSplitNotFound      = errors.New("split not found")
	ErrUnknownTab         = errors.New("unknown dashboard tab")
)

// CurrentView decides which page the session shows. The open form wins;
// otherwise a connected wallet with at least one split gets the dashboard.
func CurrentView(s *models.Session) models.View {
	switch {
	case s.ShowCreateSplit:
		return models.ViewCreateSplit
	case s.Connected && len(s.Splits) > 0:
		return models.ViewDashboard
	default:
		return models.ViewLanding
	}
}

// ConnectWallet marks the wallet as connected. It always succeeds.
func ConnectWallet(s *models.Session) {
	s.Connected = true
}

// WalletDisplay returns the address shown by the wallet control, or "" when
// not connected.
func WalletDisplay(s *models.Session) string {
	if !s.Connected {
		return ""
	}
	return PlaceholderWallet
}

// OpenCreateSplit shows the create-split form with a fresh draft.
func OpenCreateSplit(s *models.Session) error {
	if !s.Connected {
		return ErrWalletNotConnected
	}
	s.ShowCreateSplit = true
	s.Draft = splitform.NewDraft()
	return nil
}

// CloseCreateSplit hides the form and discards the draft.
func CloseCreateSplit(s *models.Session) {
	s.ShowCreateSplit = false
	s.Draft = nil
}

// Form returns an editor over the open draft.
func Form(s *models.Session, now splitform.Clock) (*splitform.Form, error) {
	if !s.ShowCreateSplit || s.Draft == nil {
		return nil, ErrFormClosed
	}
	return splitform.New(s.Draft, now), nil
}

// SubmitSplit submits the open form. On success the split is appended, the
// form closes and the dashboard starts again from the first split.
func SubmitSplit(s *models.Session, now splitform.Clock) (*models.Split, error) {
	f, err := Form(s, now)
	if err != nil {
		return nil, err
	}
	split, err := f.Submit()
	if err != nil {
		return nil, err
	}
	s.Splits = append(s.Splits, *split)
	CloseCreateSplit(s)
	s.Selected = 0
	s.Tab = models.TabRecipients
	return split, nil
}

// SelectSplit points the dashboard at the first split with the given ID.
func SelectSplit(s *models.Session, id string) error {
	for i := range s.Splits {
		if s.Splits[i].ID == id {
			s.Selected = i
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSplitNotFound, id)
}

// SelectedSplit returns the split shown on the dashboard, falling back to the
// first one. It returns nil when there are no splits.
func SelectedSplit(s *models.Session) *models.Split {
	if len(s.Splits) == 0 {
		return nil
	}
	if s.Selected < 0 || s.Selected >= len(s.Splits) {
		return &s.Splits[0]
	}
	return &s.Splits[s.Selected]
}

// SelectTab switches the dashboard detail tab.
func SelectTab(s *models.Session, tab models.DashboardTab) error {
	if !tab.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	s.Tab = tab
	return nil
}

// ActiveTab returns the session's tab, defaulting to recipients.
func ActiveTab(s *models.Session) models.DashboardTab {
	if !s.Tab.Valid() {
		return models.TabRecipients
	}
	return s.Tab
}
