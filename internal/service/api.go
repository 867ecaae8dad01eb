package service

import (
	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/session"
)

// Request and response messages of splitflow.v1.SplitService. They travel as
// JSON; see jsonCodec.

// Empty is the request of procedures that take no arguments.
type Empty struct{}

// State is the session as the client needs to render it.
type State struct {
	SessionID       string         `json:"session_id"`
	View            models.View    `json:"view"`
	Connected       bool           `json:"connected"`
	Wallet          string         `json:"wallet,omitempty"`
	Splits          []models.Split `json:"splits"`
	Form            *FormState     `json:"form,omitempty"`
	SelectedSplitID string         `json:"selected_split_id,omitempty"`
	Tab             string         `json:"tab"`
}

// FormState is the open create-split form.
type FormState struct {
	Name            string             `json:"name"`
	Recipients      []models.Recipient `json:"recipients"`
	TotalPercentage float64            `json:"total_percentage"`
	CanSubmit       bool               `json:"can_submit"`
	Preview         []models.Recipient `json:"preview"`
}

type StartSessionResponse struct {
	Token string `json:"token"`
	State *State `json:"state"`
}

type StateResponse struct {
	State *State `json:"state"`
}

type SetSplitNameRequest struct {
	Name string `json:"name"`
}

type RemoveRecipientRequest struct {
	ID string `json:"id"`
}

// UpdateRecipientRequest carries the raw input value; percentages are parsed
// server-side the same way form input is.
type UpdateRecipientRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type CreateSplitResponse struct {
	Split *models.Split `json:"split"`
	State *State        `json:"state"`
}

type SelectSplitRequest struct {
	ID string `json:"id"`
}

type SelectTabRequest struct {
	Tab string `json:"tab"`
}

type GetDashboardResponse struct {
	Dashboard *dashboard.Dashboard `json:"dashboard"`
}

// NewState converts a session into its wire form.
func NewState(sess *models.Session) *State {
	st := &State{
		SessionID: sess.ID,
		View:      session.CurrentView(sess),
		Connected: sess.Connected,
		Wallet:    session.WalletDisplay(sess),
		Splits:    make([]models.Split, len(sess.Splits)),
		Tab:       string(session.ActiveTab(sess)),
	}
	for i, s := range sess.Splits {
		if s.Recipients == nil {
			s.Recipients = []models.Recipient{}
		}
		st.Splits[i] = s
	}
	if selected := session.SelectedSplit(sess); selected != nil {
		st.SelectedSplitID = selected.ID
	}
	if f, err := session.Form(sess, nil); err == nil {
		preview := f.Preview()
		if preview == nil {
			preview = []models.Recipient{}
		}
		st.Form = &FormState{
			Name:            f.Name(),
			Recipients:      f.Recipients(),
			TotalPercentage: f.TotalPercentage(),
			CanSubmit:       f.CanSubmit(),
			Preview:         preview,
		}
	}
	return st
}
