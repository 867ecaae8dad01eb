package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/mmynk/splitflow/internal/dashboard"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/session"
	"github.com/mmynk/splitflow/internal/splitform"
)

// Form actions posted by the create-split page buttons.
const (
	actionUpdate = "update"
	actionAdd    = "add"
	actionCreate = "create"
	// actionRemove is followed by the recipient ID, e.g. "remove:1".
	actionRemove = "remove:"
)

type formData struct {
	Name       string
	Recipients []models.Recipient
	Total      float64
	CanSubmit  bool
	Preview    []models.Recipient
}

type pageData struct {
	View      models.View
	Connected bool
	Wallet    string
	Form      *formData
	Dashboard *dashboard.Dashboard
}

func (s *Server) pageData(sess *models.Session) (*pageData, error) {
	data := &pageData{
		View:      session.CurrentView(sess),
		Connected: sess.Connected,
		Wallet:    session.WalletDisplay(sess),
	}
	switch data.View {
	case models.ViewCreateSplit:
		f, err := session.Form(sess, nil)
		if err != nil {
			return nil, err
		}
		data.Form = &formData{
			Name:       f.Name(),
			Recipients: f.Recipients(),
			Total:      f.TotalPercentage(),
			CanSubmit:  f.CanSubmit(),
			Preview:    f.Preview(),
		}
	case models.ViewDashboard:
		d, err := s.dashboards.Build(sess)
		if err != nil {
			return nil, err
		}
		data.Dashboard = d
	}
	return data, nil
}

// recipientInput is one row of the posted form. Rows are posted as parallel
// recipient_* fields in display order.
type recipientInput struct {
	ID, Name, Address, Percentage string
}

func parseRecipients(r *http.Request) []recipientInput {
	ids := r.PostForm["recipient_id"]
	names := r.PostForm["recipient_name"]
	addresses := r.PostForm["recipient_address"]
	percentages := r.PostForm["recipient_percentage"]

	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}

	rows := make([]recipientInput, 0, len(ids))
	for i, id := range ids {
		rows = append(rows, recipientInput{
			ID:         id,
			Name:       at(names, i),
			Address:    at(addresses, i),
			Percentage: at(percentages, i),
		})
	}
	return rows
}

// applyRow writes a posted row to the recipient at the same position. A row
// that no longer lines up with the form (stale page) falls back to matching
// by ID.
func applyRow(f *splitform.Form, pos int, row recipientInput) error {
	for _, fv := range []struct {
		field splitform.Field
		value string
	}{
		{splitform.FieldName, row.Name},
		{splitform.FieldAddress, row.Address},
		{splitform.FieldPercentage, row.Percentage},
	} {
		ok, err := f.UpdateRecipientAt(pos, row.ID, fv.field, fv.value)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := f.UpdateRecipient(row.ID, fv.field, fv.value); err != nil {
			return err
		}
	}
	return nil
}

// submitForm applies every posted field to the open form, then performs the
// requested action.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get("name")
	rows := parseRecipients(r)
	action := r.PostForm.Get("action")
	if action == "" {
		action = actionUpdate
	}

	s.mutate(w, r, "edit form", func(id string) error {
		ctx := r.Context()
		_, err := s.sessions.EditForm(ctx, id, func(f *splitform.Form) error {
			f.SetName(name)
			for i, row := range rows {
				if err := applyRow(f, i, row); err != nil {
					return err
				}
			}

			switch {
			case action == actionAdd:
				f.AddRecipient()
			case strings.HasPrefix(action, actionRemove):
				f.RemoveRecipient(strings.TrimPrefix(action, actionRemove))
			}
			return nil
		})
		if err != nil || action != actionCreate {
			return err
		}

		_, _, err = s.sessions.SubmitSplit(ctx, id)
		if errors.Is(err, splitform.ErrNotSubmittable) {
			// The button is disabled in this state; keep the form open.
			return nil
		}
		return err
	})
}
