// Package splitform implements the create-split form: an ordered list of
// recipients being edited, the running percentage total, and the submit guard.
package splitform

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/splitflow/internal/calculator"
	"github.com/mmynk/splitflow/internal/contract"
	"github.com/mmynk/splitflow/internal/models"
)

var (
	ErrNotSubmittable = errors.New("split needs a name and recipient shares totalling exactly 100%")
	ErrUnknownField   = errors.New("unknown recipient field")
)

// Field names an editable recipient attribute.
type Field string

const (
	FieldName       Field = "name"
	FieldAddress    Field = "address"
	FieldPercentage Field = "percentage"
)

// initialRecipientID is the ID of the single recipient a fresh form starts with.
const initialRecipientID = "1"

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// Form edits a models.Draft in place.
type Form struct {
	draft *models.Draft
	now   Clock
}

// NewDraft returns an empty draft holding one blank recipient.
func NewDraft() *models.Draft {
	return &models.Draft{
		Recipients: []models.Recipient{{ID: initialRecipientID}},
	}
}

// New wraps draft in a Form. A nil clock means time.Now.
func New(draft *models.Draft, now Clock) *Form {
	if now == nil {
		now = time.Now
	}
	return &Form{draft: draft, now: now}
}

// Draft returns the underlying draft.
func (f *Form) Draft() *models.Draft {
	return f.draft
}

// Name returns the split name.
func (f *Form) Name() string {
	return f.draft.Name
}

// SetName sets the split name.
func (f *Form) SetName(name string) {
	f.draft.Name = name
}

// Recipients returns the recipients in entry order.
func (f *Form) Recipients() []models.Recipient {
	return f.draft.Recipients
}

// AddRecipient appends a blank recipient whose ID is the current time in
// milliseconds, and returns it.
func (f *Form) AddRecipient() models.Recipient {
	r := models.Recipient{ID: millisID(f.now())}
	f.draft.Recipients = append(f.draft.Recipients, r)
	return r
}

// RemoveRecipient drops every recipient with the given ID. It does nothing
// when only one recipient is left, so the form always shows at least one row.
// It reports whether anything was removed.
func (f *Form) RemoveRecipient(id string) bool {
	if len(f.draft.Recipients) <= 1 {
		return false
	}
	kept := make([]models.Recipient, 0, len(f.draft.Recipients))
	for _, r := range f.draft.Recipients {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	removed := len(kept) != len(f.draft.Recipients)
	f.draft.Recipients = kept
	return removed
}

// UpdateRecipient sets one field on every recipient with the given ID.
// Percentage values that do not parse as a number become 0. Bounds are not
// checked.
func (f *Form) UpdateRecipient(id string, field Field, value string) error {
	if err := checkField(field); err != nil {
		return err
	}
	for i := range f.draft.Recipients {
		if f.draft.Recipients[i].ID == id {
			setField(&f.draft.Recipients[i], field, value)
		}
	}
	return nil
}

// UpdateRecipientAt sets one field on the recipient at position index, but
// only if that recipient still has the given ID. It reports whether a
// recipient was updated. Rows sharing an ID are told apart by position.
func (f *Form) UpdateRecipientAt(index int, id string, field Field, value string) (bool, error) {
	if err := checkField(field); err != nil {
		return false, err
	}
	if index < 0 || index >= len(f.draft.Recipients) || f.draft.Recipients[index].ID != id {
		return false, nil
	}
	setField(&f.draft.Recipients[index], field, value)
	return true, nil
}

func checkField(field Field) error {
	switch field {
	case FieldName, FieldAddress, FieldPercentage:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}

func setField(r *models.Recipient, field Field, value string) {
	switch field {
	case FieldName:
		r.Name = value
	case FieldAddress:
		r.Address = value
	case FieldPercentage:
		r.Percentage = ParsePercentage(value)
	}
}

// TotalPercentage is the sum of all recipient shares.
func (f *Form) TotalPercentage() float64 {
	return calculator.TotalPercentage(f.draft.Recipients)
}

// CanSubmit reports whether Submit would succeed.
func (f *Form) CanSubmit() bool {
	return calculator.CanSubmit(f.draft.Name, f.TotalPercentage())
}

// Preview returns the recipients shown in the live preview panel.
func (f *Form) Preview() []models.Recipient {
	return calculator.Previewable(f.draft.Recipients)
}

// Submit builds a Split from the form.
//
// Recipients missing a name or an address are left out of the split even
// though their share counted towards the 100% check, so the submitted
// recipients can total less than 100.
func (f *Form) Submit() (*models.Split, error) {
	if !f.CanSubmit() {
		return nil, ErrNotSubmittable
	}

	now := f.now()
	split := &models.Split{
		ID:         millisID(now),
		Name:       f.draft.Name,
		Recipients: calculator.Complete(f.draft.Recipients),
		CreatedAt:  now.UTC(),
	}
	split.ContractAddress = contract.Address(split.ID, split.Name, split.CreatedAt)
	return split, nil
}

// leadingNumber matches the decimal number a percentage input starts with.
// Hex literals and digit separators are not numbers here: "0x10" reads as 0
// and "1_0" as 1.
var leadingNumber = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParsePercentage converts form input to a share. It reads the longest
// decimal number at the start of the trimmed input and ignores the rest.
// Input that does not start with a number yields 0.
func ParsePercentage(value string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(value))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func millisID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
