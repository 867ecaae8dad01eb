package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipient is one stakeholder within a split.
type Recipient struct {
	// ID identifies the recipient within a form. It is derived from the
	// creation time in milliseconds, so two recipients added within the same
	// millisecond share an ID.
	ID string `json:"id"`

	// Name is the display name of the recipient.
	Name string `json:"name"`

	// Address is the recipient's wallet address. Not validated.
	Address string `json:"address"`

	// Percentage is the recipient's share. The form hints at [0, 100] but
	// does not enforce it.
	Percentage float64 `json:"percentage"`
}

// HasIdentity reports whether the recipient carries both a name and an address.
// Only such recipients survive submission.
func (r Recipient) HasIdentity() bool {
	return r.Name != "" && r.Address != ""
}

// Split is a named revenue split as submitted from the form.
type Split struct {
	// ID is the creation time in Unix milliseconds.
	ID string `json:"id"`

	// Name is the user-provided split name (e.g., "Dev Team Revenue Split").
	Name string `json:"name"`

	// Recipients keeps the order in which they were entered.
	Recipients []Recipient `json:"recipients"`

	// TotalReceived is always zero; nothing ever pays into a mock split.
	TotalReceived decimal.Decimal `json:"total_received"`

	// TotalDistributed is always zero.
	TotalDistributed decimal.Decimal `json:"total_distributed"`

	// CreatedAt is when the split was submitted.
	CreatedAt time.Time `json:"created_at"`

	// ContractAddress is the simulated deployment address.
	ContractAddress string `json:"contract_address"`
}

// RecipientPercentage returns the sum of the split's recipient shares.
// It can be below 100 when incomplete recipients were dropped on submission.
func (s *Split) RecipientPercentage() float64 {
	var total float64
	for _, r := range s.Recipients {
		total += r.Percentage
	}
	return total
}
