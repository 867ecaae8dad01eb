package calculator

import "github.com/mmynk/splitflow/internal/models"

// FullPercentage is the total the recipient shares must reach before a split
// can be submitted.
const FullPercentage = 100.0

// TotalPercentage returns the arithmetic sum of every recipient's percentage,
// including recipients that are still missing a name or address.
func TotalPercentage(recipients []models.Recipient) float64 {
	var total float64
	for _, r := range recipients {
		total += r.Percentage
	}
	return total
}

// CanSubmit reports whether a split with the given name and share total may be
// submitted. The comparison is exact; 99.99999 is not 100.
func CanSubmit(name string, total float64) bool {
	return name != "" && total == FullPercentage
}

// Complete returns the recipients that carry both a name and an address,
// preserving order.
func Complete(recipients []models.Recipient) []models.Recipient {
	out := make([]models.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if r.HasIdentity() {
			out = append(out, r)
		}
	}
	return out
}

// Previewable returns the recipients worth showing in the live preview:
// named and with a positive share.
func Previewable(recipients []models.Recipient) []models.Recipient {
	var out []models.Recipient
	for _, r := range recipients {
		if r.Name != "" && r.Percentage > 0 {
			out = append(out, r)
		}
	}
	return out
}
