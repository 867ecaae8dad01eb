package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitflow/internal/models"
)

// weiPlaces is the number of decimal places an ETH amount can carry.
const weiPlaces = 18

var hundred = decimal.NewFromInt(100)

// Share is one recipient's part of a distributed amount.
type Share struct {
	Recipient models.Recipient
	Amount    decimal.Decimal
}

// Distribute splits amount between recipients by their percentage.
//
// Each share is amount × percentage / 100, truncated to wei precision.
// Percentages are not bounded, so a share can exceed amount or be negative.
// Shares are computed independently, so if the percentages do not add up to
// 100 the shares do not add up to amount either; any leftover from truncation
// stays undistributed.
func Distribute(amount decimal.Decimal, recipients []models.Recipient) ([]Share, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("cannot distribute negative amount %s", amount)
	}

	shares := make([]Share, len(recipients))
	for i, r := range recipients {
		shares[i] = Share{
			Recipient: r,
			Amount:    amount.Mul(decimal.NewFromFloat(r.Percentage)).Div(hundred).Truncate(weiPlaces),
		}
	}
	return shares, nil
}

// SumAmounts returns the total of all transaction amounts.
func SumAmounts(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}
