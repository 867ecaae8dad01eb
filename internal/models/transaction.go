package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an incoming payment as listed on the dashboard.
// All transactions are sample data and are not tied to any split.
type Transaction struct {
	ID        string
	Amount    decimal.Decimal // in ETH
	Timestamp time.Time
	Hash      string
}

// SampleTransactions returns the fixed transaction history shown for every split.
func SampleTransactions() []Transaction {
	return []Transaction{
		{ID: "1", Amount: decimal.RequireFromString("1.5"), Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), Hash: "0xabc123..."},
		{ID: "2", Amount: decimal.RequireFromString("0.8"), Timestamp: time.Date(2024, 1, 14, 15, 20, 0, 0, time.UTC), Hash: "0xdef456..."},
		{ID: "3", Amount: decimal.RequireFromString("2.3"), Timestamp: time.Date(2024, 1, 13, 9, 15, 0, 0, time.UTC), Hash: "0xghi789..."},
	}
}
