// Package dashboard turns a session's splits and the sample transaction
// history into what the dashboard page displays.
package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitflow/internal/calculator"
	"github.com/mmynk/splitflow/internal/contract"
	"github.com/mmynk/splitflow/internal/models"
	"github.com/mmynk/splitflow/internal/session"
)

// DefaultExplorerURL is the block explorer used for contract links.
const DefaultExplorerURL = "https://etherscan.io/address/"

// Stats are the three summary cards at the top of the dashboard.
type Stats struct {
	TotalSplits      int    `json:"total_splits"`
	TotalReceived    string `json:"total_received"`
	TotalDistributed string `json:"total_distributed"`
}

// SplitCard is one entry of the split list.
type SplitCard struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RecipientCount int    `json:"recipient_count"`
	Status         string `json:"status"`
	ShortContract  string `json:"short_contract"`
	Selected       bool   `json:"selected"`
}

// RecipientRow is one line of the recipients tab.
type RecipientRow struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Percentage float64 `json:"percentage"`
	Received   string  `json:"received"`
}

// TransactionRow is one line of the transactions tab.
type TransactionRow struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

// Detail describes the selected split.
type Detail struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ContractAddress string           `json:"contract_address"`
	ExplorerURL     string           `json:"explorer_url"`
	Tab             string           `json:"tab"`
	Recipients      []RecipientRow   `json:"recipients"`
	Transactions    []TransactionRow `json:"transactions"`
}

// Dashboard is the full page model.
type Dashboard struct {
	Stats  Stats       `json:"stats"`
	Splits []SplitCard `json:"splits"`
	Detail *Detail     `json:"detail,omitempty"`
}

// Builder assembles dashboards. The zero value uses the default explorer and
// the sample transactions.
type Builder struct {
	ExplorerURL  string
	Transactions []models.Transaction
}

// NewBuilder returns a Builder linking contracts to explorerURL.
func NewBuilder(explorerURL string) *Builder {
	return &Builder{ExplorerURL: explorerURL, Transactions: models.SampleTransactions()}
}

// Build produces the dashboard for sess. Detail is nil when there are no splits.
func (b *Builder) Build(sess *models.Session) (*Dashboard, error) {
	txs := b.transactions()
	received := calculator.SumAmounts(txs)

	d := &Dashboard{
		Stats: Stats{
			TotalSplits:      len(sess.Splits),
			TotalReceived:    FormatETH(received),
			TotalDistributed: FormatETH(received),
		},
		Splits: make([]SplitCard, 0, len(sess.Splits)),
	}

	selected := session.SelectedSplit(sess)
	for i := range sess.Splits {
		s := &sess.Splits[i]
		d.Splits = append(d.Splits, SplitCard{
			ID:             s.ID,
			Name:           s.Name,
			RecipientCount: len(s.Recipients),
			Status:         "Active",
			ShortContract:  TruncateAddress(s.ContractAddress),
			Selected:       s == selected,
		})
	}
	if selected == nil {
		return d, nil
	}

	shares, err := calculator.Distribute(received, selected.Recipients)
	if err != nil {
		return nil, err
	}

	explorer := b.ExplorerURL
	if explorer == "" {
		explorer = DefaultExplorerURL
	}
	detail := &Detail{
		ID:              selected.ID,
		Name:            selected.Name,
		ContractAddress: selected.ContractAddress,
		ExplorerURL:     contract.ExplorerURL(explorer, selected.ContractAddress),
		Tab:             string(session.ActiveTab(sess)),
		Recipients:      make([]RecipientRow, 0, len(shares)),
		Transactions:    make([]TransactionRow, 0, len(txs)),
	}
	for _, sh := range shares {
		detail.Recipients = append(detail.Recipients, RecipientRow{
			Name:       sh.Recipient.Name,
			Address:    sh.Recipient.Address,
			Percentage: sh.Recipient.Percentage,
			Received:   FormatETH(sh.Amount) + " received",
		})
	}
	for _, tx := range txs {
		detail.Transactions = append(detail.Transactions, TransactionRow{
			ID:     tx.ID,
			Amount: FormatETH(tx.Amount),
			Date:   FormatDate(tx),
			Hash:   tx.Hash,
			Status: "Distributed",
		})
	}
	d.Detail = detail
	return d, nil
}

func (b *Builder) transactions() []models.Transaction {
	if b.Transactions == nil {
		return models.SampleTransactions()
	}
	return b.Transactions
}

// FormatETH renders an amount like "4.6 ETH".
func FormatETH(amount decimal.Decimal) string {
	return amount.String() + " ETH"
}

// FormatDate renders a transaction date the way en-US locales do (1/15/2024).
func FormatDate(tx models.Transaction) string {
	return tx.Timestamp.Format("1/2/2006")
}

// TruncateAddress shortens long addresses to 0x1234...5678.
func TruncateAddress(addr string) string {
	if len(addr) <= 13 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
