package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitflow/internal/models"
)

func TestTotalPercentage(t *testing.T) {
	tests := []struct {
		name       string
		recipients []models.Recipient
		want       float64
	}{
		{
			name:       "no recipients",
			recipients: nil,
			want:       0,
		},
		{
			name: "two recipients summing to 100",
			recipients: []models.Recipient{
				{ID: "1", Name: "Alice", Address: "0xa", Percentage: 60},
				{ID: "2", Name: "Bob", Address: "0xb", Percentage: 40},
			},
			want: 100,
		},
		{
			name: "incomplete recipients still count",
			recipients: []models.Recipient{
				{ID: "1", Percentage: 70},
				{ID: "2", Name: "Bob", Percentage: 29},
			},
			want: 99,
		},
		{
			name: "out of range values are summed as-is",
			recipients: []models.Recipient{
				{ID: "1", Percentage: 150},
				{ID: "2", Percentage: -50},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPercentage(tt.recipients); got != tt.want {
				t.Errorf("TotalPercentage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name      string
		splitName string
		total     float64
		want      bool
	}{
		{name: "named and full", splitName: "Test Split", total: 100, want: true},
		{name: "empty name", splitName: "", total: 100, want: false},
		{name: "total 99", splitName: "Test Split", total: 99, want: false},
		{name: "total over 100", splitName: "Test Split", total: 101, want: false},
		{name: "near 100 is not 100", splitName: "Test Split", total: 99.9999999, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSubmit(tt.splitName, tt.total); got != tt.want {
				t.Errorf("CanSubmit(%q, %v) = %v, want %v", tt.splitName, tt.total, got, tt.want)
			}
		})
	}
}

func TestCompleteAndPreviewable(t *testing.T) {
	recipients := []models.Recipient{
		{ID: "1", Name: "Alice", Address: "0xa", Percentage: 50},
		{ID: "2", Name: "Bob", Address: "", Percentage: 50},
		{ID: "3", Name: "", Address: "0xc", Percentage: 0},
		{ID: "4", Name: "Dana", Address: "0xd", Percentage: 0},
	}

	complete := Complete(recipients)
	if len(complete) != 2 || complete[0].ID != "1" || complete[1].ID != "4" {
		t.Errorf("Complete() = %+v, want recipients 1 and 4", complete)
	}

	preview := Previewable(recipients)
	if len(preview) != 2 || preview[0].ID != "1" || preview[1].ID != "2" {
		t.Errorf("Previewable() = %+v, want recipients 1 and 2", preview)
	}
}

func TestDistribute(t *testing.T) {
	recipients := []models.Recipient{
		{ID: "1", Name: "Alice", Percentage: 60},
		{ID: "2", Name: "Bob", Percentage: 40},
	}

	shares, err := Distribute(decimal.RequireFromString("4.6"), recipients)
	if err != nil {
		t.Fatalf("Distribute failed: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}

	// Alice: 4.6 * 60 / 100 = 2.76, Bob: 4.6 * 40 / 100 = 1.84
	if !shares[0].Amount.Equal(decimal.RequireFromString("2.76")) {
		t.Errorf("Alice share = %s, want 2.76", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(decimal.RequireFromString("1.84")) {
		t.Errorf("Bob share = %s, want 1.84", shares[1].Amount)
	}
}

func TestDistribute_Errors(t *testing.T) {
	if _, err := Distribute(decimal.NewFromInt(-1), nil); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestDistribute_UnboundedShares(t *testing.T) {
	recipients := []models.Recipient{
		{ID: "1", Name: "A", Percentage: 150},
		{ID: "2", Name: "B", Percentage: -50},
	}

	shares, err := Distribute(decimal.RequireFromString("4.6"), recipients)
	if err != nil {
		t.Fatalf("Distribute failed: %v", err)
	}

	// A: 4.6 * 150 / 100 = 6.9, B: 4.6 * -50 / 100 = -2.3
	if !shares[0].Amount.Equal(decimal.RequireFromString("6.9")) {
		t.Errorf("A share = %s, want 6.9", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(decimal.RequireFromString("-2.3")) {
		t.Errorf("B share = %s, want -2.3", shares[1].Amount)
	}
	if sum := shares[0].Amount.Add(shares[1].Amount); !sum.Equal(decimal.RequireFromString("4.6")) {
		t.Errorf("shares sum to %s, want 4.6", sum)
	}
}

func TestSumAmounts(t *testing.T) {
	got := SumAmounts(models.SampleTransactions())
	if !got.Equal(decimal.RequireFromString("4.6")) {
		t.Errorf("SumAmounts() = %s, want 4.6", got)
	}
}
