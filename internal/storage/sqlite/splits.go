package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitflow/internal/models"
)

// insertSplit stores a split and its recipients at the given position.
func insertSplit(ctx context.Context, db execer, sessionID string, position int, split *models.Split) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO splits (session_id, position, id, name, total_received, total_distributed, contract_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, position, split.ID, split.Name,
		split.TotalReceived.String(), split.TotalDistributed.String(),
		split.ContractAddress, split.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for i, r := range split.Recipients {
		_, err = db.ExecContext(ctx,
			`INSERT INTO split_recipients (session_id, split_position, position, id, name, address, percentage)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sessionID, position, i, r.ID, r.Name, r.Address, r.Percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split recipient: %w", err)
		}
	}
	return nil
}

// ListSplits returns the session's splits in creation order.
func (s *SQLiteStore) ListSplits(ctx context.Context, sessionID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, total_received, total_distributed, contract_address, created_at
		 FROM splits WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}

	var splits []models.Split
	for rows.Next() {
		var (
			split                 models.Split
			received, distributed string
			createdAt             int64
		)
		if err := rows.Scan(&split.ID, &split.Name, &received, &distributed, &split.ContractAddress, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if split.TotalReceived, err = decimal.NewFromString(received); err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid total_received %q: %w", received, err)
		}
		if split.TotalDistributed, err = decimal.NewFromString(distributed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid total_distributed %q: %w", distributed, err)
		}
		split.CreatedAt = time.Unix(0, createdAt).UTC()
		splits = append(splits, split)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	if len(splits) == 0 {
		return nil, nil
	}

	// Load recipients once the split rows are closed; the pool has a single connection.
	recipientRows, err := s.db.QueryContext(ctx,
		`SELECT split_position, id, name, address, percentage
		 FROM split_recipients WHERE session_id = ? ORDER BY split_position, position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get split recipients: %w", err)
	}
	defer recipientRows.Close()

	for recipientRows.Next() {
		var (
			pos int
			r   models.Recipient
		)
		if err := recipientRows.Scan(&pos, &r.ID, &r.Name, &r.Address, &r.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan split recipient: %w", err)
		}
		if pos < 0 || pos >= len(splits) {
			return nil, fmt.Errorf("split recipient references unknown split position %d", pos)
		}
		splits[pos].Recipients = append(splits[pos].Recipients, r)
	}
	if err := recipientRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate split recipients: %w", err)
	}

	return splits, nil
}
