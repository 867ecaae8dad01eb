package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitflow/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// saveDraftRecipients inserts the draft's recipients in order.
// Callers clear existing rows first.
func saveDraftRecipients(ctx context.Context, db execer, sessionID string, draft *models.Draft) error {
	if draft == nil {
		return nil
	}
	for i, r := range draft.Recipients {
		_, err := db.ExecContext(ctx,
			`INSERT INTO draft_recipients (session_id, position, id, name, address, percentage)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, i, r.ID, r.Name, r.Address, r.Percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert draft recipient: %w", err)
		}
	}
	return nil
}

// loadDraftRecipients returns the draft's recipients in entry order.
func loadDraftRecipients(ctx context.Context, db querier, sessionID string) ([]models.Recipient, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, address, percentage FROM draft_recipients WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft recipients: %w", err)
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan draft recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draft recipients: %w", err)
	}
	return recipients, nil
}
