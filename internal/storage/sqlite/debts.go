package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/cashflow/internal/models"
	"github.com/mmynk/cashflow/internal/storage"
)

// AddDebts persists debt records for a group atomically.
func (s *SQLiteStore) AddDebts(ctx context.Context, groupID string, debts []*models.Debt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	now := time.Now().Unix()
	for _, debt := range debts {
		if debt.ID == "" {
			debt.ID = uuid.New().String()
		}
		if debt.CreatedAt == 0 {
			debt.CreatedAt = now
		}
		debt.GroupID = groupID

		var note interface{} = nil
		if debt.Note != "" {
			note = debt.Note
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO debts (id, group_id, debtor, creditor, amount, note, created_at, created_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			debt.ID, debt.GroupID, debt.Debtor, debt.Creditor,
			debt.Amount, note, debt.CreatedAt, debt.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert debt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListDebts retrieves all debts for a group in recording order.
func (s *SQLiteStore) ListDebts(ctx context.Context, groupID string) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, debtor, creditor, amount, note, created_at, created_by
		 FROM debts WHERE group_id = ? ORDER BY rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		debt := &models.Debt{}
		var note sql.NullString

		if err := rows.Scan(&debt.ID, &debt.GroupID, &debt.Debtor, &debt.Creditor,
			&debt.Amount, &note, &debt.CreatedAt, &debt.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}

		if note.Valid {
			debt.Note = note.String
		}

		debts = append(debts, debt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return debts, nil
}
