package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/storage"
)

// CreateExpense persists a new expense with its participants and shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID and timestamps if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = s.now().UTC()
	}
	expense.UpdatedAt = expense.CreatedAt
	if expense.Split == nil {
		expense.Split = models.EqualSplit{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, payer, split_strategy, period, category, description, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Amount, string(expense.Payer), string(expense.Split.Kind()), string(expense.Period),
		expense.Category, expense.Description, expense.Note,
		formatTime(expense.CreatedAt), formatTime(expense.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplitRows(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateExpense replaces the stored expense. CreatedAt is preserved.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.Split == nil {
		expense.Split = models.EqualSplit{}
	}
	expense.UpdatedAt = s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET amount = ?, payer = ?, split_strategy = ?, period = ?, category = ?, description = ?, note = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Amount, string(expense.Payer), string(expense.Split.Kind()), string(expense.Period),
		expense.Category, expense.Description, expense.Note, formatTime(expense.UpdatedAt),
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	// Replace participants and shares
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	if err := insertSplitRows(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense by ID. Participants and shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including participants and shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.loadExpenses(ctx, "e.id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return &expenses[0], nil
}

// ListExpenses retrieves the expenses of the given periods, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, periods ...models.Period) ([]models.Expense, error) {
	where, args := periodFilter("e.period", periods)
	return s.loadExpenses(ctx, where, args...)
}

func insertSplitRows(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, member := range expense.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, member, position) VALUES (?, ?, ?)",
			expense.ID, string(member), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for member, value := range models.SplitShares(expense.Split) {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, member, value) VALUES (?, ?, ?)",
			expense.ID, string(member), value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	return nil
}

// loadExpenses runs three queries (expenses, participants, shares) filtered by the same
// WHERE clause over the expenses table aliased as e.
func (s *SQLiteStore) loadExpenses(ctx context.Context, where string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.amount, e.payer, e.split_strategy, e.period, e.category, e.description, e.note, e.created_at, e.updated_at
		 FROM expenses e WHERE `+where+` ORDER BY e.created_at DESC, e.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []models.Expense
	kinds := make(map[string]models.SplitKind)
	index := make(map[string]int)
	for rows.Next() {
		var (
			e                    models.Expense
			payer, kind, period  string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&e.ID, &e.Amount, &payer, &kind, &period, &e.Category, &e.Description, &e.Note, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Payer = models.MemberID(payer)
		e.Period = models.Period(period)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		kinds[e.ID] = models.SplitKind(kind)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	// Participants, in their original order
	partRows, err := s.db.QueryContext(ctx,
		`SELECT p.expense_id, p.member FROM expense_participants p
		 JOIN expenses e ON e.id = p.expense_id
		 WHERE `+where+` ORDER BY p.expense_id, p.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	for partRows.Next() {
		var expenseID, member string
		if err := partRows.Scan(&expenseID, &member); err != nil {
			partRows.Close()
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].Participants = append(expenses[i].Participants, models.MemberID(member))
		}
	}
	partRows.Close()
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Shares for the custom strategies
	shares := make(map[string]map[models.MemberID]decimal.Decimal)
	shareRows, err := s.db.QueryContext(ctx,
		`SELECT sh.expense_id, sh.member, sh.value FROM expense_shares sh
		 JOIN expenses e ON e.id = sh.expense_id
		 WHERE `+where,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	for shareRows.Next() {
		var (
			expenseID, member string
			value             decimal.Decimal
		)
		if err := shareRows.Scan(&expenseID, &member, &value); err != nil {
			shareRows.Close()
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		if shares[expenseID] == nil {
			shares[expenseID] = make(map[models.MemberID]decimal.Decimal)
		}
		shares[expenseID][models.MemberID(member)] = value
	}
	shareRows.Close()
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	for i := range expenses {
		split, err := models.NewSplitStrategy(kinds[expenses[i].ID], shares[expenses[i].ID])
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", expenses[i].ID, err)
		}
		expenses[i].Split = split
	}

	return expenses, nil
}
