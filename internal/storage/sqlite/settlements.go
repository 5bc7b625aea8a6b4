package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/storage"
)

const settlementColumns = `id, debtor, creditor, period, amount, status, proof, created_at, paid_at, confirmed_at`

// CreateSettlement inserts a new settlement. A record already holding the same
// (debtor, creditor, period) key is left alone and reported as storage.ErrConflict.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	id := uuid.New().String()
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = s.now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (debtor, creditor, period) DO NOTHING`,
		id, string(settlement.Debtor), string(settlement.Creditor), string(settlement.Period),
		settlement.Amount, string(settlement.Status), nullProof(settlement.Proof), formatTime(settlement.CreatedAt),
		nullTime(settlement.PaidAt), nullTime(settlement.ConfirmedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("settlement %s -> %s in %s: %w", settlement.Debtor, settlement.Creditor, settlement.Period, storage.ErrConflict)
	}

	settlement.ID = id
	return nil
}

// UpdateSettlement writes settlement over the stored record when that record is still
// in status from.
func (s *SQLiteStore) UpdateSettlement(ctx context.Context, settlement *models.Settlement, from models.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE settlements
		 SET amount = ?, status = ?, proof = ?, paid_at = ?, confirmed_at = ?
		 WHERE id = ? AND status = ?`,
		settlement.Amount, string(settlement.Status), nullProof(settlement.Proof),
		nullTime(settlement.PaidAt), nullTime(settlement.ConfirmedAt),
		settlement.ID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM settlements WHERE id = ?`, settlement.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("settlement %s: %w", settlement.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check settlement: %w", err)
	}
	return fmt.Errorf("settlement %s is no longer %s: %w", settlement.ID, from, storage.ErrConflict)
}

func nullProof(proof string) sql.NullString {
	return sql.NullString{String: proof, Valid: proof != ""}
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// FindSettlement retrieves the settlement for a (debtor, creditor, period) key.
func (s *SQLiteStore) FindSettlement(ctx context.Context, key models.SettlementKey) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE debtor = ? AND creditor = ? AND period = ?`,
		string(key.Debtor), string(key.Creditor), string(key.Period),
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s -> %s in %s: %w", key.Debtor, key.Creditor, key.Period, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlements retrieves the settlements of the given periods.
func (s *SQLiteStore) ListSettlements(ctx context.Context, periods ...models.Period) ([]models.Settlement, error) {
	where, args := periodFilter("period", periods)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE `+where+` ORDER BY period, created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	var (
		st                               models.Settlement
		debtor, creditor, period, status string
		proof, paidAt, confirmedAt       sql.NullString
		createdAt                        string
	)
	err := row.Scan(&st.ID, &debtor, &creditor, &period, &st.Amount, &status, &proof, &createdAt, &paidAt, &confirmedAt)
	if err != nil {
		return nil, err
	}

	st.Debtor = models.MemberID(debtor)
	st.Creditor = models.MemberID(creditor)
	st.Period = models.Period(period)
	st.Status = models.Status(status)
	if proof.Valid {
		st.Proof = proof.String
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.PaidAt, err = parseNullTime(paidAt); err != nil {
		return nil, err
	}
	if st.ConfirmedAt, err = parseNullTime(confirmedAt); err != nil {
		return nil, err
	}
	return &st, nil
}
