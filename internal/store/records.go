package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salio/sms-ledger/internal/models"

	"github.com/shopspring/decimal"
)

const insertRecord = `
INSERT INTO transactions
(transaction_code, merchant, transaction_type, transaction_date, transaction_time,
 amount, transaction_cost, direction, message, category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectRecord = `
SELECT id, transaction_code, merchant, transaction_type, transaction_date,
       transaction_time, amount, transaction_cost, direction, message, category
FROM transactions
`

// InsertBatch persists records inside one exclusive transaction with a
// prepared statement reused across all rows. Either every record commits or
// none do.
func (s *Store) InsertBatch(ctx context.Context, records []models.TransactionRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			s.log.WithError(closeErr).Warn("Failed to close prepared statement")
		}
	}()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.TransactionCode,
			record.Merchant,
			string(record.Type),
			record.Date,
			record.Time,
			record.Amount.InexactFloat64(),
			record.TransactionCost.InexactFloat64(),
			string(record.Direction),
			record.Message,
			record.Category,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", record.TransactionCode, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.log.WithField("count", len(records)).Info("Transactions stored")
	return nil
}

// LastRecord returns the most recently inserted record, or nil when the
// store is empty.
func (s *Store) LastRecord(ctx context.Context) (*models.TransactionRecord, error) {
	row := s.db.QueryRowContext(ctx, selectRecord+`ORDER BY id DESC LIMIT 1`)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last record: %w", err)
	}
	return record, nil
}

// LastTimestamp returns the wall-clock timestamp of the most recently
// inserted record. The second return value is false when the store is empty.
func (s *Store) LastTimestamp(ctx context.Context) (time.Time, bool, error) {
	record, err := s.LastRecord(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if record == nil {
		return time.Time{}, false, nil
	}

	ts, err := record.Timestamp()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last record timestamp: %w", err)
	}
	return ts, true, nil
}

// All returns every stored record in insertion order.
func (s *Store) All(ctx context.Context) ([]models.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+`ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.log.WithError(closeErr).Warn("Failed to close rows")
		}
	}()

	var records []models.TransactionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// SumAmountByYear returns the sum of amounts over records whose transaction
// date falls in year and whose direction matches. Zero when no rows match.
func (s *Store) SumAmountByYear(ctx context.Context, year int, direction models.Direction) (decimal.Decimal, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(amount) FROM transactions
		WHERE transaction_date LIKE ? AND direction = ?`,
		fmt.Sprintf("%%%d", year), string(direction)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum amounts for %d/%s: %w", year, direction, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(total.Float64), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.TransactionRecord, error) {
	var (
		record          models.TransactionRecord
		amount, cost    float64
		kind, direction string
	)
	err := row.Scan(
		&record.ID,
		&record.TransactionCode,
		&record.Merchant,
		&kind,
		&record.Date,
		&record.Time,
		&amount,
		&cost,
		&direction,
		&record.Message,
		&record.Category,
	)
	if err != nil {
		return nil, err
	}

	record.Type = models.TransactionType(kind)
	record.Direction = models.Direction(direction)
	record.Amount = decimal.NewFromFloat(amount)
	record.TransactionCost = decimal.NewFromFloat(cost)
	return &record, nil
}
