// Package report derives read-only aggregates from stored transactions.
package report

import (
	"context"
	"fmt"

	"salio/sms-ledger/internal/extractor"
	"salio/sms-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// RecordReader is the read-only slice of the record store the reporter uses.
type RecordReader interface {
	LastRecord(ctx context.Context) (*models.TransactionRecord, error)
	SumAmountByYear(ctx context.Context, year int, direction models.Direction) (decimal.Decimal, error)
}

// Reporter answers balance and yearly total queries.
type Reporter struct {
	store RecordReader
}

// New creates a Reporter over the given store.
func New(store RecordReader) *Reporter {
	return &Reporter{store: store}
}

// LastBalance returns the account balance parsed from the most recent
// record's raw message. Zero when the store is empty or the message carries
// no balance figure.
func (r *Reporter) LastBalance(ctx context.Context) (decimal.Decimal, error) {
	record, err := r.store.LastRecord(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading last record: %w", err)
	}
	if record == nil {
		return decimal.Zero, nil
	}

	balance, ok := extractor.Balance(record.Message)
	if !ok {
		return decimal.Zero, nil
	}
	return balance, nil
}

// TotalIncomePerYear returns the sum of incoming amounts for the year.
// Zero when no records match.
func (r *Reporter) TotalIncomePerYear(ctx context.Context, year int) (decimal.Decimal, error) {
	return r.store.SumAmountByYear(ctx, year, models.DirectionIn)
}

// TotalExpensePerYear returns the sum of outgoing amounts for the year.
// Zero when no records match.
func (r *Reporter) TotalExpensePerYear(ctx context.Context, year int) (decimal.Decimal, error) {
	return r.store.SumAmountByYear(ctx, year, models.DirectionOut)
}
