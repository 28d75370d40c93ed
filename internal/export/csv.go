// Package export writes stored transactions to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"salio/sms-ledger/internal/logging"
	"salio/sms-ledger/internal/models"

	"github.com/gocarina/gocsv"
)

// WriteRecords writes records to a CSV file at path using the given
// delimiter. The raw message bodies are deliberately excluded from the
// output; they can carry balances and phone numbers the export should not
// leak.
func WriteRecords(records []models.TransactionRecord, path string, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewMockLogger()
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close CSV file")
		}
	}()

	writer := csv.NewWriter(file)
	writer.Comma = delimiter

	if err := gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	logger.WithFields(
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "count", Value: len(records)},
	).Info("Transactions exported")
	return nil
}
