package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"salio/sms-ledger/internal/export"
	"salio/sms-ledger/internal/logging"
	"salio/sms-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecords(t *testing.T) {
	records := []models.TransactionRecord{
		{
			TransactionCode: "AAA111",
			Merchant:        "ACME STORE",
			Type:            models.TypeBuyGoods,
			Date:            "05/06/2024",
			Time:            "2:30 PM",
			Amount:          decimal.RequireFromString("500.00"),
			TransactionCost: decimal.RequireFromString("5.00"),
			Direction:       models.DirectionOut,
			Message:         "AAA111 Confirmed. secret balance inside",
			Category:        "SHOPPING",
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, export.WriteRecords(records, path, ',', logging.NewMockLogger()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "transaction_code")
	assert.Contains(t, lines[0], "category")
	assert.Contains(t, lines[1], "AAA111")
	assert.Contains(t, lines[1], "ACME STORE")
	assert.Contains(t, lines[1], "SHOPPING")

	// Raw message bodies stay out of exports.
	assert.NotContains(t, content, "secret balance inside")
}

func TestWriteRecordsCustomDelimiter(t *testing.T) {
	records := []models.TransactionRecord{
		{
			TransactionCode: "BBB222",
			Merchant:        "KIOSK, THE SECOND",
			Type:            models.TypeSendMoney,
			Date:            "02/02/2024",
			Time:            "1:05 PM",
			Amount:          decimal.RequireFromString("250.00"),
			Direction:       models.DirectionOut,
			Category:        "FRIENDS & FAMILY",
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, export.WriteRecords(records, path, ';', logging.NewMockLogger()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BBB222;")
}
