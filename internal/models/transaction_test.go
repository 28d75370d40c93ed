package models_test

import (
	"testing"
	"time"

	"salio/sms-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{name: "afternoon", input: "2:30 PM", hour: 14, minute: 30},
		{name: "morning", input: "9:15 AM", hour: 9, minute: 15},
		{name: "noon", input: "12:00 PM", hour: 12, minute: 0},
		{name: "midnight", input: "12:05 AM", hour: 0, minute: 5},
		{name: "missing meridiem", input: "14:30", wantErr: true},
		{name: "bad meridiem", input: "2:30 XM", wantErr: true},
		{name: "not a clock", input: "half past two PM", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := models.ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestTimeFromParts(t *testing.T) {
	got, err := models.TimeFromParts("5/6/24", "2:30 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 5, 14, 30, 0, 0, time.Local), got)

	// Four-digit years pass through unchanged.
	got, err = models.TimeFromParts("05/06/2024", "9:15 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 5, 9, 15, 0, 0, time.Local), got)

	_, err = models.TimeFromParts("5/6", "2:30 PM")
	assert.Error(t, err)

	_, err = models.TimeFromParts("5/6/24", "soon")
	assert.Error(t, err)
}

func TestFeaturesValid(t *testing.T) {
	features := models.TransactionFeatures{
		Merchant: "ACME STORE",
		Date:     "5/6/24",
		Time:     "2:30 PM",
		Amount:   decimal.NewFromInt(500),
	}
	assert.True(t, features.Valid())

	missingAmount := features
	missingAmount.Amount = decimal.Zero
	assert.False(t, missingAmount.Valid())

	missingMerchant := features
	missingMerchant.Merchant = ""
	assert.False(t, missingMerchant.Valid())

	missingDate := features
	missingDate.Date = ""
	assert.False(t, missingDate.Valid())
}

func TestFeaturesType(t *testing.T) {
	tests := []struct {
		name     string
		features models.TransactionFeatures
		want     models.TransactionType
	}{
		{name: "withdrawal", features: models.TransactionFeatures{IsWithdraw: true}, want: models.TypeWithdrawal},
		{name: "buy goods", features: models.TransactionFeatures{IsBuyGoods: true}, want: models.TypeBuyGoods},
		{name: "paybill", features: models.TransactionFeatures{IsPayBill: true}, want: models.TypePaybill},
		{name: "send money", features: models.TransactionFeatures{IsSendMoney: true}, want: models.TypeSendMoney},
		{name: "reversal", features: models.TransactionFeatures{IsReversal: true}, want: models.TypeReversal},
		{name: "none set", features: models.TransactionFeatures{}, want: models.TypeUnknown},
		// Withdrawal wins when flags overlap.
		{
			name:     "withdrawal beats buy goods",
			features: models.TransactionFeatures{IsWithdraw: true, IsBuyGoods: true},
			want:     models.TypeWithdrawal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.features.Type())
		})
	}
}

func TestFeaturesDirection(t *testing.T) {
	assert.Equal(t, models.DirectionIn, models.TransactionFeatures{Incoming: true}.Direction())
	assert.Equal(t, models.DirectionOut, models.TransactionFeatures{}.Direction())
}

func TestRecordTimestamp(t *testing.T) {
	record := models.TransactionRecord{Date: "02/02/2024", Time: "1:05 PM"}
	ts, err := record.Timestamp()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 2, 13, 5, 0, 0, time.Local), ts)
}
