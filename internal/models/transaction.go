// Package models defines the core domain types shared across the application.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies the mechanics of a mobile-money transaction.
type TransactionType string

const (
	TypeWithdrawal TransactionType = "Withdrawal"
	TypeBuyGoods   TransactionType = "Buy Goods and Services"
	TypePaybill    TransactionType = "Paybill"
	TypeSendMoney  TransactionType = "Send Money"
	TypeReversal   TransactionType = "Reversal"
	TypeUnknown    TransactionType = "Unknown"
)

// Direction indicates whether money entered or left the account.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// TransactionFeatures is the structured form of a single provider message.
// Empty Merchant/Date/Time mark sub-patterns that did not match; an
// unparseable message is simply a features value that fails Valid.
type TransactionFeatures struct {
	Merchant        string
	Date            string // dd/mm/yy
	Time            string // hh:mm AM|PM
	Amount          decimal.Decimal
	TransactionCost decimal.Decimal
	IsPayBill       bool
	IsBuyGoods      bool
	IsSendMoney     bool
	IsReversal      bool
	IsWithdraw      bool
	Incoming        bool
}

// Valid reports whether the features carry everything a stored transaction
// needs. Invalid features must never reach persistence or training.
func (f TransactionFeatures) Valid() bool {
	return f.Merchant != "" && !f.Amount.IsZero() && f.Date != "" && f.Time != ""
}

// Type derives the transaction type from the mutually exclusive flags.
// Withdrawal is checked first here, independent of the extraction priority.
func (f TransactionFeatures) Type() TransactionType {
	switch {
	case f.IsWithdraw:
		return TypeWithdrawal
	case f.IsBuyGoods:
		return TypeBuyGoods
	case f.IsPayBill:
		return TypePaybill
	case f.IsSendMoney:
		return TypeSendMoney
	case f.IsReversal:
		return TypeReversal
	}
	return TypeUnknown
}

// Direction derives the money direction from the incoming flag.
func (f TransactionFeatures) Direction() Direction {
	if f.Incoming {
		return DirectionIn
	}
	return DirectionOut
}

// TransactionRecord is one stored transaction row. Records are append-only:
// they are created once by the importer and never updated.
type TransactionRecord struct {
	ID              int64           `csv:"-"`
	TransactionCode string          `csv:"transaction_code"`
	Merchant        string          `csv:"merchant"`
	Type            TransactionType `csv:"transaction_type"`
	Date            string          `csv:"transaction_date"`
	Time            string          `csv:"transaction_time"`
	Amount          decimal.Decimal `csv:"amount"`
	TransactionCost decimal.Decimal `csv:"transaction_cost"`
	Direction       Direction       `csv:"direction"`
	Message         string          `csv:"-"`
	Category        string          `csv:"category"`
}

// Timestamp converts the record's wall-clock date and time columns to a
// time.Time in the local zone.
func (r TransactionRecord) Timestamp() (time.Time, error) {
	return TimeFromParts(r.Date, r.Time)
}

// TimeFromParts parses a dd/mm/yy date and an hh:mm AM|PM time into a
// time.Time. Two-digit years are interpreted as 2000+yy.
func TimeFromParts(dateStr, timeStr string) (time.Time, error) {
	dateParts := strings.Split(dateStr, "/")
	if len(dateParts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want dd/mm/yy", dateStr)
	}
	day, err := strconv.Atoi(dateParts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q: %w", dateStr, err)
	}
	month, err := strconv.Atoi(dateParts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in %q: %w", dateStr, err)
	}
	year, err := strconv.Atoi(dateParts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", dateStr, err)
	}
	if year < 100 {
		year += 2000
	}

	hour, minute, err := ParseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), nil
}

// ParseClock converts an hh:mm AM|PM clock string to 24-hour components.
func ParseClock(timeStr string) (hour, minute int, err error) {
	fields := strings.Fields(timeStr)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want hh:mm AM|PM", timeStr)
	}
	clock, modifier := fields[0], fields[1]

	clockParts := strings.Split(clock, ":")
	if len(clockParts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q: want hh:mm", clock)
	}
	hour, err = strconv.Atoi(clockParts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", timeStr, err)
	}
	minute, err = strconv.Atoi(clockParts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", timeStr, err)
	}

	switch modifier {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	default:
		return 0, 0, fmt.Errorf("invalid meridiem %q in %q", modifier, timeStr)
	}

	return hour, minute, nil
}
