// Package extractor turns raw provider SMS text into structured transaction
// features. Extraction is a total function: sub-patterns that do not match
// yield zero values, never errors.
package extractor

import (
	"regexp"
	"strings"

	"salio/sms-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// The provider emits several message variants (payment confirmations,
// send-money confirmations, reversals, agent withdrawals). Each field is
// extracted by trying a fixed list of patterns in order; the first match wins.
var (
	merchantPatterns = []*regexp.Regexp{
		regexp.MustCompile(`.*?\s(?:from|sent to|paid to|bought Ksh[\d,]+\.\d{1,2} of) (.*) on \d{1,2}/\d{1,2}/\d{1,2} at`),
		regexp.MustCompile(` confirmed\. (.*) of transaction`),
		regexp.MustCompile(`[AP]MWithdraw Ksh[\d,]+\.\d{1,2} from (.*) New`),
	}

	datePattern = regexp.MustCompile(`on (\d{1,2}/\d{1,2}/\d{1,2})\s*at \d{1,2}:\d{1,2} [AP]M`)
	timePattern = regexp.MustCompile(`on \d{1,2}/\d{1,2}/\d{1,2}\s*at (\d{1,2}:\d{1,2} [AP]M)`)

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`.*[cC]onfirmed\.\s*(?:You have received\s|You bought\s)?Ksh([\d,]+\.\d{1,2}) (?:paid to|sent to)?`),
		regexp.MustCompile(`[AP]MWithdraw\s+Ksh([\d,]+\.\d{1,2})`),
	}

	costPattern = regexp.MustCompile(`Transaction cost,\s*Ksh([\d,]+\.\d{1,2})`)

	// Any of these keywords marks money leaving the account. A message with
	// none of them is treated as incoming: absent evidence counts as income.
	outgoingPattern = regexp.MustCompile(`sent to|paid to|debited from|[AP]MWithdraw|You bought`)

	balancePattern = regexp.MustCompile(`.*balance is Ksh([\d,]+\.\d{1,2})`)
)

// transactionKind pairs a pattern with the flag it sets. The table is
// evaluated in order with first-match-wins semantics, which is what keeps the
// five flags mutually exclusive: message texts can coincidentally satisfy
// more than one pattern, so the priority order is load-bearing.
type transactionKind struct {
	pattern *regexp.Regexp
	assign  func(*models.TransactionFeatures)
}

var transactionKinds = []transactionKind{
	{
		pattern: regexp.MustCompile(`.*Ksh[\d,]+\.\d{1,2} sent to .* for .* on \d{1,2}/\d{1,2}/\d{2,4}`),
		assign:  func(f *models.TransactionFeatures) { f.IsPayBill = true },
	},
	{
		pattern: regexp.MustCompile(`.*Ksh[\d,]+\.\d{1,2} paid to .* on \d{1,2}/\d{1,2}/\d{2,4}`),
		assign:  func(f *models.TransactionFeatures) { f.IsBuyGoods = true },
	},
	{
		pattern: regexp.MustCompile(`(?:from|sent to) .* [\d{8, 10}]+\s+`),
		assign:  func(f *models.TransactionFeatures) { f.IsSendMoney = true },
	},
	{
		pattern: regexp.MustCompile(` confirmed. Reversal of`),
		assign:  func(f *models.TransactionFeatures) { f.IsReversal = true },
	},
	{
		pattern: regexp.MustCompile(`[AP]MWithdraw`),
		assign:  func(f *models.TransactionFeatures) { f.IsWithdraw = true },
	},
}

// Extract parses a raw provider message into transaction features.
// Fields whose patterns do not match are left at their zero value; callers
// decide validity through TransactionFeatures.Valid.
func Extract(raw string) models.TransactionFeatures {
	features := models.TransactionFeatures{
		Merchant:        firstSubmatch(merchantPatterns, raw),
		Amount:          parseAmount(firstSubmatch(amountPatterns, raw)),
		TransactionCost: parseAmount(submatch(costPattern, raw)),
		Incoming:        !outgoingPattern.MatchString(raw),
	}

	if m := datePattern.FindStringSubmatch(raw); m != nil {
		features.Date = m[1]
	}
	if m := timePattern.FindStringSubmatch(raw); m != nil {
		features.Time = m[1]
	}

	for _, kind := range transactionKinds {
		if kind.pattern.MatchString(raw) {
			kind.assign(&features)
			break
		}
	}

	return features
}

// TransactionCode returns the provider-assigned reference: the first
// whitespace-delimited token of the message.
func TransactionCode(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Balance extracts the trailing account balance figure from a message.
// The second return value is false when the message carries no balance.
func Balance(raw string) (decimal.Decimal, bool) {
	m := balancePattern.FindStringSubmatch(raw)
	if m == nil {
		return decimal.Zero, false
	}
	return parseAmount(m[1]), true
}

// firstSubmatch returns the capture of the first pattern that matches.
func firstSubmatch(patterns []*regexp.Regexp, raw string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}

func submatch(pattern *regexp.Regexp, raw string) string {
	if m := pattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// parseAmount converts a comma-grouped amount string to a decimal.
// Unparseable input yields zero, keeping extraction total.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return amount
}
