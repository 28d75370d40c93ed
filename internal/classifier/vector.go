package classifier

import (
	"fmt"
	"math"

	"salio/sms-ledger/internal/models"
)

// numFeatures is the fixed length of a feature vector. The order of the
// entries is part of the persisted model contract: every stored weight row
// has exactly this many entries in this order.
const numFeatures = 24

// Feature vector layout:
//
//	[0]     bias, always 1
//	[1..5]  pay-bill, buy-goods, send-money, reversal, withdraw flags
//	[6]     incoming flag
//	[7]     ln(amount+1)/6
//	[8]     ln(cost+1)/6
//	[9..16] time-of-day one-hot: early-morning, late-morning, noon, evening,
//	        late-evening, early-night, late-night, dawn
//	[17..23] day-of-week one-hot: Sunday..Saturday
const (
	idxBias = iota
	idxPayBill
	idxBuyGoods
	idxSendMoney
	idxReversal
	idxWithdraw
	idxIncoming
	idxAmount
	idxCost
	idxEarlyMorning
	idxLateMorning
	idxNoon
	idxEvening
	idxLateEvening
	idxEarlyNight
	idxLateNight
	idxDawn
	idxSunday
)

// normalize converts extracted features into the fixed-length numeric vector
// the model consumes. The caller must have validated that date and time are
// present; normalize is not the validation boundary.
func normalize(f models.TransactionFeatures) ([]float64, error) {
	ts, err := models.TimeFromParts(f.Date, f.Time)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	v := make([]float64, numFeatures)
	v[idxBias] = 1
	v[idxPayBill] = boolFeature(f.IsPayBill)
	v[idxBuyGoods] = boolFeature(f.IsBuyGoods)
	v[idxSendMoney] = boolFeature(f.IsSendMoney)
	v[idxReversal] = boolFeature(f.IsReversal)
	v[idxWithdraw] = boolFeature(f.IsWithdraw)
	v[idxIncoming] = boolFeature(f.Incoming)

	// Log compression keeps gradient magnitudes comparable across the wide
	// dynamic range of transaction sizes.
	v[idxAmount] = math.Log(f.Amount.InexactFloat64()+1) / 6
	v[idxCost] = math.Log(f.TransactionCost.InexactFloat64()+1) / 6

	v[timeBucket(ts.Hour())] = 1
	v[idxSunday+int(ts.Weekday())] = 1

	return v, nil
}

// timeBucket maps an hour of day to its three-hour one-hot index.
func timeBucket(hour int) int {
	switch {
	case hour < 3:
		return idxLateNight
	case hour < 6:
		return idxDawn
	case hour < 9:
		return idxEarlyMorning
	case hour < 12:
		return idxLateMorning
	case hour < 15:
		return idxNoon
	case hour < 18:
		return idxEvening
	case hour < 21:
		return idxLateEvening
	default:
		return idxEarlyNight
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// softmax converts raw per-category scores into a probability distribution.
// The max logit is subtracted before exponentiating for numerical stability;
// the result is shift-invariant.
func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		if l > maxLogit {
			maxLogit = l
		}
	}

	exps := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		exps[i] = math.Exp(l - maxLogit)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
