package model

import "github.com/shopspring/decimal"

// ComputeRating = mean của các rate non-null, làm tròn 1 chữ số (half away from zero).
// nil khi không có rate nào.
func ComputeRating(rates []*int) *decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, r := range rates {
		if r == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(*r)))
		count++
	}
	if count == 0 {
		return nil
	}

	avg := sum.DivRound(decimal.NewFromInt(int64(count)), 16).Round(1)
	return &avg
}
