// Package money implements home-currency conversion arithmetic.
// All amounts are integer cents; decimal math avoids the drift of
// repeated float multiplication on monetary values.
package money

import "github.com/shopspring/decimal"

// Convert returns amount converted at the given exchange rate, rounded
// half-up to the nearest cent. A rate of 1 returns the amount unchanged.
func Convert(amountCents int64, exchangeRate float64) int64 {
	if exchangeRate == 1 {
		return amountCents
	}
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromFloat(exchangeRate)).
		Round(0).
		IntPart()
}

// BaseAmount computes the home-currency value of a transaction amount.
// When the transaction currency already is the home currency the amount
// passes through untouched regardless of the stored rate.
func BaseAmount(amountCents int64, currency, homeCurrency string, exchangeRate float64) int64 {
	if currency == homeCurrency {
		return amountCents
	}
	return Convert(amountCents, exchangeRate)
}
