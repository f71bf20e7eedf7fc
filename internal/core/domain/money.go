package domain

import "github.com/shopspring/decimal"

type Money = decimal.Decimal

// DefaultStartingBalance is credited to every new user unless configured otherwise.
var DefaultStartingBalance = decimal.NewFromFloat(50.0)

const DefaultStock = 10

func formatMoney(m Money) string {
	return m.StringFixed(1)
}
