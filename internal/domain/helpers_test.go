package domain

import "github.com/shopspring/decimal"

func nullDec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}
