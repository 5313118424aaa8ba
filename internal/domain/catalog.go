package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups services for browsing.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Service is an offering listed by a company.
type Service struct {
	ID          int64
	CompanyID   int64
	CategoryID  *int64
	Title       string
	Description string
	Keywords    string
	PriceMin    decimal.NullDecimal
	PriceMax    decimal.NullDecimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceRangeValid reports whether min <= max when both bounds are present.
func (s *Service) PriceRangeValid() bool {
	if !s.PriceMin.Valid || !s.PriceMax.Valid {
		return true
	}
	return s.PriceMin.Decimal.LessThanOrEqual(s.PriceMax.Decimal)
}
