package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company is the customer-facing storefront. FirmID links it to the owning firm and is set
// when the firm registers.
type Company struct {
	ID           int64
	FirmID       *string
	OwnerUserID  *int64
	Name         string
	Slug         string
	Description  string
	LocationText string
	Settings     CompanySettings
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CompanySettings holds commercial metadata managed by firm managers.
type CompanySettings struct {
	Phone                    *string
	Email                    *string
	TaxNumber                *string
	MinOrderAmount           decimal.NullDecimal
	DefaultDeliveryFee       decimal.NullDecimal
	EstimatedDeliveryMinutes *int
}
