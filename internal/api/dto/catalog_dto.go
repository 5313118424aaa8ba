package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryResponse renders a category.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CompanySummary is the company shape nested in services and referrals.
type CompanySummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Location string `json:"location"`
}

// ServiceSummary is the service shape nested in referrals.
type ServiceSummary struct {
	ID          int64   `json:"id"`
	CompanyID   int64   `json:"company_id"`
	CategoryID  *int64  `json:"category_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Keywords    string  `json:"keywords"`
	PriceMin    *string `json:"price_min"`
	PriceMax    *string `json:"price_max"`
}

// ServiceResponse renders a service with its company and category.
type ServiceResponse struct {
	ServiceSummary
	Company   *CompanySummary   `json:"company"`
	Category  *CategoryResponse `json:"category"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ServiceRequest payload for creating or replacing a service. Prices accept numbers or strings.
type ServiceRequest struct {
	CompanyID   int64               `json:"company_id"`
	CategoryID  *int64              `json:"category_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Keywords    string              `json:"keywords"`
	PriceMin    decimal.NullDecimal `json:"price_min"`
	PriceMax    decimal.NullDecimal `json:"price_max"`
}
