package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterFirmRequest payload for POST /admin/firms.
type RegisterFirmRequest struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Location        *string `json:"location"`
	CompanyName     string  `json:"company_name"`
	Description     string  `json:"description"`
	ManagerUsername string  `json:"manager_username"`
	ManagerEmail    string  `json:"manager_email"`
	ManagerFullName string  `json:"manager_full_name"`
	ManagerPassword string  `json:"manager_password"`
}

// RegisterFirmResponse carries the ids created by a registration.
type RegisterFirmResponse struct {
	FirmID    string `json:"firm_id"`
	CompanyID int64  `json:"company_id"`
	UserID    int64  `json:"user_id"`
}

// FirmResponse renders a firm.
type FirmResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Location  *string   `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyResponse renders a company with its settings.
type CompanyResponse struct {
	ID                       int64     `json:"id"`
	FirmID                   *string   `json:"firm_id"`
	Name                     string    `json:"name"`
	Slug                     string    `json:"slug"`
	Description              string    `json:"description"`
	Location                 string    `json:"location"`
	Phone                    *string   `json:"phone"`
	Email                    *string   `json:"email"`
	TaxNumber                *string   `json:"tax_number"`
	MinOrderAmount           *string   `json:"min_order_amount"`
	DefaultDeliveryFee       *string   `json:"default_delivery_fee"`
	EstimatedDeliveryMinutes *int      `json:"estimated_delivery_minutes"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// UpdateCompanyRequest is a partial update; omitted fields stay unchanged.
type UpdateCompanyRequest struct {
	Name                     *string          `json:"name"`
	Description              *string          `json:"description"`
	Location                 *string          `json:"location"`
	Phone                    *string          `json:"phone"`
	Email                    *string          `json:"email"`
	TaxNumber                *string          `json:"tax_number"`
	MinOrderAmount           *decimal.Decimal `json:"min_order_amount"`
	DefaultDeliveryFee       *decimal.Decimal `json:"default_delivery_fee"`
	EstimatedDeliveryMinutes *int             `json:"estimated_delivery_minutes"`
}

// CreateEmployeeRequest payload for POST /firm/employees.
type CreateEmployeeRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// UpdateEmployeeRequest payload for PUT /firm/employees/:id.
type UpdateEmployeeRequest struct {
	IsFirmManager *bool `json:"is_firm_manager"`
}
