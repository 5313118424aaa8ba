package dto

import (
	"time"

	"github.com/spec-kit/referral-service/internal/domain"
)

// CreateReferralRequest payload for POST /referral/create.
type CreateReferralRequest struct {
	TargetCompanyID    int64  `json:"target_company_id"`
	RequestedServiceID int64  `json:"requested_service_id"`
	CustomerName       string `json:"customer_name"`
	CustomerEmail      string `json:"customer_email"`
	Description        string `json:"description"`
}

// ReferralActionRequest payload for POST /company/request/:id/action.
type ReferralActionRequest struct {
	Action string `json:"action"`
}

// ReferralResponse renders a request with its company and service nested.
type ReferralResponse struct {
	ID                 int64                 `json:"id"`
	CustomerName       string                `json:"customer_name"`
	CustomerEmail      string                `json:"customer_email"`
	Description        string                `json:"description"`
	TargetCompanyID    int64                 `json:"target_company_id"`
	RequestedServiceID *int64                `json:"requested_service_id"`
	Status             domain.ReferralStatus `json:"status"`
	IsCommissionDue    bool                  `json:"is_commission_due"`
	CommissionAmount   string                `json:"commission_amount"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	TargetCompany      *CompanySummary       `json:"target_company"`
	RequestedService   *ServiceSummary       `json:"requested_service"`
}

// ReferralActionResponse is returned by a successful accept or reject.
type ReferralActionResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    ReferralResponse `json:"data"`
}

// SweepResponse reports a manual sweep.
type SweepResponse struct {
	TimedOut int64 `json:"timed_out"`
}
