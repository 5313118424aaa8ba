package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralStatus enumerates lifecycle states for referral requests.
type ReferralStatus string

const (
	ReferralStatusPending  ReferralStatus = "pending"
	ReferralStatusAccepted ReferralStatus = "accepted"
	ReferralStatusRejected ReferralStatus = "rejected"
	ReferralStatusTimeout  ReferralStatus = "timeout"
)

// Terminal reports whether no further transition is allowed.
func (s ReferralStatus) Terminal() bool {
	return s == ReferralStatusAccepted || s == ReferralStatusRejected || s == ReferralStatusTimeout
}

func (s ReferralStatus) Valid() bool {
	return s == ReferralStatusPending || s.Terminal()
}

// ReferralAction is a firm decision on a pending request.
type ReferralAction string

const (
	ReferralActionAccept ReferralAction = "accept"
	ReferralActionReject ReferralAction = "reject"
)

// Outcome maps an action to its target status and commission flag.
func (a ReferralAction) Outcome() (ReferralStatus, bool, bool) {
	switch a {
	case ReferralActionAccept:
		return ReferralStatusAccepted, true, true
	case ReferralActionReject:
		return ReferralStatusRejected, false, true
	}
	return "", false, false
}

// DefaultCommissionAmount applies when configuration does not override it.
var DefaultCommissionAmount = decimal.RequireFromString("75.00")

// ReferralRequest is a customer inquiry directed at a company.
type ReferralRequest struct {
	ID                 int64
	CustomerName       string
	CustomerEmail      string
	Description        string
	TargetCompanyID    int64
	RequestedServiceID *int64
	Status             ReferralStatus
	IsCommissionDue    bool
	CommissionAmount   decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ReferralView is a request with its relations resolved for response composition.
type ReferralView struct {
	Request *ReferralRequest
	Company *Company
	Service *Service
}
