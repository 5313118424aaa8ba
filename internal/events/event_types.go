package events

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/referral-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReferralCreated       EventType = "referral_created"
	EventReferralStatusChanged EventType = "referral_status_changed"
	EventReferralsTimedOut     EventType = "referrals_timed_out"
	EventFirmRegistered        EventType = "firm_registered"
)

// Actor encapsulates actor metadata for an event. A zero UserID is the public caller or the system.
type Actor struct {
	UserID int64       `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// ActorFrom copies the identifying fields of a domain actor.
func ActorFrom(a domain.Actor) Actor {
	return Actor{UserID: a.UserID, Role: a.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ReferralID int64       `json:"referral_id,omitempty"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// ReferralCreatedPayload payload.
type ReferralCreatedPayload struct {
	CompanyID     int64           `json:"company_id"`
	ServiceID     *int64          `json:"service_id,omitempty"`
	CustomerEmail string          `json:"customer_email"`
	Commission    decimal.Decimal `json:"commission_amount"`
}

// ReferralStatusChangedPayload payload.
type ReferralStatusChangedPayload struct {
	CompanyID     int64                 `json:"company_id"`
	OldStatus     domain.ReferralStatus `json:"old_status"`
	NewStatus     domain.ReferralStatus `json:"new_status"`
	CommissionDue bool                  `json:"is_commission_due"`
}

// ReferralsTimedOutPayload payload.
type ReferralsTimedOutPayload struct {
	Count  int64     `json:"count"`
	Cutoff time.Time `json:"cutoff"`
}

// FirmRegisteredPayload payload.
type FirmRegisteredPayload struct {
	FirmID    string `json:"firm_id"`
	CompanyID int64  `json:"company_id"`
	ManagerID int64  `json:"manager_user_id"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewEventID returns a lexicographically sortable identifier for ts.
func NewEventID(ts time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(ts), entropy).String()
}
