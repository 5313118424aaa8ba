package domain

import "time"

// Firm is the tenant organization that owns employee accounts.
type Firm struct {
	ID        string
	Name      string
	Slug      string
	Location  *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
