package domain

import "time"

// Role is the single authorization role carried by a user.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleFirmEmployee Role = "firm_employee"
	RoleFirmManager  Role = "firm_manager"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleFirmEmployee, RoleFirmManager, RoleAdmin:
		return true
	}
	return false
}

// User is an account; firm staff carry a firm reference, admins and customers usually do not.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	FirmID       *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFirmManager is derived from the role; there is no separate flag to drift.
func (u *User) IsFirmManager() bool {
	return u.Role == RoleFirmManager
}

// IsSuperuser reports admin accounts.
func (u *User) IsSuperuser() bool {
	return u.Role == RoleAdmin
}
