package domain

// Actor is the resolved caller identity passed explicitly into guard and lifecycle calls.
// The zero value is the anonymous caller.
type Actor struct {
	UserID int64
	Role   Role
	FirmID *string
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor {
	return Actor{}
}

// ActorFromUser builds the actor for an authenticated user.
func ActorFromUser(u *User) Actor {
	if u == nil {
		return Anonymous()
	}
	a := Actor{UserID: u.ID, Role: u.Role}
	if u.FirmID != nil {
		firmID := *u.FirmID
		a.FirmID = &firmID
	}
	return a
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

func (a Actor) IsSuperuser() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

// IsManager is true for firm managers and superusers.
func (a Actor) IsManager() bool {
	return a.Authenticated() && (a.Role == RoleFirmManager || a.Role == RoleAdmin)
}

func (a Actor) HasFirm() bool {
	return a.FirmID != nil && *a.FirmID != ""
}
