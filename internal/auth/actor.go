package auth

// Actor is the authenticated identity attached to a request. Role flags are
// loaded from the users table on every request so revocations take effect
// immediately; audit fields are always stamped from the Actor, never from
// client input.
type Actor struct {
	ID          string
	Username    string
	Email       string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
}

// Admin reports whether the actor holds the admin-equivalent role used to
// gate verify/reconcile and user administration.
func (a *Actor) Admin() bool {
	return a != nil && a.IsActive && (a.IsStaff || a.IsSuperuser)
}

// Authenticated reports whether there is a usable identity at all.
func (a *Actor) Authenticated() bool {
	return a != nil && a.ID != "" && a.IsActive
}
