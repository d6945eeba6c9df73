package auth

// Principal is the authenticated identity every core operation trusts.
// Ownership checks stay with the services; role checks sit in middleware.
type Principal struct {
	ID   uint
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}
