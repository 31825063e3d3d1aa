package shared

// Role names seeded in the roles table.
const (
	RoleAdmin  = "Admin"
	RoleDriver = "Driver"
)

// Principal is the authenticated actor behind a request. It carries
// everything needed to scope reads and gate writes: identity, role
// and the owning company.
type Principal struct {
	UserID    int64
	Role      string
	CompanyID int64
}

// IsAdmin reports whether the principal holds company-wide rights.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Scope describes the row visibility of a principal: every read is
// filtered by company, and non-admins are further narrowed to rows
// they own. Repositories consume a Scope instead of re-deriving the
// admin check per call site.
type Scope struct {
	CompanyID int64
	// DriverID is non-nil when visibility is narrowed to one driver.
	DriverID *int64
}

// ScopeFor derives the row visibility for a principal.
func ScopeFor(p Principal) Scope {
	s := Scope{CompanyID: p.CompanyID}
	if !p.IsAdmin() {
		id := p.UserID
		s.DriverID = &id
	}
	return s
}
