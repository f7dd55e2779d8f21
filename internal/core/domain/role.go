package domain

// Role is the single authorization role attributed to an authenticated user.
type Role string

const (
	RoleInvestor        Role = "investor"
	RoleBroker          Role = "broker"
	RoleLawyer          Role = "lawyer"
	RoleMortgageAdvisor Role = "mortgage_advisor"
)

// DefaultRole is substituted by callers when a user carries no valid role.
const DefaultRole = RoleInvestor

// Roles lists every valid role in a stable order.
func Roles() []Role {
	return []Role{RoleInvestor, RoleBroker, RoleLawyer, RoleMortgageAdvisor}
}

// ParseRole reports whether s is one of the known role literals.
// It does not substitute a default; that is left to the caller.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleInvestor, RoleBroker, RoleLawyer, RoleMortgageAdvisor:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }
