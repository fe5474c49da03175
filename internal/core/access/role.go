package access

import (
	"fmt"
	"strings"
)

// Role is the single role carried by an authenticated session.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleWarehouse      Role = "WAREHOUSE"
	RoleDebt           Role = "DEBT"
	RoleDebtAccountant Role = "DEBT_ACCOUNTANT"
	RoleViewer         Role = "VIEWER"
)

var allRoles = []Role{RoleAdmin, RoleWarehouse, RoleDebt, RoleDebtAccountant, RoleViewer}

// Roles returns every known role in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWarehouse, RoleDebt, RoleDebtAccountant, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the canonical name in any case, with or without the
// ROLE_ prefix used by the token issuer.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ROLE_")
	r := Role(name)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}
