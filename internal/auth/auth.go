package auth

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoRole       = errors.New("token carries no known role")
)

// Principal is who a verified token speaks for.
type Principal struct {
	Subject string
	Role    access.Role
}

// RoleClaims accepts the shapes identity providers put roles in: a list of
// names, or a list of {"authority": name} objects.
type RoleClaims []string

func (rc *RoleClaims) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*rc = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*rc = RoleClaims{single}
		return nil
	}

	out := make(RoleClaims, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, name)
			continue
		}
		var granted struct {
			Authority string `json:"authority"`
		}
		if err := json.Unmarshal(item, &granted); err != nil {
			return err
		}
		out = append(out, granted.Authority)
	}
	*rc = out
	return nil
}

// Claims represents JWT token claims
type Claims struct {
	Roles RoleClaims `json:"roles,omitempty"`
	Role  string     `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// PrimaryRole returns the first role claim that names a known role.
func (c *Claims) PrimaryRole() (access.Role, bool) {
	candidates := append([]string(nil), c.Roles...)
	if c.Role != "" {
		candidates = append(candidates, c.Role)
	}
	for _, name := range candidates {
		if role, err := access.ParseRole(name); err == nil {
			return role, true
		}
	}
	return "", false
}

// SessionProvider turns a bearer token into a session lifecycle event.
type SessionProvider interface {
	Authenticate(token string) (Principal, access.SessionEvent, error)
}
