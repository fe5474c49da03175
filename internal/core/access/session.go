package access

import "encoding/json"

type SessionState int

const (
	StateLoading SessionState = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is an immutable snapshot of the authentication state. The zero
// value is Loading, the state every session boots into. A role is only ever
// present together with StateAuthenticated, so a reader can never observe a
// half-transitioned session.
type Session struct {
	state SessionState
	role  Role
}

func Loading() Session {
	return Session{state: StateLoading}
}

func Unauthenticated() Session {
	return Session{state: StateUnauthenticated}
}

// Authenticated returns an authenticated session, or Unauthenticated when the
// role is outside the closed set.
func Authenticated(role Role) Session {
	if !role.Valid() {
		return Unauthenticated()
	}
	return Session{state: StateAuthenticated, role: role}
}

func (s Session) State() SessionState {
	return s.state
}

func (s Session) Role() (Role, bool) {
	if s.state != StateAuthenticated {
		return "", false
	}
	return s.role, true
}

func (s Session) IsAuthenticated() bool {
	return s.state == StateAuthenticated
}

func (s Session) IsLoading() bool {
	return s.state == StateLoading
}

func (s Session) String() string {
	if s.state == StateAuthenticated {
		return "authenticated(" + string(s.role) + ")"
	}
	return s.state.String()
}

func (s Session) MarshalJSON() ([]byte, error) {
	var role *Role
	if r, ok := s.Role(); ok {
		role = &r
	}
	return json.Marshal(struct {
		Role            *Role `json:"role"`
		IsAuthenticated bool  `json:"is_authenticated"`
		IsLoading       bool  `json:"is_loading"`
	}{
		Role:            role,
		IsAuthenticated: s.IsAuthenticated(),
		IsLoading:       s.IsLoading(),
	})
}

// SessionEvent is an outcome reported by the authentication collaborator.
type SessionEvent interface {
	sessionEvent()
}

type CredentialCheckSucceeded struct {
	Role Role
}

type CredentialCheckFailed struct{}

type LoggedOut struct{}

type TokenExpired struct{}

func (CredentialCheckSucceeded) sessionEvent() {}
func (CredentialCheckFailed) sessionEvent()    {}
func (LoggedOut) sessionEvent()                {}
func (TokenExpired) sessionEvent()             {}

// Reduce is the session lifecycle: success authenticates, every other
// outcome unauthenticates. Unknown events leave the session untouched.
func Reduce(s Session, event SessionEvent) Session {
	switch e := event.(type) {
	case CredentialCheckSucceeded:
		return Authenticated(e.Role)
	case CredentialCheckFailed, LoggedOut, TokenExpired:
		return Unauthenticated()
	}
	return s
}
