package auth

import "github.com/jrsteele09/go-auth-client/users"

// Status is the resolution state of the published session.
type Status int

const (
	StatusUnresolved    Status = iota // Store not consulted yet
	StatusAnonymous                   // No usable credentials
	StatusAuthenticated               // Credentials stored and identity known
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is the published authentication state. Identity is non-nil exactly
// when Status is StatusAuthenticated.
type Session struct {
	Status   Status          `json:"status"`
	Identity *users.Identity `json:"identity,omitempty"`
}

func Unresolved() Session {
	return Session{Status: StatusUnresolved}
}

func Anonymous() Session {
	return Session{Status: StatusAnonymous}
}

func Authenticated(identity users.Identity) Session {
	return Session{Status: StatusAuthenticated, Identity: &identity}
}

func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}

// Role returns the identity's role, or "" when not authenticated.
func (s Session) Role() users.Role {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Role
}

// Subject returns the identity's subject, or "" when not authenticated.
func (s Session) Subject() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.Subject
}

// Equal compares status and identity by value.
func (s Session) Equal(other Session) bool {
	if s.Status != other.Status {
		return false
	}
	if s.Identity == nil || other.Identity == nil {
		return s.Identity == other.Identity
	}
	return *s.Identity == *other.Identity
}

// clone returns a copy that shares no memory with s.
func (s Session) clone() Session {
	if s.Identity == nil {
		return s
	}
	identity := *s.Identity
	s.Identity = &identity
	return s
}
