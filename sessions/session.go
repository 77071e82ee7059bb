package sessions

import (
	"strings"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// Persisted credential keys. The names match the cookies used by the web
// client so stored sessions stay readable across both.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyRole         = "user_role"
	KeySubject      = "username"
)

// Keys lists every credential key in write order.
func Keys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyRole, KeySubject}
}

// CheckKey rejects keys outside the credential set.
func CheckKey(key string) error {
	for _, k := range Keys() {
		if k == key {
			return nil
		}
	}
	return autherrors.Wrapf(autherrors.ErrUnknownKey, "key %q", key)
}

// Fields is the credential field set. It is written and cleared as one unit.
type Fields struct {
	AccessToken  string `json:"access_token,omitempty"`  // Short-lived bearer credential
	RefreshToken string `json:"refresh_token,omitempty"` // Stored only, never exchanged
	Role         string `json:"user_role,omitempty"`     // Role claim captured at login
	Subject      string `json:"username,omitempty"`      // Subject captured at login
}

// Validate rejects a set that could not back an authenticated session.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.AccessToken) == "" {
		return autherrors.ErrMissingAccess
	}
	return nil
}

// Empty reports whether no credential field is present.
func (f Fields) Empty() bool {
	return f.AccessToken == "" && f.RefreshToken == "" && f.Role == "" && f.Subject == ""
}

// Complete reports whether the set carries everything needed to rebuild an
// identity without network access.
func (f Fields) Complete() bool {
	return f.AccessToken != "" && f.Role != "" && f.Subject != ""
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (string, bool) {
	var v string
	switch key {
	case KeyAccessToken:
		v = f.AccessToken
	case KeyRefreshToken:
		v = f.RefreshToken
	case KeyRole:
		v = f.Role
	case KeySubject:
		v = f.Subject
	}
	return v, v != ""
}

// Map returns the non-empty fields keyed by their persisted names.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, 4)
	for _, k := range Keys() {
		if v, ok := f.Get(k); ok {
			m[k] = v
		}
	}
	return m
}

// FieldsFromMap is the inverse of Map. Unknown keys are ignored.
func FieldsFromMap(m map[string]string) Fields {
	return Fields{
		AccessToken:  m[KeyAccessToken],
		RefreshToken: m[KeyRefreshToken],
		Role:         m[KeyRole],
		Subject:      m[KeySubject],
	}
}
