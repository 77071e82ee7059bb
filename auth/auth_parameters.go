package auth

import (
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-auth-client/users"
)

// LoginCredentials are exchanged for a token pair at the login endpoint.
type LoginCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks both fields are present before anything leaves the client.
func (c LoginCredentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return NewValidationError("username", "username is required")
	}
	if c.Password == "" {
		return NewValidationError("password", "password is required")
	}
	return nil
}

// RegisterData is posted to the register endpoint. The field order matches
// the order server validation errors are reported in.
type RegisterData struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     users.Role `json:"role"`
}

// Validate checks the required fields and normalises Role to its canonical
// spelling.
func (d *RegisterData) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return NewValidationError("username", "username is required")
	}
	if strings.TrimSpace(d.Email) == "" {
		return NewValidationError("email", "email is required")
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return NewValidationError("email", "enter a valid email address")
	}
	if d.Password == "" {
		return NewValidationError("password", "password is required")
	}
	role, ok := users.ParseRole(string(d.Role))
	if !ok {
		return NewValidationError("role", "role must be Uploader or Buyer")
	}
	d.Role = role
	return nil
}

// tokenPair is the login endpoint's success body.
type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
