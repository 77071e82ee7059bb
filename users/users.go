package users

import "strings"

// Role is the access tier carried in the access token's role claim.
type Role string

const (
	RoleUploader Role = "Uploader" // Creators publishing photos
	RoleBuyer    Role = "Buyer"    // Customers browsing and downloading photos
)

// LeastPrivileged is the role assumed whenever the claimed role cannot be
// trusted or understood.
const LeastPrivileged = RoleBuyer

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleUploader, RoleBuyer}
}

// ParseRole maps a claim or stored value onto a Role. Matching ignores case
// and surrounding whitespace. Unknown values yield LeastPrivileged and false.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles() {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return LeastPrivileged, false
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	parsed, ok := ParseRole(string(r))
	return ok && parsed == r
}

// In reports whether r is a member of roles.
func (r Role) In(roles []Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Identity is the authenticated subject and its role.
type Identity struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}

// IsUploader returns true if the identity may use the upload surface.
func (i Identity) IsUploader() bool {
	return i.Role == RoleUploader
}
