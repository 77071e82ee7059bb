package routes

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/users"
)

// Surface path constants
// All navigable surfaces are defined here to ensure consistency and prevent typos
const (
	// Public surfaces
	RouteLanding  = "/"
	RouteLogin    = "/auth/login"
	RouteRegister = "/auth/register"

	// Role surfaces
	RouteUpload = "/dashboard" // Uploader home
	RouteBrowse = "/gallery"   // Buyer home, also open to uploaders
)

// DefaultFor returns the home surface for a role: uploaders land on the
// upload surface, every other role on the browse surface.
func DefaultFor(role users.Role) string {
	if role == users.RoleUploader {
		return RouteUpload
	}
	return RouteBrowse
}

// protectedSurfaces maps each protected surface to the roles it admits. An
// empty set admits any authenticated role.
var protectedSurfaces = map[string][]users.Role{
	RouteUpload: {users.RoleUploader},
	RouteBrowse: {},
}

// Protected reports whether path requires an authenticated session and, if
// so, which roles it admits.
func Protected(path string) ([]users.Role, bool) {
	required, ok := protectedSurfaces[path]
	if !ok {
		return nil, false
	}
	out := make([]users.Role, len(required))
	copy(out, required)
	return out, true
}

// Navigator moves the presentation layer to another surface.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Discard is a Navigator that ignores every request.
var Discard Navigator = NavigatorFunc(func(string) {})

// History records navigation requests in order. It is safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	paths []string
}

var _ Navigator = (*History)(nil)

func NewHistory() *History {
	return &History{}
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

// Current returns the most recent path, or "" when nothing was navigated.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.paths) == 0 {
		return ""
	}
	return h.paths[len(h.paths)-1]
}

// Paths returns a copy of every recorded path.
func (h *History) Paths() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.paths))
	copy(out, h.paths)
	return out
}
