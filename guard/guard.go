package guard

import (
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/users"
)

// Action is what the presentation layer should do for a protected surface.
type Action int

const (
	ActionPlaceholder Action = iota // Session still resolving, show a neutral placeholder
	ActionRedirect                  // Navigate to Decision.Target instead of rendering
	ActionRender                    // Render the protected content
)

func (a Action) String() string {
	switch a {
	case ActionRedirect:
		return "redirect"
	case ActionRender:
		return "render"
	default:
		return "placeholder"
	}
}

// Decision is the outcome of evaluating a session against a surface.
type Decision struct {
	Action Action
	Target string // Set only for ActionRedirect
}

func Placeholder() Decision {
	return Decision{Action: ActionPlaceholder}
}

func Redirect(target string) Decision {
	return Decision{Action: ActionRedirect, Target: target}
}

func Render() Decision {
	return Decision{Action: ActionRender}
}

// Evaluate decides how a surface that requires one of the given roles should
// respond to s. An empty required set admits any authenticated role.
//
// A role mismatch sends the user to their own home surface rather than an
// error page.
func Evaluate(s auth.Session, required ...users.Role) Decision {
	switch {
	case s.Status == auth.StatusUnresolved:
		return Placeholder()
	case !s.Authenticated():
		return Redirect(routes.RouteLogin)
	case len(required) > 0 && !s.Role().In(required):
		return Redirect(routes.DefaultFor(s.Role()))
	default:
		return Render()
	}
}
