package guard

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog/log"
)

// SessionSource publishes session changes. auth.Controller satisfies it.
type SessionSource interface {
	Session() auth.Session
	Subscribe(fn func(auth.Session)) (unsubscribe func())
	Resolve(ctx context.Context) auth.Session
}

var _ SessionSource = (*auth.Controller)(nil)

// Route guards one protected surface. It re-evaluates whenever the source
// publishes a session or the required roles change, and navigates on
// redirect decisions. A redirect to the same target is issued once until the
// decision changes.
type Route struct {
	source SessionSource
	nav    routes.Navigator

	mu           sync.Mutex
	required     []users.Role
	session      auth.Session
	decision     Decision
	lastRedirect string

	unsubscribe func()
}

// NewRoute subscribes to source and evaluates the current session at once.
func NewRoute(source SessionSource, nav routes.Navigator, required ...users.Role) *Route {
	if nav == nil {
		nav = routes.Discard
	}
	r := &Route{
		source:   source,
		nav:      nav,
		required: slices.Clone(required),
		decision: Placeholder(),
	}
	r.unsubscribe = source.Subscribe(r.update)

	// Hold the lock across the read so a concurrent publish is applied after it.
	r.mu.Lock()
	target := r.applyLocked(source.Session())
	r.mu.Unlock()
	r.navigate(target)
	return r
}

// Refresh asks the source to re-read its store. Any change arrives through
// the subscription.
func (r *Route) Refresh(ctx context.Context) Decision {
	r.source.Resolve(ctx)
	return r.Decision()
}

// SetRequired replaces the required role set and re-evaluates.
func (r *Route) SetRequired(required ...users.Role) {
	r.mu.Lock()
	r.required = slices.Clone(required)
	target := r.applyLocked(r.session)
	r.mu.Unlock()
	r.navigate(target)
}

// Decision returns the latest decision.
func (r *Route) Decision() Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decision
}

// Render calls content only when the latest decision is ActionRender and
// reports whether it did.
func (r *Route) Render(content func()) bool {
	if r.Decision().Action != ActionRender {
		return false
	}
	content()
	return true
}

// Close stops following the source.
func (r *Route) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Route) update(s auth.Session) {
	r.mu.Lock()
	target := r.applyLocked(s)
	r.mu.Unlock()
	r.navigate(target)
}

// applyLocked stores s, re-evaluates and returns the path to navigate to, or
// "" when no navigation is due.
func (r *Route) applyLocked(s auth.Session) string {
	r.session = s
	r.decision = Evaluate(s, r.required...)

	if r.decision.Action != ActionRedirect {
		r.lastRedirect = ""
		return ""
	}
	if r.decision.Target == r.lastRedirect {
		return ""
	}
	r.lastRedirect = r.decision.Target
	return r.decision.Target
}

func (r *Route) navigate(target string) {
	if target == "" {
		return
	}
	log.Debug().Str("target", target).Msg("Guard: redirecting")
	r.nav.Navigate(target)
}
