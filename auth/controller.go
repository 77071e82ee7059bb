package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/gateway"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Default endpoint paths, relative to the API base URL.
const (
	DefaultLoginPath    = "/auth/login/"
	DefaultRegisterPath = "/auth/register/"
)

// Exchanger posts JSON to the backend. gateway.Client satisfies it.
type Exchanger interface {
	PostJSON(ctx context.Context, path string, body any, result any) error
}

// unauthorizedNotifier is implemented by exchangers that can report 401s
// seen on any request, not just the ones the Controller makes.
type unauthorizedNotifier interface {
	OnUnauthorized(fn gateway.UnauthorizedListener) (remove func())
}

type subscriber struct {
	id int
	fn func(Session)
}

// Controller owns the published session. It is the only writer of the
// session store apart from the gateway's 401 handling.
//
// Commits are serialised. Subscribers are called after the commit lock is
// released, one commit at a time, in commit order and subscription order.
// A subscriber may use the gateway or the Controller; a commit it causes is
// queued and delivered once it returns. Navigation happens after the commit
// and after the goroutine that made it has delivered its notifications.
type Controller struct {
	store        sessions.Store
	client       Exchanger
	nav          routes.Navigator
	nowTime      func() time.Time
	loginPath    string
	registerPath string

	initOnce sync.Once
	commitMu sync.Mutex

	mu      sync.RWMutex
	session Session

	subMu       sync.Mutex
	nextSubID   int
	subscribers []subscriber

	deliverMu  sync.Mutex
	pending    []Session
	delivering bool

	logins         singleflight.Group
	removeListener func()
}

// ControllerOption defines a function type to modify the Controller instance.
type ControllerOption func(*Controller)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(path string) ControllerOption {
	return func(c *Controller) {
		c.loginPath = path
	}
}

// WithRegisterPath overrides the register endpoint path.
func WithRegisterPath(path string) ControllerOption {
	return func(c *Controller) {
		c.registerPath = path
	}
}

// NewController returns an unresolved Controller. When client can report
// 401 responses the Controller re-resolves from the store after each one.
func NewController(store sessions.Store, client Exchanger, nav routes.Navigator, options ...ControllerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("[NewController] session store is required")
	}
	if client == nil {
		return nil, errors.New("[NewController] exchanger is required")
	}
	if nav == nil {
		nav = routes.Discard
	}

	c := &Controller{
		store:        store,
		client:       client,
		nav:          nav,
		nowTime:      time.Now,
		loginPath:    DefaultLoginPath,
		registerPath: DefaultRegisterPath,
		session:      Unresolved(),
	}

	for _, opt := range options {
		opt(c)
	}

	if notifier, ok := client.(unauthorizedNotifier); ok {
		c.removeListener = notifier.OnUnauthorized(func(ctx context.Context) {
			log.Info().Msg("Controller: credentials rejected by server, re-resolving session")
			c.Resolve(ctx)
		})
	}

	return c, nil
}

// Close detaches the Controller from the exchanger's 401 notifications.
func (c *Controller) Close() {
	if c.removeListener != nil {
		c.removeListener()
	}
}

// Init consults the store once and commits the resolved session. Later calls
// return the current session without touching the store.
func (c *Controller) Init(ctx context.Context) Session {
	c.initOnce.Do(func() {
		c.commitMu.Lock()
		// A 401 seen before Init has already resolved the session.
		if c.Unresolved() {
			c.commitLocked(c.derive(ctx))
		}
		c.commitMu.Unlock()
	})
	c.deliver()
	return c.Session()
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.clone()
}

// Unresolved reports whether the store has not been consulted yet.
func (c *Controller) Unresolved() bool {
	return c.Session().Status == StatusUnresolved
}

// Subscribe registers fn to receive every committed session change.
func (c *Controller) Subscribe(fn func(Session)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Resolve re-derives the session from the store and commits it if it
// changed. A store holding only part of the credential set is cleared.
func (c *Controller) Resolve(ctx context.Context) Session {
	c.commitMu.Lock()
	session := c.derive(ctx)
	c.commitLocked(session)
	c.commitMu.Unlock()

	c.deliver()
	return session.clone()
}

// Login exchanges creds for a token pair, stores it and publishes the new
// session, then navigates to the role's home surface. Concurrent logins for
// the same credentials share one exchange.
func (c *Controller) Login(ctx context.Context, creds LoginCredentials) (Session, error) {
	c.Init(ctx)

	if err := creds.Validate(); err != nil {
		return c.Session(), err
	}

	v, err, shared := c.logins.Do(loginKey(creds), func() (any, error) {
		return c.login(ctx, creds)
	})
	if err != nil {
		return c.Session(), err
	}
	if shared {
		log.Debug().Str("username", creds.Username).Msg("Login: joined in-flight login")
	}
	return v.(Session).clone(), nil
}

// loginKey identifies a login attempt by username and password, so a retry
// with different credentials never joins an attempt in flight.
func loginKey(creds LoginCredentials) string {
	sum := sha256.Sum256([]byte(creds.Password))
	return strings.TrimSpace(creds.Username) + ":" + hex.EncodeToString(sum[:])
}

func (c *Controller) login(ctx context.Context, creds LoginCredentials) (Session, error) {
	var pair tokenPair
	if err := c.client.PostJSON(ctx, c.loginPath, creds, &pair); err != nil {
		err = classifyExchangeError(err)
		log.Err(err).Str("username", creds.Username).Msg("Login: token exchange failed")
		return Session{}, errors.Wrap(err, "[Controller.Login] exchange")
	}
	if strings.TrimSpace(pair.Access) == "" {
		log.Error().Str("username", creds.Username).Msg("Login: server returned no access token")
		return Session{}, errors.Wrap(ErrUnknown, "[Controller.Login] empty access token")
	}

	claims, err := token.DecodeClaims(pair.Access)
	switch {
	case err != nil:
		log.Warn().Err(err).
			Str("username", creds.Username).
			Str("role", string(claims.Role)).
			Msg("Login: access token unreadable, defaulting to least-privileged role")
	case !claims.RoleRecognised:
		log.Warn().
			Str("username", creds.Username).
			Str("role", string(claims.Role)).
			Msg("Login: access token carries no known role, defaulting to least-privileged role")
	}
	if claims.Expired(c.nowTime()) {
		log.Warn().
			Str("username", creds.Username).
			Time("expires_at", claims.ExpiresAt).
			Msg("Login: access token already expired")
	}

	identity := claims.Identity(strings.TrimSpace(creds.Username))
	fields := sessions.Fields{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Role:         string(identity.Role),
		Subject:      identity.Subject,
	}

	session := Authenticated(identity)
	if err := c.storeAndCommit(ctx, fields, session); err != nil {
		log.Err(err).Str("username", creds.Username).Msg("Login: failed to store credentials")
		return Session{}, errors.Wrap(autherrors.Join(ErrUnknown, err), "[Controller.Login] store")
	}

	log.Info().
		Str("subject", identity.Subject).
		Str("role", string(identity.Role)).
		Msg("Login: session established")

	c.nav.Navigate(routes.DefaultFor(identity.Role))
	return session, nil
}

// Register creates an account. The session is untouched; on success the
// presentation moves to the login surface.
func (c *Controller) Register(ctx context.Context, data RegisterData) error {
	c.Init(ctx)

	if err := data.Validate(); err != nil {
		return err
	}

	if err := c.client.PostJSON(ctx, c.registerPath, data, nil); err != nil {
		err = classifyRegisterError(err)
		log.Err(err).Str("username", data.Username).Msg("Register: request failed")
		return err
	}

	log.Info().Str("username", data.Username).Str("role", string(data.Role)).Msg("Register: account created")
	c.nav.Navigate(routes.RouteLogin)
	return nil
}

// Logout clears the store and publishes the anonymous session. It always
// completes; a store failure is logged only.
func (c *Controller) Logout(ctx context.Context) {
	c.Init(ctx)

	// The caller's context may be cancelled; the clear must still run.
	ctx = context.WithoutCancel(ctx)

	c.commitMu.Lock()
	if err := c.store.Clear(ctx); err != nil {
		log.Err(err).Msg("Logout: failed to clear stored credentials")
	}
	c.commitLocked(Anonymous())
	c.commitMu.Unlock()
	c.deliver()

	log.Info().Msg("Logout: session cleared")
	c.nav.Navigate(routes.RouteLanding)
}

func (c *Controller) storeAndCommit(ctx context.Context, fields sessions.Fields, session Session) error {
	c.commitMu.Lock()
	if err := c.store.Set(ctx, fields); err != nil {
		c.commitMu.Unlock()
		return err
	}
	c.commitLocked(session)
	c.commitMu.Unlock()

	c.deliver()
	return nil
}

// derive reads the store and builds the session it describes. The caller
// holds commitMu.
func (c *Controller) derive(ctx context.Context) Session {
	fields, err := c.store.Snapshot(ctx)
	if err != nil {
		log.Err(err).Msg("Controller: failed to read session store, treating as anonymous")
		return Anonymous()
	}

	if !fields.Complete() {
		if !fields.Empty() {
			log.Warn().Msg("Controller: discarding incomplete stored credentials")
			if err := c.store.Clear(ctx); err != nil {
				log.Err(err).Msg("Controller: failed to clear incomplete credentials")
			}
		}
		return Anonymous()
	}

	role, ok := users.ParseRole(fields.Role)
	if !ok {
		log.Warn().
			Str("subject", fields.Subject).
			Str("stored_role", fields.Role).
			Str("role", string(role)).
			Msg("Controller: stored role unknown, defaulting to least-privileged role")
	}
	return Authenticated(users.Identity{Subject: fields.Subject, Role: role})
}

// commitLocked publishes session when it differs from the current one and
// queues it for subscribers. The caller holds commitMu and calls deliver
// after releasing it.
func (c *Controller) commitLocked(session Session) bool {
	c.mu.Lock()
	if c.session.Equal(session) {
		c.mu.Unlock()
		return false
	}
	c.session = session.clone()
	c.mu.Unlock()

	log.Debug().Str("status", session.Status.String()).Msg("Controller: session committed")

	c.deliverMu.Lock()
	c.pending = append(c.pending, session.clone())
	c.deliverMu.Unlock()
	return true
}

// deliver hands queued commits to subscribers in order. Only one goroutine
// delivers at a time; commits queued meanwhile, including those made from
// inside a subscriber, are picked up by that goroutine before it returns.
func (c *Controller) deliver() {
	c.deliverMu.Lock()
	if c.delivering {
		c.deliverMu.Unlock()
		return
	}
	c.delivering = true

	for {
		if len(c.pending) == 0 {
			c.delivering = false
			c.deliverMu.Unlock()
			return
		}
		session := c.pending[0]
		c.pending = c.pending[1:]
		c.deliverMu.Unlock()

		c.notify(session)
		c.deliverMu.Lock()
	}
}

func (c *Controller) notify(session Session) {
	c.subMu.Lock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.Unlock()

	for _, s := range subs {
		s.fn(session.clone())
	}
}
