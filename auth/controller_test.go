package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/sessions"
	fakesessionstore "github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testUsername = "alice"
	testPassword = "s3cret"
)

// testFixture holds all test dependencies
type testFixture struct {
	store   *fakesessionstore.FakeSessionStore
	history *routes.History
	client  *gateway.Client
	ctrl    *auth.Controller

	mu       sync.Mutex
	login    http.HandlerFunc
	register http.HandlerFunc
}

func (f *testFixture) setLogin(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = h
}

func (f *testFixture) setRegister(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.register = h
}

// setupTestFixture creates a controller talking to a local backend through
// the real gateway.
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return setupTestFixtureWithStore(t, fakesessionstore.NewFakeSessionStore())
}

func setupTestFixtureWithStore(t *testing.T, store *fakesessionstore.FakeSessionStore) *testFixture {
	t.Helper()

	f := &testFixture{store: store, history: routes.NewHistory()}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		h := f.login
		f.mu.Unlock()
		h(w, r)
	})
	mux.HandleFunc("/api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		h := f.register
		f.mu.Unlock()
		h(w, r)
	})
	mux.HandleFunc("/api/photos/gallery/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f.login = tokenHandler(t, jwtlib.MapClaims{"username": testUsername, "role": "Uploader"})
	f.register = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) }

	f.client = gateway.NewClient(srv.URL+"/api", gateway.NewTransport(store, nil), 5*time.Second)

	ctrl, err := auth.NewController(store, f.client, f.history)
	require.NoError(t, err)
	t.Cleanup(ctrl.Close)
	f.ctrl = ctrl
	return f
}

func signToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func tokenHandler(t *testing.T, claims jwtlib.MapClaims) http.HandlerFunc {
	access := signToken(t, claims)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "refresh-1"})
	}
}

func statusHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func loginCreds() auth.LoginCredentials {
	return auth.LoginCredentials{Username: testUsername, Password: testPassword}
}

func TestNewController(t *testing.T) {
	store := fakesessionstore.NewFakeSessionStore()

	_, err := auth.NewController(nil, &countingExchanger{}, nil)
	require.Error(t, err)

	_, err = auth.NewController(store, nil, nil)
	require.Error(t, err)

	ctrl, err := auth.NewController(store, &countingExchanger{}, nil)
	require.NoError(t, err)
	require.True(t, ctrl.Unresolved())
	require.Equal(t, auth.StatusUnresolved, ctrl.Session().Status)
}

func TestInit(t *testing.T) {
	t.Run("empty store resolves anonymous", func(t *testing.T) {
		f := setupTestFixture(t)
		s := f.ctrl.Init(context.Background())
		require.Equal(t, auth.StatusAnonymous, s.Status)
		require.Nil(t, s.Identity)
		require.False(t, f.ctrl.Unresolved())
	})

	t.Run("complete store resolves authenticated without network", func(t *testing.T) {
		store := fakesessionstore.NewFakeSessionStoreWith(sessions.Fields{
			AccessToken: "opaque", RefreshToken: "r", Role: "Uploader", Subject: "carol",
		})
		f := setupTestFixtureWithStore(t, store)
		f.setLogin(func(w http.ResponseWriter, r *http.Request) {
			t.Error("login endpoint must not be called during init")
		})

		s := f.ctrl.Init(context.Background())
		require.True(t, s.Authenticated())
		require.Equal(t, users.Identity{Subject: "carol", Role: users.RoleUploader}, *s.Identity)
		require.Empty(t, f.history.Paths())
	})

	t.Run("partial store resolves anonymous and is cleared", func(t *testing.T) {
		store := fakesessionstore.NewFakeSessionStoreWith(sessions.Fields{AccessToken: "opaque"})
		f := setupTestFixtureWithStore(t, store)

		s := f.ctrl.Init(context.Background())
		require.Equal(t, auth.StatusAnonymous, s.Status)

		fields, err := store.Snapshot(context.Background())
		require.NoError(t, err)
		require.True(t, fields.Empty())
	})

	t.Run("unknown stored role fails closed", func(t *testing.T) {
		store := fakesessionstore.NewFakeSessionStoreWith(sessions.Fields{
			AccessToken: "opaque", Role: "Admin", Subject: "mallory",
		})
		f := setupTestFixtureWithStore(t, store)

		s := f.ctrl.Init(context.Background())
		require.True(t, s.Authenticated())
		require.Equal(t, users.RoleBuyer, s.Role())
	})

	t.Run("init only consults the store once", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Equal(t, auth.StatusAnonymous, f.ctrl.Init(context.Background()).Status)

		require.NoError(t, f.store.Set(context.Background(), sessions.Fields{
			AccessToken: "a", Role: "Buyer", Subject: "bob",
		}))
		require.Equal(t, auth.StatusAnonymous, f.ctrl.Init(context.Background()).Status)

		// Resolve re-reads on demand
		require.True(t, f.ctrl.Resolve(context.Background()).Authenticated())
	})

	t.Run("a 401 before init counts as the startup read", func(t *testing.T) {
		store := fakesessionstore.NewFakeSessionStoreWith(sessions.Fields{
			AccessToken: "stale", Role: "Buyer", Subject: "bob",
		})
		f := setupTestFixtureWithStore(t, store)
		require.True(t, f.ctrl.Unresolved())

		_, err := f.client.Get(context.Background(), "/photos/gallery/")
		require.Error(t, err)
		require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)

		require.NoError(t, store.Set(context.Background(), sessions.Fields{
			AccessToken: "a", Role: "Buyer", Subject: "bob",
		}))
		require.Equal(t, auth.StatusAnonymous, f.ctrl.Init(context.Background()).Status)
	})
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.ctrl.Init(ctx)

	var published []auth.Session
	f.ctrl.Subscribe(func(s auth.Session) { published = append(published, s) })

	s, err := f.ctrl.Login(ctx, loginCreds())
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	require.Equal(t, users.Identity{Subject: testUsername, Role: users.RoleUploader}, *s.Identity)

	fields, err := f.store.Snapshot(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, fields.AccessToken)
	require.Equal(t, "refresh-1", fields.RefreshToken)
	require.Equal(t, "Uploader", fields.Role)
	require.Equal(t, testUsername, fields.Subject)
	require.Equal(t, 1, f.store.Writes())

	require.Len(t, published, 1)
	require.True(t, published[0].Equal(s))
	require.Equal(t, []string{routes.RouteUpload}, f.history.Paths())
}

func TestLoginBuyerLandsOnBrowse(t *testing.T) {
	f := setupTestFixture(t)
	f.setLogin(tokenHandler(t, jwtlib.MapClaims{"sub": "42", "role": "buyer"}))

	s, err := f.ctrl.Login(context.Background(), auth.LoginCredentials{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, users.RoleBuyer, s.Role())
	require.Equal(t, "42", s.Subject())
	require.Equal(t, []string{routes.RouteBrowse}, f.history.Paths())
}

func TestLoginUnreadableTokenFailsClosed(t *testing.T) {
	f := setupTestFixture(t)
	f.setLogin(statusHandler(http.StatusOK, `{"access":"not-a-jwt","refresh":"r"}`))

	s, err := f.ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)
	require.Equal(t, users.RoleBuyer, s.Role())
	require.Equal(t, testUsername, s.Subject())
	require.Equal(t, []string{routes.RouteBrowse}, f.history.Paths())
}

func TestLoginFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
	}{
		{"bad request", statusHandler(http.StatusBadRequest, `{"detail":"bad"}`), auth.ErrInvalidCredentials},
		{"unauthorized", statusHandler(http.StatusUnauthorized, `{"detail":"No active account"}`), auth.ErrInvalidCredentials},
		{"forbidden", statusHandler(http.StatusForbidden, ``), auth.ErrInvalidCredentials},
		{"server error", statusHandler(http.StatusInternalServerError, ``), auth.ErrUnknown},
		{"empty access", statusHandler(http.StatusOK, `{"access":"","refresh":"r"}`), auth.ErrUnknown},
		{"malformed body", statusHandler(http.StatusOK, `<html>`), auth.ErrUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.setLogin(tc.handler)
			ctx := context.Background()

			s, err := f.ctrl.Login(ctx, loginCreds())
			require.ErrorIs(t, err, tc.kind)
			require.Equal(t, auth.StatusAnonymous, s.Status)
			require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
			require.Empty(t, f.history.Paths())

			fields, err := f.store.Snapshot(ctx)
			require.NoError(t, err)
			require.True(t, fields.Empty())
		})
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := fakesessionstore.NewFakeSessionStore()
	client := gateway.NewClient(url, gateway.NewTransport(store, nil), time.Second)
	ctrl, err := auth.NewController(store, client, nil)
	require.NoError(t, err)

	_, err = ctrl.Login(context.Background(), loginCreds())
	require.ErrorIs(t, err, auth.ErrNetworkFailure)
	require.Equal(t, auth.StatusAnonymous, ctrl.Session().Status)
}

func TestLoginValidation(t *testing.T) {
	f := setupTestFixture(t)
	f.setLogin(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid credentials must not reach the server")
	})

	_, err := f.ctrl.Login(context.Background(), auth.LoginCredentials{Password: "pw"})
	var verr *auth.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "username", verr.Field)
	require.ErrorIs(t, err, auth.ErrValidationFailed)

	_, err = f.ctrl.Login(context.Background(), auth.LoginCredentials{Username: "bob"})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "password", verr.Field)
}

func TestNavigationFollowsCommit(t *testing.T) {
	store := fakesessionstore.NewFakeSessionStore()
	f := setupTestFixtureWithStore(t, store)

	var (
		ctrl          *auth.Controller
		subscriberRan atomic.Bool
		checked       atomic.Bool
	)
	nav := routes.NavigatorFunc(func(path string) {
		if path != routes.RouteUpload {
			return
		}
		assert.True(t, ctrl.Session().Authenticated(), "navigation before commit")
		assert.True(t, subscriberRan.Load(), "navigation before subscribers were notified")
		checked.Store(true)
	})

	ctrl, err := auth.NewController(store, f.client, nav)
	require.NoError(t, err)
	defer ctrl.Close()

	ctrl.Subscribe(func(s auth.Session) {
		if s.Authenticated() {
			subscriberRan.Store(true)
		}
	})

	_, err = ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)
	require.True(t, checked.Load())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Login(ctx, loginCreds())
	require.NoError(t, err)

	var notifications int
	f.ctrl.Subscribe(func(auth.Session) { notifications++ })

	f.ctrl.Logout(ctx)
	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	require.Equal(t, 1, notifications)

	fields, err := f.store.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, fields.Empty())

	// Idempotent: no second notification, same end state
	f.ctrl.Logout(ctx)
	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	require.Equal(t, 1, notifications)

	require.Equal(t, []string{routes.RouteUpload, routes.RouteLanding, routes.RouteLanding}, f.history.Paths())
}

func TestLogoutWithCancelledContext(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.ctrl.Logout(ctx)

	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	fields, err := f.store.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, fields.Empty())
}

func TestSessionSurvivesRestart(t *testing.T) {
	store := fakesessionstore.NewFakeSessionStore()
	f := setupTestFixtureWithStore(t, store)

	before, err := f.ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)

	restarted, err := auth.NewController(store, &countingExchanger{}, nil)
	require.NoError(t, err)

	after := restarted.Init(context.Background())
	require.True(t, after.Equal(before))
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Login(ctx, loginCreds())
	require.NoError(t, err)

	var published []auth.Session
	f.ctrl.Subscribe(func(s auth.Session) { published = append(published, s) })

	_, err = f.client.Get(ctx, "/photos/gallery/")
	var httpErr *gateway.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	require.Len(t, published, 1)
	require.Equal(t, auth.StatusAnonymous, published[0].Status)

	fields, err := f.store.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, fields.Empty())
}

func TestUnsubscribe(t *testing.T) {
	f := setupTestFixture(t)

	var calls int
	unsubscribe := f.ctrl.Subscribe(func(auth.Session) { calls++ })
	f.ctrl.Init(context.Background())
	require.Equal(t, 1, calls)

	unsubscribe()
	_, err := f.ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestSessionReturnsCopies(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.ctrl.Login(context.Background(), loginCreds())
	require.NoError(t, err)

	s := f.ctrl.Session()
	s.Identity.Role = users.RoleBuyer
	require.Equal(t, users.RoleUploader, f.ctrl.Session().Role())
}

// countingExchanger blocks every exchange until release is closed.
type countingExchanger struct {
	calls   atomic.Int32
	release chan struct{}
	access  string
}

func (e *countingExchanger) PostJSON(ctx context.Context, path string, body any, result any) error {
	e.calls.Add(1)
	if e.release != nil {
		<-e.release
	}
	if result == nil {
		return nil
	}
	data, err := json.Marshal(map[string]string{"access": e.access, "refresh": "r"})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func TestConcurrentLoginsCollapse(t *testing.T) {
	exchanger := &countingExchanger{
		release: make(chan struct{}),
		access:  signToken(t, jwtlib.MapClaims{"username": testUsername, "role": "Uploader"}),
	}
	store := fakesessionstore.NewFakeSessionStore()
	history := routes.NewHistory()
	ctrl, err := auth.NewController(store, exchanger, history)
	require.NoError(t, err)
	ctrl.Init(context.Background())

	const callers = 5
	results := make([]auth.Session, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = ctrl.Login(context.Background(), loginCreds())
		}()
	}

	require.Eventually(t, func() bool { return exchanger.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(exchanger.release)
	wg.Wait()

	require.EqualValues(t, 1, exchanger.calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		require.True(t, results[i].Authenticated())
	}
	require.Equal(t, 1, store.Writes())
	require.Equal(t, []string{routes.RouteUpload}, history.Paths())
}

func TestSubscriberGatewayCallRejected(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.ctrl.Init(ctx)

	var (
		mu      sync.Mutex
		seen    []auth.Status
		loadErr error
	)
	f.ctrl.Subscribe(func(s auth.Session) {
		mu.Lock()
		seen = append(seen, s.Status)
		mu.Unlock()

		// A page loading its data as soon as the session is authenticated
		if s.Authenticated() {
			_, err := f.client.Get(ctx, "/photos/gallery/")
			mu.Lock()
			loadErr = err
			mu.Unlock()
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Login(ctx, loginCreds())
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("login did not return after a subscriber's request was rejected")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []auth.Status{auth.StatusAuthenticated, auth.StatusAnonymous}, seen)

	var httpErr *gateway.HTTPError
	require.True(t, errors.As(loadErr, &httpErr))
	require.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	require.Equal(t, auth.StatusAnonymous, f.ctrl.Session().Status)
	fields, err := f.store.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, fields.Empty())
	require.Equal(t, []string{routes.RouteUpload}, f.history.Paths())
}

// passwordExchanger accepts only the password "right" and blocks every
// exchange until release is closed.
type passwordExchanger struct {
	mu        sync.Mutex
	passwords []string
	release   chan struct{}
	access    string
}

func (e *passwordExchanger) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.passwords)
}

func (e *passwordExchanger) PostJSON(ctx context.Context, path string, body any, result any) error {
	creds := body.(auth.LoginCredentials)
	e.mu.Lock()
	e.passwords = append(e.passwords, creds.Password)
	e.mu.Unlock()

	<-e.release
	if creds.Password != "right" {
		return &gateway.HTTPError{StatusCode: http.StatusUnauthorized}
	}
	data, err := json.Marshal(map[string]string{"access": e.access, "refresh": "r"})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func TestConcurrentLoginsWithDifferentPasswords(t *testing.T) {
	exchanger := &passwordExchanger{
		release: make(chan struct{}),
		access:  signToken(t, jwtlib.MapClaims{"username": testUsername, "role": "Uploader"}),
	}
	ctrl, err := auth.NewController(fakesessionstore.NewFakeSessionStore(), exchanger, nil)
	require.NoError(t, err)
	ctrl.Init(context.Background())

	var (
		wg                 sync.WaitGroup
		wrongErr, rightErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, wrongErr = ctrl.Login(context.Background(), auth.LoginCredentials{Username: testUsername, Password: "wrong"})
	}()
	require.Eventually(t, func() bool { return exchanger.calls() == 1 }, time.Second, 5*time.Millisecond)

	go func() {
		defer wg.Done()
		_, rightErr = ctrl.Login(context.Background(), auth.LoginCredentials{Username: testUsername, Password: "right"})
	}()
	require.Eventually(t, func() bool { return exchanger.calls() == 2 }, time.Second, 5*time.Millisecond)

	close(exchanger.release)
	wg.Wait()

	require.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
	require.NoError(t, rightErr)
	require.True(t, ctrl.Session().Authenticated())
	require.ElementsMatch(t, []string{"wrong", "right"}, exchanger.passwords)
}

// gatedExchanger holds each login exchange until release is closed, then
// sends it through the real gateway client.
type gatedExchanger struct {
	*gateway.Client
	entered chan struct{}
	release chan struct{}
}

func (e *gatedExchanger) PostJSON(ctx context.Context, path string, body any, result any) error {
	close(e.entered)
	<-e.release
	return e.Client.PostJSON(ctx, path, body, result)
}

func TestUnauthorizedDuringLogin(t *testing.T) {
	ctx := context.Background()

	newController := func(t *testing.T) (*testFixture, *auth.Controller, *gatedExchanger) {
		store := fakesessionstore.NewFakeSessionStoreWith(sessions.Fields{
			AccessToken: "old", RefreshToken: "r", Role: "Buyer", Subject: "bob",
		})
		f := setupTestFixtureWithStore(t, store)
		exchanger := &gatedExchanger{Client: f.client, entered: make(chan struct{}), release: make(chan struct{})}
		ctrl, err := auth.NewController(store, exchanger, nil)
		require.NoError(t, err)
		t.Cleanup(ctrl.Close)
		require.True(t, ctrl.Init(ctx).Authenticated())
		return f, ctrl, exchanger
	}

	t.Run("401 before the login stores its credentials", func(t *testing.T) {
		f, ctrl, exchanger := newController(t)

		done := make(chan error, 1)
		go func() {
			_, err := ctrl.Login(ctx, loginCreds())
			done <- err
		}()
		<-exchanger.entered

		_, err := f.client.Get(ctx, "/photos/gallery/")
		require.Error(t, err)
		require.Equal(t, auth.StatusAnonymous, ctrl.Session().Status)

		close(exchanger.release)
		require.NoError(t, <-done)

		s := ctrl.Session()
		require.True(t, s.Authenticated())
		require.Equal(t, testUsername, s.Subject())
		fields, err := f.store.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, testUsername, fields.Subject)
	})

	t.Run("401 after the login stores its credentials", func(t *testing.T) {
		f, ctrl, exchanger := newController(t)
		close(exchanger.release)

		_, err := ctrl.Login(ctx, loginCreds())
		require.NoError(t, err)
		require.True(t, ctrl.Session().Authenticated())

		_, err = f.client.Get(ctx, "/photos/gallery/")
		require.Error(t, err)

		require.Equal(t, auth.StatusAnonymous, ctrl.Session().Status)
		fields, err := f.store.Snapshot(ctx)
		require.NoError(t, err)
		require.True(t, fields.Empty())
	})
}
