package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// HeaderRequestID carries a per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// UnauthorizedListener is notified after a 401 has cleared the store.
type UnauthorizedListener func(ctx context.Context)

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that attaches the stored access token as
// a bearer credential and treats every 401 as proof that the stored session
// is no longer valid.
//
// It never retries, never refreshes and never navigates. Responses and
// errors from the base transport are returned to the caller unchanged.
type Transport struct {
	store sessions.Store
	base  http.RoundTripper

	mu        sync.RWMutex
	nextID    int
	listeners map[int]UnauthorizedListener
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithRegisterer registers the gateway metrics with reg.
func WithRegisterer(reg prometheus.Registerer) TransportOption {
	return func(t *Transport) {
		if err := RegisterMetrics(reg); err != nil {
			log.Err(err).Msg("Gateway: failed to register metrics")
		}
	}
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(store sessions.Store, base http.RoundTripper, opts ...TransportOption) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		store:     store,
		base:      base,
		listeners: make(map[int]UnauthorizedListener),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnUnauthorized registers fn to run after each 401 has cleared the store.
// The returned func removes the listener.
func (t *Transport) OnUnauthorized(fn UnauthorizedListener) (remove func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// RoundTrip implements http.RoundTripper. The caller's request is never
// modified; headers are set on a clone.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
		req = req.Clone(ctx)
		req.Header.Set(HeaderRequestID, requestID)
	}

	next := t.base
	accessToken, ok, err := t.store.Get(ctx, sessions.KeyAccessToken)
	if err != nil {
		log.Warn().Err(err).Str("request_id", requestID).Msg("Gateway: failed to read access token, sending without credentials")
	} else if ok {
		next = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   t.base,
		}
	}

	resp, err := next.RoundTrip(req)
	RequestsTotal.WithLabelValues(codeClass(resp, err)).Inc()

	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		t.invalidate(ctx, requestID, req)
	}
	return resp, err
}

func (t *Transport) invalidate(ctx context.Context, requestID string, req *http.Request) {
	// The request context may already be cancelled; the clear must still land.
	ctx = context.WithoutCancel(ctx)

	log.Warn().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("Gateway: 401 received, clearing stored credentials")

	InvalidationsTotal.Inc()
	if err := t.store.Clear(ctx); err != nil {
		log.Err(err).Str("request_id", requestID).Msg("Gateway: failed to clear stored credentials")
	}

	t.mu.RLock()
	listeners := make([]UnauthorizedListener, 0, len(t.listeners))
	for _, fn := range t.listeners {
		listeners = append(listeners, fn)
	}
	t.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}
