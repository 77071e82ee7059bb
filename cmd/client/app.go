package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// app is the client core wired for one CLI invocation.
type app struct {
	cfg        config.Config
	out        io.Writer
	in         io.Reader
	store      sessions.Store
	closeStore func() error
	client     *gateway.Client
	ctrl       *auth.Controller
	nav        routes.Navigator
	registry   *prometheus.Registry
}

func newApp(ctx context.Context, cfg config.Config, out io.Writer, in io.Reader) (*app, error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	transport := gateway.NewTransport(store, nil, gateway.WithRegisterer(registry))
	client := gateway.NewClient(cfg.GetAPIURL(), transport, cfg.GetHTTPTimeout())

	nav := routes.NavigatorFunc(func(path string) {
		fmt.Fprintf(out, "-> %s\n", path)
	})

	ctrl, err := auth.NewController(store, client, nav)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	log.Debug().
		Str("api", cfg.GetAPIURL()).
		Str("session_backend", string(cfg.GetSessionBackend())).
		Msg("Client initialised")

	return &app{
		cfg:        cfg,
		out:        out,
		in:         in,
		store:      store,
		closeStore: closeStore,
		client:     client,
		ctrl:       ctrl,
		nav:        nav,
		registry:   registry,
	}, nil
}

func (a *app) Close() error {
	a.ctrl.Close()
	return a.closeStore()
}

// printMetrics writes every gateway counter as "name{labels} value".
func (a *app) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			sort.Strings(labels)
			name := family.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(a.out, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
