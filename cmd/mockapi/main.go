package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/mockapi"
	"github.com/jrsteele09/go-auth-client/users"
	fakeaccountrepo "github.com/jrsteele09/go-auth-client/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	config.ConfigureLogging(c, os.Stderr)
	displayAppname(c.GetAppName())

	api, err := mockapi.New(c, fakeaccountrepo.NewFakeAccountRepo())
	if err != nil {
		return fmt.Errorf("mockapi.New: %w", err)
	}
	if c.GetEnv() == "DEV" {
		if err := seedDemoAccounts(api); err != nil {
			return err
		}
	}

	server := &http.Server{Addr: c.GetMockAPIPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// seedDemoAccounts creates one account per role for local development.
func seedDemoAccounts(api *mockapi.Server) error {
	demo := []struct {
		username, email, password string
		role                      users.Role
	}{
		{"uploader", "uploader@example.com", "uploader", users.RoleUploader},
		{"buyer", "buyer@example.com", "buyer", users.RoleBuyer},
	}
	for _, d := range demo {
		if err := api.Seed(d.username, d.email, d.password, d.role); err != nil {
			return fmt.Errorf("seed %s: %w", d.username, err)
		}
		log.Info().Str("username", d.username).Str("role", d.role.String()).Msg("Seeded demo account")
	}
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Mock API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
