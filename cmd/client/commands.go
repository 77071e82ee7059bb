package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/routes"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var creds auth.LoginCredentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if creds.Username, err = opts.prompt("Username", creds.Username); err != nil {
				return err
			}
			if creds.Password, err = opts.prompt("Password", creds.Password); err != nil {
				return err
			}

			s, err := opts.app.ctrl.Login(cmd.Context(), creds)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(opts.app.out, "Logged in as %s (%s)\n", s.Subject(), s.Role())
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		data auth.RegisterData
		role string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if data.Username, err = opts.prompt("Username", data.Username); err != nil {
				return err
			}
			if data.Email, err = opts.prompt("Email", data.Email); err != nil {
				return err
			}
			if data.Password, err = opts.prompt("Password", data.Password); err != nil {
				return err
			}
			data.Role = users.Role(role)

			if err := opts.app.ctrl.Register(cmd.Context(), data); err != nil {
				return describeError(err)
			}
			fmt.Fprintf(opts.app.out, "Account %s created, you can now log in\n", data.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&data.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&data.Password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVarP(&role, "role", "r", string(users.RoleBuyer), "Uploader or Buyer")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.app.ctrl.Logout(cmd.Context())
			fmt.Fprintln(opts.app.out, "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := opts.app.ctrl.Init(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(opts.app.out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			if !s.Authenticated() {
				fmt.Fprintln(opts.app.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(opts.app.out, "%s (%s)\n", s.Subject(), s.Role())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON")
	return cmd
}

// surfaceAliases lets users name surfaces instead of typing paths.
var surfaceAliases = map[string]string{
	"landing":   routes.RouteLanding,
	"login":     routes.RouteLogin,
	"register":  routes.RouteRegister,
	"upload":    routes.RouteUpload,
	"dashboard": routes.RouteUpload,
	"browse":    routes.RouteBrowse,
	"gallery":   routes.RouteBrowse,
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <surface>",
		Short: "Check whether the session may open a surface",
		Long: `Evaluates the route guard for a surface (landing, login, register,
upload, browse or a path) and prints where the session would end up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if alias, ok := surfaceAliases[strings.ToLower(path)]; ok {
				path = alias
			}

			opts.app.ctrl.Init(cmd.Context())

			required, protected := routes.Protected(path)
			if !protected {
				fmt.Fprintf(opts.app.out, "%s is public\n", path)
				return nil
			}

			route := guard.NewRoute(opts.app.ctrl, opts.app.nav, required...)
			defer route.Close()

			route.Render(func() {
				fmt.Fprintf(opts.app.out, "Rendering %s\n", path)
			})
			return nil
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Call a backend endpoint with the stored session",
		Example: `  photomarket get /photos/gallery/
  photomarket get /photos/download/3/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.app.ctrl.Init(cmd.Context())

			body, err := opts.app.client.Get(cmd.Context(), args[0])
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintln(opts.app.out, strings.TrimSpace(string(body)))
			return nil
		},
	}
}

// describeError turns core errors into messages for the terminal.
func describeError(err error) error {
	var (
		verr    *auth.ValidationError
		httpErr *gateway.HTTPError
	)
	switch {
	case errors.As(err, &verr):
		if verr.Field == "" {
			return errors.New(verr.Message)
		}
		return fmt.Errorf("%s: %s", verr.Field, verr.Message)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errors.New("invalid username or password")
	case errors.Is(err, auth.ErrNetworkFailure), errors.Is(err, gateway.ErrNetwork):
		return errors.New("could not reach the server")
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized:
		return errors.New("session expired or missing, please log in")
	case errors.As(err, &httpErr):
		return fmt.Errorf("server answered %d: %s", httpErr.StatusCode, strings.TrimSpace(string(httpErr.Body)))
	default:
		return err
	}
}
