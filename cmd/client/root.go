package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	showMetrics bool
	app         *app
	input       *bufio.Reader
}

// execute runs one CLI invocation and releases the session store whether or
// not the command succeeded.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	if opts.app != nil {
		if closeErr := opts.app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func newRootCmd(opts *rootOptions) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "photomarket",
		Short: "Photo marketplace client",
		Long: `Signs in to the photo marketplace backend, keeps the session on disk
and calls protected endpoints with it.

Configuration comes from the environment: API_URL, SESSION_BACKEND
(memory, file, redis, sqlite), SESSION_FILE, SESSION_DB, REDIS_ADDR,
REDIS_PREFIX, HTTP_TIMEOUT, LOG_LEVEL and ENV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			config.ConfigureLogging(cfg, cmd.ErrOrStderr())

			a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			opts.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app == nil || !opts.showMetrics {
				return nil
			}
			return opts.app.printMetrics()
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.showMetrics, "metrics", false, "print gateway request counters after the command")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newOpenCmd(opts))
	cmd.AddCommand(newGetCmd(opts))
	return cmd
}

// prompt reads one line from the app's input when value is empty.
func (o *rootOptions) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	if o.input == nil {
		o.input = bufio.NewReader(o.app.in)
	}
	fmt.Fprintf(o.app.out, "%s: ", label)
	line, err := o.input.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
