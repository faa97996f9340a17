package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set up by the root command before any subcommand runs.
var (
	cfg    *Config
	client *Client
)

func NewRootCmd() *cobra.Command {
	cfg = configFromEnv()

	root := &cobra.Command{
		Use:   "buddyctl",
		Short: "Command line client for a Random Buddy server",
		Long: `buddyctl talks to a Random Buddy server over its JSON API.

Participants register and reveal their buddy. Admins log in once; the session
token is kept in the token file for later admin commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.resolveToken(); err != nil {
				return err
			}
			var trace io.Writer
			if cfg.Verbose {
				trace = cmd.ErrOrStderr()
			}
			client = NewClient(cfg.ServerURL, cfg.Token, trace)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "server URL (env "+envServer+")")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "admin session token (env "+envToken+")")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "where admin login keeps the token (env "+envTokenFile+")")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output format: text or json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "trace HTTP requests on stderr")

	root.AddCommand(
		newHealthCmd(),
		newStatusCmd(),
		newRegisterCmd(),
		newRevealCmd(),
		newAdminCmd(),
	)
	return root
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result HealthResult
			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// Execute runs buddyctl; Ctrl-C cancels the request in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
