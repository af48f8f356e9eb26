// Package cmd implements the newstech command line client.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newstech/newstech/internal/client/api"
	"github.com/newstech/newstech/internal/client/session"
	"github.com/newstech/newstech/internal/client/store"
	"github.com/newstech/newstech/internal/logger"
)

type options struct {
	apiURL    string
	sessionDB string
	verbose   bool
}

func RootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "newstech",
		Short:        "Sign in to NewsTech and manage your profile",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				logger.Init(logger.Options{Development: true, Output: cmd.ErrOrStderr()})
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("NEWSTECH_API_URL", "http://localhost:8000"), "NewsTech API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.sessionDB, "session", envOr("NEWSTECH_SESSION_DB", defaultSessionPath()), "path of the local session database")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(registerCmd(opts))
	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(whoamiCmd(opts))
	rootCmd.AddCommand(updateCmd(opts))

	return rootCmd
}

// client bundles what every command needs.
type client struct {
	api      *api.Client
	sessions *session.Manager
	store    *store.Store
}

func (c *client) Close() {
	_ = c.store.Close()
}

func (o *options) open(ctx context.Context) (*client, error) {
	st, err := store.Open(ctx, o.sessionDB)
	if err != nil {
		return nil, err
	}
	apiClient := api.New(o.apiURL, nil)
	return &client{
		api:      apiClient,
		sessions: session.NewManager(st, apiClient),
		store:    st,
	}, nil
}

func printUser(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".newstech", "session.db")
	}
	return filepath.Join(dir, "newstech", "session.db")
}
