package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tripauth/internal/client/config"
)

// NewRootCmd builds the client command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tripauth",
		Short:        "tripauth client",
		Long:         "Command-line client for the tripauth service. The login session is kept in a local file.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("addr", "a", "", "server address (host:port)")
	root.PersistentFlags().String("db", "", "local session file")
	root.PersistentFlags().StringP("config", "c", "", "config file (.json, .yaml or .toml)")

	root.AddCommand(
		newActionCmd("register", "Create an account", (*App).Register),
		newActionCmd("login", "Log in and store the session", (*App).Login),
		newActionCmd("whoami", "Verify the stored session", (*App).WhoAmI),
		newActionCmd("logout", "End the session and clear it locally", (*App).Logout),
		newShellCmd(),
	)
	return root
}

// loadConfig applies the file from --config, then --addr and --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("addr"); f != nil && f.Changed {
		cfg.ServerEndpointAddr = f.Value.String()
	}
	if f := cmd.Flag("db"); f != nil && f.Changed {
		cfg.SessionFile = f.Value.String()
	}
	return cfg, nil
}

// withApp builds the App for cmd, runs fn and closes the App.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return fn(ctx, a)
}

func newActionCmd(use, short string, action func(*App, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.restore(ctx); err != nil {
					return err
				}
				return action(a, ctx)
			})
		},
	}
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				if err := a.restore(ctx); err != nil {
					return err
				}
				a.println("Welcome to tripauth CLI (type 'help' for commands)")
				if a.isLoggedIn() {
					// A restored token may have expired or been logged out elsewhere.
					_ = a.WhoAmI(ctx)
				}
				runREPL(ctx, a, a.status, a.reader, a.out)
				return nil
			})
		},
	}
}
