package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/config"
	"github.com/tgienger/tick/internal/logging"
	"github.com/tgienger/tick/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the terminal UI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tick",
		Short: "A small multi-user to-do list",
		Long: `tick keeps a shared list of prioritized tasks with comments.
Run it without arguments for the interactive view, or use the subcommands
to script it from the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: opts.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			p := tea.NewProgram(ui.NewApp(cmd.Context(), a), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running application: %w", err)
			}
			return nil
		}),
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tick/config.yaml)")

	rootCmd.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newProfileCmd(opts),
		newPasswdCmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDoneCmd(opts, true),
		newDoneCmd(opts, false),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newCommentCmd(opts),
		newCommentsCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

type appFunc func(cmd *cobra.Command, args []string, a *app.App) error

// withApp wraps a command so it runs with logging set up and the app open.
// Queued writes are flushed when the command returns.
func (o *rootOptions) withApp(fn appFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := o.loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		closer, err := logging.Init(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer closer.Close()

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return fn(cmd, args, a)
	}
}

// withLogin is withApp for commands that need a logged-in user
func (o *rootOptions) withLogin(fn appFunc) func(*cobra.Command, []string) error {
	return o.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		if !a.Session.IsLoggedIn() {
			return errNotLoggedIn
		}
		return fn(cmd, args, a)
	})
}
