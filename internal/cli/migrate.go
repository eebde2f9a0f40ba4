package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quandary-app/quandary/internal/store"
)

// NewMigrateCommand creates the migrate command.
// Opening the store applies the schema and pending migrations; running it
// against an up-to-date database is a no-op.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or migrate the database",
		Long: `Open the SQLite database, creating it if needed, and apply schema
migrations. Safe to run repeatedly.

Example:
  quandary migrate --config quandary.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			slog.Info("opening database", "path", cfg.Database)
			st, err := store.Open(cfg.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			return out.Success("database ready: " + cfg.Database)
		},
	}

	return cmd
}
