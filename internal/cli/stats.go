package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quandary-app/quandary/internal/store"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection sizes",
		Long: `Count the rows of every collection.

Example:
  quandary stats --config quandary.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}

			st, err := store.Open(cfg.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			stats, err := st.CollectionStats(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read stats", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return out.Success(stats)
			}
			return out.Success(fmt.Sprintf(
				"users=%d posts=%d answers=%d likes=%d saved=%d notifications=%d unread=%d",
				stats.Users, stats.Posts, stats.Answers, stats.Likes,
				stats.SavedPosts, stats.Notifications, stats.UnreadCount))
		},
	}

	return cmd
}
