package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/quandary-app/quandary/internal/authz"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/notify"
	"github.com/quandary-app/quandary/internal/store"
)

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair like notifications from like membership",
		Long: `Re-derive like-notification existence from the like relation:
create notifications missing for non-self likes and remove orphans whose
like no longer exists. The pass runs in a single atomic group.

Example:
  quandary reconcile --config quandary.yaml`,
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

			engine := notify.New(st, authz.NewGuard(), idgen.UUIDv7Generator{}, time.Now, slog.Default())

			report, err := engine.Reconcile(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "reconciliation failed", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return out.Success(report)
			}
			return out.Success(fmt.Sprintf("reconciled: %d created, %d removed", report.Created, report.Removed))
		},
	}

	return cmd
}
