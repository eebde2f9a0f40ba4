package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/auth"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/store"
)

// AddUserOptions holds flags for the adduser command.
type AddUserOptions struct {
	*RootOptions
	Name     string
	Email    string
	Password string
}

// NewAddUserCommand creates the adduser command.
func NewAddUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddUserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		Long: `Create a user account directly, without going through signup.

Example:
  quandary adduser --name Ada --email ada@example.com --password hunter2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddUser(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runAddUser(opts *AddUserOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	// No token issuance here, so the service runs without an issuer.
	svc := auth.NewService(st, nil, idgen.UUIDv7Generator{}, time.Now, cfg.BcryptCost)

	user, err := svc.CreateAccount(cmd.Context(), opts.Name, opts.Email, opts.Password)
	if err != nil {
		out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		_ = out.Error(string(apperr.KindOf(err)), err.Error(), nil)
		return WrapExitError(ExitFailure, "could not create user", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(map[string]string{"id": string(user.ID), "email": user.Email})
	}
	return out.Success(fmt.Sprintf("created user %s (%s)", user.ID, user.Email))
}
