package main

import (
	"fmt"

	"github.com/cmlabs-hris/timesheet-sync/internal/app"
	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential, sheet and scheduler configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			status := a.Service.Status(timesheet.RunState{})
			if err := printJSON(cmd.OutOrStdout(), status); err != nil {
				return err
			}
			if !status.CredentialsConfigured {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s credentials are not configured\n", status.AuthMethod)
			}
			return nil
		})
	},
}
