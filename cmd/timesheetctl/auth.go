package main

import (
	"fmt"

	"github.com/cmlabs-hris/timesheet-sync/internal/app"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/oauth"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize spreadsheet access and cache the user token",
	Long: `auth runs the OAuth consent flow for GOOGLE_AUTH_METHOD=oauth and writes
the token to GOOGLE_OAUTH_TOKEN_FILE. Later syncs refresh it without prompting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		prompter := oauth.NewTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err := app.NewCredentialProvider(cfg, prompter).Authorize(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Google.TokenFile)
		return nil
	},
}
