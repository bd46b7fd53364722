package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/app"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/git"
	"github.com/gaicli/gai/internal/pkg/processor"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Check staged changes for credentials",
		Long: `Scan the added lines of the staged diff for assignments that look like
passwords, tokens, secrets, API keys or private keys. Matched values are masked.

Exits with status 1 when anything is found, so it can run as a pre-commit hook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			uiMgr := ui.NewDefaultManager(cmd.InOrStdin(), cmd.OutOrStdout(), ui.Options{
				ColorEnabled: ui.ColorEnabled(),
			})
			// Scanning never reaches the provider.
			service := app.NewCommitService(git.NewClient(), nil, processor.NewProcessor(), uiMgr)

			findings, err := service.ScanStaged(ctx)
			if err != nil {
				return err
			}
			if len(findings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No potential credentials found in staged changes.")
				return nil
			}

			uiMgr.DisplayFindings(findings)
			return apperrors.NewCredentialsDetectedError(len(findings))
		},
	}
}
