// Package cmd contains the CLI command definitions for gai.
package cmd

import (
	"github.com/spf13/cobra"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// NewRootCmd creates the root command for the gai CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &CommitFlags{}

	rootCmd := &cobra.Command{
		Use:   "gai [model]",
		Short: "AI-generated commit messages for staged changes",
		Long: `gai reads your staged changes, asks an LLM (a local Ollama server or
OpenAI) for a conventional commit message, and lets you apply, edit,
regenerate or discard it before anything is committed.

Examples:
  gai                      # Interactive commit with the configured provider
  gai llama3.2             # Use a different model for this run
  gai -p openai -1         # One-line message from OpenAI
  gai --yes                # Commit the first message without asking
  gai --dry-run            # Print the message only`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			apperrors.SetVerbose(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Model = args[0]
			}
			return runCommit(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`gai {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path (default: ~/.gai)")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "AI provider to use (ollama, openai)")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "Provider endpoint (CHAT_URL)")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "API key for the openai provider")
	rootCmd.PersistentFlags().String("model", "", "AI model to use")

	// Commit flow flags
	rootCmd.Flags().BoolVarP(&flags.Oneline, "oneline", "1", false, "Generate a single line message")
	rootCmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "Commit the first generated message without prompting")
	rootCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the generated message without committing")
	rootCmd.Flags().BoolVar(&flags.NoScan, "no-scan", false, "Skip the credential scan of the staged diff")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewSplitCmd())
	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewModelsCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}
