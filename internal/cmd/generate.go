package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/app"
	"github.com/gaicli/gai/internal/pkg/ai"
	"github.com/gaicli/gai/internal/pkg/config"
	"github.com/gaicli/gai/internal/pkg/git"
	"github.com/gaicli/gai/internal/pkg/processor"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	flags := &CommitFlags{}

	cmd := &cobra.Command{
		Use:   "generate [model]",
		Short: "Print a commit message without committing",
		Long: `Generate a commit message for the staged changes and print it to stdout.
Nothing is committed. Status lines go to stderr, so the output can be piped.

Examples:
  gai generate              # Print the message
  gai generate -o msg.txt   # Also write it to a file
  git commit -F <(gai generate -1)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Model = args[0]
			}
			return runGenerate(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the generated message to a file")
	cmd.Flags().BoolVarP(&flags.Oneline, "oneline", "1", false, "Generate a single line message")
	cmd.Flags().BoolVar(&flags.NoScan, "no-scan", false, "Skip the credential warning")

	return cmd
}

func runGenerate(cmd *cobra.Command, flags *CommitFlags) error {
	ctx, cancel := signalContext()
	defer cancel()

	service, cfg, err := newHeadlessService(cmd, flags.Model)
	if err != nil {
		return err
	}

	msg, err := service.Generate(ctx, &app.CommitOptions{
		Oneline:    flags.Oneline || cfg.Oneline,
		NoScan:     flags.NoScan,
		OutputFile: flags.OutputFile,
	})
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

// newHeadlessService wires a CommitService whose status output goes to stderr.
func newHeadlessService(cmd *cobra.Command, model string) (*app.CommitService, *config.Config, error) {
	_, cfg, err := loadConfig(cmd, model)
	if err != nil {
		return nil, nil, err
	}

	gitClient := git.NewClient()
	provider, err := ai.NewProvider(*cfg)
	if err != nil {
		return nil, nil, err
	}
	logProvider(cfg, provider)

	uiMgr := ui.NewNonInteractiveManager(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	service := app.NewCommitService(gitClient, provider, processor.NewProcessor(), uiMgr)
	return service, cfg, nil
}
