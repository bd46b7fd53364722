package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSplitCmd creates the split command.
func NewSplitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "split [model]",
		Short: "Suggest how to split staged changes into several commits",
		Long: `Ask the model how the staged changes could be broken up into smaller,
focused commits. Suggestions are printed only; nothing is staged or committed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			service, _, err := newHeadlessService(cmd, model)
			if err != nil {
				return err
			}

			suggestions, err := service.SuggestCommits(ctx)
			if err != nil || suggestions == nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Suggested commits (%d):\n", len(suggestions))
			for i, s := range suggestions {
				fmt.Fprintf(out, "%d. %s\n", i+1, s.Description)
				if len(s.Files) > 0 {
					fmt.Fprintf(out, "   files: %s\n", strings.Join(s.Files, ", "))
				}
			}
			return nil
		},
	}
}
