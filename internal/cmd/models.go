package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/pkg/ai"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// NewModelsCmd creates the models command.
func NewModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the configured provider offers",
		Long: `List models available from the configured provider: the models pulled on
the Ollama server, or the models the OpenAI endpoint exposes. The configured
model is marked with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			_, cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}
			provider, err := ai.NewProvider(*cfg)
			if err != nil {
				return err
			}

			lister, ok := provider.(ai.ModelLister)
			if !ok {
				return apperrors.New(apperrors.ErrInvalidArguments,
					fmt.Sprintf("%s cannot list models", provider.Name()))
			}
			models, err := lister.ListModels(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintf(out, "No models available from %s\n", provider.Name())
				return nil
			}
			for _, m := range models {
				marker := " "
				if m == cfg.Model {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, m)
			}
			return nil
		},
	}
}
