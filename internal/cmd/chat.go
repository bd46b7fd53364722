package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/app"
	"github.com/gaicli/gai/internal/pkg/ai"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Chat with a local Ollama model",
		Long: `Send a prompt to an Ollama model and stream the answer. Without a prompt
an interactive session starts; type 'exit' or 'quit' to leave.

The configured model is used when the provider is ollama, otherwise gemma:2b
on the default local endpoint. --model and --endpoint override both.

Examples:
  gai chat "explain git rebase in one paragraph"
  gai chat --model llama3.2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			_, cfg, err := loadConfig(cmd, "")
			if err != nil {
				return err
			}

			streamer, err := ai.NewChatStreamer(*cfg)
			if err != nil {
				return err
			}
			endpointFlag, _ := cmd.Flags().GetString("endpoint")
			modelFlag, _ := cmd.Flags().GetString("model")
			if endpointFlag != "" || modelFlag != "" {
				endpoint, model := streamer.Endpoint(), streamer.Model()
				if endpointFlag != "" {
					endpoint = endpointFlag
				}
				if modelFlag != "" {
					model = modelFlag
				}
				streamer, err = ai.NewOllamaProvider(endpoint, model, cfg.TimeoutDuration(), ai.DefaultPrompts())
				if err != nil {
					return err
				}
			}

			chat := app.NewChatService(streamer, cmd.InOrStdin(), cmd.OutOrStdout())
			if prompt := strings.TrimSpace(strings.Join(args, " ")); prompt != "" {
				return chat.Ask(ctx, prompt)
			}
			return chat.Run(ctx, streamer.Model())
		},
	}
}
