package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/pkg/config"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/security"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gai configuration",
		Long: `Manage gai configuration settings.

Settings live in ~/.gai as KEY=value lines (PROVIDER, MODEL, API_KEY, CHAT_URL,
TIMEOUT, ONELINE, PROMPT_FILE, EDITOR). A .env file in the working directory and
environment variables override the file; command line flags override everything.`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newManager builds a config manager honoring --config.
func newManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	return mgr, nil
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file",
		Long: `Create ~/.gai. On a terminal a short wizard asks for the provider, model,
endpoint and API key; with --defaults (or without a terminal) a file with
Ollama defaults is written.

The file is created with permissions 0600 because it may contain an API key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			if !defaults && ui.IsInteractive() {
				return ui.RunSetup(mgr, cmd.OutOrStdout())
			}

			if err := mgr.Init(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", mgr.GetConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write defaults without asking")
	return cmd
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in ~/.gai. Keys are case-insensitive.

Examples:
  gai config set provider openai
  gai config set API_KEY sk-xxx
  gai config set model gpt-4o-mini
  gai config set timeout 120`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			if err := mgr.Set(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", strings.ToUpper(config.NormalizeKey(key)), displayValue(key, value))
			return nil
		},
	}
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a resolved configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.IsKnownKey(args[0]) {
				return apperrors.NewInvalidConfigError(fmt.Sprintf("unknown config key: %s", args[0])).
					WithSuggestion("Supported keys: " + strings.ToUpper(strings.Join(config.Keys, ", ")))
			}

			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			value, err := mgr.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], value))
			return nil
		},
	}
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display every resolved configuration value. API keys are masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			settings, err := mgr.List()
			if err != nil {
				return err
			}

			for _, key := range config.Keys {
				name := strings.ToUpper(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, displayValue(key, settings[name]))
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' subcommand.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mgr.GetConfigPath())
			return nil
		},
	}
}

// displayValue masks API keys.
func displayValue(key, value string) string {
	if config.NormalizeKey(key) == config.KeyAPIKey && value != "" {
		return security.MaskAPIKey(value)
	}
	return value
}
