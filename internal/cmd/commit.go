package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/app"
	"github.com/gaicli/gai/internal/pkg/ai"
	"github.com/gaicli/gai/internal/pkg/config"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/git"
	"github.com/gaicli/gai/internal/pkg/processor"
	"github.com/gaicli/gai/internal/pkg/security"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// CommitFlags holds the flags for the commit flow.
type CommitFlags struct {
	Model      string
	Oneline    bool
	Yes        bool
	DryRun     bool
	NoScan     bool
	OutputFile string
}

// signalContext is cancelled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// releasableSignalContext is like signalContext, but release stops catching the
// signals without cancelling the context. After release Ctrl-C terminates the
// process again, which is what a blocked line read needs.
func releasableSignalContext() (ctx context.Context, cancel context.CancelFunc, release func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	released := make(chan struct{})
	var once sync.Once
	release = func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(released)
		})
	}

	go func() {
		select {
		case <-sigs:
			cancelCtx()
		case <-released:
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		release()
		cancelCtx()
	}, release
}

// runCommit executes the generate, review and commit workflow.
func runCommit(cmd *cobra.Command, flags *CommitFlags) error {
	ctx, cancel, release := releasableSignalContext()
	defer cancel()

	mgr, cfg, err := loadConfig(cmd, flags.Model)
	if err != nil {
		return err
	}

	gitClient := git.NewClient()
	if !gitClient.IsRepository() {
		return apperrors.NewNotRepositoryError(errors.New("no .git directory found"))
	}

	uiMgr := newUIManager(cmd, cfg, flags.Yes)

	if !flags.Yes {
		if err := ensureAPIKey(mgr, cfg, uiMgr); err != nil {
			return err
		}
	}

	provider, err := ai.NewProvider(*cfg)
	if err != nil {
		return err
	}
	logProvider(cfg, provider)

	service := app.NewCommitService(gitClient, provider, processor.NewProcessor(), uiMgr)

	opts := &app.CommitOptions{
		Oneline:      flags.Oneline || cfg.Oneline,
		Yes:          flags.Yes,
		DryRun:       flags.DryRun,
		NoScan:       flags.NoScan,
		BeforePrompt: release,
	}
	err = service.GenerateAndCommit(ctx, opts)
	if err != nil && ctx.Err() != nil {
		return apperrors.ErrAborted
	}
	return err
}

// loadConfig resolves the configuration with command line overrides applied.
// modelArg is a positional model and wins over --model.
func loadConfig(cmd *cobra.Command, modelArg string) (*config.ViperManager, *config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	providerFlag, _ := cmd.Flags().GetString("provider")
	endpointFlag, _ := cmd.Flags().GetString("endpoint")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	modelFlag, _ := cmd.Flags().GetString("model")
	if modelArg != "" {
		modelFlag = modelArg
	}

	mgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	if providerFlag != "" {
		base, err := mgr.Load()
		if err != nil {
			return nil, nil, err
		}
		mgr.SetOverride(config.KeyProvider, providerFlag)
		// Saved endpoint and model belong to the saved provider.
		if strings.ToLower(strings.TrimSpace(providerFlag)) != base.Provider {
			mgr.SetOverride(config.KeyChatURL, "")
			mgr.SetOverride(config.KeyModel, "")
		}
		apperrors.Debug("Provider overridden via flag: %s", providerFlag)
	}
	if endpointFlag != "" {
		mgr.SetOverride(config.KeyChatURL, endpointFlag)
	}
	if apiKeyFlag != "" {
		mgr.SetOverride(config.KeyAPIKey, apiKeyFlag)
	}
	if modelFlag != "" {
		mgr.SetOverride(config.KeyModel, modelFlag)
		apperrors.Debug("Model overridden: %s", modelFlag)
	}

	cfg, err := mgr.Load()
	if err != nil {
		return nil, nil, err
	}
	return mgr, cfg, nil
}

// newUIManager picks the terminal UI, or the non-blocking one for --yes.
func newUIManager(cmd *cobra.Command, cfg *config.Config, yes bool) ui.Manager {
	if yes {
		return ui.NewNonInteractiveManager(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	return ui.NewDefaultManager(cmd.InOrStdin(), cmd.OutOrStdout(), ui.Options{
		ColorEnabled: ui.ColorEnabled(),
		Interactive:  ui.IsInteractive(),
		Editor:       cfg.Editor,
	})
}

// ensureAPIKey asks for a missing OpenAI key on a terminal and saves it to the dotfile.
func ensureAPIKey(mgr config.Manager, cfg *config.Config, uiMgr ui.Manager) error {
	if cfg.Provider != config.ProviderOpenAI || cfg.APIKey != "" || !ui.IsInteractive() {
		return nil
	}

	key, err := uiMgr.PromptInput("Enter your OpenAI API key:", true)
	if err != nil {
		return err
	}
	if err := ui.ValidateAPIKey(key); err != nil {
		return apperrors.Wrap(err, apperrors.ErrMissingAPIKey, "invalid API key")
	}

	if !mgr.ConfigExists() {
		if err := mgr.Init(); err != nil {
			return err
		}
	}
	if err := mgr.Set(config.KeyAPIKey, key); err != nil {
		return err
	}
	cfg.APIKey = key
	uiMgr.ShowSuccess("API key saved to " + mgr.GetConfigPath())
	return nil
}

func logProvider(cfg *config.Config, provider ai.Provider) {
	apperrors.Info("Using provider: %s", provider.Name())
	apperrors.Info("Using model: %s", provider.Model())
	apperrors.Debug("Endpoint: %s", cfg.ChatURL)
	if cfg.APIKey != "" {
		apperrors.Debug("API key: %s", security.MaskAPIKey(cfg.APIKey))
	}
}
