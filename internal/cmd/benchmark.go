package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gaicli/gai/internal/pkg/ai"
	"github.com/gaicli/gai/internal/pkg/benchmark"
	"github.com/gaicli/gai/internal/pkg/config"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/git"
	"github.com/gaicli/gai/internal/pkg/security"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// BenchmarkFlags holds the flags for the benchmark command.
type BenchmarkFlags struct {
	Models       []string
	Iterations   int
	Delay        time.Duration
	SkipGitCheck bool
	CheckAPIKey  bool
	Format       string
	OutputDir    string
	Oneline      bool
}

// NewBenchmarkCmd creates the benchmark command.
func NewBenchmarkCmd() *cobra.Command {
	flags := &BenchmarkFlags{}

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare OpenAI models on the staged diff",
		Long: `Generate a commit message several times with each model and compare
response time, message length and estimated cost. Detailed results are saved to
benchmark_results_<timestamp>.json (or .yaml).

Examples:
  gai benchmark
  gai benchmark --models gpt-4o-mini,gpt-4o --iterations 5
  gai benchmark --skip-git-check --format yaml
  gai benchmark --check-api-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, flags)
		},
	}

	defaults := benchmark.DefaultOptions()
	cmd.Flags().StringSliceVar(&flags.Models, "models", defaults.Models, "Models to benchmark")
	cmd.Flags().IntVar(&flags.Iterations, "iterations", defaults.Iterations, "Requests per model")
	cmd.Flags().DurationVar(&flags.Delay, "delay", defaults.Delay, "Pause between requests")
	cmd.Flags().BoolVar(&flags.SkipGitCheck, "skip-git-check", false, "Use a built-in sample diff instead of staged changes")
	cmd.Flags().BoolVar(&flags.CheckAPIKey, "check-api-key", false, "Report whether an OpenAI API key is configured and exit")
	cmd.Flags().StringVar(&flags.Format, "format", benchmark.FormatJSON, "Report format (json, yaml)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", ".", "Directory for the report file")
	cmd.Flags().BoolVarP(&flags.Oneline, "oneline", "1", false, "Benchmark single line messages")

	return cmd
}

func runBenchmark(cmd *cobra.Command, flags *BenchmarkFlags) error {
	ctx, cancel := signalContext()
	defer cancel()
	out := cmd.OutOrStdout()

	_, cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}

	if cfg.APIKey == "" {
		return apperrors.NewMissingAPIKeyError(config.ProviderOpenAI)
	}
	if flags.CheckAPIKey {
		fmt.Fprintln(out, "OpenAI API key found")
		fmt.Fprintf(out, "API key: %s (masked)\n", security.MaskAPIKey(cfg.APIKey))
		return nil
	}

	diff, err := benchmarkDiff(ctx, cmd, flags.SkipGitCheck)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "OpenAI model benchmark")

	// Models are always measured against OpenAI. A CHAT_URL saved for Ollama does not apply.
	base := *cfg
	base.Provider = config.ProviderOpenAI
	if endpointFlag, _ := cmd.Flags().GetString("endpoint"); cfg.Provider != config.ProviderOpenAI && endpointFlag == "" {
		base.ChatURL = ""
	}
	factory := func(model string) (ai.Provider, error) {
		c := base
		c.Model = model
		return ai.NewProvider(c)
	}

	var progress benchmark.ProgressFunc
	if ui.IsInteractive() {
		uiMgr := newUIManager(cmd, cfg, false)
		progress = uiMgr.ShowProgressSpinner
	}

	estimatorModel := "gpt-4o"
	if len(flags.Models) > 0 {
		estimatorModel = flags.Models[0]
	}
	runner := benchmark.NewRunner(factory, out, progress, benchmark.NewTokenEstimator(estimatorModel))
	report, runErr := runner.Run(ctx, diff, benchmark.Options{
		Models:     flags.Models,
		Iterations: flags.Iterations,
		Delay:      flags.Delay,
		Oneline:    flags.Oneline || cfg.Oneline,
	})
	if report == nil {
		return runErr
	}

	benchmark.PrintComparison(out, report.Summaries)

	path, err := benchmark.SaveReport(afero.NewOsFs(), flags.OutputDir, report, flags.Format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nDetailed results saved to: %s\n", path)

	if runErr != nil && ctx.Err() != nil {
		return apperrors.ErrAborted
	}
	return runErr
}

// benchmarkDiff returns the staged diff, or the sample diff when git is skipped or
// nothing is staged.
func benchmarkDiff(ctx context.Context, cmd *cobra.Command, skipGit bool) (string, error) {
	errOut := cmd.ErrOrStderr()
	if skipGit {
		fmt.Fprintln(errOut, "Skipping git repository check, using a sample diff")
		return benchmark.SampleDiff, nil
	}

	gitClient := git.NewClient()
	if !gitClient.IsRepository() {
		return "", apperrors.NewNotRepositoryError(errors.New("no .git directory found")).
			WithSuggestion("Run from a git repository or pass --skip-git-check")
	}

	diff, err := gitClient.GetStagedDiff(ctx)
	if err != nil {
		return "", err
	}
	if diff == "" {
		fmt.Fprintln(errOut, "No staged changes found, using a sample diff")
		return benchmark.SampleDiff, nil
	}
	return diff, nil
}
