// Package benchmark times commit message generation across models.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/gaicli/gai/internal/pkg/ai"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// Defaults for a benchmark run.
const (
	DefaultIterations = 3
	DefaultDelay      = time.Second
	// SampleDiff stands in for the staged diff when git is skipped or nothing is staged.
	SampleDiff = "# Example code for benchmarking\ndef hello_world():\n    print('Hello, World!')\n"
	// sampleLimit caps the sample message shown per model.
	sampleLimit = 200
)

// DefaultModels are compared when no models are given.
var DefaultModels = []string{"gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini", "o3"}

// ProviderFactory builds a provider for one model.
type ProviderFactory func(model string) (ai.Provider, error)

// ProgressFunc starts a progress display for a model's iterations.
type ProgressFunc func(text string, total int) ui.ProgressSpinner

// Options configures a run.
type Options struct {
	Models     []string
	Iterations int
	// Delay separates consecutive requests. Zero disables it.
	Delay   time.Duration
	Oneline bool
}

// DefaultOptions returns the standard model list, iteration count and delay.
func DefaultOptions() Options {
	return Options{
		Models:     append([]string(nil), DefaultModels...),
		Iterations: DefaultIterations,
		Delay:      DefaultDelay,
	}
}

// Result is one timed generation.
type Result struct {
	Model     string `json:"model" yaml:"model"`
	Iteration int    `json:"iteration" yaml:"iteration"`
	// ResponseTime is in seconds and nil for failed calls.
	ResponseTime  *float64 `json:"response_time" yaml:"response_time"`
	MessageLength int      `json:"message_length" yaml:"message_length"`
	Message       string   `json:"message" yaml:"message"`
	Success       bool     `json:"success" yaml:"success"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is everything a run produced.
type Report struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	Timestamp string         `json:"timestamp" yaml:"timestamp"`
	DiffSize  int            `json:"diff_size" yaml:"diff_size"`
	DiffLines int            `json:"diff_lines" yaml:"diff_lines"`
	Results   []Result       `json:"results" yaml:"results"`
	Summaries []ModelSummary `json:"summaries" yaml:"summaries"`
}

// Runner executes benchmarks and prints progress to out.
type Runner struct {
	factory   ProviderFactory
	out       io.Writer
	progress  ProgressFunc
	estimator TokenEstimator
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner. A nil progress disables the progress display and a nil
// estimator counts four characters per token.
func NewRunner(factory ProviderFactory, out io.Writer, progress ProgressFunc, estimator TokenEstimator) *Runner {
	if estimator == nil {
		estimator = CharEstimator{}
	}
	return &Runner{
		factory:   factory,
		out:       out,
		progress:  progress,
		estimator: estimator,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run benchmarks every model against diff. Models whose provider cannot be built are
// reported and skipped. Cancelling ctx stops the run and returns what was collected.
func (r *Runner) Run(ctx context.Context, diff string, opts Options) (*Report, error) {
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}

	started := r.now()
	report := &Report{
		RunID:     uuid.NewString(),
		Timestamp: started.Format("20060102_150405"),
		DiffSize:  len(diff),
		DiffLines: countLines(diff),
	}

	fmt.Fprintf(r.out, "Diff size: %s (%s lines)\n", humanize.Bytes(uint64(report.DiffSize)), humanize.Comma(int64(report.DiffLines)))
	fmt.Fprintln(r.out, strings.Repeat("=", 60))

	inputTokens := r.estimator.Count(diff)
	first := true

	for _, model := range opts.Models {
		fmt.Fprintf(r.out, "\nTesting %s...\n", model)
		fmt.Fprintln(r.out, strings.Repeat("-", 40))

		provider, err := r.factory(model)
		if err != nil {
			fmt.Fprintf(r.out, "  Error: %v\n", err)
			continue
		}

		var spinner ui.ProgressSpinner
		if r.progress != nil {
			spinner = r.progress(fmt.Sprintf("Benchmarking %s", model), opts.Iterations)
			spinner.Start()
		}

		var results []Result
		for i := 1; i <= opts.Iterations; i++ {
			if !first && opts.Delay > 0 {
				if err := r.sleep(ctx, opts.Delay); err != nil {
					break
				}
			}
			first = false
			if ctx.Err() != nil {
				break
			}

			results = append(results, r.measure(ctx, provider, model, i, diff, opts.Oneline))
			if spinner != nil {
				spinner.SetCurrent(i)
			}
		}
		if spinner != nil {
			spinner.Stop()
		}

		for _, res := range results {
			printResult(r.out, res, opts.Iterations)
		}
		report.Results = append(report.Results, results...)

		summary := Summarize(model, results, inputTokens)
		report.Summaries = append(report.Summaries, summary)
		printSummary(r.out, summary)

		if ctx.Err() != nil {
			apperrors.Debug("benchmark interrupted: %v", ctx.Err())
			return report, ctx.Err()
		}
	}

	return report, nil
}

func (r *Runner) measure(ctx context.Context, p ai.Provider, model string, iteration int, diff string, oneline bool) Result {
	res := Result{Model: model, Iteration: iteration}

	start := r.now()
	msg, err := p.GenerateCommitMessage(ctx, ai.GenerateRequest{Diff: diff, Oneline: oneline})
	elapsed := r.now().Sub(start).Seconds()

	if err != nil {
		res.Error = err.Error()
		return res
	}

	msg = strings.TrimSpace(msg)
	res.Success = true
	res.ResponseTime = &elapsed
	res.Message = msg
	res.MessageLength = len(msg)
	return res
}

func printResult(w io.Writer, res Result, total int) {
	fmt.Fprintf(w, "  Iteration %d/%d... ", res.Iteration, total)
	if res.Success {
		fmt.Fprintf(w, "ok %.2fs\n", *res.ResponseTime)
		return
	}
	fmt.Fprintf(w, "failed: %s\n", res.Error)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(strings.TrimRight(s, "\n"), "\n"))
}
