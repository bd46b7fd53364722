package benchmark

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// EstimatedOutputTokens is the assumed reply size used for cost estimates.
const EstimatedOutputTokens = 50

// Pricing is USD per 1K tokens.
type Pricing struct {
	Input  float64
	Output float64
}

// PricingTable holds approximate OpenAI prices for the default models.
var PricingTable = map[string]Pricing{
	"gpt-3.5-turbo": {Input: 0.0005, Output: 0.0015},
	"gpt-4o":        {Input: 0.0025, Output: 0.01},
	"gpt-4o-mini":   {Input: 0.00015, Output: 0.0006},
	"o3":            {Input: 0.06, Output: 0.24},
}

// EstimateCost returns the approximate USD cost of one request. ok is false for
// models without a price.
func EstimateCost(model string, inputTokens int) (cost float64, ok bool) {
	p, ok := PricingTable[model]
	if !ok {
		return 0, false
	}
	return (float64(inputTokens)*p.Input + EstimatedOutputTokens*p.Output) / 1000, true
}

// ModelSummary aggregates the successful calls of one model.
type ModelSummary struct {
	Model     string  `json:"model" yaml:"model"`
	Attempts  int     `json:"attempts" yaml:"attempts"`
	Successes int     `json:"successes" yaml:"successes"`
	AvgTime   float64 `json:"avg_time" yaml:"avg_time"`
	AvgLength float64 `json:"avg_length" yaml:"avg_length"`
	Sample    string  `json:"sample,omitempty" yaml:"sample,omitempty"`
	// Cost is nil when the model has no known price.
	Cost *float64 `json:"estimated_cost,omitempty" yaml:"estimated_cost,omitempty"`
}

// Summarize averages time and length over the successful results.
func Summarize(model string, results []Result, inputTokens int) ModelSummary {
	s := ModelSummary{Model: model, Attempts: len(results)}

	var totalTime float64
	var totalLength int
	for _, r := range results {
		if !r.Success {
			continue
		}
		if s.Successes == 0 {
			s.Sample = truncateSample(r.Message)
		}
		s.Successes++
		totalTime += *r.ResponseTime
		totalLength += r.MessageLength
	}

	if s.Successes > 0 {
		s.AvgTime = totalTime / float64(s.Successes)
		s.AvgLength = float64(totalLength) / float64(s.Successes)
	}
	if cost, ok := EstimateCost(model, inputTokens); ok {
		s.Cost = &cost
	}
	return s
}

func truncateSample(msg string) string {
	if len(msg) <= sampleLimit {
		return msg
	}
	return msg[:sampleLimit] + "..."
}

func printSummary(w io.Writer, s ModelSummary) {
	if s.Successes == 0 {
		fmt.Fprintf(w, "  All attempts failed for %s\n", s.Model)
		return
	}
	fmt.Fprintf(w, "\n  %s summary:\n", s.Model)
	fmt.Fprintf(w, "    Average response time: %.2fs\n", s.AvgTime)
	fmt.Fprintf(w, "    Average message length: %.0f characters\n", s.AvgLength)
	fmt.Fprintf(w, "    Success rate: %d/%d\n", s.Successes, s.Attempts)
	fmt.Fprintf(w, "\n  Sample message:\n    %s\n", strings.ReplaceAll(s.Sample, "\n", "\n    "))
}

// successful keeps the summaries with at least one successful call.
func successful(summaries []ModelSummary) []ModelSummary {
	var out []ModelSummary
	for _, s := range summaries {
		if s.Successes > 0 {
			out = append(out, s)
		}
	}
	return out
}

// BySpeed orders summaries fastest first.
func BySpeed(summaries []ModelSummary) []ModelSummary {
	out := successful(summaries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgTime < out[j].AvgTime })
	return out
}

// ByLength orders summaries longest message first.
func ByLength(summaries []ModelSummary) []ModelSummary {
	out := successful(summaries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgLength > out[j].AvgLength })
	return out
}

// costRange returns the lowest and highest priced summaries among those with a price.
func costRange(summaries []ModelSummary) (low, high *ModelSummary) {
	for i := range summaries {
		s := &summaries[i]
		if s.Cost == nil {
			continue
		}
		if low == nil || *s.Cost < *low.Cost {
			low = s
		}
		if high == nil || *s.Cost > *high.Cost {
			high = s
		}
	}
	return low, high
}

// Recommendations names the fastest, cheapest, most detailed and most concise models.
// At least two models must have succeeded for a comparison.
func Recommendations(summaries []ModelSummary) []string {
	ok := successful(summaries)
	if len(ok) < 2 {
		return nil
	}

	speed := BySpeed(ok)
	length := ByLength(ok)
	recs := []string{fmt.Sprintf("Fastest: %s (%.2fs)", speed[0].Model, speed[0].AvgTime)}
	if low, _ := costRange(ok); low != nil {
		recs = append(recs, fmt.Sprintf("Most cost-effective: %s (~$%.4f)", low.Model, *low.Cost))
	}
	recs = append(recs,
		fmt.Sprintf("Most detailed: %s (%.0f chars)", length[0].Model, length[0].AvgLength),
		fmt.Sprintf("Most concise: %s (%.0f chars)", length[len(length)-1].Model, length[len(length)-1].AvgLength),
	)
	return recs
}

// PrintComparison writes the speed, length and cost comparison and the recommendations.
func PrintComparison(w io.Writer, summaries []ModelSummary) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(w, "COMPARISON RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	ok := successful(summaries)
	if len(ok) == 0 {
		fmt.Fprintln(w, "No successful results to compare")
		return
	}
	if len(ok) < 2 {
		fmt.Fprintf(w, "Only %s succeeded, nothing to compare against\n", ok[0].Model)
		return
	}

	fmt.Fprintln(w, "\nSpeed:")
	speed := BySpeed(ok)
	for i, s := range speed {
		if i == 0 {
			fmt.Fprintf(w, "  1. %s: %.2fs (fastest)\n", s.Model, s.AvgTime)
			continue
		}
		slowdown := 0.0
		if speed[0].AvgTime > 0 {
			slowdown = s.AvgTime / speed[0].AvgTime
		}
		fmt.Fprintf(w, "  %d. %s: %.2fs (%.1fx slower)\n", i+1, s.Model, s.AvgTime, slowdown)
	}

	fmt.Fprintln(w, "\nMessage length:")
	for i, s := range ByLength(ok) {
		suffix := ""
		if i == 0 {
			suffix = " (most detailed)"
		}
		fmt.Fprintf(w, "  %d. %s: %.0f chars%s\n", i+1, s.Model, s.AvgLength, suffix)
	}

	fmt.Fprintln(w, "\nEstimated cost per request:")
	for _, s := range ok {
		if s.Cost != nil {
			fmt.Fprintf(w, "  %s: ~$%.4f\n", s.Model, *s.Cost)
		}
	}
	if low, high := costRange(ok); low != nil && high != nil && low != high && *low.Cost > 0 {
		fmt.Fprintf(w, "  %s is %.0fx more expensive than %s\n", high.Model, *high.Cost / *low.Cost, low.Model)
	}

	fmt.Fprintln(w, "\nRecommendations:")
	for _, rec := range Recommendations(ok) {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SaveReport writes report to dir as benchmark_results_<timestamp>.<format> and
// returns the path.
func SaveReport(fs afero.Fs, dir string, report *Report, format string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "", FormatJSON:
		format = FormatJSON
		data, err = json.MarshalIndent(report, "", "  ")
	case FormatYAML, "yml":
		format = FormatYAML
		data, err = yaml.Marshal(report)
	default:
		return "", apperrors.New(apperrors.ErrInvalidArguments,
			fmt.Sprintf("unknown report format %q", format)).
			WithSuggestion("Use --format json or --format yaml")
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to encode benchmark report")
	}

	path := filepath.Join(dir, fmt.Sprintf("benchmark_results_%s.%s", report.Timestamp, format))
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return "", apperrors.NewFileSystemError(path, err)
	}
	return path, nil
}
