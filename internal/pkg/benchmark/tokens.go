package benchmark

import (
	"time"

	"github.com/pkoukk/tiktoken-go"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// TokenEstimator counts prompt tokens for cost estimates.
type TokenEstimator interface {
	Count(text string) int
}

// CharEstimator assumes four characters per token.
type CharEstimator struct{}

// Count returns len(text)/4.
func (CharEstimator) Count(text string) int {
	return len(text) / 4
}

type tiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

func (e tiktokenEstimator) Count(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// EncodingLoadTimeout bounds loading the BPE ranks. tiktoken downloads them on
// first use, which stalls without network access.
const EncodingLoadTimeout = 5 * time.Second

type encodingLoader func(model string) (*tiktoken.Tiktoken, error)

// NewTokenEstimator returns a tiktoken counter for model, falling back to
// cl100k_base and then to CharEstimator when no encoding can be loaded in time.
func NewTokenEstimator(model string) TokenEstimator {
	return newTokenEstimator(model, loadEncoding, EncodingLoadTimeout)
}

func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	return enc, err
}

func newTokenEstimator(model string, load encodingLoader, timeout time.Duration) TokenEstimator {
	type loaded struct {
		enc *tiktoken.Tiktoken
		err error
	}
	// Buffered so an abandoned load can finish without blocking.
	done := make(chan loaded, 1)
	go func() {
		enc, err := load(model)
		done <- loaded{enc, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil || res.enc == nil {
			apperrors.Debug("token encoding unavailable, estimating from length: %v", res.err)
			return CharEstimator{}
		}
		return tiktokenEstimator{enc: res.enc}
	case <-timer.C:
		apperrors.Debug("token encoding not loaded after %s, estimating from length", timeout)
		return CharEstimator{}
	}
}
