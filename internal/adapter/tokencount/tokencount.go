// Package tokencount estimates token usage for provider exchanges. Most
// agent CLIs report usage in their structured output; when they do not, the
// session resolver needs an estimate to keep context-window accounting
// honest.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens with tiktoken's cl100k_base encoding. The agent
// CLIs do not ship their tokenizers, so cl100k_base stands in for all of
// them; it tracks real usage closely enough for the 80% reuse threshold.
type Estimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewEstimator builds an Estimator. The encoding loads lazily on first use.
func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) encoding() *tiktoken.Tiktoken {
	e.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		e.enc = enc
	})
	return e.enc
}

// Count returns the token count for text. When the encoding is unavailable
// it falls back to the rough four-bytes-per-token estimate.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := e.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// EstimateExchange returns the combined token cost of one prompt/response
// pair charged against a session's context window.
func (e *Estimator) EstimateExchange(prompt, response string) int {
	return e.Count(prompt) + e.Count(response)
}
