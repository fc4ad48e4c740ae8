package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// ScriptEntry is one canned response for the stub provider.
type ScriptEntry struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Stub is a scripted provider for dry runs and tests. Responses are served
// in order; once the script is exhausted the last entry repeats. With no
// script it echoes a fixed acknowledgement.
type Stub struct {
	mu      sync.Mutex
	name    string
	script  []ScriptEntry
	calls   int
	prompts []string
}

// NewStub builds a scripted provider under the given name.
func NewStub(name string, script ...ScriptEntry) *Stub {
	return &Stub{name: name, script: script}
}

// NewGeminiStub builds the default dry-run provider.
func NewGeminiStub(script ...ScriptEntry) *Stub {
	return NewStub(domain.ProviderGeminiStub, script...)
}

// Name identifies this provider in priority lists and breaker keys.
func (s *Stub) Name() string { return s.name }

// Calls reports how many times Execute ran.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Prompts returns the prompts Execute received, in call order.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Append adds entries to the script after construction.
func (s *Stub) Append(entries ...ScriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, entries...)
}

// Execute serves the next scripted entry. Token usage is derived from the
// prompt and response lengths so session accounting stays deterministic.
func (s *Stub) Execute(ctx context.Context, req domain.ExecuteRequest) domain.ProviderResult {
	if err := ctx.Err(); err != nil {
		return domain.ProviderResult{ExitCode: -1, Err: fmt.Errorf("stub execute: %w", err)}
	}

	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	var entry ScriptEntry
	switch {
	case len(s.script) == 0:
		entry = ScriptEntry{Stdout: fmt.Sprintf("STUB_OK call=%d", idx+1)}
	case idx < len(s.script):
		entry = s.script[idx]
	default:
		entry = s.script[len(s.script)-1]
	}
	s.mu.Unlock()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("stub-session-%s", req.FeatureID)
	}
	return domain.ProviderResult{
		Stdout:    entry.Stdout,
		Stderr:    entry.Stderr,
		ExitCode:  entry.ExitCode,
		SessionID: sessionID,
		Duration:  time.Millisecond,
		Usage: domain.Usage{
			InputTokens:  estimateTokens(req.Prompt),
			OutputTokens: estimateTokens(entry.Stdout),
		},
	}
}

// estimateTokens approximates tokens at four bytes each, floor one for
// non-empty text.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

var _ domain.Provider = (*Stub)(nil)
