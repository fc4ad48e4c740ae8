package domain

import "time"

// Provider names. The priority order below is the dispatch order; a broken
// circuit skips to the next name.
const (
	ProviderGemini     = "gemini"
	ProviderCopilot    = "copilot"
	ProviderCursor     = "cursor"
	ProviderCodex      = "codex"
	ProviderClaude     = "claude"
	ProviderGeminiStub = "gemini_stub"
	ProviderOllama     = "ollama"
)

// DefaultProviderPriority is the order providers are tried when dispatching.
func DefaultProviderPriority() []string {
	return []string{
		ProviderGemini,
		ProviderCopilot,
		ProviderCursor,
		ProviderCodex,
		ProviderClaude,
		ProviderGeminiStub,
	}
}

// Agent modes passed through to the provider CLI.
const (
	AgentModeDefault = "default"
	AgentModePlan    = "plan"
)

// ExecuteRequest is one prompt dispatched to a provider.
type ExecuteRequest struct {
	Prompt     string
	WorkingDir string
	AgentMode  string
	SessionID  string
	FeatureID  string
	Model      string
	Timeout    time.Duration
}

// Usage is the token accounting a provider reports, when it reports any.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens,omitempty"`
}

// TotalTokens is input plus output.
func (u Usage) TotalTokens() int { return u.InputTokens + u.OutputTokens }

// ProviderResult is the structured outcome of one provider execution.
type ProviderResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	SessionID  string
	Usage      Usage
	Duration   time.Duration
	ErrorClass ErrorClass
	Err        error
}

// Output returns the primary response text: stdout when present, otherwise
// stderr. Some CLIs write their answer to stderr on failure paths.
func (r ProviderResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}

// Failed reports whether the execution produced an error worth handling.
func (r ProviderResult) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// CircuitBreakerRecord is persisted per provider in the KV store. An
// unexpired record blocks dispatch to that provider.
type CircuitBreakerRecord struct {
	Provider    string    `json:"provider"`
	TriggeredAt time.Time `json:"triggered_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	ErrorType   string    `json:"error_type"`
}

// DefaultBreakerTTL bounds how long a tripped breaker persists before the
// provider becomes eligible again.
const DefaultBreakerTTL = 24 * time.Hour

// Broken reports whether the record still blocks dispatch.
func (r CircuitBreakerRecord) Broken() bool { return time.Now().Before(r.ExpiresAt) }
