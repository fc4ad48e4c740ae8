package domain

import (
	"fmt"
	"time"
)

// SessionInfo tracks one provider conversation keyed by feature id. Sessions
// are reused across tasks in the same feature until they degrade.
type SessionInfo struct {
	SessionID       string    `json:"session_id"`
	Provider        string    `json:"provider"`
	FeatureID       string    `json:"feature_id"`
	CreatedAt       time.Time `json:"created_at"`
	LastUsed        time.Time `json:"last_used"`
	ErrorCount      int       `json:"error_count"`
	EstimatedTokens int       `json:"estimated_tokens"`
}

// Session health thresholds. A session past either limit is dropped and the
// feature starts a fresh conversation.
const (
	SessionMaxErrors       = 5
	SessionContextFraction = 0.8
)

// Per-provider context windows, in tokens.
var providerContextLimits = map[string]int{
	ProviderClaude:     200_000,
	ProviderCursor:     200_000,
	ProviderGemini:     1_000_000,
	ProviderCopilot:    128_000,
	ProviderCodex:      192_000,
	ProviderOllama:     32_000,
	ProviderGeminiStub: 1_000_000,
}

// DefaultContextLimit is used for providers without a known window.
const DefaultContextLimit = 128_000

// ContextLimit returns the context window for a provider in tokens.
func ContextLimit(provider string) int {
	if limit, ok := providerContextLimits[provider]; ok {
		return limit
	}
	return DefaultContextLimit
}

// Usable reports whether the session is still healthy enough to reuse.
func (s SessionInfo) Usable() bool {
	if s.ErrorCount >= SessionMaxErrors {
		return false
	}
	threshold := float64(ContextLimit(s.Provider)) * SessionContextFraction
	return float64(s.EstimatedTokens) < threshold
}

// Touch records a successful exchange and its token cost.
func (s *SessionInfo) Touch(tokens int) {
	s.LastUsed = time.Now().UTC()
	if tokens > 0 {
		s.EstimatedTokens += tokens
	}
}

// RecordError bumps the session error counter.
func (s *SessionInfo) RecordError() {
	s.ErrorCount++
	s.LastUsed = time.Now().UTC()
}

// FeatureID resolves the session grouping key for a task: the task's declared
// feature when present, otherwise a project-wide default.
func FeatureID(t Task, projectID string) string {
	if t.Meta.Feature != "" {
		return t.Meta.Feature
	}
	return fmt.Sprintf("project:%s", projectID)
}

// HelperFeatureID groups helper-agent validation exchanges per project so
// they never share a conversation with implementation work.
func HelperFeatureID(projectID string) string {
	return fmt.Sprintf("helper:validation:%s", projectID)
}
