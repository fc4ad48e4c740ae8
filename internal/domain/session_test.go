package domain

import "testing"

func TestContextLimit(t *testing.T) {
	tests := []struct {
		provider string
		expected int
	}{
		{ProviderClaude, 200_000},
		{ProviderCursor, 200_000},
		{ProviderGemini, 1_000_000},
		{ProviderCopilot, 128_000},
		{ProviderCodex, 192_000},
		{ProviderOllama, 32_000},
		{"someday-llm", DefaultContextLimit},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			if got := ContextLimit(tt.provider); got != tt.expected {
				t.Errorf("ContextLimit(%q) = %d, want %d", tt.provider, got, tt.expected)
			}
		})
	}
}

func TestSessionUsable(t *testing.T) {
	tests := []struct {
		name     string
		session  SessionInfo
		expected bool
	}{
		{"fresh", SessionInfo{Provider: ProviderClaude}, true},
		{"some errors", SessionInfo{Provider: ProviderClaude, ErrorCount: 4}, true},
		{"too many errors", SessionInfo{Provider: ProviderClaude, ErrorCount: 5}, false},
		{"under token cap", SessionInfo{Provider: ProviderClaude, EstimatedTokens: 159_999}, true},
		{"at token cap", SessionInfo{Provider: ProviderClaude, EstimatedTokens: 160_000}, false},
		{"big window still usable", SessionInfo{Provider: ProviderGemini, EstimatedTokens: 700_000}, true},
		{"unknown provider uses default cap", SessionInfo{Provider: "someday-llm", EstimatedTokens: 110_000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Usable(); got != tt.expected {
				t.Errorf("Usable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSessionTouchAndRecordError(t *testing.T) {
	s := SessionInfo{Provider: ProviderGemini}
	s.Touch(1500)
	if s.EstimatedTokens != 1500 {
		t.Errorf("Expected 1500 tokens, got %d", s.EstimatedTokens)
	}
	if s.LastUsed.IsZero() {
		t.Error("Touch must stamp LastUsed")
	}
	s.Touch(0)
	if s.EstimatedTokens != 1500 {
		t.Errorf("Zero tokens must not change the estimate, got %d", s.EstimatedTokens)
	}

	s.RecordError()
	s.RecordError()
	if s.ErrorCount != 2 {
		t.Errorf("Expected 2 errors, got %d", s.ErrorCount)
	}
}

func TestFeatureID(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		expected string
	}{
		{"declared feature", Task{Meta: TaskMeta{Feature: "auth"}}, "auth"},
		{"empty feature falls back", Task{Meta: TaskMeta{}}, "project:proj-1"},
		{"no meta falls back", Task{}, "project:proj-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeatureID(tt.task, "proj-1"); got != tt.expected {
				t.Errorf("FeatureID() = %q, want %q", got, tt.expected)
			}
		})
	}

	if got := HelperFeatureID("proj-1"); got != "helper:validation:proj-1" {
		t.Errorf("HelperFeatureID() = %q", got)
	}
}
