package domain

import "time"

// Audit event kinds written to the per-project audit log.
const (
	AuditTaskStarted      = "task_started"
	AuditTaskCompleted    = "task_completed"
	AuditTaskBlocked      = "task_blocked"
	AuditTaskRetried      = "task_retried"
	AuditValidationResult = "validation_result"
	AuditProviderCall     = "provider_call"
	AuditBreakerTripped   = "breaker_tripped"
	AuditHalt             = "halt"
	AuditResume           = "resume"
	AuditGoalCheck        = "goal_check"
)

// AuditEntry is one line in audit.log.jsonl. ID is a ULID, so sorting ids
// recovers write order even when two entries share a timestamp. RunID ties
// every entry from a single supervisor process together so interleaved runs
// can be separated.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id,omitempty"`
	Event     string         `json:"event"`
	TaskID    string         `json:"task_id,omitempty"`
	Iteration int            `json:"iteration,omitempty"`
	Provider  string         `json:"provider,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// PromptRecord is one line in logs/prompts.log.jsonl: the full prompt and
// response of a provider exchange, kept for replay and debugging.
type PromptRecord struct {
	Timestamp time.Time `json:"timestamp"`
	TaskID    string    `json:"task_id,omitempty"`
	Provider  string    `json:"provider"`
	SessionID string    `json:"session_id,omitempty"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response,omitempty"`
	Tokens    Usage     `json:"tokens"`
	Duration  float64   `json:"duration_seconds"`
	Err       string    `json:"error,omitempty"`
}

// Prompt record kinds.
const (
	PromptKindImplementation = "implementation"
	PromptKindFix            = "fix"
	PromptKindHelper         = "helper_validation"
	PromptKindInterrogation  = "interrogation"
	PromptKindGoalCheck      = "goal_check"
)

// TaskMetrics is one line in metrics.jsonl, emitted when a task retires.
type TaskMetrics struct {
	TaskID          string    `json:"task_id"`
	TaskType        TaskType  `json:"task_type"`
	Outcome         string    `json:"outcome"`
	Provider        string    `json:"provider,omitempty"`
	Attempts        int       `json:"attempts"`
	DurationSeconds float64   `json:"duration_seconds"`
	InputTokens     int       `json:"input_tokens"`
	OutputTokens    int       `json:"output_tokens"`
	Iteration       int       `json:"iteration"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Task outcomes recorded in metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeBlocked   = "blocked"
)

// RunSummary aggregates a whole run for the metrics CLI command.
type RunSummary struct {
	TasksCompleted int              `json:"tasks_completed"`
	TasksBlocked   int              `json:"tasks_blocked"`
	TotalAttempts  int              `json:"total_attempts"`
	TotalSeconds   float64          `json:"total_seconds"`
	InputTokens    int              `json:"input_tokens"`
	OutputTokens   int              `json:"output_tokens"`
	ByType         map[TaskType]int `json:"by_type"`
	ByOutcome      map[string]int   `json:"by_outcome"`
}
