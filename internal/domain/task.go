package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TaskType determines prompt assembly and validation routing.
type TaskType string

const (
	TaskTypeCoding        TaskType = "coding"
	TaskTypeBehavioral    TaskType = "behavioral"
	TaskTypeConfiguration TaskType = "configuration"
	TaskTypeTesting       TaskType = "testing"
	TaskTypeDocumentation TaskType = "documentation"
)

// TaskStatus enumerates the task lifecycle.
// A task never reverts from completed; blocked tasks are only revived by
// operator re-enqueue.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

// RetryPolicy bounds how often a failed task is re-dispatched.
type RetryPolicy struct {
	// MaxRetries counts re-dispatches after the initial attempt.
	// A zero value selects the default of one retry.
	MaxRetries int `json:"max_retries,omitempty"`
}

// TaskMeta carries optional session affinity hints supplied by the operator.
type TaskMeta struct {
	Feature   string `json:"feature,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Task is the atomic unit of operator intent.
type Task struct {
	TaskID             string      `json:"task_id" validate:"required"`
	Intent             string      `json:"intent,omitempty"`
	TaskType           TaskType    `json:"task_type,omitempty"`
	Tool               string      `json:"tool,omitempty"`
	AgentMode          string      `json:"agent_mode,omitempty"`
	Instructions       string      `json:"instructions,omitempty"`
	AcceptanceCriteria []string    `json:"acceptance_criteria" validate:"required,min=1"`
	RetryPolicy        RetryPolicy `json:"retry_policy,omitempty"`
	Status             TaskStatus  `json:"status,omitempty"`
	WorkingDirectory   string      `json:"working_directory,omitempty"`
	RequiredArtifacts  []string    `json:"required_artifacts,omitempty"`
	TestCommand        string      `json:"test_command,omitempty"`
	TestsRequired      bool        `json:"tests_required,omitempty"`
	Meta               TaskMeta    `json:"meta,omitempty"`
}

// MaxRetries returns the effective retry budget for the task.
func (t Task) MaxRetries() int {
	if t.RetryPolicy.MaxRetries <= 0 {
		return 1
	}
	return t.RetryPolicy.MaxRetries
}

// Normalize fills defaults: task type detection from keywords and pending
// status. Called once when a task enters the system via enqueue.
func (t *Task) Normalize() {
	if t.TaskType == "" {
		t.TaskType = DetectTaskType(t.Intent, t.Instructions)
	}
	if t.Status == "" {
		t.Status = TaskPending
	}
}

// Validate rejects tasks that cannot be driven through the lifecycle.
func (t Task) Validate() error {
	if strings.TrimSpace(t.TaskID) == "" {
		return fmt.Errorf("%w: task_id required", ErrInvalidArgument)
	}
	if len(t.AcceptanceCriteria) == 0 {
		return fmt.Errorf("%w: task %s has no acceptance criteria", ErrInvalidArgument, t.TaskID)
	}
	switch t.TaskType {
	case TaskTypeCoding, TaskTypeBehavioral, TaskTypeConfiguration, TaskTypeTesting, TaskTypeDocumentation, "":
	default:
		return fmt.Errorf("%w: task %s has unknown task_type %q", ErrInvalidArgument, t.TaskID, t.TaskType)
	}
	if strings.Contains(t.WorkingDirectory, "..") || strings.HasPrefix(t.WorkingDirectory, "/") {
		return fmt.Errorf("%w: task %s working_directory must be sandbox-relative", ErrInvariantViolation, t.TaskID)
	}
	return nil
}

var taskTypeKeywords = []struct {
	taskType TaskType
	pattern  *regexp.Regexp
}{
	{TaskTypeBehavioral, regexp.MustCompile(`(?i)\b(greet|respond|reply|converse|answer|chat)\b`)},
	{TaskTypeTesting, regexp.MustCompile(`(?i)\b(test|tests|spec|coverage|assert)\b`)},
	{TaskTypeDocumentation, regexp.MustCompile(`(?i)\b(document|documentation|readme|docs|changelog|comment)\b`)},
	{TaskTypeConfiguration, regexp.MustCompile(`(?i)\b(config|configure|configuration|settings|env|dotenv|yaml|toml|manifest)\b`)},
}

// DetectTaskType infers the type from intent and instruction keywords.
// Coding is the fallback: it is the broadest lifecycle (JSON response
// envelope, file-based validation).
func DetectTaskType(intent, instructions string) TaskType {
	text := intent + " " + instructions
	for _, kw := range taskTypeKeywords {
		if kw.pattern.MatchString(text) {
			return kw.taskType
		}
	}
	return TaskTypeCoding
}

// CompletedTask is the immutable record appended on validated success.
type CompletedTask struct {
	TaskID      string           `json:"task_id"`
	CompletedAt time.Time        `json:"completed_at"`
	Iteration   int              `json:"iteration"`
	Report      ValidationReport `json:"validation_report"`
}

// BlockedTask captures a task retired without success, with the evidence the
// operator needs to decide on re-enqueueing.
type BlockedTask struct {
	Task      Task              `json:"task"`
	Reason    string            `json:"reason"`
	BlockedAt time.Time         `json:"blocked_at"`
	LastError string            `json:"last_error,omitempty"`
	Report    *ValidationReport `json:"validation_report,omitempty"`
}

// TaskProgress is the per-task scratchpad held in supervisor state. It
// replaces dynamically named supervisor keys with one explicit record per
// task in flight.
type TaskProgress struct {
	RetryCount         int    `json:"retry_count"`
	LastError          string `json:"last_error,omitempty"`
	RepeatedErrorCount int    `json:"repeated_error_count"`
	InterrogationDone  bool   `json:"interrogation_done"`
	RetryPending       bool   `json:"retry_pending"`
	FixPrompt          string `json:"fix_prompt,omitempty"`
}
