package domain

import (
	"errors"
	"testing"
)

func TestDetectTaskType(t *testing.T) {
	tests := []struct {
		name         string
		intent       string
		instructions string
		expected     TaskType
	}{
		{"behavioral from intent", "greet the user when the session starts", "", TaskTypeBehavioral},
		{"testing from intent", "add unit tests for the parser", "", TaskTypeTesting},
		{"documentation from intent", "update the README with setup steps", "", TaskTypeDocumentation},
		{"configuration from intent", "add a config flag for timeouts", "", TaskTypeConfiguration},
		{"coding fallback", "implement the widget factory", "", TaskTypeCoding},
		{"behavioral wins over testing", "answer questions about the test suite", "", TaskTypeBehavioral},
		{"instructions consulted", "do the thing", "write integration tests covering retries", TaskTypeTesting},
		{"empty input", "", "", TaskTypeCoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectTaskType(tt.intent, tt.instructions)
			if got != tt.expected {
				t.Errorf("DetectTaskType(%q, %q) = %q, want %q", tt.intent, tt.instructions, got, tt.expected)
			}
		})
	}
}

func TestTaskNormalize(t *testing.T) {
	task := Task{
		TaskID:             "t-1",
		Intent:             "write docs for the storage layer",
		AcceptanceCriteria: []string{"README mentions storage"},
	}
	task.Normalize()

	if task.TaskType != TaskTypeDocumentation {
		t.Errorf("Expected detected type %q, got %q", TaskTypeDocumentation, task.TaskType)
	}
	if task.Status != TaskPending {
		t.Errorf("Expected status %q, got %q", TaskPending, task.Status)
	}

	explicit := Task{TaskID: "t-2", TaskType: TaskTypeCoding, Status: TaskInProgress}
	explicit.Normalize()
	if explicit.TaskType != TaskTypeCoding {
		t.Errorf("Normalize must not override an explicit type, got %q", explicit.TaskType)
	}
	if explicit.Status != TaskInProgress {
		t.Errorf("Normalize must not override an explicit status, got %q", explicit.Status)
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		TaskID:             "t-1",
		Intent:             "implement feature",
		AcceptanceCriteria: []string{"it works"},
	}
	valid.Normalize()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid task, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Task)
		target error
	}{
		{"missing task id", func(tk *Task) { tk.TaskID = "" }, ErrInvalidArgument},
		{"no criteria", func(tk *Task) { tk.AcceptanceCriteria = nil }, ErrInvalidArgument},
		{"parent traversal", func(tk *Task) { tk.WorkingDirectory = "../escape" }, ErrInvariantViolation},
		{"absolute path", func(tk *Task) { tk.WorkingDirectory = "/etc" }, ErrInvariantViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid
			task.AcceptanceCriteria = append([]string(nil), valid.AcceptanceCriteria...)
			tt.mutate(&task)
			err := task.Validate()
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestTaskMaxRetries(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		expected int
	}{
		{"default when absent", Task{}, 1},
		{"default when zero", Task{RetryPolicy: RetryPolicy{MaxRetries: 0}}, 1},
		{"explicit", Task{RetryPolicy: RetryPolicy{MaxRetries: 3}}, 3},
		{"negative clamped", Task{RetryPolicy: RetryPolicy{MaxRetries: -2}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.MaxRetries(); got != tt.expected {
				t.Errorf("MaxRetries() = %d, want %d", got, tt.expected)
			}
		})
	}
}
