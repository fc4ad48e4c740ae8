package domain

import "time"

// SupervisorStatus is the top-level control loop status.
type SupervisorStatus string

const (
	StatusRunning   SupervisorStatus = "RUNNING"
	StatusHalted    SupervisorStatus = "HALTED"
	StatusBlocked   SupervisorStatus = "BLOCKED"
	StatusCompleted SupervisorStatus = "COMPLETED"
)

// ExecutionMode selects between autonomous and operator-stepped runs.
type ExecutionMode string

const (
	ModeAuto   ExecutionMode = "AUTO"
	ModeManual ExecutionMode = "MANUAL"
)

// Goal is operator-authored; the plane never synthesizes or expands it.
type Goal struct {
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
	Completed   bool   `json:"completed"`
}

// QueueMeta records what the loop learned about the task queue.
type QueueMeta struct {
	Exhausted bool `json:"exhausted"`
}

// BackoffState tracks a resource-exhausted sleep window. The loop halts to
// sleep and compares wall-clock against Deadline on the next tick.
type BackoffState struct {
	TaskID   string    `json:"task_id"`
	Level    int       `json:"level"`
	Deadline time.Time `json:"deadline"`
}

// SupervisorState is the single source of truth, persisted atomically as one
// JSON blob under one fixed key. The control loop is its only writer.
type SupervisorState struct {
	Status         SupervisorStatus        `json:"status" validate:"required,oneof=RUNNING HALTED BLOCKED COMPLETED"`
	ExecutionMode  ExecutionMode           `json:"execution_mode" validate:"required,oneof=AUTO MANUAL"`
	Iteration      int                     `json:"iteration" validate:"gte=0"`
	Goal           Goal                    `json:"goal"`
	QueueMeta      QueueMeta               `json:"queue_meta"`
	CurrentTask    *Task                   `json:"current_task,omitempty"`
	CompletedTasks []CompletedTask         `json:"completed_tasks"`
	BlockedTasks   []BlockedTask           `json:"blocked_tasks"`
	LastValidation *ValidationReport       `json:"last_validation_report,omitempty"`
	ActiveSessions map[string]SessionInfo  `json:"active_sessions"`
	TaskProgress   map[string]TaskProgress `json:"task_progress"`
	Backoff        *BackoffState           `json:"resource_backoff,omitempty"`
	HaltReason     string                  `json:"halt_reason,omitempty"`
	HaltDetails    string                  `json:"halt_details,omitempty"`
	LastUpdated    time.Time               `json:"last_updated"`
}

// NewSupervisorState builds the initial blob written by init-state.
func NewSupervisorState(mode ExecutionMode, goal Goal) *SupervisorState {
	return &SupervisorState{
		Status:         StatusRunning,
		ExecutionMode:  mode,
		Goal:           goal,
		CompletedTasks: []CompletedTask{},
		BlockedTasks:   []BlockedTask{},
		ActiveSessions: map[string]SessionInfo{},
		TaskProgress:   map[string]TaskProgress{},
		LastUpdated:    time.Now().UTC(),
	}
}

// Progress returns the scratchpad record for a task, zero-valued when absent.
func (s *SupervisorState) Progress(taskID string) TaskProgress {
	if s.TaskProgress == nil {
		return TaskProgress{}
	}
	return s.TaskProgress[taskID]
}

// SetProgress stores the scratchpad record for a task.
func (s *SupervisorState) SetProgress(taskID string, p TaskProgress) {
	if s.TaskProgress == nil {
		s.TaskProgress = map[string]TaskProgress{}
	}
	s.TaskProgress[taskID] = p
}

// ClearProgress drops the scratchpad record when a task retires.
func (s *SupervisorState) ClearProgress(taskID string) {
	delete(s.TaskProgress, taskID)
}

// Session returns the live session for a feature, if any.
func (s *SupervisorState) Session(featureID string) (SessionInfo, bool) {
	if s.ActiveSessions == nil {
		return SessionInfo{}, false
	}
	info, ok := s.ActiveSessions[featureID]
	return info, ok
}

// PutSession stores or replaces the session for a feature.
func (s *SupervisorState) PutSession(info SessionInfo) {
	if s.ActiveSessions == nil {
		s.ActiveSessions = map[string]SessionInfo{}
	}
	s.ActiveSessions[info.FeatureID] = info
}

// DropSession discards the session for a feature; the next use opens a new one.
func (s *SupervisorState) DropSession(featureID string) {
	delete(s.ActiveSessions, featureID)
}

// TaskRetired reports whether a task id already sits in completed or blocked
// history. Retired tasks are never dispatched again.
func (s *SupervisorState) TaskRetired(taskID string) bool {
	for _, ct := range s.CompletedTasks {
		if ct.TaskID == taskID {
			return true
		}
	}
	for _, bt := range s.BlockedTasks {
		if bt.Task.TaskID == taskID {
			return true
		}
	}
	return false
}

// Halt flips the state to HALTED with a reason the operator will read.
func (s *SupervisorState) Halt(reason, details string) {
	s.Status = StatusHalted
	s.HaltReason = reason
	s.HaltDetails = details
}

// Resume clears halt bookkeeping and sets the loop runnable again.
func (s *SupervisorState) Resume() {
	s.Status = StatusRunning
	s.HaltReason = ""
	s.HaltDetails = ""
}
