package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// TaskStats accumulates dispatch effort for one task across its attempts.
// Flushed to the analytics sink when the task retires.
type TaskStats struct {
	Provider     string
	Attempts     int
	InputTokens  int
	OutputTokens int
	StartedAt    time.Time
}

// Note records one dispatch attempt.
func (s *TaskStats) Note(provider string, usage domain.Usage) {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	if provider != "" {
		s.Provider = provider
	}
	s.Attempts++
	s.InputTokens += usage.InputTokens
	s.OutputTokens += usage.OutputTokens
}

// TaskFinalizer retires tasks into completed or blocked history and emits
// the audit and analytics records that go with retirement.
type TaskFinalizer struct {
	Audit     domain.AuditSink
	Analytics domain.AnalyticsSink
}

// NewTaskFinalizer wires the finalizer.
func NewTaskFinalizer(audit domain.AuditSink, analytics domain.AnalyticsSink) TaskFinalizer {
	return TaskFinalizer{Audit: audit, Analytics: analytics}
}

// Complete appends the task to completed history and clears every trace of
// it from the in-flight state.
func (f TaskFinalizer) Complete(ctx domain.Context, st *domain.SupervisorState, task domain.Task, report domain.ValidationReport, stats TaskStats) error {
	record := domain.CompletedTask{
		TaskID:      task.TaskID,
		CompletedAt: time.Now().UTC(),
		Iteration:   st.Iteration,
		Report:      report,
	}
	st.CompletedTasks = append(st.CompletedTasks, record)
	st.LastValidation = &report
	f.retire(st, task.TaskID)

	slog.Info("task completed",
		slog.String("task_id", task.TaskID),
		slog.Int("iteration", st.Iteration),
		slog.String("summary", report.Summary))

	if err := f.audit(ctx, domain.AuditEntry{
		Event:     domain.AuditTaskCompleted,
		TaskID:    task.TaskID,
		Iteration: st.Iteration,
		Provider:  stats.Provider,
		Detail:    report.Summary,
	}); err != nil {
		return err
	}
	return f.flush(ctx, st, task, domain.OutcomeCompleted, stats)
}

// Block appends the task to blocked history with the evidence the operator
// needs to decide on re-enqueueing. The loop itself keeps running.
func (f TaskFinalizer) Block(ctx domain.Context, st *domain.SupervisorState, task domain.Task, reason, lastError string, report *domain.ValidationReport, stats TaskStats) error {
	task.Status = domain.TaskBlocked
	record := domain.BlockedTask{
		Task:      task,
		Reason:    reason,
		BlockedAt: time.Now().UTC(),
		LastError: lastError,
		Report:    report,
	}
	st.BlockedTasks = append(st.BlockedTasks, record)
	if report != nil {
		st.LastValidation = report
	}
	f.retire(st, task.TaskID)

	slog.Warn("task blocked",
		slog.String("task_id", task.TaskID),
		slog.String("reason", reason),
		slog.String("last_error", lastError))

	if err := f.audit(ctx, domain.AuditEntry{
		Event:     domain.AuditTaskBlocked,
		TaskID:    task.TaskID,
		Iteration: st.Iteration,
		Provider:  stats.Provider,
		Detail:    fmt.Sprintf("%s: %s", reason, lastError),
	}); err != nil {
		return err
	}
	return f.flush(ctx, st, task, domain.OutcomeBlocked, stats)
}

// retire clears the in-flight traces of a task: current pointer, scratchpad,
// and any staged backoff window.
func (f TaskFinalizer) retire(st *domain.SupervisorState, taskID string) {
	if st.CurrentTask != nil && st.CurrentTask.TaskID == taskID {
		st.CurrentTask = nil
	}
	st.ClearProgress(taskID)
	if st.Backoff != nil && st.Backoff.TaskID == taskID {
		st.Backoff = nil
	}
}

func (f TaskFinalizer) audit(ctx domain.Context, entry domain.AuditEntry) error {
	if f.Audit == nil {
		return nil
	}
	entry.Timestamp = time.Now().UTC()
	if err := retryTransient(ctx, func() error { return f.Audit.Write(ctx, entry) }); err != nil {
		return fmt.Errorf("audit %s for task %s: %w", entry.Event, entry.TaskID, err)
	}
	return nil
}

// flush writes the per-task metrics record. Metrics are observability, not
// the audit trail: a failed flush is logged and swallowed.
func (f TaskFinalizer) flush(ctx domain.Context, st *domain.SupervisorState, task domain.Task, outcome string, stats TaskStats) error {
	if f.Analytics == nil {
		return nil
	}
	var duration float64
	if !stats.StartedAt.IsZero() {
		duration = time.Since(stats.StartedAt).Seconds()
	}
	metrics := domain.TaskMetrics{
		TaskID:          task.TaskID,
		TaskType:        task.TaskType,
		Outcome:         outcome,
		Provider:        stats.Provider,
		Attempts:        stats.Attempts,
		DurationSeconds: duration,
		InputTokens:     stats.InputTokens,
		OutputTokens:    stats.OutputTokens,
		Iteration:       st.Iteration,
		CompletedAt:     time.Now().UTC(),
	}
	if err := retryTransient(ctx, func() error { return f.Analytics.WriteTaskMetrics(ctx, metrics) }); err != nil {
		slog.Warn("metrics flush failed", slog.String("task_id", task.TaskID), slog.Any("error", err))
	}
	return nil
}
