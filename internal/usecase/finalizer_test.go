package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/domain/mocks"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func passedReport(taskID string) domain.ValidationReport {
	return domain.ValidationReport{
		TaskID:     taskID,
		Passed:     true,
		Confidence: domain.ConfidenceHigh,
		Stage:      domain.StageDeterministic,
		Summary:    "all criteria verified",
	}
}

func inFlightState(task domain.Task) *domain.SupervisorState {
	st := freshState()
	st.Iteration = 4
	st.CurrentTask = &task
	st.SetProgress(task.TaskID, domain.TaskProgress{RetryCount: 1, LastError: "earlier failure"})
	st.Backoff = &domain.BackoffState{TaskID: task.TaskID, Level: 1, Deadline: time.Now().UTC()}
	return st
}

func TestTaskFinalizer_CompleteRetiresTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	task := queuedTask("t-1")
	st := inFlightState(task)

	audit := mocks.NewMockAuditSink(t)
	audit.EXPECT().Write(mock.Anything, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Event == domain.AuditTaskCompleted && e.TaskID == "t-1" && e.Iteration == 4
	})).Return(nil).Once()
	analytics := mocks.NewMockAnalyticsSink(t)
	analytics.EXPECT().WriteTaskMetrics(mock.Anything, mock.MatchedBy(func(m domain.TaskMetrics) bool {
		return m.TaskID == "t-1" && m.Outcome == domain.OutcomeCompleted && m.Attempts == 2 && m.InputTokens == 300
	})).Return(nil).Once()

	f := usecase.NewTaskFinalizer(audit, analytics)
	stats := usecase.TaskStats{}
	stats.Note("gemini", domain.Usage{InputTokens: 100, OutputTokens: 50})
	stats.Note("gemini", domain.Usage{InputTokens: 200, OutputTokens: 80})

	require.NoError(t, f.Complete(ctx, st, task, passedReport("t-1"), stats))

	require.Len(t, st.CompletedTasks, 1)
	assert.Equal(t, "t-1", st.CompletedTasks[0].TaskID)
	assert.Equal(t, 4, st.CompletedTasks[0].Iteration)
	assert.True(t, st.CompletedTasks[0].Report.Passed)
	assert.Nil(t, st.CurrentTask)
	assert.Nil(t, st.Backoff)
	assert.Zero(t, st.Progress("t-1"))
	require.NotNil(t, st.LastValidation)
	assert.Equal(t, "all criteria verified", st.LastValidation.Summary)
	assert.True(t, st.TaskRetired("t-1"))
}

func TestTaskFinalizer_BlockKeepsEvidence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	task := queuedTask("t-2")
	st := inFlightState(task)

	audit := mocks.NewMockAuditSink(t)
	audit.EXPECT().Write(mock.Anything, mock.MatchedBy(func(e domain.AuditEntry) bool {
		return e.Event == domain.AuditTaskBlocked && e.TaskID == "t-2"
	})).Return(nil).Once()
	analytics := mocks.NewMockAnalyticsSink(t)
	analytics.EXPECT().WriteTaskMetrics(mock.Anything, mock.MatchedBy(func(m domain.TaskMetrics) bool {
		return m.Outcome == domain.OutcomeBlocked
	})).Return(nil).Once()

	f := usecase.NewTaskFinalizer(audit, analytics)
	report := failedReport("t-2", "src/server.ts exists")
	require.NoError(t, f.Block(ctx, st, task, usecase.BlockReasonMaxRetries, "still failing", &report, usecase.TaskStats{Attempts: 2}))

	require.Len(t, st.BlockedTasks, 1)
	blocked := st.BlockedTasks[0]
	assert.Equal(t, "t-2", blocked.Task.TaskID)
	assert.Equal(t, domain.TaskBlocked, blocked.Task.Status)
	assert.Equal(t, usecase.BlockReasonMaxRetries, blocked.Reason)
	assert.Equal(t, "still failing", blocked.LastError)
	require.NotNil(t, blocked.Report)
	assert.Nil(t, st.CurrentTask)
	assert.Nil(t, st.Backoff)
	assert.True(t, st.TaskRetired("t-2"))
}

func TestTaskFinalizer_BlockWithoutReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	task := queuedTask("t-3")
	st := freshState()
	st.CurrentTask = &task
	prior := passedReport("t-0")
	st.LastValidation = &prior

	f := usecase.NewTaskFinalizer(nil, nil)
	require.NoError(t, f.Block(ctx, st, task, usecase.BlockReasonRepeatedError, "exit 1: boom", nil, usecase.TaskStats{}))

	require.Len(t, st.BlockedTasks, 1)
	assert.Nil(t, st.BlockedTasks[0].Report)
	assert.Equal(t, "t-0", st.LastValidation.TaskID, "no new report leaves the last one in place")
}

func TestTaskFinalizer_AuditFailureSurfaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	task := queuedTask("t-4")
	st := freshState()
	st.CurrentTask = &task

	audit := mocks.NewMockAuditSink(t)
	audit.EXPECT().Write(mock.Anything, mock.Anything).Return(errors.New("disk full"))

	f := usecase.NewTaskFinalizer(audit, nil)
	err := f.Complete(ctx, st, task, passedReport("t-4"), usecase.TaskStats{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestTaskFinalizer_MetricsFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	task := queuedTask("t-5")
	st := freshState()
	st.CurrentTask = &task

	analytics := mocks.NewMockAnalyticsSink(t)
	analytics.EXPECT().WriteTaskMetrics(mock.Anything, mock.Anything).Return(errors.New("disk full"))

	f := usecase.NewTaskFinalizer(nil, analytics)
	assert.NoError(t, f.Complete(ctx, st, task, passedReport("t-5"), usecase.TaskStats{}))
	assert.Len(t, st.CompletedTasks, 1)
}
