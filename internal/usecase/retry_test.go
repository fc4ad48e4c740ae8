package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/service/validation"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func newOrchestrator() usecase.RetryOrchestrator {
	return usecase.NewRetryOrchestrator(usecase.NewPromptBuilder(), validation.NewInterrogator())
}

func failedReport(taskID string, criteria ...string) domain.ValidationReport {
	return domain.ValidationReport{
		TaskID:         taskID,
		Passed:         false,
		Confidence:     domain.ConfidenceLow,
		Stage:          domain.StageDeterministic,
		FailedCriteria: criteria,
		Summary:        "validation did not reach a passing verdict",
	}
}

func TestRetryOrchestrator_ValidationFailureStagesFixPrompt(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")

	decision := o.FailValidation(context.Background(), st, task, failedReport("t-1", "src/server.ts exists"), t.TempDir(), nil)
	assert.Equal(t, usecase.ActionRetry, decision.Action)

	prog := st.Progress("t-1")
	assert.Equal(t, 1, prog.RetryCount)
	assert.Equal(t, 1, prog.RepeatedErrorCount)
	assert.True(t, prog.RetryPending)
	assert.Equal(t, "validation did not reach a passing verdict", prog.LastError)
	assert.Contains(t, prog.FixPrompt, "did not pass validation")
	assert.Contains(t, prog.FixPrompt, "src/server.ts exists")
}

func TestRetryOrchestrator_FixPromptCarriesPriorError(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{LastError: "exit 1: segmentation fault", RepeatedErrorCount: 1})

	o.FailValidation(context.Background(), st, task, failedReport("t-1", "src/server.ts exists"), t.TempDir(), nil)
	assert.Contains(t, st.Progress("t-1").FixPrompt, "Last error: exit 1: segmentation fault")
}

func TestRetryOrchestrator_FinalInterrogationCompletesTask(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1, LastError: "earlier failure", RepeatedErrorCount: 1})

	workDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "src", "server.ts"), []byte("export {}\n"), 0o644))

	var asked string
	ask := func(_ context.Context, prompt string) (string, error) {
		asked = prompt
		return "CRITERION 1: IMPLEMENTED src/server.ts", nil
	}

	decision := o.FailValidation(context.Background(), st, task, failedReport("t-1", "src/server.ts exists"), workDir, ask)
	assert.Equal(t, usecase.ActionComplete, decision.Action)
	require.NotNil(t, decision.Report)
	assert.True(t, decision.Report.Passed)
	assert.Equal(t, domain.ConfidenceMedium, decision.Report.Confidence)
	assert.Len(t, decision.Report.Interrogation, 1)
	assert.Contains(t, asked, "CRITERION 1: src/server.ts exists")

	prog := st.Progress("t-1")
	assert.Equal(t, 2, prog.RetryCount)
	assert.True(t, prog.InterrogationDone)
}

func TestRetryOrchestrator_FinalInterrogationAdmissionBlocks(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1, LastError: "earlier failure", RepeatedErrorCount: 1})

	ask := func(_ context.Context, _ string) (string, error) {
		return "CRITERION 1: INCOMPLETE", nil
	}

	decision := o.FailValidation(context.Background(), st, task, failedReport("t-1", "src/server.ts exists"), t.TempDir(), ask)
	assert.Equal(t, usecase.ActionBlock, decision.Action)
	assert.Equal(t, usecase.BlockReasonMaxRetries, decision.Reason)
	require.NotNil(t, decision.Report)
	assert.False(t, decision.Report.Passed)
	assert.Contains(t, decision.Report.FailedCriteria, "src/server.ts exists")
}

func TestRetryOrchestrator_FinalInterrogationRunsOnce(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1, InterrogationDone: true})

	asks := 0
	ask := func(_ context.Context, _ string) (string, error) {
		asks++
		return "CRITERION 1: IMPLEMENTED src/server.ts", nil
	}

	decision := o.FailValidation(context.Background(), st, task, failedReport("t-1", "src/server.ts exists"), t.TempDir(), ask)
	assert.Equal(t, usecase.ActionBlock, decision.Action)
	assert.Equal(t, usecase.BlockReasonMaxRetries, decision.Reason)
	assert.Zero(t, asks)
}

func TestRetryOrchestrator_RepeatedIdenticalErrorBlocks(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-3")
	task.RetryPolicy.MaxRetries = 5

	first := o.FailExec(st, task, "exit 1: invalid model argument 'foo'")
	assert.Equal(t, usecase.ActionRetry, first.Action)
	second := o.FailExec(st, task, "exit 1: invalid model argument 'foo'")
	assert.Equal(t, usecase.ActionRetry, second.Action)

	third := o.FailExec(st, task, "exit 1: invalid model argument 'foo'")
	assert.Equal(t, usecase.ActionBlock, third.Action)
	assert.Equal(t, usecase.BlockReasonRepeatedError, third.Reason)

	prog := st.Progress("t-3")
	assert.Equal(t, 3, prog.RepeatedErrorCount)
	assert.Equal(t, 2, prog.RetryCount, "the block must not spend another retry")
	assert.Less(t, prog.RetryCount, task.MaxRetries())
}

func TestRetryOrchestrator_DifferentErrorResetsStreak(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	task.RetryPolicy.MaxRetries = 5

	o.FailExec(st, task, "exit 1: connection reset")
	o.FailExec(st, task, "exit 1: connection reset")
	decision := o.FailExec(st, task, "exit 137: killed")

	assert.Equal(t, usecase.ActionRetry, decision.Action)
	assert.Equal(t, 1, st.Progress("t-1").RepeatedErrorCount)
}

func TestRetryOrchestrator_ExecFailureRetriesWithoutFixPrompt(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")

	decision := o.FailExec(st, task, "exit 1: spawn failed")
	assert.Equal(t, usecase.ActionRetry, decision.Action)

	prog := st.Progress("t-1")
	assert.True(t, prog.RetryPending)
	assert.Empty(t, prog.FixPrompt, "a crashed provider never saw the prompt; resend the original")
}

func TestRetryOrchestrator_ExecFailurePastBudgetBlocks(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1})

	decision := o.FailExec(st, task, "exit 1: spawn failed")
	assert.Equal(t, usecase.ActionBlock, decision.Action)
	assert.Equal(t, usecase.BlockReasonMaxRetries, decision.Reason)
	assert.Equal(t, "exit 1: spawn failed", decision.LastError)
}

func TestRetryOrchestrator_AmbiguityStagesClarification(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")

	decision := o.FailAmbiguity(st, task, `agent asked the operator: "could you clarify the port?"`)
	assert.Equal(t, usecase.ActionRetry, decision.Action)

	prog := st.Progress("t-1")
	assert.Equal(t, 1, prog.RetryCount)
	assert.True(t, prog.RetryPending)
	assert.Contains(t, prog.FixPrompt, "could you clarify the port?")
	assert.Contains(t, prog.FixPrompt, "The operator is not available for questions")
}

func TestRetryOrchestrator_AmbiguityPastBudgetBlocks(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1})

	decision := o.FailAmbiguity(st, task, `agent asked the operator: "which one?"`)
	assert.Equal(t, usecase.ActionBlock, decision.Action)
	assert.Equal(t, usecase.BlockReasonMaxRetries, decision.Reason)
	assert.Nil(t, decision.Report)
}

func TestRetryOrchestrator_ResourceExhaustedClimbsLadder(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	task := queuedTask("t-1")

	delays := []time.Duration{time.Minute, 5 * time.Minute, 20 * time.Minute, time.Hour, 2 * time.Hour}
	for level, delay := range delays {
		before := time.Now().UTC()
		decision := o.ResourceExhausted(st, task, "credit balance too low")
		require.Equal(t, usecase.ActionSleep, decision.Action)
		require.NotNil(t, st.Backoff)
		assert.Equal(t, "t-1", st.Backoff.TaskID)
		assert.Equal(t, level, st.Backoff.Level)
		assert.WithinDuration(t, before.Add(delay), st.Backoff.Deadline, 2*time.Second)
		assert.Equal(t, st.Backoff.Deadline, decision.SleepUntil)
	}

	final := o.ResourceExhausted(st, task, "credit balance too low")
	assert.Equal(t, usecase.ActionHaltFinal, final.Action)
	assert.Equal(t, domain.HaltReasonResourceExhaustedFinal, final.Reason)
	assert.Nil(t, st.Backoff)
	assert.Zero(t, st.Progress("t-1").RetryCount, "exhaustion is not the task's fault")
}

func TestRetryOrchestrator_BackoffLadderIsPerTask(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	st.Backoff = &domain.BackoffState{TaskID: "t-1", Level: 3, Deadline: time.Now().UTC()}

	decision := o.ResourceExhausted(st, queuedTask("t-2"), "out of credits")
	assert.Equal(t, usecase.ActionSleep, decision.Action)
	assert.Equal(t, 0, st.Backoff.Level)
	assert.Equal(t, "t-2", st.Backoff.TaskID)
}

func TestRetryOrchestrator_ClearBackoff(t *testing.T) {
	t.Parallel()
	o := newOrchestrator()
	st := freshState()
	st.Backoff = &domain.BackoffState{TaskID: "t-1", Level: 1, Deadline: time.Now().UTC()}

	o.ClearBackoff(st, "t-2")
	assert.NotNil(t, st.Backoff, "another task's backoff stays")
	o.ClearBackoff(st, "t-1")
	assert.Nil(t, st.Backoff)
}
