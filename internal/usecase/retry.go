package usecase

import (
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/service/validation"
)

// repeatedErrorLimit blocks a task once the same error text lands this many
// times in a row, regardless of remaining retry budget.
const repeatedErrorLimit = 3

// Block reasons recorded on retired tasks.
const (
	BlockReasonMaxRetries    = "max_retries exceeded after final interrogation"
	BlockReasonRepeatedError = "repeated_identical_error"
	BlockReasonInvalidModel  = "invalid_model"
)

// resourceBackoffLadder escalates the sleep window for consecutive
// resource-exhausted dispatches of the same task. Past the last rung the
// loop halts permanently.
var resourceBackoffLadder = []time.Duration{
	time.Minute,
	5 * time.Minute,
	20 * time.Minute,
	time.Hour,
	2 * time.Hour,
}

// RetryAction tells the control loop what to do with the current task after
// a failed attempt.
type RetryAction string

const (
	// ActionRetry re-dispatches the task next iteration with the staged
	// fix prompt (or the original prompt when none was staged).
	ActionRetry RetryAction = "retry"
	// ActionBlock retires the task into blocked history.
	ActionBlock RetryAction = "block"
	// ActionComplete retires the task as completed; the final interrogation
	// resolved every outstanding criterion.
	ActionComplete RetryAction = "complete"
	// ActionSleep parks the loop until the staged backoff deadline.
	ActionSleep RetryAction = "sleep"
	// ActionHaltFinal stops the loop for good; the backoff ladder ran out.
	ActionHaltFinal RetryAction = "halt_final"
)

// RetryDecision is the orchestrator's verdict for one failed attempt.
// Report carries interrogation amendments when the final round ran.
type RetryDecision struct {
	Action     RetryAction
	Reason     string
	LastError  string
	Report     *domain.ValidationReport
	SleepUntil time.Time
}

// RetryOrchestrator owns the per-task scratchpad: retry counting,
// repeated-error detection, fix prompt staging, and the single final
// interrogation round granted after the retry budget is spent.
type RetryOrchestrator struct {
	Prompts      PromptBuilder
	Interrogator *validation.Interrogator
}

// NewRetryOrchestrator wires the orchestrator.
func NewRetryOrchestrator(prompts PromptBuilder, interrogator *validation.Interrogator) RetryOrchestrator {
	return RetryOrchestrator{Prompts: prompts, Interrogator: interrogator}
}

// FailValidation handles a dispatch whose validation did not pass. When the
// retry budget is spent it runs one last interrogation round over the failed
// criteria on the task's live session; full resolution completes the task,
// anything less blocks it.
func (o RetryOrchestrator) FailValidation(ctx domain.Context, st *domain.SupervisorState, task domain.Task, report domain.ValidationReport, workDir string, ask validation.AgentAsk) RetryDecision {
	errText := report.Summary
	prevError := st.Progress(task.TaskID).LastError
	if o.noteError(st, task.TaskID, errText) >= repeatedErrorLimit {
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonRepeatedError, LastError: errText, Report: &report}
	}

	prog := st.Progress(task.TaskID)
	prog.RetryCount++
	if prog.RetryCount > task.MaxRetries() {
		return o.finalInterrogation(ctx, st, task, prog, report, workDir, ask)
	}

	// The report already states this failure; only a different prior error
	// adds context to the fix prompt.
	if prevError == errText {
		prevError = ""
	}
	prog.FixPrompt = o.Prompts.Fix(task, report, prevError)
	prog.RetryPending = true
	st.SetProgress(task.TaskID, prog)
	return RetryDecision{Action: ActionRetry, LastError: errText, Report: &report}
}

// FailAmbiguity handles an agent that asked the operator a question instead
// of working. The clarification prompt spends a retry like any other failure.
func (o RetryOrchestrator) FailAmbiguity(st *domain.SupervisorState, task domain.Task, question string) RetryDecision {
	if o.noteError(st, task.TaskID, question) >= repeatedErrorLimit {
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonRepeatedError, LastError: question}
	}

	prog := st.Progress(task.TaskID)
	prog.RetryCount++
	if prog.RetryCount > task.MaxRetries() {
		// No validation ran, so there are no criteria to interrogate.
		st.SetProgress(task.TaskID, prog)
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonMaxRetries, LastError: question}
	}

	prog.FixPrompt = o.Prompts.Clarification(task, question)
	prog.RetryPending = true
	st.SetProgress(task.TaskID, prog)
	return RetryDecision{Action: ActionRetry, LastError: question}
}

// FailExec handles a provider subprocess failure. The retry re-sends the
// original task prompt; there is no agent response to correct.
func (o RetryOrchestrator) FailExec(st *domain.SupervisorState, task domain.Task, detail string) RetryDecision {
	if o.noteError(st, task.TaskID, detail) >= repeatedErrorLimit {
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonRepeatedError, LastError: detail}
	}

	prog := st.Progress(task.TaskID)
	prog.RetryCount++
	if prog.RetryCount > task.MaxRetries() {
		st.SetProgress(task.TaskID, prog)
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonMaxRetries, LastError: detail}
	}

	prog.FixPrompt = ""
	prog.RetryPending = true
	st.SetProgress(task.TaskID, prog)
	return RetryDecision{Action: ActionRetry, LastError: detail}
}

// ResourceExhausted stages the next backoff window for the task. Retry
// bookkeeping is untouched: an out-of-credit provider is not the task's
// fault. Consecutive exhaustions of the same task climb the ladder.
func (o RetryOrchestrator) ResourceExhausted(st *domain.SupervisorState, task domain.Task, detail string) RetryDecision {
	level := 0
	if st.Backoff != nil && st.Backoff.TaskID == task.TaskID {
		level = st.Backoff.Level + 1
	}
	if level >= len(resourceBackoffLadder) {
		st.Backoff = nil
		return RetryDecision{Action: ActionHaltFinal, Reason: domain.HaltReasonResourceExhaustedFinal, LastError: detail}
	}

	deadline := time.Now().UTC().Add(resourceBackoffLadder[level])
	st.Backoff = &domain.BackoffState{TaskID: task.TaskID, Level: level, Deadline: deadline}
	return RetryDecision{Action: ActionSleep, LastError: detail, SleepUntil: deadline}
}

// ClearBackoff drops the task's backoff record once a dispatch got through
// without exhausting the provider, so the next streak starts at the bottom
// of the ladder.
func (o RetryOrchestrator) ClearBackoff(st *domain.SupervisorState, taskID string) {
	if st.Backoff != nil && st.Backoff.TaskID == taskID {
		st.Backoff = nil
	}
}

// noteError updates the consecutive-identical-error counter and returns its
// new value.
func (o RetryOrchestrator) noteError(st *domain.SupervisorState, taskID, errText string) int {
	prog := st.Progress(taskID)
	if errText != "" && errText == prog.LastError {
		prog.RepeatedErrorCount++
	} else {
		prog.RepeatedErrorCount = 1
	}
	prog.LastError = errText
	st.SetProgress(taskID, prog)
	return prog.RepeatedErrorCount
}

// finalInterrogation grants the task one last chance to prove the work
// exists. It runs a single round; there is never a further dispatch either
// way.
func (o RetryOrchestrator) finalInterrogation(ctx domain.Context, st *domain.SupervisorState, task domain.Task, prog domain.TaskProgress, report domain.ValidationReport, workDir string, ask validation.AgentAsk) RetryDecision {
	criteria := append(append([]string(nil), report.FailedCriteria...), report.UncertainCriteria...)
	if prog.InterrogationDone || len(criteria) == 0 || ask == nil || o.Interrogator == nil {
		st.SetProgress(task.TaskID, prog)
		return RetryDecision{Action: ActionBlock, Reason: BlockReasonMaxRetries, LastError: prog.LastError, Report: &report}
	}

	evidence := make(map[string]string)
	for _, check := range report.Checks {
		if !check.Passed {
			evidence[check.Criterion] = check.Detail
		}
	}

	outcome := o.Interrogator.Run(ctx, criteria, evidence, workDir, 1, ask)
	prog.InterrogationDone = true
	st.SetProgress(task.TaskID, prog)

	report.Stage = domain.StageInterrogation
	report.Interrogation = append(report.Interrogation, outcome.Rounds...)
	report.CompletedAt = time.Now().UTC()
	if len(outcome.Admitted) == 0 && len(outcome.Unresolved) == 0 {
		report.Passed = true
		report.Confidence = domain.ConfidenceMedium
		report.FailedCriteria = nil
		report.UncertainCriteria = nil
		report.Summary = "final interrogation confirmed all claimed implementations"
		return RetryDecision{Action: ActionComplete, Report: &report}
	}

	report.Passed = false
	report.FailedCriteria = append(outcome.Admitted, outcome.Unresolved...)
	report.UncertainCriteria = nil
	report.Summary = "final interrogation left criteria unresolved or admitted"
	return RetryDecision{Action: ActionBlock, Reason: BlockReasonMaxRetries, LastError: prog.LastError, Report: &report}
}
