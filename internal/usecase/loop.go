package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/observability"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/service/validation"
)

// ControlLoop drives the supervisor: load state, pick a task, dispatch it to
// a provider, validate the result, and persist the outcome, over and over
// until the queue is exhausted or a critical halt stops the run. It is the
// single writer of supervisor state; operator commands act between
// iterations, never inside one.
type ControlLoop struct {
	State      StateManager
	Retriever  TaskRetriever
	Dispatcher Dispatcher
	Sessions   SessionResolver
	Registry   domain.ProviderRegistry
	Breaker    *CircuitBreaker
	Halts      HaltDetector
	Pipeline   *validation.Pipeline
	Retry      RetryOrchestrator
	Finalizer  TaskFinalizer
	Goals      GoalChecker
	Prompts    PromptBuilder
	Sandbox    *sandbox.Sandbox
	Audit      domain.AuditSink

	// HelperProvider names the provider backing helper validation. Helper
	// session bookkeeping is recorded under this name.
	HelperProvider string
	// InitialRounds caps interrogation during normal attempts; FinalRounds
	// caps it on the last budgeted attempt.
	InitialRounds int
	FinalRounds   int
	// MaxIterations stops the run after that many passes. Zero runs until
	// the queue or a halt decides.
	MaxIterations int
	// PollInterval is the state re-check cadence while sleeping out a
	// resource backoff.
	PollInterval time.Duration

	stats map[string]*TaskStats
}

// Run executes loop passes until the run reaches a terminal condition: queue
// exhausted with the goal judged, a critical halt, an operator halt observed,
// a manual-mode pause, or the iteration budget. A nil return means the
// outcome is recorded in state; errors are conditions state could not record,
// invariant violations included.
func (l *ControlLoop) Run(ctx context.Context) error {
	for done := 0; ; done++ {
		if l.MaxIterations > 0 && done >= l.MaxIterations {
			slog.Info("iteration budget reached", slog.Int("iterations", done))
			return nil
		}
		cont, err := l.step(ctx)
		if err != nil {
			l.haltTransient(ctx, err)
			return err
		}
		if !cont {
			return nil
		}
	}
}

// step runs one pass. The returned bool reports whether another pass should
// follow.
func (l *ControlLoop) step(ctx context.Context) (bool, error) {
	st, err := l.State.Load(ctx)
	if err != nil {
		return false, err
	}
	if st.Status != domain.StatusRunning {
		// Leave the blob exactly as the operator or the last run left it.
		slog.Info("control loop idle",
			slog.String("status", string(st.Status)),
			slog.String("halt_reason", st.HaltReason))
		return false, nil
	}

	if st.Backoff != nil && time.Now().Before(st.Backoff.Deadline) {
		return l.awaitBackoff(ctx, st.Backoff)
	}

	ret, err := l.Retriever.Retrieve(ctx, st)
	if err != nil {
		if errors.Is(err, domain.ErrInvariantViolation) {
			l.haltInvariant(ctx, st, err)
		}
		return false, err
	}
	if ret.Task == nil {
		st.QueueMeta.Exhausted = true
		return false, l.checkGoal(ctx, st)
	}
	for _, id := range ret.SkippedRetired {
		slog.Warn("skipped retired task in queue", slog.String("task_id", id))
	}

	task := *ret.Task
	prog := st.Progress(task.TaskID)
	retrying := prog.RetryPending
	fixPrompt := ""
	if retrying {
		fixPrompt = prog.FixPrompt
		prog.RetryPending = false
		prog.FixPrompt = ""
		st.SetProgress(task.TaskID, prog)
	}

	projectID := st.Goal.ProjectID
	if _, err := l.Sandbox.EnsureProject(projectID); err != nil {
		l.haltInvariant(ctx, st, err)
		return false, err
	}
	workDir, err := l.Sandbox.EnsureWorkDir(projectID, task.WorkingDirectory)
	if err != nil {
		l.haltInvariant(ctx, st, err)
		return false, err
	}

	// Persist the in-flight transition before dispatching. A crash after
	// this point recovers the task from current_task instead of losing it.
	task.Status = domain.TaskInProgress
	st.CurrentTask = &task
	st.QueueMeta.Exhausted = false
	st.Iteration++
	if err := l.State.Persist(ctx, st); err != nil {
		return false, err
	}

	event, detail := domain.AuditTaskStarted, fmt.Sprintf("source=%s", ret.Source)
	if retrying {
		event = domain.AuditTaskRetried
		detail = fmt.Sprintf("retry %d of %d", prog.RetryCount, task.MaxRetries())
		observability.RetryTask(string(task.TaskType))
	} else {
		observability.StartTask(string(task.TaskType))
	}
	if err := l.audit(ctx, domain.AuditEntry{
		Event:     event,
		TaskID:    task.TaskID,
		Iteration: st.Iteration,
		Detail:    detail,
	}); err != nil {
		return false, err
	}
	slog.Info("dispatching task",
		slog.String("task_id", task.TaskID),
		slog.String("type", string(task.TaskType)),
		slog.Int("iteration", st.Iteration),
		slog.String("source", string(ret.Source)))

	prompt, kind := fixPrompt, domain.PromptKindFix
	if prompt == "" {
		prompt = l.Prompts.Implementation(task, st.Goal)
		kind = domain.PromptKindImplementation
	}
	featureID := domain.FeatureID(task, projectID)
	stats := l.taskStats(task.TaskID)
	ask := l.askAgent(st, task, workDir, featureID, stats)

	out, err := l.Dispatcher.Dispatch(ctx, st, DispatchRequest{
		Task:      task,
		Prompt:    prompt,
		Kind:      kind,
		WorkDir:   workDir,
		FeatureID: featureID,
		AgentMode: task.AgentMode,
		Iteration: st.Iteration,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoEligibleProvider) {
			return false, l.haltLoop(ctx, st, string(domain.HaltCircuitBroken), err.Error())
		}
		return false, err
	}
	stats.Note(out.Provider, out.Result.Usage)

	signal, sigDetail := l.Halts.Detect(out.Result, task.TaskType)
	if signal != domain.HaltResourceExhausted {
		l.Retry.ClearBackoff(st, task.TaskID)
	}
	switch signal {
	case domain.HaltResourceExhausted:
		return l.apply(ctx, st, task, l.Retry.ResourceExhausted(st, task, sigDetail), stats)
	case domain.HaltProviderExecFailure:
		if out.Class == domain.ErrorClassInvalidModel {
			dec := RetryDecision{Action: ActionBlock, Reason: BlockReasonInvalidModel, LastError: sigDetail}
			return l.apply(ctx, st, task, dec, stats)
		}
		return l.apply(ctx, st, task, l.Retry.FailExec(st, task, sigDetail), stats)
	case domain.HaltAmbiguityDetected:
		return l.apply(ctx, st, task, l.Retry.FailAmbiguity(st, task, sigDetail), stats)
	case domain.HaltBlocked, domain.HaltOutputFormatInvalid:
		return false, l.haltLoop(ctx, st, string(signal), sigDetail)
	}

	rounds := l.InitialRounds
	if st.Progress(task.TaskID).RetryCount >= task.MaxRetries() {
		rounds = l.FinalRounds
	}
	helperFeature := domain.HelperFeatureID(projectID)
	pout := l.Pipeline.Run(ctx, validation.Input{
		Task:          task,
		Response:      out.Result.Output(),
		WorkDir:       workDir,
		ProjectID:     projectID,
		HelperSession: l.Sessions.Resolve(st, l.HelperProvider, helperFeature),
		Rounds:        rounds,
		Ask:           ask,
	})
	if err := l.foldHelper(ctx, st, task, helperFeature, pout, stats); err != nil {
		return false, err
	}
	st.LastValidation = &pout.Report
	observability.ObserveValidation(pout.Report.Stage, pout.Report.Passed, string(pout.Report.Confidence))
	if err := l.audit(ctx, domain.AuditEntry{
		Event:     domain.AuditValidationResult,
		TaskID:    task.TaskID,
		Iteration: st.Iteration,
		Provider:  out.Provider,
		Detail: fmt.Sprintf("stage=%s passed=%t confidence=%s",
			pout.Report.Stage, pout.Report.Passed, pout.Report.Confidence),
	}); err != nil {
		return false, err
	}

	if !pout.NeedsRetry {
		dec := RetryDecision{Action: ActionComplete, Report: &pout.Report}
		return l.apply(ctx, st, task, dec, stats)
	}
	return l.apply(ctx, st, task, l.Retry.FailValidation(ctx, st, task, pout.Report, workDir, ask), stats)
}

// apply carries out one retry decision and persists the resulting state.
func (l *ControlLoop) apply(ctx domain.Context, st *domain.SupervisorState, task domain.Task, dec RetryDecision, stats *TaskStats) (bool, error) {
	switch dec.Action {
	case ActionRetry:
		prog := st.Progress(task.TaskID)
		slog.Info("task staged for retry",
			slog.String("task_id", task.TaskID),
			slog.Int("retry", prog.RetryCount),
			slog.Int("max_retries", task.MaxRetries()),
			slog.String("last_error", dec.LastError))

	case ActionComplete:
		if err := l.Finalizer.Complete(ctx, st, task, *dec.Report, *stats); err != nil {
			return false, err
		}
		observability.CompleteTask(string(task.TaskType))
		l.dropStats(task.TaskID)

	case ActionBlock:
		if err := l.Finalizer.Block(ctx, st, task, dec.Reason, dec.LastError, dec.Report, *stats); err != nil {
			return false, err
		}
		observability.BlockTask(string(task.TaskType))
		l.dropStats(task.TaskID)

	case ActionSleep:
		slog.Warn("provider resources exhausted, backing off",
			slog.String("task_id", task.TaskID),
			slog.Time("until", dec.SleepUntil),
			slog.String("detail", dec.LastError))

	case ActionHaltFinal:
		return false, l.haltLoop(ctx, st, domain.HaltReasonResourceExhaustedFinal, dec.LastError)

	default:
		return false, fmt.Errorf("%w: unknown retry action %q", domain.ErrInvariantViolation, dec.Action)
	}

	if err := l.State.Persist(ctx, st); err != nil {
		return false, err
	}
	observability.IterationsTotal.Inc()
	return l.more(st), nil
}

// checkGoal judges the run once the queue is exhausted. The verdict either
// completes the run or halts it for the operator; the loop never invents new
// tasks.
func (l *ControlLoop) checkGoal(ctx domain.Context, st *domain.SupervisorState) error {
	prov, err := l.goalProvider(ctx)
	if err != nil {
		return err
	}
	if prov == nil {
		return l.haltLoop(ctx, st, domain.HaltReasonGoalIncomplete,
			"queue exhausted and no eligible provider for the goal check")
	}
	projectDir, err := l.Sandbox.EnsureProject(st.Goal.ProjectID)
	if err != nil {
		l.haltInvariant(ctx, st, err)
		return err
	}
	outc, checkErr := l.Goals.Check(ctx, prov, st.Goal, st.CompletedTasks, projectDir)
	if err := l.logGoalCheck(ctx, st, prov.Name(), outc, checkErr); err != nil {
		return err
	}
	if checkErr != nil {
		slog.Warn("goal check failed", slog.Any("error", checkErr))
	}
	if outc.Verdict == GoalCompleted {
		st.Goal.Completed = true
		st.Status = domain.StatusCompleted
		if err := l.State.Persist(ctx, st); err != nil {
			return err
		}
		slog.Info("goal satisfied, run completed",
			slog.String("project_id", st.Goal.ProjectID),
			slog.Int("completed_tasks", len(st.CompletedTasks)))
		return nil
	}
	return l.haltLoop(ctx, st, domain.HaltReasonGoalIncomplete,
		fmt.Sprintf("goal check verdict: %s", outc.Verdict))
}

// goalProvider picks the first breaker-eligible provider in priority order.
// nil without error means every provider is currently broken.
func (l *ControlLoop) goalProvider(ctx domain.Context) (domain.Provider, error) {
	for _, name := range l.Registry.Priority() {
		eligible, err := l.Breaker.Eligible(ctx, name)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		prov, err := l.Registry.Lookup(name)
		if err != nil {
			continue
		}
		return prov, nil
	}
	return nil, nil
}

func (l *ControlLoop) logGoalCheck(ctx domain.Context, st *domain.SupervisorState, provider string, outc GoalCheckOutcome, checkErr error) error {
	if l.Audit == nil {
		return nil
	}
	record := domain.PromptRecord{
		Timestamp: time.Now().UTC(),
		Provider:  provider,
		SessionID: outc.Result.SessionID,
		Kind:      domain.PromptKindGoalCheck,
		Prompt:    outc.Prompt,
		Response:  outc.Result.Output(),
		Tokens:    outc.Result.Usage,
		Duration:  outc.Result.Duration.Seconds(),
		Err:       errString(checkErr),
	}
	if err := retryTransient(ctx, func() error {
		return l.Audit.WritePrompt(ctx, record)
	}); err != nil {
		return fmt.Errorf("log goal check prompt: %w", err)
	}
	return l.audit(ctx, domain.AuditEntry{
		Event:     domain.AuditGoalCheck,
		Iteration: st.Iteration,
		Provider:  provider,
		Detail:    fmt.Sprintf("verdict=%s", outc.Verdict),
	})
}

// foldHelper records the helper exchange: session bookkeeping into state and
// the prompt into the log. A helper that never ran leaves no trace.
func (l *ControlLoop) foldHelper(ctx domain.Context, st *domain.SupervisorState, task domain.Task, feature string, pout validation.Outcome, stats *TaskStats) error {
	if pout.HelperPrompt == "" {
		return nil
	}
	stats.Note("", pout.HelperUsage)
	if pout.HelperErr != nil {
		slog.Warn("helper validation unavailable",
			slog.String("task_id", task.TaskID),
			slog.Any("error", pout.HelperErr))
		l.Sessions.RecordError(st, feature)
	} else {
		l.Sessions.Record(st, l.HelperProvider, feature, pout.HelperPrompt, domain.ProviderResult{
			SessionID: pout.HelperSession,
			Usage:     pout.HelperUsage,
		})
	}
	if l.Audit == nil {
		return nil
	}
	record := domain.PromptRecord{
		Timestamp: time.Now().UTC(),
		TaskID:    task.TaskID,
		Provider:  l.HelperProvider,
		SessionID: pout.HelperSession,
		Kind:      domain.PromptKindHelper,
		Prompt:    pout.HelperPrompt,
		Response:  pout.HelperRaw,
		Tokens:    pout.HelperUsage,
		Err:       errString(pout.HelperErr),
	}
	if err := retryTransient(ctx, func() error {
		return l.Audit.WritePrompt(ctx, record)
	}); err != nil {
		return fmt.Errorf("log helper prompt: %w", err)
	}
	return nil
}

// askAgent routes interrogation questions through the dispatcher so they
// share the task's session and land in the prompt log like any other
// exchange.
func (l *ControlLoop) askAgent(st *domain.SupervisorState, task domain.Task, workDir, featureID string, stats *TaskStats) validation.AgentAsk {
	return func(ctx context.Context, prompt string) (string, error) {
		out, err := l.Dispatcher.Dispatch(ctx, st, DispatchRequest{
			Task:      task,
			Prompt:    prompt,
			Kind:      domain.PromptKindInterrogation,
			WorkDir:   workDir,
			FeatureID: featureID,
			AgentMode: task.AgentMode,
			Iteration: st.Iteration,
		})
		if err != nil {
			return "", err
		}
		stats.Note(out.Provider, out.Result.Usage)
		if out.Result.Failed() {
			return "", resultErr(out.Result)
		}
		return out.Result.Output(), nil
	}
}

// awaitBackoff sleeps out a resource backoff window, re-reading state every
// poll so an operator halt lands within a second instead of after hours.
func (l *ControlLoop) awaitBackoff(ctx context.Context, backoff *domain.BackoffState) (bool, error) {
	poll := l.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	slog.Info("sleeping out resource backoff",
		slog.String("task_id", backoff.TaskID),
		slog.Int("level", backoff.Level),
		slog.Time("until", backoff.Deadline))
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for time.Now().Before(backoff.Deadline) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
		st, err := l.State.Load(ctx)
		if err != nil {
			return false, err
		}
		if st.Status != domain.StatusRunning {
			slog.Info("halt observed during backoff", slog.String("status", string(st.Status)))
			return false, nil
		}
	}
	return true, nil
}

// more reports whether another pass should follow. Manual mode pauses after
// every completed iteration so the operator can step the run.
func (l *ControlLoop) more(st *domain.SupervisorState) bool {
	if st.ExecutionMode == domain.ModeManual {
		slog.Info("manual mode pause", slog.Int("iteration", st.Iteration))
		return false
	}
	return true
}

// haltLoop persists a critical halt and records it in the audit trail.
func (l *ControlLoop) haltLoop(ctx domain.Context, st *domain.SupervisorState, reason, details string) error {
	st.Halt(reason, details)
	if err := l.State.Persist(ctx, st); err != nil {
		return err
	}
	slog.Error("control loop halted",
		slog.String("reason", reason),
		slog.String("details", details))
	entry := domain.AuditEntry{
		Event:     domain.AuditHalt,
		Iteration: st.Iteration,
		Detail:    fmt.Sprintf("%s: %s", reason, details),
	}
	if st.CurrentTask != nil {
		entry.TaskID = st.CurrentTask.TaskID
	}
	return l.audit(ctx, entry)
}

// haltInvariant tries to record an invariant violation in state before the
// loop dies. The violation error still propagates; this only leaves a reason
// behind for the operator.
func (l *ControlLoop) haltInvariant(ctx domain.Context, st *domain.SupervisorState, cause error) {
	st.Halt(domain.HaltReasonInvariantViolation, cause.Error())
	if err := l.State.Persist(ctx, st); err != nil {
		slog.Error("could not persist invariant halt", slog.Any("error", err))
	}
}

// haltTransient marks the run halted when retries against the store or the
// log sinks ran dry. Best effort: when the store itself is down the halt
// cannot be recorded and the error alone has to do.
func (l *ControlLoop) haltTransient(ctx domain.Context, cause error) {
	if !errors.Is(cause, domain.ErrTransient) {
		return
	}
	st, err := l.State.Load(ctx)
	if err != nil || st.Status != domain.StatusRunning {
		return
	}
	st.Halt(domain.HaltReasonTransientExhausted, cause.Error())
	if err := l.State.Persist(ctx, st); err != nil {
		slog.Error("could not persist transient halt", slog.Any("error", err))
	}
}

func (l *ControlLoop) audit(ctx domain.Context, entry domain.AuditEntry) error {
	if l.Audit == nil {
		return nil
	}
	entry.Timestamp = time.Now().UTC()
	if err := retryTransient(ctx, func() error {
		return l.Audit.Write(ctx, entry)
	}); err != nil {
		return fmt.Errorf("audit %s: %w", entry.Event, err)
	}
	return nil
}

func (l *ControlLoop) taskStats(taskID string) *TaskStats {
	if l.stats == nil {
		l.stats = map[string]*TaskStats{}
	}
	s, ok := l.stats[taskID]
	if !ok {
		s = &TaskStats{}
		l.stats[taskID] = s
	}
	return s
}

func (l *ControlLoop) dropStats(taskID string) {
	delete(l.stats, taskID)
}
