package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/analytics"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/audit"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func newInitStateCmd(opts *rootOptions) *cobra.Command {
	var mode, goal, projectID string
	cmd := &cobra.Command{
		Use:   "init-state",
		Short: "Create the initial supervisor state blob",
		Long:  "Writes a fresh RUNNING state under the state key. Fails if the key\nalready holds anything; wiping a previous run is never implicit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := domain.ExecutionMode(strings.ToUpper(mode))
			if m != domain.ModeAuto && m != domain.ModeManual {
				return fmt.Errorf("execution mode must be AUTO or MANUAL, got %q", mode)
			}
			ctx := cmd.Context()
			store, err := opts.openState(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mgr := usecase.NewStateManager(store, opts.cfg.StateKey)
			st := domain.NewSupervisorState(m, domain.Goal{Description: goal, ProjectID: projectID})
			if err := mgr.Init(ctx, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (mode %s, project %s)\n", opts.cfg.StateKey, m, projectID)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "execution-mode", "AUTO", "AUTO or MANUAL")
	cmd.Flags().StringVar(&goal, "goal", "", "project goal statement")
	cmd.Flags().StringVar(&projectID, "project-id", "", "sandbox project id")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("project-id")
	return cmd
}

func newSetGoalCmd(opts *rootOptions) *cobra.Command {
	var description, projectID string
	cmd := &cobra.Command{
		Use:   "set-goal",
		Short: "Replace the goal statement of an initialized run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openState(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mgr := usecase.NewStateManager(store, opts.cfg.StateKey)
			st, err := mgr.Load(ctx)
			if err != nil {
				return err
			}
			if projectID == "" {
				projectID = st.Goal.ProjectID
			}
			st.Goal = domain.Goal{Description: description, ProjectID: projectID}
			if err := mgr.Persist(ctx, st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "goal set for project %s\n", projectID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new goal statement")
	cmd.Flags().StringVar(&projectID, "project-id", "", "sandbox project id (defaults to the current one)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newEnqueueCmd(opts *rootOptions) *cobra.Command {
	var taskFile string
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Push tasks from a JSON or YAML file onto the queue",
		Long:  "Reads one task object or an array of them. The whole batch is\nvalidated before anything is pushed; a bad task rejects the file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(taskFile)
			if err != nil {
				return err
			}
			tasks, err := decodeTasks(raw, taskFile)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return fmt.Errorf("%s contains no tasks", taskFile)
			}

			ctx := cmd.Context()
			store, err := opts.openQueue(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			q := usecase.NewTaskQueue(store, opts.cfg.QueueName)
			if err := q.Enqueue(ctx, tasks...); err != nil {
				return err
			}
			depth, err := q.Len(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d task(s); queue depth %d\n", len(tasks), depth)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskFile, "task-file", "", "path to a task file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("task-file")
	return cmd
}

// decodeTasks parses a task file. YAML documents are converted through JSON
// so both formats share the task struct tags.
func decodeTasks(raw []byte, path string) ([]domain.Task, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", path, err)
		}
		raw = converted
	}
	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err == nil {
		return tasks, nil
	}
	var one domain.Task
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("parse %s: expected a task object or array: %w", path, err)
	}
	return []domain.Task{one}, nil
}

func newHaltCmd(opts *rootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "halt",
		Short: "Halt the run; the loop stops at its next state read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openState(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mgr := usecase.NewStateManager(store, opts.cfg.StateKey)
			st, err := mgr.Load(ctx)
			if err != nil {
				return err
			}
			st.Halt(domain.HaltReasonOperatorRequested, reason)
			if err := mgr.Persist(ctx, st); err != nil {
				return err
			}
			auditEvent(ctx, opts, st, domain.AuditHalt, reason)
			fmt.Fprintf(cmd.OutOrStdout(), "halted: %s\n", reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "operator requested", "reason recorded in state and audit log")
	return cmd
}

func newResumeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Clear a halt and set the run RUNNING again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := opts.openState(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			mgr := usecase.NewStateManager(store, opts.cfg.StateKey)
			st, err := mgr.Load(ctx)
			if err != nil {
				return err
			}
			if st.Status == domain.StatusRunning {
				fmt.Fprintln(cmd.OutOrStdout(), "already running")
				return nil
			}
			prev := st.HaltReason
			st.Resume()
			if err := mgr.Persist(ctx, st); err != nil {
				return err
			}
			auditEvent(ctx, opts, st, domain.AuditResume, fmt.Sprintf("cleared halt %s", prev))
			fmt.Fprintln(cmd.OutOrStdout(), "resumed")
			return nil
		},
	}
}

// auditEvent appends an operator action to the project audit log. Log
// trouble never blocks the command; the state write already happened.
func auditEvent(ctx context.Context, opts *rootOptions, st *domain.SupervisorState, event, detail string) {
	projectID := st.Goal.ProjectID
	if projectID == "" {
		return
	}
	box, err := sandbox.New(opts.cfg.SandboxRoot)
	if err != nil {
		return
	}
	auditPath, err := box.AuditLogPath(projectID)
	if err != nil {
		return
	}
	promptsPath, err := box.PromptsLogPath(projectID)
	if err != nil {
		return
	}
	sink := audit.NewFileSink(auditPath, promptsPath)
	_ = sink.Write(ctx, domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Event:     event,
		Iteration: st.Iteration,
		Detail:    detail,
	})
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current run state and queue depth",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			stateStore, err := opts.openState(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = stateStore.Close() }()
			queueStore, err := opts.openQueue(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = queueStore.Close() }()

			mgr := usecase.NewStateManager(stateStore, opts.cfg.StateKey)
			st, err := mgr.Load(ctx)
			if err != nil {
				return err
			}
			depth, err := usecase.NewTaskQueue(queueStore, opts.cfg.QueueName).Len(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				raw, err := json.MarshalIndent(st, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", raw)
				return nil
			}

			fmt.Fprintf(out, "status:      %s\n", st.Status)
			fmt.Fprintf(out, "mode:        %s\n", st.ExecutionMode)
			fmt.Fprintf(out, "iteration:   %d\n", st.Iteration)
			fmt.Fprintf(out, "goal:        %s (project %s, completed %t)\n", st.Goal.Description, st.Goal.ProjectID, st.Goal.Completed)
			fmt.Fprintf(out, "queue:       %d waiting (exhausted %t)\n", depth, st.QueueMeta.Exhausted)
			fmt.Fprintf(out, "tasks:       %d completed, %d blocked\n", len(st.CompletedTasks), len(st.BlockedTasks))
			if st.CurrentTask != nil {
				prog := st.Progress(st.CurrentTask.TaskID)
				fmt.Fprintf(out, "current:     %s (%s, retries %d)\n", st.CurrentTask.TaskID, st.CurrentTask.TaskType, prog.RetryCount)
				if prog.LastError != "" {
					fmt.Fprintf(out, "last error:  %s\n", prog.LastError)
				}
			}
			if st.Backoff != nil {
				fmt.Fprintf(out, "backoff:     level %d until %s (task %s)\n", st.Backoff.Level, st.Backoff.Deadline.Format(time.RFC3339), st.Backoff.TaskID)
			}
			if st.HaltReason != "" {
				fmt.Fprintf(out, "halt:        %s: %s\n", st.HaltReason, st.HaltDetails)
			}
			if st.LastValidation != nil {
				fmt.Fprintf(out, "validation:  %s passed=%t confidence=%s\n", st.LastValidation.Stage, st.LastValidation.Passed, st.LastValidation.Confidence)
			}
			names := opts.cfg.ProviderPriority
			if len(names) == 0 {
				names = domain.DefaultProviderPriority()
			}
			breaker := usecase.NewCircuitBreaker(stateStore, opts.cfg.BreakerPrefix, opts.cfg.BreakerTTL())
			if snap, err := breaker.Snapshot(ctx, names); err == nil {
				for _, name := range names {
					if rec, ok := snap[name]; ok && rec.Broken() {
						fmt.Fprintf(out, "breaker:     %s tripped (%s) until %s\n", name, rec.ErrorType, rec.ExpiresAt.Format(time.RFC3339))
					}
				}
			}
			fmt.Fprintf(out, "updated:     %s\n", st.LastUpdated.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw state blob")
	return cmd
}

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Aggregate the per-task metrics of a project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if projectID == "" {
				store, err := opts.openState(ctx)
				if err != nil {
					return err
				}
				st, err := usecase.NewStateManager(store, opts.cfg.StateKey).Load(ctx)
				_ = store.Close()
				if err != nil {
					return err
				}
				projectID = st.Goal.ProjectID
			}
			if projectID == "" {
				return fmt.Errorf("no project id in state; pass --project-id")
			}

			box, err := sandbox.New(opts.cfg.SandboxRoot)
			if err != nil {
				return err
			}
			metricsPath, err := box.MetricsPath(projectID)
			if err != nil {
				return err
			}
			summary, err := analytics.NewFileSink(metricsPath).Summary(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project:     %s\n", projectID)
			fmt.Fprintf(out, "completed:   %d\n", summary.TasksCompleted)
			fmt.Fprintf(out, "blocked:     %d\n", summary.TasksBlocked)
			fmt.Fprintf(out, "attempts:    %d\n", summary.TotalAttempts)
			fmt.Fprintf(out, "duration:    %.1fs\n", summary.TotalSeconds)
			fmt.Fprintf(out, "tokens:      %d in, %d out\n", summary.InputTokens, summary.OutputTokens)
			types := make([]string, 0, len(summary.ByType))
			for tt := range summary.ByType {
				types = append(types, string(tt))
			}
			sort.Strings(types)
			for _, tt := range types {
				fmt.Fprintf(out, "  %-12s %d\n", tt, summary.ByType[domain.TaskType(tt)])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project-id", "", "project to aggregate (defaults to the one in state)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "foundry version %s (build: %s)\n", version, buildTime)
		},
	}
}
