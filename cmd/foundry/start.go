package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/observability"
	"github.com/ai-supervisor-foundry/foundry/internal/app"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func newStartCmd(opts *rootOptions) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the control loop until the queue drains or a halt stops it",
		Long:  "Loads the persisted state and iterates: retrieve a task, dispatch it\nto a provider, validate the result, persist the outcome. SIGINT or\nSIGTERM stops between operations; the state blob survives for resume.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg

			logger := observability.SetupLogger(cfg)
			slog.SetDefault(logger)

			// Register all Prometheus metrics once per process so /metrics
			// exposes loop, provider and queue instrumentation.
			observability.InitMetrics()

			shutdownTracer, err := observability.SetupTracing(cfg)
			if err != nil {
				slog.Error("failed to setup tracing", slog.Any("error", err))
			}
			defer func() {
				if shutdownTracer != nil {
					_ = shutdownTracer(context.Background())
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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

			mgr := usecase.NewStateManager(stateStore, cfg.StateKey)
			st, err := mgr.Load(ctx)
			if err != nil {
				return err
			}
			projectID := st.Goal.ProjectID
			if projectID == "" {
				return fmt.Errorf("state names no project id; run set-goal with --project-id first")
			}

			loop, err := app.BuildLoop(cfg, stateStore, queueStore, projectID)
			if err != nil {
				return err
			}

			addr := httpAddr
			if addr == "" {
				addr = cfg.MetricsAddr
			}
			if addr != "" {
				srv := app.NewServer(loop.State, usecase.NewTaskQueue(queueStore, cfg.QueueName), stateStore, version)
				handler := app.BuildRouter(cfg, srv)
				go func() {
					if err := app.Serve(ctx, cfg, addr, handler); err != nil {
						slog.Error("status server failed", slog.Any("error", err))
					}
				}()
			}

			slog.Info("control loop starting",
				slog.String("project_id", projectID),
				slog.String("mode", string(st.ExecutionMode)),
				slog.String("status", string(st.Status)))
			if err := loop.Run(ctx); err != nil {
				return err
			}
			slog.Info("control loop finished")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "serve the read-only status API on this address (e.g. :8080); METRICS_ADDR is the fallback")
	return cmd
}
