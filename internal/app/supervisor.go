package app

import (
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/analytics"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/astquery"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/audit"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/provider"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/tokencount"
	"github.com/ai-supervisor-foundry/foundry/internal/config"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/service/validation"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

// BuildLoop assembles a control loop over already connected stores. The
// project id locates the sandbox workspace whose audit, prompt and metrics
// logs the run appends to.
func BuildLoop(cfg config.Config, stateStore, queueStore domain.KVStore, projectID string) (*usecase.ControlLoop, error) {
	box, err := sandbox.New(cfg.SandboxRoot)
	if err != nil {
		return nil, err
	}
	if _, err := box.EnsureProject(projectID); err != nil {
		return nil, err
	}
	auditPath, err := box.AuditLogPath(projectID)
	if err != nil {
		return nil, err
	}
	promptsPath, err := box.PromptsLogPath(projectID)
	if err != nil {
		return nil, err
	}
	metricsPath, err := box.MetricsPath(projectID)
	if err != nil {
		return nil, err
	}
	sink := audit.NewFileSink(auditPath, promptsPath)
	metricsSink := analytics.NewFileSink(metricsPath)

	registry := provider.NewRegistry(provider.BinPaths{
		Claude:  cfg.ClaudeCLIPath,
		Gemini:  cfg.GeminiCLIPath,
		Copilot: cfg.CopilotCLIPath,
		Codex:   cfg.CodexCLIPath,
		Cursor:  cfg.CursorCLIPath,
	}, cfg.ProviderPriority)
	breaker := usecase.NewCircuitBreaker(stateStore, cfg.BreakerPrefix, cfg.BreakerTTL())
	sessions := usecase.NewSessionResolver(tokencount.NewEstimator(), cfg.DisableSessionReuse)
	dispatcher := usecase.NewDispatcher(registry, breaker, sessions, sink, cfg.DispatchTimeout)

	bounds := sandbox.ScanBounds{MaxFiles: cfg.DeterministicMaxFiles, MaxBytes: cfg.DeterministicMaxBytes}
	exec := validation.NewExecutor(
		sandbox.NewScanner(bounds, cfg.UseRipgrep),
		astquery.NewFinder(cfg.DeterministicMaxFiles, cfg.DeterministicMaxBytes),
		bounds,
	)

	var helper *validation.Helper
	helperName := ""
	if cfg.UseLocalHelper {
		ollama := provider.NewOllama(cfg.OllamaBaseURL, cfg.LocalHelperModel, cfg.HelperTimeout)
		registry.Register(ollama)
		helper = validation.NewHelper(ollama, sandbox.NewRunner(), cfg.LocalHelperModel, cfg.HelperAgentMode,
			cfg.HelperTimeout, cfg.VerifyCmdTimeout, cfg.HelperStrict)
		helperName = ollama.Name()
	}
	pipeline := validation.NewPipeline(
		validation.NewBehavioral(),
		validation.NewDeterministic(exec, cfg.DeterministicEnabled, cfg.DeterministicPercent),
		helper,
		validation.NewInterrogator(),
		cfg.HelperStrict,
	)

	queue := usecase.NewTaskQueue(queueStore, cfg.QueueName)
	return &usecase.ControlLoop{
		State:          usecase.NewStateManager(stateStore, cfg.StateKey),
		Retriever:      usecase.NewTaskRetriever(queue),
		Dispatcher:     dispatcher,
		Sessions:       sessions,
		Registry:       registry,
		Breaker:        breaker,
		Halts:          usecase.NewHaltDetector(),
		Pipeline:       pipeline,
		Retry:          usecase.NewRetryOrchestrator(usecase.NewPromptBuilder(), validation.NewInterrogator()),
		Finalizer:      usecase.NewTaskFinalizer(sink, metricsSink),
		Goals:          usecase.NewGoalChecker(cfg.GoalCheckTimeout),
		Prompts:        usecase.NewPromptBuilder(),
		Sandbox:        box,
		Audit:          sink,
		HelperProvider: helperName,
		InitialRounds:  cfg.InterrogationRoundsInitial,
		FinalRounds:    cfg.InterrogationRoundsFinal,
		MaxIterations:  cfg.MaxIterations,
	}, nil
}
