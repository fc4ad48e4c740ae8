package usecase

import (
	"fmt"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/observability"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// DefaultDispatchTimeout is the hard cap on one provider execution.
const DefaultDispatchTimeout = 30 * time.Minute

// DispatchRequest is one prompt to run through provider selection.
type DispatchRequest struct {
	Task      domain.Task
	Prompt    string
	Kind      string
	WorkDir   string
	FeatureID string
	AgentMode string
	Iteration int
}

// DispatchResult is the outcome of one dispatch. Class is set when the
// final provider call failed; Tripped lists providers whose breaker opened
// while failing over.
type DispatchResult struct {
	Provider string
	Result   domain.ProviderResult
	Class    domain.ErrorClass
	Tripped  []string
}

// Dispatcher selects an eligible provider and executes one prompt against
// it. Provider-level failures (tripped breakers) fail over to the next
// candidate without consuming task retries; task-level failures come back to
// the caller for retry accounting.
type Dispatcher struct {
	Registry domain.ProviderRegistry
	Breaker  *CircuitBreaker
	Sessions SessionResolver
	Audit    domain.AuditSink
	Timeout  time.Duration
}

// NewDispatcher constructs a Dispatcher. A zero timeout selects the default
// thirty minutes.
func NewDispatcher(registry domain.ProviderRegistry, breaker *CircuitBreaker, sessions SessionResolver, audit domain.AuditSink, timeout time.Duration) Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return Dispatcher{Registry: registry, Breaker: breaker, Sessions: sessions, Audit: audit, Timeout: timeout}
}

// candidates orders providers for one dispatch: the task's tool preference
// first when the registry knows it, then the configured priority.
func (d Dispatcher) candidates(tool string) []string {
	priority := d.Registry.Priority()
	if tool == "" {
		return priority
	}
	if _, err := d.Registry.Lookup(tool); err != nil {
		return priority
	}
	out := []string{tool}
	for _, name := range priority {
		if name != tool {
			out = append(out, name)
		}
	}
	return out
}

// Dispatch runs the request against the first eligible provider. Session
// resolution and accounting happen here so every path through dispatch keeps
// supervisor state consistent with what actually ran.
func (d Dispatcher) Dispatch(ctx domain.Context, st *domain.SupervisorState, req DispatchRequest) (DispatchResult, error) {
	var out DispatchResult
	for _, name := range d.candidates(req.Task.Tool) {
		eligible, err := d.Breaker.Eligible(ctx, name)
		if err != nil {
			return out, err
		}
		if !eligible {
			continue
		}
		prov, err := d.Registry.Lookup(name)
		if err != nil {
			continue
		}

		sessionID := d.Sessions.Resolve(st, name, req.FeatureID)
		res := prov.Execute(ctx, domain.ExecuteRequest{
			Prompt:     req.Prompt,
			WorkingDir: req.WorkDir,
			AgentMode:  req.AgentMode,
			SessionID:  sessionID,
			FeatureID:  req.FeatureID,
			Timeout:    d.Timeout,
		})
		if err := d.logExchange(ctx, req, name, res); err != nil {
			return out, err
		}

		if !res.Failed() {
			d.Sessions.Record(st, name, req.FeatureID, req.Prompt, res)
			d.Breaker.RecordSuccess(name)
			observability.RecordProviderCall(name, "success", res.Duration, res.Usage.InputTokens, res.Usage.OutputTokens)
			return DispatchResult{Provider: name, Result: res, Tripped: out.Tripped}, nil
		}

		class := ClassifyError(res)
		res.ErrorClass = class
		observability.RecordProviderCall(name, string(class), res.Duration, res.Usage.InputTokens, res.Usage.OutputTokens)
		d.Sessions.RecordError(st, req.FeatureID)
		out.Provider = name
		out.Result = res
		out.Class = class

		// Exhaustion backs the task off and a bad model blocks it; neither
		// says anything about the provider's health.
		if class == domain.ErrorClassResourceExhausted || class == domain.ErrorClassInvalidModel {
			return out, nil
		}

		tripped, err := d.Breaker.RecordFailure(ctx, name, class)
		if err != nil {
			return out, err
		}
		if !tripped {
			return out, nil
		}
		out.Tripped = append(out.Tripped, name)
		observability.TripBreaker(name)
		if err := d.auditBreakerTrip(ctx, req, name, class); err != nil {
			return out, err
		}
		if class == domain.ErrorClassUnknown {
			// The streak trip latches the provider for the next dispatch,
			// but this failure is still the task's answer. Failing over
			// here would hide it from retry accounting.
			return out, nil
		}
	}
	return out, fmt.Errorf("dispatch task %s: %w", req.Task.TaskID, domain.ErrNoEligibleProvider)
}

func (d Dispatcher) logExchange(ctx domain.Context, req DispatchRequest, provider string, res domain.ProviderResult) error {
	if d.Audit == nil {
		return nil
	}
	record := domain.PromptRecord{
		Timestamp: time.Now().UTC(),
		TaskID:    req.Task.TaskID,
		Provider:  provider,
		SessionID: res.SessionID,
		Kind:      req.Kind,
		Prompt:    req.Prompt,
		Response:  res.Output(),
		Tokens:    res.Usage,
		Duration:  res.Duration.Seconds(),
		Err:       errString(res.Err),
	}
	if err := retryTransient(ctx, func() error {
		return d.Audit.WritePrompt(ctx, record)
	}); err != nil {
		return fmt.Errorf("log prompt: %w", err)
	}
	entry := domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Event:     domain.AuditProviderCall,
		TaskID:    req.Task.TaskID,
		Iteration: req.Iteration,
		Provider:  provider,
		Detail:    fmt.Sprintf("kind=%s exit=%d", req.Kind, res.ExitCode),
	}
	if err := retryTransient(ctx, func() error {
		return d.Audit.Write(ctx, entry)
	}); err != nil {
		return fmt.Errorf("log provider call: %w", err)
	}
	return nil
}

func (d Dispatcher) auditBreakerTrip(ctx domain.Context, req DispatchRequest, provider string, class domain.ErrorClass) error {
	if d.Audit == nil {
		return nil
	}
	entry := domain.AuditEntry{
		Timestamp: time.Now().UTC(),
		Event:     domain.AuditBreakerTripped,
		TaskID:    req.Task.TaskID,
		Iteration: req.Iteration,
		Provider:  provider,
		Detail:    string(class),
	}
	if err := retryTransient(ctx, func() error {
		return d.Audit.Write(ctx, entry)
	}); err != nil {
		return fmt.Errorf("log breaker trip: %w", err)
	}
	return nil
}
