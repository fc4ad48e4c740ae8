// Package app wires the read-only status HTTP surface over a running
// supervisor. It exposes the persisted state snapshot, queue depth and
// health probes; every write still goes through the control loop or the
// operator CLI, never through HTTP.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/observability"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

// Server bundles the ports the status endpoints read from. All fields are
// required; the handlers never mutate state through any of them.
type Server struct {
	State   usecase.StateManager
	Queue   usecase.TaskQueue
	Store   domain.KVStore
	Version string
}

// NewServer constructs the status server over already connected ports.
func NewServer(state usecase.StateManager, queue usecase.TaskQueue, store domain.KVStore, version string) *Server {
	return &Server{State: state, Queue: queue, Store: store, Version: version}
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	codeStr := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotInitialized):
		code = http.StatusNotFound
		codeStr = "NOT_INITIALIZED"
	case errors.Is(err, domain.ErrInvariantViolation):
		code = http.StatusConflict
		codeStr = "INVARIANT_VIOLATION"
	case errors.Is(err, domain.ErrTransient):
		code = http.StatusServiceUnavailable
		codeStr = "STORE_UNAVAILABLE"
	}
	writeJSON(w, code, errorEnvelope{Error: apiError{Code: codeStr, Message: err.Error()}})
}

// currentTaskView trims the in-flight task to what an operator polls for.
// Full task payloads stay in the state blob and the audit log.
type currentTaskView struct {
	TaskID     string            `json:"task_id"`
	TaskType   domain.TaskType   `json:"task_type,omitempty"`
	Intent     string            `json:"intent,omitempty"`
	Status     domain.TaskStatus `json:"status,omitempty"`
	RetryCount int               `json:"retry_count"`
	LastError  string            `json:"last_error,omitempty"`
}

type statusPayload struct {
	Status         domain.SupervisorStatus  `json:"status"`
	ExecutionMode  domain.ExecutionMode     `json:"execution_mode"`
	Iteration      int                      `json:"iteration"`
	Goal           domain.Goal              `json:"goal"`
	QueueDepth     int64                    `json:"queue_depth"`
	QueueExhausted bool                     `json:"queue_exhausted"`
	CurrentTask    *currentTaskView         `json:"current_task,omitempty"`
	CompletedCount int                      `json:"completed_count"`
	BlockedCount   int                      `json:"blocked_count"`
	ActiveSessions int                      `json:"active_sessions"`
	Backoff        *domain.BackoffState     `json:"resource_backoff,omitempty"`
	HaltReason     string                   `json:"halt_reason,omitempty"`
	HaltDetails    string                   `json:"halt_details,omitempty"`
	LastValidation *domain.ValidationReport `json:"last_validation_report,omitempty"`
	LastUpdated    time.Time                `json:"last_updated"`
	Version        string                   `json:"version,omitempty"`
}

// StatusHandler returns a snapshot of the persisted supervisor state plus
// the live queue depth. It reads the same blob the loop persists, so the
// answer is at most one iteration stale.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		st, err := s.State.Load(ctx)
		if err != nil {
			LoggerFrom(r).Warn("status load failed", slog.Any("error", err))
			writeError(w, err)
			return
		}
		depth, err := s.Queue.Len(ctx)
		if err != nil {
			LoggerFrom(r).Warn("queue length failed", slog.Any("error", err))
			writeError(w, err)
			return
		}
		observability.QueueDepth.Set(float64(depth))

		payload := statusPayload{
			Status:         st.Status,
			ExecutionMode:  st.ExecutionMode,
			Iteration:      st.Iteration,
			Goal:           st.Goal,
			QueueDepth:     depth,
			QueueExhausted: st.QueueMeta.Exhausted,
			CompletedCount: len(st.CompletedTasks),
			BlockedCount:   len(st.BlockedTasks),
			ActiveSessions: len(st.ActiveSessions),
			Backoff:        st.Backoff,
			HaltReason:     st.HaltReason,
			HaltDetails:    st.HaltDetails,
			LastValidation: st.LastValidation,
			LastUpdated:    st.LastUpdated,
			Version:        s.Version,
		}
		if st.CurrentTask != nil {
			prog := st.Progress(st.CurrentTask.TaskID)
			payload.CurrentTask = &currentTaskView{
				TaskID:     st.CurrentTask.TaskID,
				TaskType:   st.CurrentTask.TaskType,
				Intent:     st.CurrentTask.Intent,
				Status:     st.CurrentTask.Status,
				RetryCount: prog.RetryCount,
				LastError:  prog.LastError,
			}
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

// ReadyzHandler reports whether the backing store answers a ping. The
// process is useless without it, so readiness tracks the store alone.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.Store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
