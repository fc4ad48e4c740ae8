package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// StateManager owns the supervisor state blob: a single JSON document under
// one fixed key, loaded at the top of every iteration and written back whole.
// The control loop is the only writer; operator commands go through it too.
type StateManager struct {
	Store    domain.KVStore
	StateKey string
}

// NewStateManager constructs a StateManager over a connected store.
func NewStateManager(store domain.KVStore, stateKey string) StateManager {
	return StateManager{Store: store, StateKey: stateKey}
}

// Init writes the initial state blob. Anything already present under the
// key, valid or not, makes Init fail; wiping state is a separate operator
// action, never an accident of re-running init.
func (m StateManager) Init(ctx domain.Context, st *domain.SupervisorState) error {
	var exists bool
	err := retryTransient(ctx, func() error {
		_, getErr := m.Store.Get(ctx, m.StateKey)
		if errors.Is(getErr, domain.ErrKeyNotFound) {
			exists = false
			return nil
		}
		if getErr != nil {
			return getErr
		}
		exists = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("probe state: %w", err)
	}
	if exists {
		return fmt.Errorf("key %s: %w", m.StateKey, domain.ErrAlreadyInitialized)
	}
	return m.Persist(ctx, st)
}

// Load reads and validates the last fully persisted blob. A missing key maps
// to ErrNotInitialized; a blob that no longer parses is an invariant
// violation, because guessing at state is worse than halting.
func (m StateManager) Load(ctx domain.Context) (*domain.SupervisorState, error) {
	var raw []byte
	err := retryTransient(ctx, func() error {
		var getErr error
		raw, getErr = m.Store.Get(ctx, m.StateKey)
		return getErr
	})
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, fmt.Errorf("key %s: %w", m.StateKey, domain.ErrNotInitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	var st domain.SupervisorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: state blob corrupt: %v", domain.ErrInvariantViolation, err)
	}
	if err := m.Validate(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Persist validates, stamps last_updated and replaces the blob in a single
// SET. There is no partial update path.
func (m StateManager) Persist(ctx domain.Context, st *domain.SupervisorState) error {
	if err := m.Validate(st); err != nil {
		return err
	}
	st.LastUpdated = time.Now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := retryTransient(ctx, func() error {
		return m.Store.Set(ctx, m.StateKey, raw)
	}); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Validate checks structural tags plus the cross-field rules tags cannot
// express. Every failure wraps ErrInvariantViolation: the caller halts and
// leaves the persisted blob untouched.
func (m StateManager) Validate(st *domain.SupervisorState) error {
	if st == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvariantViolation)
	}
	if err := getValidator().Struct(st); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
	}
	retired := make(map[string]string, len(st.CompletedTasks)+len(st.BlockedTasks))
	for _, ct := range st.CompletedTasks {
		if where, dup := retired[ct.TaskID]; dup {
			return fmt.Errorf("%w: task %s recorded as %s and completed", domain.ErrInvariantViolation, ct.TaskID, where)
		}
		retired[ct.TaskID] = "completed"
	}
	for _, bt := range st.BlockedTasks {
		if where, dup := retired[bt.Task.TaskID]; dup {
			return fmt.Errorf("%w: task %s recorded as %s and blocked", domain.ErrInvariantViolation, bt.Task.TaskID, where)
		}
		retired[bt.Task.TaskID] = "blocked"
	}
	if st.CurrentTask != nil {
		if where, dup := retired[st.CurrentTask.TaskID]; dup {
			return fmt.Errorf("%w: current task %s already %s", domain.ErrInvariantViolation, st.CurrentTask.TaskID, where)
		}
		prog := st.Progress(st.CurrentTask.TaskID)
		if limit := st.CurrentTask.MaxRetries() + 1; prog.RetryCount > limit {
			return fmt.Errorf("%w: task %s retry_count %d exceeds %d", domain.ErrInvariantViolation, st.CurrentTask.TaskID, prog.RetryCount, limit)
		}
	}
	if st.Status == domain.StatusCompleted && st.CurrentTask != nil {
		return fmt.Errorf("%w: completed run still holds task %s", domain.ErrInvariantViolation, st.CurrentTask.TaskID)
	}
	for featureID, info := range st.ActiveSessions {
		if !info.Usable() {
			return fmt.Errorf("%w: session %s for feature %s is past its limits", domain.ErrInvariantViolation, info.SessionID, featureID)
		}
	}
	return nil
}

// DeepCopy clones the state through a JSON round trip. The loop mutates a
// copy per iteration so a failed step never leaves a half-updated struct as
// the working state.
func (m StateManager) DeepCopy(st *domain.SupervisorState) (*domain.SupervisorState, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("copy state: %w", err)
	}
	var out domain.SupervisorState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copy state: %w", err)
	}
	return &out, nil
}
