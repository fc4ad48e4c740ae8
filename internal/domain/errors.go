package domain

import "errors"

// Error taxonomy (sentinels)
var (
	ErrNotInitialized     = errors.New("state not initialized")
	ErrAlreadyInitialized = errors.New("state already initialized")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrKeyNotFound        = errors.New("key not found")
	ErrQueueEmpty         = errors.New("queue empty")
	ErrProviderNotFound   = errors.New("provider not found")
	ErrNoEligibleProvider = errors.New("no eligible provider")
	ErrDispatchTimeout    = errors.New("provider dispatch timeout")
	ErrCommandTimeout     = errors.New("verification command timeout")
	ErrCommandRefused     = errors.New("verification command refused")
	ErrTransient          = errors.New("transient I/O failure")
)

// HaltSignal classifies raw provider output after a dispatch. It is the
// Halt Detector's verdict for one iteration; critical signals stop the loop,
// the rest are absorbed by retry logic.
type HaltSignal string

const (
	HaltNone                HaltSignal = ""
	HaltBlocked             HaltSignal = "BLOCKED"
	HaltOutputFormatInvalid HaltSignal = "OUTPUT_FORMAT_INVALID"
	HaltProviderExecFailure HaltSignal = "PROVIDER_EXEC_FAILURE"
	HaltResourceExhausted   HaltSignal = "RESOURCE_EXHAUSTED"
	HaltCircuitBroken       HaltSignal = "PROVIDER_CIRCUIT_BROKEN"
	HaltAmbiguityDetected   HaltSignal = "AMBIGUITY_DETECTED"
)

// Critical reports whether the signal must stop the control loop immediately.
func (h HaltSignal) Critical() bool {
	switch h {
	case HaltBlocked, HaltOutputFormatInvalid, HaltCircuitBroken:
		return true
	}
	return false
}

// Halt reasons recorded in state when the loop stops.
const (
	HaltReasonInvariantViolation     = "INVARIANT_VIOLATION"
	HaltReasonGoalIncomplete         = "TASK_LIST_EXHAUSTED_GOAL_INCOMPLETE"
	HaltReasonResourceExhausted      = "RESOURCE_EXHAUSTED"
	HaltReasonResourceExhaustedFinal = "RESOURCE_EXHAUSTED_FINAL"
	HaltReasonOperatorRequested      = "OPERATOR_REQUESTED"
	HaltReasonTransientExhausted     = "TRANSIENT_IO_EXHAUSTED"
)

// ErrorClass classifies provider stderr/exit patterns for circuit-breaker
// decisions.
type ErrorClass string

const (
	ErrorClassAuth              ErrorClass = "AUTH"
	ErrorClassRateLimit         ErrorClass = "RATE_LIMIT"
	ErrorClassResourceExhausted ErrorClass = "RESOURCE_EXHAUSTED"
	ErrorClassInvalidModel      ErrorClass = "INVALID_MODEL"
	ErrorClassUnknown           ErrorClass = "UNKNOWN"
)

// TripsBreaker reports whether a single occurrence of the class trips the
// provider's circuit breaker. UNKNOWN trips only after repeated consecutive
// occurrences, which the breaker tracks separately.
func (c ErrorClass) TripsBreaker() bool {
	return c == ErrorClassAuth || c == ErrorClassRateLimit
}
