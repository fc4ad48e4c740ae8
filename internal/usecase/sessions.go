package usecase

import (
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// TokenEstimator approximates the token cost of an exchange for providers
// that do not report usage.
type TokenEstimator interface {
	EstimateExchange(prompt, response string) int
}

// SessionResolver maps feature ids to live provider sessions and applies the
// reuse policy: a session is handed out until it accumulates too many errors
// or grows past the provider's context window, then the next call starts a
// fresh conversation.
type SessionResolver struct {
	Estimator TokenEstimator
	// Disabled forces a fresh session on every call. Used when a provider
	// mishandles resumption and the operator wants stateless dispatch.
	Disabled bool
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(estimator TokenEstimator, disabled bool) SessionResolver {
	return SessionResolver{Estimator: estimator, Disabled: disabled}
}

// Resolve returns the session id to hand the provider for a feature, or
// empty when the feature should start fresh. A session bound to a different
// provider is dropped rather than resumed cross-provider.
func (r SessionResolver) Resolve(st *domain.SupervisorState, provider, featureID string) string {
	if r.Disabled {
		return ""
	}
	info, ok := st.Session(featureID)
	if !ok {
		return ""
	}
	if info.Provider != provider || !info.Usable() {
		st.DropSession(featureID)
		return ""
	}
	return info.SessionID
}

// Record folds a successful exchange back into state. Token growth comes
// from provider-reported usage when present, otherwise from the estimator.
// A session that crossed its context cap is dropped immediately so persisted
// state never holds a spent session.
func (r SessionResolver) Record(st *domain.SupervisorState, provider, featureID, prompt string, res domain.ProviderResult) {
	if r.Disabled {
		return
	}
	sessionID := res.SessionID
	info, ok := st.Session(featureID)
	if sessionID == "" {
		if !ok {
			return
		}
		// Provider echoed nothing; the exchange continued the session we
		// passed in.
		sessionID = info.SessionID
	}
	if !ok || info.SessionID != sessionID || info.Provider != provider {
		info = domain.SessionInfo{
			SessionID: sessionID,
			Provider:  provider,
			FeatureID: featureID,
			CreatedAt: time.Now().UTC(),
		}
	}
	tokens := res.Usage.TotalTokens()
	if tokens == 0 && r.Estimator != nil {
		tokens = r.Estimator.EstimateExchange(prompt, res.Output())
	}
	info.Touch(tokens)
	if !info.Usable() {
		st.DropSession(featureID)
		return
	}
	st.PutSession(info)
}

// RecordError bumps the failure count for a feature's session, dropping it
// once the error budget is spent.
func (r SessionResolver) RecordError(st *domain.SupervisorState, featureID string) {
	info, ok := st.Session(featureID)
	if !ok {
		return
	}
	info.RecordError()
	if !info.Usable() {
		st.DropSession(featureID)
		return
	}
	st.PutSession(info)
}

// Invalidate discards a feature's session outright. Used when a provider
// rejects resumption of a session id it issued.
func (r SessionResolver) Invalidate(st *domain.SupervisorState, featureID string) {
	st.DropSession(featureID)
}
