package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// consecutiveUnknownLimit is how many UNKNOWN-class failures in a row trip a
// provider's breaker. Single odd failures pass; a drumbeat of them means the
// provider is effectively down.
const consecutiveUnknownLimit = 3

// CircuitBreaker latches provider failures in per-provider store records so
// a broken provider stays skipped for the TTL window, restarts included.
// The consecutive-UNKNOWN tally lives in process memory only: a restart
// starts counting fresh, which errs on the side of giving providers another
// chance.
type CircuitBreaker struct {
	Store  domain.KVStore
	Prefix string
	TTL    time.Duration

	mu       sync.Mutex
	unknowns map[string]int
}

// NewCircuitBreaker constructs a CircuitBreaker. A zero ttl selects the
// default of 24 hours.
func NewCircuitBreaker(store domain.KVStore, prefix string, ttl time.Duration) *CircuitBreaker {
	if ttl <= 0 {
		ttl = domain.DefaultBreakerTTL
	}
	return &CircuitBreaker{Store: store, Prefix: prefix, TTL: ttl, unknowns: map[string]int{}}
}

func (b *CircuitBreaker) key(provider string) string {
	return b.Prefix + provider
}

// Lookup returns the breaker record for a provider, if one is stored.
func (b *CircuitBreaker) Lookup(ctx domain.Context, provider string) (domain.CircuitBreakerRecord, bool, error) {
	var raw []byte
	err := retryTransient(ctx, func() error {
		var getErr error
		raw, getErr = b.Store.Get(ctx, b.key(provider))
		return getErr
	})
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.CircuitBreakerRecord{}, false, nil
	}
	if err != nil {
		return domain.CircuitBreakerRecord{}, false, fmt.Errorf("breaker lookup %s: %w", provider, err)
	}
	var rec domain.CircuitBreakerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CircuitBreakerRecord{}, false, fmt.Errorf("breaker record %s corrupt: %w", provider, err)
	}
	return rec, true, nil
}

// Eligible reports whether a provider may be dispatched to. The store TTL
// expires records on its own; records that outlived their window anyway,
// for example after an operator copied keys between instances without
// TTLs, are purged on read.
func (b *CircuitBreaker) Eligible(ctx domain.Context, provider string) (bool, error) {
	rec, found, err := b.Lookup(ctx, provider)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if rec.Broken() {
		return false, nil
	}
	if err := retryTransient(ctx, func() error {
		return b.Store.Del(ctx, b.key(provider))
	}); err != nil {
		return false, fmt.Errorf("breaker purge %s: %w", provider, err)
	}
	return true, nil
}

// Trip writes a record for the provider that expires after the breaker TTL.
func (b *CircuitBreaker) Trip(ctx domain.Context, provider, errorType string) error {
	now := time.Now().UTC()
	rec := domain.CircuitBreakerRecord{
		Provider:    provider,
		TriggeredAt: now,
		ExpiresAt:   now.Add(b.TTL),
		ErrorType:   errorType,
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal breaker record: %w", err)
	}
	if err := retryTransient(ctx, func() error {
		return b.Store.SetTTL(ctx, b.key(provider), raw, b.TTL)
	}); err != nil {
		return fmt.Errorf("trip breaker %s: %w", provider, err)
	}
	return nil
}

// RecordFailure folds one classified provider failure into breaker state and
// reports whether the breaker tripped. AUTH and RATE_LIMIT trip immediately;
// UNKNOWN trips on the third consecutive occurrence; RESOURCE_EXHAUSTED and
// INVALID_MODEL never trip and reset the UNKNOWN streak.
func (b *CircuitBreaker) RecordFailure(ctx domain.Context, provider string, class domain.ErrorClass) (bool, error) {
	if class.TripsBreaker() {
		b.resetUnknowns(provider)
		if err := b.Trip(ctx, provider, string(class)); err != nil {
			return false, err
		}
		return true, nil
	}
	if class != domain.ErrorClassUnknown {
		b.resetUnknowns(provider)
		return false, nil
	}
	b.mu.Lock()
	b.unknowns[provider]++
	streak := b.unknowns[provider]
	b.mu.Unlock()
	if streak < consecutiveUnknownLimit {
		return false, nil
	}
	b.resetUnknowns(provider)
	if err := b.Trip(ctx, provider, string(domain.ErrorClassUnknown)); err != nil {
		return false, err
	}
	return true, nil
}

// RecordSuccess clears the provider's UNKNOWN streak.
func (b *CircuitBreaker) RecordSuccess(provider string) {
	b.resetUnknowns(provider)
}

func (b *CircuitBreaker) resetUnknowns(provider string) {
	b.mu.Lock()
	delete(b.unknowns, provider)
	b.mu.Unlock()
}

// Snapshot returns the stored records for the given providers, keyed by
// provider name. Used by the status command.
func (b *CircuitBreaker) Snapshot(ctx domain.Context, providers []string) (map[string]domain.CircuitBreakerRecord, error) {
	out := make(map[string]domain.CircuitBreakerRecord)
	for _, provider := range providers {
		rec, found, err := b.Lookup(ctx, provider)
		if err != nil {
			return nil, err
		}
		if found {
			out[provider] = rec
		}
	}
	return out, nil
}
