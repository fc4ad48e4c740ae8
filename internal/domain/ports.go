package domain

import (
	"context"
	"time"
)

// Context is an alias to keep port signatures terse; adapters pass
// context.Context straight through.
type Context = context.Context

//go:generate mockery --name=KVStore --with-expecter --filename=kvstore_mock.go
//go:generate mockery --name=Provider --with-expecter --filename=provider_mock.go
//go:generate mockery --name=ProviderRegistry --with-expecter --filename=provider_registry_mock.go
//go:generate mockery --name=CommandRunner --with-expecter --filename=command_runner_mock.go
//go:generate mockery --name=AuditSink --with-expecter --filename=audit_sink_mock.go
//go:generate mockery --name=AnalyticsSink --with-expecter --filename=analytics_sink_mock.go

// KVStore (port)
// Backed by Redis or any RESP-compatible server. Keys are opaque strings;
// values are raw bytes (JSON blobs in practice). Get returns ErrKeyNotFound
// for missing keys; RPop returns ErrQueueEmpty for empty lists.
type KVStore interface {
	Get(ctx Context, key string) ([]byte, error)
	Set(ctx Context, key string, value []byte) error
	SetTTL(ctx Context, key string, value []byte, ttl time.Duration) error
	Del(ctx Context, key string) error
	LPush(ctx Context, key string, values ...[]byte) error
	RPop(ctx Context, key string) ([]byte, error)
	LLen(ctx Context, key string) (int64, error)
	LRange(ctx Context, key string, start, stop int64) ([][]byte, error)
	Ping(ctx Context) error
	Close() error
}

// Provider (port)
// One external AI agent endpoint (CLI subprocess or HTTP). Execute blocks
// until the agent finishes or the request timeout fires. Failures come back
// inside ProviderResult so the caller can classify them; Err is non-nil only
// when no output was produced at all.
type Provider interface {
	Name() string
	Execute(ctx Context, req ExecuteRequest) ProviderResult
}

// ProviderRegistry (port)
// Resolves provider names to implementations and exposes the configured
// dispatch priority order.
type ProviderRegistry interface {
	Lookup(name string) (Provider, error)
	Priority() []string
}

// CommandRunner (port)
// Runs verification shell commands inside the sandbox. Implementations
// enforce the working-directory boundary and the per-command timeout.
type CommandRunner interface {
	Run(ctx Context, dir, command string, timeout time.Duration) (stdout, stderr string, exitCode int, err error)
}

// AuditSink (port)
// Append-only event log. Callers retry writes like any other transient I/O;
// a sink that stays down halts the loop rather than losing the trail.
type AuditSink interface {
	Write(ctx Context, e AuditEntry) error
	WritePrompt(ctx Context, r PromptRecord) error
}

// AnalyticsSink (port)
type AnalyticsSink interface {
	WriteTaskMetrics(ctx Context, m TaskMetrics) error
	Summary(ctx Context) (RunSummary, error)
}
