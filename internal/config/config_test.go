package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "localhost:6379", cfg.RedisAddr())
	require.Equal(t, "supervisor:state", cfg.StateKey)
	require.Equal(t, "tasks", cfg.QueueName)
	require.Equal(t, "circuit_breaker:", cfg.BreakerPrefix)
	require.Equal(t, 0, cfg.StateDB)
	require.Equal(t, 1, cfg.QueueDB)
	require.Equal(t, []string{"gemini", "copilot", "cursor", "codex", "claude", "gemini_stub"}, cfg.ProviderPriority)
	require.Equal(t, 2, cfg.InterrogationRoundsInitial)
	require.Equal(t, 0, cfg.InterrogationRoundsFinal)
	require.Equal(t, 24*time.Hour, cfg.BreakerTTL())
	require.True(t, cfg.DeterministicEnabled)
	require.Equal(t, 2000, cfg.DeterministicMaxFiles)
	require.Equal(t, int64(10485760), cfg.DeterministicMaxBytes)
	require.True(t, cfg.UseLocalHelper)
	require.False(t, cfg.DisableSessionReuse)
	require.False(t, cfg.ManualMode())
	require.True(t, cfg.IsDev())
	require.False(t, cfg.IsProd())
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("REDIS_HOST", "dragonfly.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("EXECUTION_MODE", "manual")
	t.Setenv("CLI_PROVIDER_PRIORITY", "claude,gemini_stub")
	t.Setenv("DISPATCH_TIMEOUT", "5m")
	t.Setenv("HELPER_STRICT", "true")
	t.Setenv("CIRCUIT_BREAKER_TTL_SECONDS", "3600")
	t.Setenv("USE_RIPGREP", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "dragonfly.internal:6380", cfg.RedisAddr())
	require.True(t, cfg.IsProd())
	require.True(t, cfg.ManualMode())
	require.Equal(t, []string{"claude", "gemini_stub"}, cfg.ProviderPriority)
	require.Equal(t, 5*time.Minute, cfg.DispatchTimeout)
	require.True(t, cfg.HelperStrict)
	require.Equal(t, time.Hour, cfg.BreakerTTL())
	require.True(t, cfg.UseRipgrep)
}

func Test_Load_RejectsBadMode(t *testing.T) {
	t.Setenv("EXECUTION_MODE", "TURBO")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "EXECUTION_MODE")
}

func Test_Load_RejectsSharedDB(t *testing.T) {
	t.Setenv("STATE_DB", "3")
	t.Setenv("QUEUE_DB", "3")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "must differ")
}

func Test_Load_RejectsEmptyPriority(t *testing.T) {
	t.Setenv("CLI_PROVIDER_PRIORITY", "")
	_, err := Load()
	require.Error(t, err)
}

func Test_Load_RejectsBadPercent(t *testing.T) {
	t.Setenv("HELPER_DETERMINISTIC_PERCENT", "140")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "HELPER_DETERMINISTIC_PERCENT")
}
