// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment
// variables. It is a plain value: load once at startup and pass copies down;
// nothing mutates it after Load returns.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	// LogLevel overrides the APP_ENV-derived level when set.
	LogLevel string `env:"LOG_LEVEL"`

	// Redis connection. State and queue live in separate logical DBs on the
	// same server so FLUSHDB on one cannot eat the other.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	StateDB       int    `env:"STATE_DB" envDefault:"0"`
	QueueDB       int    `env:"QUEUE_DB" envDefault:"1"`

	// Key names. Fixed keys, not patterns; the state blob is one value.
	StateKey      string `env:"STATE_KEY" envDefault:"supervisor:state"`
	QueueName     string `env:"QUEUE_NAME" envDefault:"tasks"`
	BreakerPrefix string `env:"BREAKER_KEY_PREFIX" envDefault:"circuit_breaker:"`

	// SandboxRoot is the directory all project workspaces and logs live
	// under. Task working directories may not escape it.
	SandboxRoot string `env:"SANDBOX_ROOT" envDefault:"./sandbox"`

	ExecutionMode string `env:"EXECUTION_MODE" envDefault:"AUTO"`
	// MaxIterations stops a runaway loop; 0 means unlimited.
	MaxIterations int `env:"MAX_ITERATIONS" envDefault:"0"`

	// Provider dispatch order. Broken circuits are skipped in this order.
	ProviderPriority []string `env:"CLI_PROVIDER_PRIORITY" envSeparator:"," envDefault:"gemini,copilot,cursor,codex,claude,gemini_stub"`

	// Provider CLI binaries. Bare names are resolved via $PATH.
	ClaudeCLIPath  string `env:"CLAUDE_CLI_PATH" envDefault:"claude"`
	GeminiCLIPath  string `env:"GEMINI_CLI_PATH" envDefault:"gemini"`
	CopilotCLIPath string `env:"COPILOT_CLI_PATH" envDefault:"copilot"`
	CodexCLIPath   string `env:"CODEX_CLI_PATH" envDefault:"codex"`
	CursorCLIPath  string `env:"CURSOR_CLI_PATH" envDefault:"cursor-agent"`

	// Local model endpoint used when the helper runs locally.
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	// Helper validation. HelperStrict makes an unreachable or undecided
	// helper fail the stage instead of passing it through.
	UseLocalHelper   bool   `env:"USE_LOCAL_HELPER_AGENT" envDefault:"true"`
	LocalHelperModel string `env:"LOCAL_HELPER_MODEL" envDefault:"qwen2.5-coder:7b"`
	HelperAgentMode  string `env:"HELPER_AGENT_MODE" envDefault:"plan"`
	HelperStrict     bool   `env:"HELPER_STRICT" envDefault:"false"`

	// Deterministic validation stage bounds.
	DeterministicEnabled  bool  `env:"HELPER_DETERMINISTIC_ENABLED" envDefault:"true"`
	DeterministicPercent  int   `env:"HELPER_DETERMINISTIC_PERCENT" envDefault:"100"`
	DeterministicMaxFiles int   `env:"HELPER_DETERMINISTIC_MAX_FILES" envDefault:"2000"`
	DeterministicMaxBytes int64 `env:"HELPER_DETERMINISTIC_MAX_BYTES" envDefault:"10485760"`

	// UseRipgrep shells out to rg for content scans when it is on $PATH;
	// otherwise the built-in scanner runs.
	UseRipgrep bool `env:"USE_RIPGREP" envDefault:"false"`

	// DisableSessionReuse opens a fresh provider conversation per dispatch.
	DisableSessionReuse bool `env:"DISABLE_SESSION_REUSE" envDefault:"false"`

	BreakerTTLSeconds  int  `env:"CIRCUIT_BREAKER_TTL_SECONDS" envDefault:"86400"`
	PerformanceLogging bool `env:"PERFORMANCE_LOGGING_ENABLED" envDefault:"false"`

	InterrogationRoundsInitial int `env:"INTERROGATION_ROUNDS_INITIAL" envDefault:"2"`
	InterrogationRoundsFinal   int `env:"INTERROGATION_ROUNDS_FINAL" envDefault:"0"`

	// Hard timeouts per external interaction.
	DispatchTimeout  time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"30m"`
	VerifyCmdTimeout time.Duration `env:"VERIFY_CMD_TIMEOUT" envDefault:"30s"`
	HelperTimeout    time.Duration `env:"HELPER_TIMEOUT" envDefault:"10m"`
	GoalCheckTimeout time.Duration `env:"GOAL_CHECK_TIMEOUT" envDefault:"5m"`

	// Read-only status HTTP server. MetricsAddr turns it on when the start
	// command is given no --http-addr flag.
	MetricsAddr           string        `env:"METRICS_ADDR" envDefault:""`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"foundry"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads environment variables from .env files.
// Loads in priority order: .env.local (highest) → .env → system environment (lowest)
func LoadEnvFiles() error {
	envFiles := []string{".env.local", ".env"}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

func (c Config) validate() error {
	mode := strings.ToUpper(c.ExecutionMode)
	if mode != "AUTO" && mode != "MANUAL" {
		return fmt.Errorf("EXECUTION_MODE must be AUTO or MANUAL, got %q", c.ExecutionMode)
	}
	if c.StateDB == c.QueueDB {
		return fmt.Errorf("STATE_DB and QUEUE_DB must differ, both are %d", c.StateDB)
	}
	named := 0
	for _, p := range c.ProviderPriority {
		if strings.TrimSpace(p) != "" {
			named++
		}
	}
	if named == 0 {
		return fmt.Errorf("CLI_PROVIDER_PRIORITY must name at least one provider")
	}
	if c.InterrogationRoundsInitial < 0 || c.InterrogationRoundsFinal < 0 {
		return fmt.Errorf("interrogation round counts must be >= 0")
	}
	if c.DeterministicPercent < 0 || c.DeterministicPercent > 100 {
		return fmt.Errorf("HELPER_DETERMINISTIC_PERCENT must be 0..100, got %d", c.DeterministicPercent)
	}
	return nil
}

// RedisAddr returns host:port for the Redis client.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// BreakerTTL returns the circuit breaker record lifetime.
func (c Config) BreakerTTL() time.Duration {
	return time.Duration(c.BreakerTTLSeconds) * time.Second
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// ManualMode reports whether the loop should pause for the operator between
// iterations.
func (c Config) ManualMode() bool { return strings.ToUpper(c.ExecutionMode) == "MANUAL" }
