package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/config"
)

// SetupLogger configures the process-wide JSON logger. The supervisor loop
// logs to stdout in JSONL; operator commands write their human output
// through cobra and never touch slog, so the two streams do not mix.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg)}
	h := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
	return logger
}

// logLevel honors LOG_LEVEL when set; otherwise dev runs at debug and
// everything else at info.
func logLevel(cfg config.Config) slog.Level {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if cfg.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
