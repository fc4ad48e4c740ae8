package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// destructivePatterns block commands that could damage the machine or the
// workspace regardless of runner mode.
var destructivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*r|--recursive)`),
	regexp.MustCompile(`\brm\s+(-[a-zA-Z]+\s+)*(/|~)\s*($|;|&)`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;`),
	regexp.MustCompile(`\bmkfs(\.\w+)?\b`),
	regexp.MustCompile(`\bdd\b.*\bof=/dev/`),
	regexp.MustCompile(`>\s*/dev/(sd|nvme|hd)`),
	regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`),
	regexp.MustCompile(`git\s+push\s+.*(--force|-f)\b`),
	regexp.MustCompile(`chmod\s+(-[a-zA-Z]+\s+)*777\s+/`),
	regexp.MustCompile(`--no-preserve-root`),
	regexp.MustCompile(`\b(sudo|su)\b`),
	regexp.MustCompile(`(curl|wget)[^|;]*\|\s*(ba)?sh`),
}

// readOnlyPatterns additionally block anything that writes, for helper
// verification commands which must only observe the workspace.
var readOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\bmv\b`),
	regexp.MustCompile(`\bchmod\b`),
	regexp.MustCompile(`\bchown\b`),
	regexp.MustCompile(`>{1,2}`),
	regexp.MustCompile(`\btee\b`),
	regexp.MustCompile(`\btruncate\b`),
	regexp.MustCompile(`curl\s+.*(-X\s*POST|--data|-d\s)`),
	regexp.MustCompile(`git\s+push\b`),
	regexp.MustCompile(`git\s+(commit|reset|checkout|clean|rebase)\b`),
}

// Runner executes shell commands inside the sandbox with a hard timeout.
// ReadOnly runners refuse any command that could mutate the workspace.
type Runner struct {
	readOnly bool
}

// NewRunner returns a runner for verification commands that may build or
// test but never destroy.
func NewRunner() *Runner { return &Runner{} }

// NewReadOnlyRunner returns a runner for helper-issued commands, which must
// only inspect the workspace.
func NewReadOnlyRunner() *Runner { return &Runner{readOnly: true} }

// Refused returns the pattern a command trips, or empty when it is allowed.
func (r *Runner) Refused(command string) string {
	trimmed := strings.TrimSpace(command)
	for _, re := range destructivePatterns {
		if re.MatchString(trimmed) {
			return re.String()
		}
	}
	if r.readOnly {
		for _, re := range readOnlyPatterns {
			if re.MatchString(trimmed) {
				return re.String()
			}
		}
	}
	return ""
}

// Run executes command via the shell with dir as CWD. The timeout is a hard
// cap; on expiry the subprocess is killed and domain.ErrCommandTimeout is
// returned. Refused commands return domain.ErrCommandRefused without
// spawning anything.
func (r *Runner) Run(ctx context.Context, dir, command string, timeout time.Duration) (string, string, int, error) {
	if pattern := r.Refused(command); pattern != "" {
		return "", "", -1, fmt.Errorf("command %q matches %q: %w", command, pattern, domain.ErrCommandRefused)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.String(), stderr.String(), -1,
			fmt.Errorf("command %q after %s: %w", command, timeout, domain.ErrCommandTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
		}
		return stdout.String(), stderr.String(), -1, fmt.Errorf("spawn %q: %w", command, err)
	}
	return stdout.String(), stderr.String(), 0, nil
}

var _ domain.CommandRunner = (*Runner)(nil)
