// Package provider implements the Provider port over external AI agents:
// CLI subprocesses for the hosted coding agents, HTTP for a local Ollama
// model, and a deterministic stub for tests.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/pkg/textx"
)

// CLI drives one agent binary as a subprocess. The prompt goes in as an
// argument, the workspace is the CWD, and the response comes back on stdout.
type CLI struct {
	name    string
	binPath string
}

// NewCLI builds a subprocess provider. binPath may be a bare name resolved
// via $PATH at execution time.
func NewCLI(name, binPath string) *CLI {
	return &CLI{name: name, binPath: binPath}
}

// Name returns the provider name used in priority lists and breaker keys.
func (c *CLI) Name() string { return c.name }

// Execute runs one prompt to completion. The request timeout is a hard cap;
// on expiry the subprocess is killed and the result carries
// domain.ErrDispatchTimeout.
func (c *CLI) Execute(ctx context.Context, req domain.ExecuteRequest) domain.ProviderResult {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	args := c.buildArgs(req)
	cmd := exec.CommandContext(runCtx, c.binPath, args...)
	cmd.Dir = req.WorkingDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	// Agent CLIs interleave ANSI color and cursor codes with their output;
	// strip them before the text reaches transcripts or validation.
	res := domain.ProviderResult{
		Stdout:    textx.Clean(stdout.String()),
		Stderr:    textx.Clean(stderr.String()),
		SessionID: req.SessionID,
		Duration:  time.Since(start),
	}

	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		res.Err = fmt.Errorf("%s after %s: %w", c.name, req.Timeout, domain.ErrDispatchTimeout)
		return res
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = fmt.Errorf("spawn %s: %w", c.binPath, runErr)
			return res
		}
	}

	c.parseStructuredOutput(&res)
	return res
}

// buildArgs assembles the per-agent invocation. Agents without session or
// mode flags just get the prompt.
func (c *CLI) buildArgs(req domain.ExecuteRequest) []string {
	switch c.name {
	case domain.ProviderClaude:
		args := []string{"-p", req.Prompt, "--output-format", "json"}
		if req.SessionID != "" {
			args = append(args, "--resume", req.SessionID)
		}
		if req.Model != "" {
			args = append(args, "--model", req.Model)
		}
		if req.AgentMode == domain.AgentModePlan {
			args = append(args, "--permission-mode", "plan")
		}
		return args
	case domain.ProviderCursor:
		args := []string{"-p", req.Prompt, "--output-format", "json"}
		if req.SessionID != "" {
			args = append(args, "--resume", req.SessionID)
		}
		if req.Model != "" {
			args = append(args, "--model", req.Model)
		}
		return args
	case domain.ProviderCodex:
		args := []string{"exec", req.Prompt}
		if req.Model != "" {
			args = append(args, "--model", req.Model)
		}
		return args
	case domain.ProviderGemini, domain.ProviderCopilot:
		args := []string{"-p", req.Prompt}
		if req.Model != "" {
			args = append(args, "--model", req.Model)
		}
		return args
	default:
		return []string{"-p", req.Prompt}
	}
}

// structuredResult covers the JSON envelope claude-style CLIs print with
// --output-format json.
type structuredResult struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	IsError   bool   `json:"is_error"`
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
	Usage     struct {
		InputTokens          int `json:"input_tokens"`
		OutputTokens         int `json:"output_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
	} `json:"usage"`
}

// parseStructuredOutput extracts the result text, session id, and token
// usage when stdout is a JSON envelope. Plain-text agents are untouched.
func (c *CLI) parseStructuredOutput(res *domain.ProviderResult) {
	trimmed := strings.TrimSpace(res.Stdout)
	if !strings.HasPrefix(trimmed, "{") {
		return
	}
	var sr structuredResult
	if err := json.Unmarshal([]byte(trimmed), &sr); err != nil {
		return
	}
	if sr.Type != "result" {
		return
	}
	if sr.Result != "" {
		res.Stdout = sr.Result
	}
	if sr.SessionID != "" {
		res.SessionID = sr.SessionID
	}
	res.Usage = domain.Usage{
		InputTokens:  sr.Usage.InputTokens,
		OutputTokens: sr.Usage.OutputTokens,
		CachedTokens: sr.Usage.CacheReadInputTokens,
	}
	if sr.IsError && res.ExitCode == 0 {
		res.ExitCode = 1
	}
}

var _ domain.Provider = (*CLI)(nil)
