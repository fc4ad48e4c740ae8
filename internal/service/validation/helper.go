package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// maxCommandConcurrency caps how many verification commands run at once.
const maxCommandConcurrency = 4

// HelperVerdict is the JSON contract the helper agent must honor.
type HelperVerdict struct {
	IsValid              bool     `json:"isValid"`
	VerificationCommands []string `json:"verificationCommands"`
	Reasoning            string   `json:"reasoning"`
}

// HelperRequest carries the evidence the helper needs to judge a task.
// The helper session is scoped to the project, not the task.
type HelperRequest struct {
	TaskID          string
	ProjectID       string
	Criteria        []string
	ResponseExcerpt string
	TreeSummary     string
	WorkDir         string
	SessionID       string
}

// HelperOutcome is the stage 3 result: the verdict, the executed commands,
// and the session bookkeeping for the helper's own context window. Prompt
// and Raw carry the full exchange for the prompt log.
type HelperOutcome struct {
	Verdict   HelperVerdict
	Parsed    bool
	Trusted   bool
	Valid     bool
	Commands  []domain.CheckResult
	SessionID string
	Usage     domain.Usage
	Prompt    string
	Raw       string
	Err       error
}

// Helper verifies unresolved criteria through a second agent. Commands the
// helper proposes run read-only with a hard per-command timeout.
type Helper struct {
	provider   domain.Provider
	runner     domain.CommandRunner
	model      string
	agentMode  string
	timeout    time.Duration
	cmdTimeout time.Duration
	strict     bool
}

// NewHelper wires the helper backend. strict refuses to trust a verdict
// that arrives with no executable evidence.
func NewHelper(provider domain.Provider, runner domain.CommandRunner, model, agentMode string, timeout, cmdTimeout time.Duration, strict bool) *Helper {
	return &Helper{
		provider:   provider,
		runner:     runner,
		model:      model,
		agentMode:  agentMode,
		timeout:    timeout,
		cmdTimeout: cmdTimeout,
		strict:     strict,
	}
}

// Verify asks the helper for a verdict and executes whatever verification
// commands it proposes. A helper that cannot be reached or answers outside
// the contract yields Parsed=false and the pipeline falls through.
func (h *Helper) Verify(ctx context.Context, req HelperRequest) HelperOutcome {
	prompt := buildHelperPrompt(req)
	res := h.provider.Execute(ctx, domain.ExecuteRequest{
		Prompt:     prompt,
		WorkingDir: req.WorkDir,
		AgentMode:  h.agentMode,
		SessionID:  req.SessionID,
		FeatureID:  domain.HelperFeatureID(req.ProjectID),
		Model:      h.model,
		Timeout:    h.timeout,
	})
	out := HelperOutcome{
		SessionID: res.SessionID,
		Usage:     res.Usage,
		Prompt:    prompt,
		Raw:       res.Output(),
	}
	if res.Err != nil {
		out.Err = fmt.Errorf("helper execute: %w", res.Err)
		return out
	}
	if res.Failed() {
		out.Err = fmt.Errorf("helper exited %d: %s", res.ExitCode, firstLine(res.Stderr))
		return out
	}

	verdict, ok := parseHelperVerdict(res.Output())
	if !ok {
		out.Err = fmt.Errorf("helper response did not contain the verdict contract")
		return out
	}
	out.Verdict = verdict
	out.Parsed = true

	if verdict.IsValid && len(verdict.VerificationCommands) == 0 {
		if h.strict {
			out.Err = fmt.Errorf("helper approved without evidence; strict mode rejects bare approval")
			return out
		}
		out.Trusted = true
		out.Valid = true
		return out
	}

	results := make([]domain.CheckResult, len(verdict.VerificationCommands))
	var g errgroup.Group
	g.SetLimit(maxCommandConcurrency)
	for i, command := range verdict.VerificationCommands {
		g.Go(func() error {
			results[i] = h.runCommand(ctx, req.WorkDir, command)
			return nil
		})
	}
	_ = g.Wait()

	allPassed := true
	for _, result := range results {
		out.Commands = append(out.Commands, result)
		if !result.Passed {
			allPassed = false
		}
	}
	out.Valid = verdict.IsValid && allPassed && len(verdict.VerificationCommands) > 0
	if len(verdict.VerificationCommands) == 0 {
		// isValid=false with no commands is a plain rejection.
		out.Valid = false
	}
	return out
}

func (h *Helper) runCommand(ctx context.Context, workDir, command string) domain.CheckResult {
	result := domain.CheckResult{Criterion: command, Kind: "helper_command"}
	stdout, stderr, exitCode, err := h.runner.Run(ctx, workDir, command, h.cmdTimeout)
	switch {
	case err != nil:
		result.Detail = fmt.Sprintf("refused or failed: %v", err)
	case exitCode != 0:
		detail := firstLine(stderr)
		if detail == "" {
			detail = firstLine(stdout)
		}
		result.Detail = fmt.Sprintf("exit %d: %s", exitCode, detail)
	default:
		result.Passed = true
		result.Detail = firstLine(stdout)
	}
	return result
}

func buildHelperPrompt(req HelperRequest) string {
	var b strings.Builder
	b.WriteString("You are a verification assistant. Judge whether the following acceptance criteria are satisfied by the work described below.\n\n")
	b.WriteString("Unverified criteria:\n")
	for i, c := range req.Criteria {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	if req.ResponseExcerpt != "" {
		b.WriteString("\nAgent response excerpt:\n")
		b.WriteString(req.ResponseExcerpt)
		b.WriteString("\n")
	}
	if req.TreeSummary != "" {
		b.WriteString("\nWorkspace file tree:\n")
		b.WriteString(req.TreeSummary)
	}
	b.WriteString("\nRespond with ONLY a JSON object:\n")
	b.WriteString(`{"isValid": bool, "verificationCommands": ["shell commands that prove it, read-only"], "reasoning": "one paragraph"}` + "\n")
	b.WriteString("Commands must not modify files: no redirects, rm, mv, chmod, network writes, or git pushes.\n")
	return b.String()
}

// parseHelperVerdict tolerates markdown fences and prose around the JSON
// object; models rarely answer with bare JSON even when told to.
func parseHelperVerdict(output string) (HelperVerdict, bool) {
	var verdict HelperVerdict
	body := extractJSONObject(output)
	if body == "" {
		return verdict, false
	}
	if err := json.Unmarshal([]byte(body), &verdict); err != nil {
		return verdict, false
	}
	if !strings.Contains(body, "isValid") {
		return verdict, false
	}
	return verdict, true
}

// extractJSONObject returns the first balanced top-level JSON object in the
// text, respecting string literals.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	const limit = 200
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}
