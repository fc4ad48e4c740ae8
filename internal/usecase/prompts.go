package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Agent report statuses a coding task may reply with.
const (
	AgentStatusCompleted = "completed"
	AgentStatusBlocked   = "blocked"
)

// AgentReport is the JSON envelope coding tasks must answer with. Other task
// types reply in plain text.
type AgentReport struct {
	Status        string   `json:"status"`
	Summary       string   `json:"summary,omitempty"`
	FilesChanged  []string `json:"files_changed,omitempty"`
	BlockedReason string   `json:"blocked_reason,omitempty"`
}

// ParseAgentReport extracts the report envelope from raw agent output.
// Agents wrap JSON in prose and code fences, so the first balanced object
// is tried; it must carry a status field to count.
func ParseAgentReport(output string) (AgentReport, bool) {
	obj := extractJSONObject(output)
	if obj == "" {
		return AgentReport{}, false
	}
	var r AgentReport
	if err := json.Unmarshal([]byte(obj), &r); err != nil || r.Status == "" {
		return AgentReport{}, false
	}
	return r, true
}

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

const reportContract = `When you are done, reply with a single JSON object and nothing else:
{"status": "completed", "summary": "<what you built and where>", "files_changed": ["<relative path>", ...]}
If you cannot proceed, reply with {"status": "blocked", "blocked_reason": "<why>"} instead.`

// PromptBuilder assembles provider prompts from the task and a minimal
// state projection. The plane never adds scope: every prompt restates the
// operator's criteria verbatim and nothing else.
type PromptBuilder struct{}

// NewPromptBuilder constructs a PromptBuilder.
func NewPromptBuilder() PromptBuilder {
	return PromptBuilder{}
}

// Implementation builds the first prompt for a task.
func (PromptBuilder) Implementation(task domain.Task, goal domain.Goal) string {
	var b strings.Builder
	b.WriteString("You are working inside a sandboxed project workspace.\n")
	if goal.Description != "" {
		fmt.Fprintf(&b, "Project goal: %s\n", goal.Description)
	}
	fmt.Fprintf(&b, "\nTask %s (%s): %s\n", task.TaskID, task.TaskType, task.Intent)
	if task.Instructions != "" {
		fmt.Fprintf(&b, "\nInstructions:\n%s\n", task.Instructions)
	}
	b.WriteString("\nAcceptance criteria, all of which must hold when you are done:\n")
	for i, criterion := range task.AcceptanceCriteria {
		fmt.Fprintf(&b, "%d. %s\n", i+1, criterion)
	}
	if task.WorkingDirectory != "" {
		fmt.Fprintf(&b, "\nWork under the relative directory %s.\n", task.WorkingDirectory)
	}
	if len(task.RequiredArtifacts) > 0 {
		b.WriteString("\nThese artifacts must exist afterwards:\n")
		for _, artifact := range task.RequiredArtifacts {
			fmt.Fprintf(&b, "  - %s\n", artifact)
		}
	}
	if task.TestCommand != "" {
		fmt.Fprintf(&b, "\nCheck your work with: %s", task.TestCommand)
		if task.TestsRequired {
			b.WriteString("\nThe command must pass before you report completion.")
		}
		b.WriteString("\n")
	}
	switch task.TaskType {
	case domain.TaskTypeBehavioral:
		b.WriteString("\nReply with the response text itself. Do not describe what you would say; say it.\n")
	case domain.TaskTypeCoding:
		b.WriteString("\n" + reportContract + "\n")
	default:
		b.WriteString("\nFinish with a short summary of what you changed.\n")
	}
	return b.String()
}

// Fix builds the retry prompt after a failed validation. It carries the
// failed criteria plus the check evidence, including helper verification
// commands that exited nonzero, so the agent sees exactly what was probed.
func (PromptBuilder) Fix(task domain.Task, report domain.ValidationReport, lastError string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your previous attempt at task %s did not pass validation.\n", task.TaskID)
	if len(report.FailedCriteria) > 0 {
		b.WriteString("\nCriteria that failed:\n")
		for i, criterion := range report.FailedCriteria {
			fmt.Fprintf(&b, "%d. %s\n", i+1, criterion)
		}
	}
	var failed []domain.CheckResult
	for _, check := range report.Checks {
		if !check.Passed {
			failed = append(failed, check)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\nEvidence collected in the workspace:\n")
		for _, check := range failed {
			detail := check.Detail
			if detail == "" {
				detail = check.Criterion
			}
			fmt.Fprintf(&b, "  - [%s] %s\n", check.Kind, detail)
		}
	}
	if report.Summary != "" {
		fmt.Fprintf(&b, "\nValidator summary: %s\n", report.Summary)
	}
	if lastError != "" {
		fmt.Fprintf(&b, "\nLast error: %s\n", lastError)
	}
	b.WriteString("\nFix the issues above. Do not rework anything that already passed.\n")
	b.WriteString("\nThe acceptance criteria remain:\n")
	for i, criterion := range task.AcceptanceCriteria {
		fmt.Fprintf(&b, "%d. %s\n", i+1, criterion)
	}
	if task.TaskType == domain.TaskTypeCoding {
		b.WriteString("\n" + reportContract + "\n")
	}
	return b.String()
}

// Clarification answers an agent that asked the operator a question. The
// operator is not in the loop; the task text is the whole contract.
func (PromptBuilder) Clarification(task domain.Task, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "While working on task %s you asked: %s\n", task.TaskID, strings.TrimSpace(question))
	b.WriteString("\nThe operator is not available for questions. Decide using only the instructions and acceptance criteria below. When a choice is genuinely open, take the simplest option that satisfies every criterion and note the decision in your summary.\n")
	if task.Instructions != "" {
		fmt.Fprintf(&b, "\nInstructions:\n%s\n", task.Instructions)
	}
	b.WriteString("\nAcceptance criteria:\n")
	for i, criterion := range task.AcceptanceCriteria {
		fmt.Fprintf(&b, "%d. %s\n", i+1, criterion)
	}
	if task.TaskType == domain.TaskTypeCoding {
		b.WriteString("\n" + reportContract + "\n")
	}
	return b.String()
}

// GoalCheck builds the prompt asking whether the completed work satisfies
// the goal. Invoked only once the queue is exhausted.
func (PromptBuilder) GoalCheck(goal domain.Goal, completed []domain.CompletedTask) string {
	var b strings.Builder
	b.WriteString("Judge whether the project goal below is satisfied by the completed work.\n")
	fmt.Fprintf(&b, "\nGoal: %s\n", goal.Description)
	b.WriteString("\nCompleted tasks:\n")
	if len(completed) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, ct := range completed {
		line := ct.TaskID
		if ct.Report.Summary != "" {
			line += ": " + ct.Report.Summary
		}
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	b.WriteString("\nAnswer on the first line with exactly one word: COMPLETED, INCOMPLETE, or AMBIGUOUS.\nThen give one short paragraph of justification.\n")
	return b.String()
}
