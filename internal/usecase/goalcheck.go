package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// GoalVerdict is the goal checker's answer.
type GoalVerdict string

const (
	GoalCompleted  GoalVerdict = "completed"
	GoalIncomplete GoalVerdict = "incomplete"
	GoalAmbiguous  GoalVerdict = "ambiguous"
)

// DefaultGoalCheckTimeout caps the goal-check dispatch.
const DefaultGoalCheckTimeout = 5 * time.Minute

// GoalChecker asks a provider whether the completed work satisfies the goal
// description. It runs only when the queue is exhausted, and it never guesses:
// a reply that carries no verdict counts as ambiguous.
type GoalChecker struct {
	Prompts PromptBuilder
	Timeout time.Duration
}

// NewGoalChecker constructs a GoalChecker. A zero timeout selects the
// default of five minutes.
func NewGoalChecker(timeout time.Duration) GoalChecker {
	if timeout <= 0 {
		timeout = DefaultGoalCheckTimeout
	}
	return GoalChecker{Prompts: NewPromptBuilder(), Timeout: timeout}
}

// GoalCheckOutcome carries the verdict plus the raw exchange for audit.
type GoalCheckOutcome struct {
	Verdict GoalVerdict
	Prompt  string
	Result  domain.ProviderResult
}

// Check dispatches the goal-check prompt in plan mode on a fresh session and
// parses the verdict.
func (g GoalChecker) Check(ctx domain.Context, provider domain.Provider, goal domain.Goal, completed []domain.CompletedTask, workDir string) (GoalCheckOutcome, error) {
	out := GoalCheckOutcome{
		Prompt:  g.Prompts.GoalCheck(goal, completed),
		Verdict: GoalAmbiguous,
	}
	out.Result = provider.Execute(ctx, domain.ExecuteRequest{
		Prompt:     out.Prompt,
		WorkingDir: workDir,
		AgentMode:  domain.AgentModePlan,
		FeatureID:  "goal:" + goal.ProjectID,
		Timeout:    g.Timeout,
	})
	if out.Result.Failed() {
		return out, fmt.Errorf("goal check via %s: %w", provider.Name(), resultErr(out.Result))
	}
	out.Verdict = ParseGoalVerdict(out.Result.Output())
	return out, nil
}

var goalVerdictRe = regexp.MustCompile(`(?i)\b(COMPLETED|INCOMPLETE|AMBIGUOUS)\b`)

// ParseGoalVerdict reads the verdict out of a goal-check reply. The first
// non-empty line is authoritative; the whole text is scanned only when that
// line carries no verdict word.
func ParseGoalVerdict(output string) GoalVerdict {
	match := ""
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match = goalVerdictRe.FindString(line)
		break
	}
	if match == "" {
		match = goalVerdictRe.FindString(output)
	}
	switch strings.ToUpper(match) {
	case "COMPLETED":
		return GoalCompleted
	case "INCOMPLETE":
		return GoalIncomplete
	default:
		return GoalAmbiguous
	}
}

func resultErr(res domain.ProviderResult) error {
	if res.Err != nil {
		return res.Err
	}
	return fmt.Errorf("exit %d: %s", res.ExitCode, headline(res.Stderr, res.Stdout))
}
