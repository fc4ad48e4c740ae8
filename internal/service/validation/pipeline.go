package validation

import (
	"context"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/pkg/textx"
)

const (
	responseExcerptLimit = 4000
	treeSummaryDepth     = 3
	treeSummaryEntries   = 120
)

// Pipeline sequences the validation stages for one task attempt. Stages
// short-circuit on the first high-confidence pass.
type Pipeline struct {
	behavioral    *Behavioral
	deterministic *Deterministic
	helper        *Helper
	interrogator  *Interrogator
	strictHelper  bool
}

// NewPipeline wires the stages. helper may be nil when no helper backend
// is configured; the pipeline then falls through on uncertain results.
func NewPipeline(behavioral *Behavioral, deterministic *Deterministic, helper *Helper, interrogator *Interrogator, strictHelper bool) *Pipeline {
	return &Pipeline{
		behavioral:    behavioral,
		deterministic: deterministic,
		helper:        helper,
		interrogator:  interrogator,
		strictHelper:  strictHelper,
	}
}

// Input is one attempt to validate: the task, what the agent answered, and
// where its work landed.
type Input struct {
	Task          domain.Task
	Response      string
	WorkDir       string
	ProjectID     string
	HelperSession string
	Rounds        int
	Ask           AgentAsk
}

// Outcome carries the report plus helper session bookkeeping the caller
// must fold back into supervisor state. HelperPrompt and HelperRaw hold
// the helper exchange for the caller's prompt log.
type Outcome struct {
	Report        domain.ValidationReport
	NeedsRetry    bool
	HelperSession string
	HelperUsage   domain.Usage
	HelperPrompt  string
	HelperRaw     string
	HelperErr     error
}

// Run validates one attempt. Behavioral tasks are judged on response text
// alone and never interrogated; all other types walk deterministic, helper,
// and interrogation stages until a verdict lands.
func (p *Pipeline) Run(ctx context.Context, in Input) Outcome {
	if in.Task.TaskType == domain.TaskTypeBehavioral {
		report := p.behavioral.Validate(in.Task, in.Response)
		return Outcome{Report: report, NeedsRetry: !report.Passed, HelperSession: in.HelperSession}
	}

	report := p.deterministic.Validate(ctx, in.Task, in.Task.AcceptanceCriteria, in.WorkDir)
	if report.Passed && report.Confidence == domain.ConfidenceHigh {
		return Outcome{Report: report, HelperSession: in.HelperSession}
	}

	unresolved := append(append([]string(nil), report.FailedCriteria...), report.UncertainCriteria...)
	evidence := make(map[string]string)
	for _, check := range report.Checks {
		if !check.Passed {
			evidence[check.Criterion] = check.Detail
		}
	}

	out := Outcome{HelperSession: in.HelperSession}
	helperCommandsFailed := false
	if p.helper != nil {
		helperOut := p.helper.Verify(ctx, HelperRequest{
			TaskID:          in.Task.TaskID,
			ProjectID:       in.ProjectID,
			Criteria:        unresolved,
			ResponseExcerpt: textx.Truncate(in.Response, responseExcerptLimit),
			TreeSummary:     p.treeSummary(in.WorkDir),
			WorkDir:         in.WorkDir,
			SessionID:       in.HelperSession,
		})
		out.HelperSession = helperOut.SessionID
		out.HelperUsage = helperOut.Usage
		out.HelperPrompt = helperOut.Prompt
		out.HelperRaw = helperOut.Raw
		out.HelperErr = helperOut.Err
		report.Stage = domain.StageHelper
		report.Checks = append(report.Checks, helperOut.Commands...)
		if helperOut.Parsed {
			report.HelperVerdict = helperOut.Verdict.Reasoning
		}

		switch {
		case helperOut.Valid:
			report.Passed = true
			report.FailedCriteria = nil
			report.UncertainCriteria = nil
			if helperOut.Trusted {
				report.Confidence = domain.ConfidenceLow
				report.Summary = "helper approved without commands"
			} else {
				report.Confidence = domain.ConfidenceMedium
				report.Summary = "helper verification commands all passed"
			}
			report.CompletedAt = time.Now().UTC()
			return doneOutcome(out, report)
		case helperOut.Err != nil && !p.strictHelper:
			// Helper unreachable. Deterministic evidence decides: explicit
			// failures retry, a merely-uncertain result passes at low
			// confidence rather than stalling the loop on a dead helper.
			if len(report.FailedCriteria) == 0 {
				report.Passed = true
				report.Confidence = domain.ConfidenceLow
				report.UncertainCriteria = nil
				report.Summary = "helper unavailable; accepted on deterministic evidence"
				report.CompletedAt = time.Now().UTC()
				return doneOutcome(out, report)
			}
		default:
			helperCommandsFailed = len(helperOut.Commands) > 0
			for _, cmd := range helperOut.Commands {
				if !cmd.Passed {
					evidence[cmd.Criterion] = cmd.Detail
				}
			}
		}
	}

	if helperCommandsFailed && in.Rounds > 0 && in.Ask != nil {
		report.Stage = domain.StageInterrogation
		interro := p.interrogator.Run(ctx, unresolved, evidence, in.WorkDir, in.Rounds, in.Ask)
		report.Interrogation = interro.Rounds
		if len(interro.Admitted) == 0 && len(interro.Unresolved) == 0 {
			report.Passed = true
			report.Confidence = domain.ConfidenceMedium
			report.FailedCriteria = nil
			report.UncertainCriteria = nil
			report.Summary = "interrogation confirmed all claimed implementations"
			report.CompletedAt = time.Now().UTC()
			return doneOutcome(out, report)
		}
		report.Passed = false
		report.Confidence = domain.ConfidenceHigh
		report.FailedCriteria = append(interro.Admitted, interro.Unresolved...)
		report.UncertainCriteria = nil
		report.Summary = "interrogation left criteria unresolved or admitted"
		report.CompletedAt = time.Now().UTC()
		out.Report = report
		out.NeedsRetry = true
		return out
	}

	report.Passed = false
	if report.Confidence == "" {
		report.Confidence = domain.ConfidenceUncertain
	}
	if len(report.FailedCriteria) == 0 && len(report.UncertainCriteria) > 0 {
		report.Confidence = domain.ConfidenceUncertain
	}
	if report.Summary == "" {
		report.Summary = "validation did not reach a passing verdict"
	}
	report.CompletedAt = time.Now().UTC()
	out.Report = report
	out.NeedsRetry = true
	return out
}

func doneOutcome(out Outcome, report domain.ValidationReport) Outcome {
	out.Report = report
	out.NeedsRetry = false
	return out
}

func (p *Pipeline) treeSummary(workDir string) string {
	summary, err := sandbox.TreeSummary(workDir, treeSummaryDepth, treeSummaryEntries)
	if err != nil {
		return ""
	}
	return summary
}

