package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Deterministic is stage 2: rule-mapped checks that need no AI call.
type Deterministic struct {
	exec    *Executor
	enabled bool
	percent int
}

// NewDeterministic builds the stage. percent limits how many criteria are
// checked here; the remainder stays uncertain for the helper stage.
func NewDeterministic(exec *Executor, enabled bool, percent int) *Deterministic {
	if percent <= 0 || percent > 100 {
		percent = 100
	}
	return &Deterministic{exec: exec, enabled: enabled, percent: percent}
}

// Validate maps each criterion to checks and executes them in order.
// Confidence is high when every executed check was an existence check,
// medium when content patterns or counts ran, and low when any criterion
// had no rule mapping.
func (d *Deterministic) Validate(ctx context.Context, task domain.Task, criteria []string, workDir string) domain.ValidationReport {
	report := domain.ValidationReport{
		TaskID:      task.TaskID,
		Stage:       domain.StageDeterministic,
		CompletedAt: time.Now().UTC(),
	}
	if !d.enabled {
		report.Confidence = domain.ConfidenceLow
		report.UncertainCriteria = append(report.UncertainCriteria, criteria...)
		report.Summary = "deterministic validation disabled"
		return report
	}

	limit := (len(criteria)*d.percent + 99) / 100
	allExistence := true
	ranChecks := false

	for i, criterion := range criteria {
		if i >= limit {
			report.UncertainCriteria = append(report.UncertainCriteria, criterion)
			continue
		}
		ruleName, checks := MapCriterion(criterion)
		if ruleName == "" {
			report.UncertainCriteria = append(report.UncertainCriteria, criterion)
			continue
		}
		criterionPassed := true
		for _, check := range checks {
			ranChecks = true
			if !check.existence() {
				allExistence = false
			}
			result := d.exec.Run(ctx, workDir, criterion, check)
			result.Detail = fmt.Sprintf("rule %s: %s", ruleName, result.Detail)
			report.Checks = append(report.Checks, result)
			if !result.Passed {
				criterionPassed = false
			}
		}
		if !criterionPassed {
			report.FailedCriteria = append(report.FailedCriteria, criterion)
		}
	}

	for _, artifact := range task.RequiredArtifacts {
		ranChecks = true
		result := d.exec.Run(ctx, workDir, "required artifact "+artifact, Check{Kind: CheckFileExists, Path: artifact})
		report.Checks = append(report.Checks, result)
		if !result.Passed {
			report.FailedCriteria = append(report.FailedCriteria, "required artifact "+artifact)
		}
	}

	switch {
	case len(report.UncertainCriteria) > 0 || !ranChecks:
		report.Confidence = domain.ConfidenceLow
	case allExistence:
		report.Confidence = domain.ConfidenceHigh
	default:
		report.Confidence = domain.ConfidenceMedium
	}
	report.Passed = len(report.FailedCriteria) == 0 && len(report.UncertainCriteria) == 0
	report.Summary = fmt.Sprintf("%d checks, %d criteria failed, %d unmapped",
		len(report.Checks), len(report.FailedCriteria), len(report.UncertainCriteria))
	return report
}
