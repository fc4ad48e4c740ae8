package domain

import "time"

// Confidence grades how certain the pipeline is about a verdict.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceUncertain Confidence = "uncertain"
)

// CheckResult is the outcome of one acceptance check.
type CheckResult struct {
	Criterion string `json:"criterion"`
	Kind      string `json:"kind"`
	Passed    bool   `json:"passed"`
	Detail    string `json:"detail,omitempty"`
}

// InterrogationRound is one question/answer exchange with the helper agent
// about a suspect claim.
type InterrogationRound struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Resolved bool   `json:"resolved"`
}

// ValidationReport is the structured verdict of the validation pipeline for
// one task attempt. FailedCriteria feeds the retry fix prompt.
type ValidationReport struct {
	TaskID            string               `json:"task_id"`
	Passed            bool                 `json:"passed"`
	Confidence        Confidence           `json:"confidence"`
	Stage             string               `json:"stage"`
	Checks            []CheckResult        `json:"checks,omitempty"`
	FailedCriteria    []string             `json:"failed_criteria,omitempty"`
	UncertainCriteria []string             `json:"uncertain_criteria,omitempty"`
	HelperVerdict     string               `json:"helper_verdict,omitempty"`
	Interrogation     []InterrogationRound `json:"interrogation,omitempty"`
	Summary           string               `json:"summary,omitempty"`
	CompletedAt       time.Time            `json:"completed_at"`
}

// RulesPassed counts the checks that succeeded.
func (r ValidationReport) RulesPassed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Passed {
			n++
		}
	}
	return n
}

// RulesFailed counts the checks that did not succeed.
func (r ValidationReport) RulesFailed() int {
	return len(r.Checks) - r.RulesPassed()
}

// Validation pipeline stage names, recorded on the report.
const (
	StageBehavioral    = "behavioral"
	StageDeterministic = "deterministic"
	StageHelper        = "helper"
	StageInterrogation = "interrogation"
)
