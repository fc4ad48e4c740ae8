package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// errorClassRules map provider stderr/exit text onto error classes. Order
// matters: per-minute limits must land on RATE_LIMIT before the broader
// quota wording lands on RESOURCE_EXHAUSTED.
var errorClassRules = []struct {
	class domain.ErrorClass
	re    *regexp.Regexp
}{
	{domain.ErrorClassRateLimit, regexp.MustCompile(`(?i)(rate.?limit|too many requests|\b429\b|requests? per (second|minute|hour)|quota.*per.*(second|minute|hour))`)},
	{domain.ErrorClassResourceExhausted, regexp.MustCompile(`(?i)(resource.?exhausted|out of (credits?|tokens|funds)|insufficient.*(credits?|funds|balance|quota)|credit balance|billing|usage limit (reached|exceeded)|quota (exceeded|exhausted)|overloaded|at capacity|\b529\b)`)},
	{domain.ErrorClassAuth, regexp.MustCompile(`(?i)(unauthorized|forbidden|authentication|invalid.*(api.?key|token|credential)|api.?key.*(invalid|expired|missing)|not logged in|login required|\b401\b|\b403\b)`)},
	{domain.ErrorClassInvalidModel, regexp.MustCompile(`(?i)(unknown model|no such model|invalid model name|model .{0,40}not (found|available|supported))`)},
}

// ClassifyError maps a failed provider result onto an error class for
// breaker and retry decisions. Results that did not fail classify as UNKNOWN
// and should not be passed here.
func ClassifyError(res domain.ProviderResult) domain.ErrorClass {
	var errText string
	if res.Err != nil {
		errText = res.Err.Error()
	}
	combined := strings.Join([]string{res.Stderr, errText, res.Stdout}, "\n")
	for _, rule := range errorClassRules {
		if rule.re.MatchString(combined) {
			return rule.class
		}
	}
	return domain.ErrorClassUnknown
}

// ambiguityPatterns flag questions the agent addressed to the operator.
// The broad "should I" form also demands a question mark on the same line.
var ambiguityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcould you clarify\b`),
	regexp.MustCompile(`(?i)\bwhich (one )?do you prefer\b`),
	regexp.MustCompile(`(?i)\bshould i\b[^\n?]*\?`),
	regexp.MustCompile(`(?i)\bdo you want\b`),
	regexp.MustCompile(`(?i)\bplease confirm\b`),
	regexp.MustCompile(`(?i)\blet me know (which|if)\b`),
}

// blockedLine is the out-of-envelope self-report form for task types that
// answer in plain text.
var blockedLine = regexp.MustCompile(`(?m)^\s*BLOCKED:\s*(.*)$`)

// HaltDetector classifies raw provider output into halt signals. Critical
// signals stop the loop; the rest feed the retry orchestrator.
type HaltDetector struct{}

// NewHaltDetector constructs a HaltDetector.
func NewHaltDetector() HaltDetector {
	return HaltDetector{}
}

// Detect inspects one provider result. The second return value is operator-
// facing detail for the audit log and halt state.
func (d HaltDetector) Detect(res domain.ProviderResult, taskType domain.TaskType) (domain.HaltSignal, string) {
	if res.Failed() {
		if ClassifyError(res) == domain.ErrorClassResourceExhausted {
			return domain.HaltResourceExhausted, headline(res.Stderr, res.Stdout, errString(res.Err))
		}
		detail := headline(errString(res.Err), res.Stderr, res.Stdout)
		return domain.HaltProviderExecFailure, fmt.Sprintf("exit %d: %s", res.ExitCode, detail)
	}

	output := res.Output()
	if taskType == domain.TaskTypeCoding {
		report, ok := ParseAgentReport(output)
		if !ok {
			// An agent that asked a question instead of working produced no
			// envelope either; that is ambiguity, not a format violation.
			// The detail is the question itself so the clarification prompt
			// can quote it back.
			if match := firstAmbiguity(output); match != "" {
				return domain.HaltAmbiguityDetected, match
			}
			return domain.HaltOutputFormatInvalid, "response is not the JSON report envelope"
		}
		switch report.Status {
		case AgentStatusBlocked:
			return domain.HaltBlocked, report.BlockedReason
		case AgentStatusCompleted:
			// A parsed completed report is a worked result; questions inside
			// its summary are content, not requests to the operator.
			return domain.HaltNone, ""
		default:
			return domain.HaltOutputFormatInvalid, fmt.Sprintf("unknown report status %q", report.Status)
		}
	}

	if m := blockedLine.FindStringSubmatch(output); m != nil {
		return domain.HaltBlocked, strings.TrimSpace(m[1])
	}

	// Behavioral replies talk to an end user; questions there are content,
	// not ambiguity.
	if taskType != domain.TaskTypeBehavioral {
		if match := firstAmbiguity(output); match != "" {
			return domain.HaltAmbiguityDetected, match
		}
	}
	return domain.HaltNone, ""
}

func firstAmbiguity(output string) string {
	for _, re := range ambiguityPatterns {
		if match := re.FindString(output); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// headline returns the first line of the first non-empty candidate, capped
// for log friendliness.
func headline(candidates ...string) string {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if i := strings.IndexByte(c, '\n'); i >= 0 {
			c = c[:i]
		}
		if len(c) > 200 {
			c = c[:200]
		}
		return c
	}
	return ""
}
