package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

var (
	greetingCriterion = regexp.MustCompile(`(?i)\b(greet|greeting|salutation|welcome)\b`)
	greetingWords     = regexp.MustCompile(`(?i)\b(hello|hi|hey|greetings|welcome|good\s+(morning|afternoon|evening|day))\b`)

	minWordsCriterion  = regexp.MustCompile(`(?i)(?:at\s+least|minimum(?:\s+of)?|no\s+fewer\s+than|>=)\s*(\d+)\s+words`)
	maxWordsCriterion  = regexp.MustCompile(`(?i)(?:at\s+most|maximum(?:\s+of)?|no\s+more\s+than|under|fewer\s+than|<=)\s*(\d+)\s+words`)
	paragraphCriterion = regexp.MustCompile(`(?i)(\d+)\s+paragraphs?`)
	customRegexPattern = regexp.MustCompile(`(?i)(?:match(?:es)?|regex|pattern)[:\s]+/(.+)/`)
	quotedLiteral      = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
)

// Behavioral validates conversational tasks by matching the agent's
// response text against the acceptance criteria. File state is never
// consulted and no interrogation follows; the verdict is final.
type Behavioral struct{}

// NewBehavioral builds the stage 1 validator.
func NewBehavioral() *Behavioral {
	return &Behavioral{}
}

// Validate scores every criterion against the response. All criteria must
// pass for a valid verdict.
func (b *Behavioral) Validate(task domain.Task, response string) domain.ValidationReport {
	report := domain.ValidationReport{
		TaskID:      task.TaskID,
		Stage:       domain.StageBehavioral,
		Confidence:  domain.ConfidenceHigh,
		CompletedAt: time.Now().UTC(),
	}
	for _, criterion := range task.AcceptanceCriteria {
		passed, detail := matchCriterion(criterion, response)
		report.Checks = append(report.Checks, domain.CheckResult{
			Criterion: criterion,
			Kind:      "behavioral",
			Passed:    passed,
			Detail:    detail,
		})
		if !passed {
			report.FailedCriteria = append(report.FailedCriteria, criterion)
		}
	}
	report.Passed = len(report.FailedCriteria) == 0
	if report.Passed {
		report.Summary = "response matched all behavioral criteria"
	} else {
		report.Summary = fmt.Sprintf("%d/%d behavioral criteria unmet", len(report.FailedCriteria), len(report.Checks))
	}
	return report
}

// matchCriterion applies the pattern table in order and falls back to
// literal and keyword containment.
func matchCriterion(criterion, response string) (bool, string) {
	if greetingCriterion.MatchString(criterion) {
		if greetingWords.MatchString(response) {
			return true, "greeting word present"
		}
		return false, "no greeting word in response"
	}

	if m := minWordsCriterion.FindStringSubmatch(criterion); m != nil {
		want, _ := strconv.Atoi(m[1])
		got := wordCount(response)
		if got >= want {
			return true, fmt.Sprintf("%d words >= %d", got, want)
		}
		return false, fmt.Sprintf("%d words < %d", got, want)
	}
	if m := maxWordsCriterion.FindStringSubmatch(criterion); m != nil {
		want, _ := strconv.Atoi(m[1])
		got := wordCount(response)
		if got <= want {
			return true, fmt.Sprintf("%d words <= %d", got, want)
		}
		return false, fmt.Sprintf("%d words > %d", got, want)
	}

	if m := paragraphCriterion.FindStringSubmatch(criterion); m != nil {
		want, _ := strconv.Atoi(m[1])
		got := paragraphCount(response)
		if got >= want {
			return true, fmt.Sprintf("%d paragraphs >= %d", got, want)
		}
		return false, fmt.Sprintf("%d paragraphs < %d", got, want)
	}

	if m := customRegexPattern.FindStringSubmatch(criterion); m != nil {
		re, err := CompileSafe(m[1])
		if err != nil {
			return false, fmt.Sprintf("criterion pattern rejected: %v", err)
		}
		if re.MatchString(response) {
			return true, "custom pattern matched"
		}
		return false, fmt.Sprintf("custom pattern /%s/ not matched", m[1])
	}

	if literals := quotedLiteral.FindAllStringSubmatch(criterion, -1); len(literals) > 0 {
		lower := strings.ToLower(response)
		for _, lit := range literals {
			text := lit[1]
			if text == "" {
				text = lit[2]
			}
			if !strings.Contains(lower, strings.ToLower(text)) {
				return false, fmt.Sprintf("literal %q absent from response", text)
			}
		}
		return true, "all quoted literals present"
	}

	return keywordContainment(criterion, response)
}

// keywordContainment is the last resort: the significant words of the
// criterion must appear in the response.
func keywordContainment(criterion, response string) (bool, string) {
	lower := strings.ToLower(response)
	var missing []string
	checked := 0
	for _, word := range strings.Fields(strings.ToLower(criterion)) {
		word = strings.Trim(word, `.,:;!?()"'`)
		if len(word) < 5 || stopWords[word] {
			continue
		}
		checked++
		if !strings.Contains(lower, word) {
			missing = append(missing, word)
		}
	}
	if checked == 0 {
		return true, "criterion has no checkable keywords"
	}
	if len(missing) == 0 {
		return true, "criterion keywords present"
	}
	return false, "missing keywords: " + strings.Join(missing, ", ")
}

// stopWords covers glue words plus the instruction verbs criteria are
// phrased with; neither is expected to recur in the response itself.
var stopWords = map[string]bool{
	"should": true, "would": true, "could": true, "respond": true,
	"response": true, "answer": true, "include": true, "includes": true,
	"contain": true, "contains": true, "mention": true, "mentions": true,
	"about": true, "their": true, "there": true, "these": true, "those": true,
	"which": true, "where": true, "while": true, "after": true, "before": true,
	"explain": true, "describe": true, "provide": true, "write": true,
	"create": true, "summarize": true, "discuss": true, "elaborate": true,
	"using": true, "please": true,
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func paragraphCount(text string) int {
	count := 0
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}
