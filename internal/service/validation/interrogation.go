package validation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// AgentAsk sends one prompt to the primary agent's live session and
// returns its response text.
type AgentAsk func(ctx context.Context, prompt string) (string, error)

// InterrogationResult partitions the interrogated criteria by outcome.
// Admitted criteria were declared NOT_STARTED or INCOMPLETE by the agent
// and never re-asked.
type InterrogationResult struct {
	Rounds     []domain.InterrogationRound
	Resolved   []string
	Unresolved []string
	Admitted   []string
}

// Interrogator runs bounded question rounds against the primary agent
// about criteria neither deterministic checks nor the helper could settle.
type Interrogator struct{}

// NewInterrogator builds the stage 4 orchestrator.
func NewInterrogator() *Interrogator {
	return &Interrogator{}
}

var statusLine = regexp.MustCompile(`(?im)^\s*CRITERION\s+(\d+)\s*:\s*(IMPLEMENTED|INCOMPLETE|NOT_STARTED)\b[ \t]*(.*)$`)

type claim struct {
	criterion string
	status    string
	paths     []string
}

// Run interrogates up to maxRounds times. A criterion leaves the pool as
// soon as the agent admits it is unfinished; a claim of implementation is
// only accepted when every path it names exists in the workspace.
func (i *Interrogator) Run(ctx context.Context, criteria []string, evidence map[string]string, workDir string, maxRounds int, ask AgentAsk) InterrogationResult {
	var result InterrogationResult
	if maxRounds <= 0 || len(criteria) == 0 {
		result.Unresolved = append(result.Unresolved, criteria...)
		return result
	}

	remaining := append([]string(nil), criteria...)
	var missingPaths []string

	for round := 1; round <= maxRounds && len(remaining) > 0; round++ {
		var prompt string
		if round == 1 || len(missingPaths) == 0 {
			prompt = buildInterrogationPrompt(remaining, evidence)
		} else {
			prompt = buildMissingPathsPrompt(remaining, missingPaths)
		}

		answer, err := ask(ctx, prompt)
		if err != nil {
			result.Rounds = append(result.Rounds, domain.InterrogationRound{Question: prompt, Answer: fmt.Sprintf("ask failed: %v", err)})
			break
		}

		claims := parseClaims(remaining, answer)
		var next []string
		missingPaths = missingPaths[:0]
		admittedThisRound := 0
		for _, cl := range claims {
			switch cl.status {
			case "NOT_STARTED", "INCOMPLETE":
				result.Admitted = append(result.Admitted, cl.criterion)
				admittedThisRound++
			case "IMPLEMENTED":
				missing := missingFrom(workDir, cl.paths)
				if len(cl.paths) > 0 && len(missing) == 0 {
					result.Resolved = append(result.Resolved, cl.criterion)
				} else {
					next = append(next, cl.criterion)
					missingPaths = append(missingPaths, missing...)
				}
			default:
				next = append(next, cl.criterion)
			}
		}
		result.Rounds = append(result.Rounds, domain.InterrogationRound{
			Question: prompt,
			Answer:   answer,
			Resolved: len(next) == 0,
		})

		// Round 1 ending in admissions across the board stops further rounds.
		if round == 1 && admittedThisRound == len(remaining) {
			remaining = nil
			break
		}
		remaining = next
	}

	result.Unresolved = append(result.Unresolved, remaining...)
	return result
}

func buildInterrogationPrompt(criteria []string, evidence map[string]string) string {
	var b strings.Builder
	b.WriteString("The following acceptance criteria could not be verified in the workspace. ")
	b.WriteString("For each one, point to your implementation or admit it is not done.\n\n")
	for idx, c := range criteria {
		fmt.Fprintf(&b, "CRITERION %d: %s\n", idx+1, c)
		if ev := evidence[c]; ev != "" {
			fmt.Fprintf(&b, "  evidence so far: %s\n", ev)
		}
	}
	b.WriteString("\nAnswer with exactly one line per criterion:\n")
	b.WriteString("CRITERION <n>: IMPLEMENTED <relative file paths, comma separated>\n")
	b.WriteString("CRITERION <n>: INCOMPLETE\n")
	b.WriteString("CRITERION <n>: NOT_STARTED\n")
	return b.String()
}

// buildMissingPathsPrompt echoes the paths the previous claim named that do
// not exist, verbatim, and demands either a correction or an admission.
func buildMissingPathsPrompt(criteria, missingPaths []string) string {
	var b strings.Builder
	b.WriteString("Your previous answer referenced files that do not exist in the workspace:\n")
	for _, p := range missingPaths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("\nThese criteria remain unverified:\n")
	for idx, c := range criteria {
		fmt.Fprintf(&b, "CRITERION %d: %s\n", idx+1, c)
	}
	b.WriteString("\nGive the corrected paths or admit the work is incomplete, using the same CRITERION <n>: format.\n")
	return b.String()
}

// parseClaims maps status lines back onto criteria by index. Criteria the
// agent did not address are returned with an empty status.
func parseClaims(criteria []string, answer string) []claim {
	byIndex := make(map[int]claim)
	for _, m := range statusLine.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(criteria) {
			continue
		}
		byIndex[n] = claim{
			criterion: criteria[n-1],
			status:    strings.ToUpper(m[2]),
			paths:     splitPaths(m[3]),
		}
	}
	claims := make([]claim, 0, len(criteria))
	for idx, c := range criteria {
		if cl, ok := byIndex[idx+1]; ok {
			claims = append(claims, cl)
		} else {
			claims = append(claims, claim{criterion: c})
		}
	}
	return claims
}

func splitPaths(s string) []string {
	var paths []string
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		field = strings.Trim(field, "`'\"")
		if field == "" || !strings.ContainsAny(field, "./") {
			continue
		}
		paths = append(paths, field)
	}
	return paths
}

func missingFrom(workDir string, paths []string) []string {
	var missing []string
	for _, p := range paths {
		if !sandbox.FileExists(workDir, p) && !sandbox.DirExists(workDir, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
