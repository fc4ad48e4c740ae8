package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		stderr string
		err    error
		want   domain.ErrorClass
	}{
		{"auth api key", "Error: invalid API key provided", nil, domain.ErrorClassAuth},
		{"auth not logged in", "you are not logged in. run `claude login`", nil, domain.ErrorClassAuth},
		{"auth status code", "request failed with status 401", nil, domain.ErrorClassAuth},
		{"rate limit", "429 Too Many Requests", nil, domain.ErrorClassRateLimit},
		{"rate limit wording", "You have hit the rate limit, slow down", nil, domain.ErrorClassRateLimit},
		{"per minute quota is rate limit", "quota of 60 requests per minute exceeded", nil, domain.ErrorClassRateLimit},
		{"resource exhausted", "RESOURCE_EXHAUSTED: compute quota exceeded", nil, domain.ErrorClassResourceExhausted},
		{"credit balance", "Your credit balance is too low to continue", nil, domain.ErrorClassResourceExhausted},
		{"usage limit", "usage limit reached for this billing period", nil, domain.ErrorClassResourceExhausted},
		{"invalid model", "model gpt-99 not found", nil, domain.ErrorClassInvalidModel},
		{"model mentioned in passing", "invalid model argument 'foo'", nil, domain.ErrorClassUnknown},
		{"unknown", "segmentation fault (core dumped)", nil, domain.ErrorClassUnknown},
		{"spawn error text", "", errors.New("spawn claude: executable file not found"), domain.ErrorClassUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := domain.ProviderResult{Stderr: tc.stderr, ExitCode: 1, Err: tc.err}
			assert.Equal(t, tc.want, usecase.ClassifyError(res))
		})
	}
}

func TestDetect_ExecFailure(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		ExitCode: 1,
		Stderr:   "segmentation fault\nmore context",
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltProviderExecFailure, signal)
	assert.Contains(t, detail, "exit 1")
	assert.Contains(t, detail, "segmentation fault")
	assert.NotContains(t, detail, "more context")
}

func TestDetect_ResourceExhaustedOnFailure(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		ExitCode: 1,
		Stderr:   "Your credit balance is too low",
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltResourceExhausted, signal)
	assert.Contains(t, detail, "credit balance")
}

func TestDetect_CodingEnvelopeCompleted(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, _ := d.Detect(domain.ProviderResult{
		Stdout: `Here is my report:
{"status": "completed", "summary": "added src/auth.ts", "files_changed": ["src/auth.ts"]}`,
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltNone, signal)
}

func TestDetect_CodingEnvelopeBlocked(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		Stdout: `{"status": "blocked", "blocked_reason": "repository requires credentials I do not have"}`,
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltBlocked, signal)
	assert.Contains(t, detail, "credentials")
}

func TestDetect_CodingMissingEnvelope(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, _ := d.Detect(domain.ProviderResult{
		Stdout: "I refactored the module and everything looks good now.",
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltOutputFormatInvalid, signal)
}

func TestDetect_CodingUnknownStatus(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		Stdout: `{"status": "in_progress", "summary": "half done"}`,
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltOutputFormatInvalid, signal)
	assert.Contains(t, detail, "in_progress")
}

func TestDetect_CodingQuestionWithoutEnvelopeIsAmbiguity(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		Stdout: "Before I start, could you clarify which database this service should use?",
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltAmbiguityDetected, signal)
	assert.Contains(t, detail, "could you clarify")
}

func TestDetect_CompletedEnvelopeQuestionIsContent(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, _ := d.Detect(domain.ProviderResult{
		Stdout: `{"status": "completed", "summary": "added the 'do you want to continue?' confirmation prompt"}`,
	}, domain.TaskTypeCoding)
	assert.Equal(t, domain.HaltNone, signal)
}

func TestDetect_PlainTextBlocked(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, detail := d.Detect(domain.ProviderResult{
		Stdout: "BLOCKED: the config file is owned by another process",
	}, domain.TaskTypeConfiguration)
	assert.Equal(t, domain.HaltBlocked, signal)
	assert.Equal(t, "the config file is owned by another process", detail)
}

func TestDetect_AmbiguityPatterns(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()
	cases := []struct {
		name string
		text string
		want domain.HaltSignal
	}{
		{"clarify", "Could you clarify the port number?", domain.HaltAmbiguityDetected},
		{"prefer", "Which do you prefer, YAML or TOML?", domain.HaltAmbiguityDetected},
		{"should i question", "Should I overwrite the existing file?", domain.HaltAmbiguityDetected},
		{"should i statement", "I decided I should install the linter first, then I did so.", domain.HaltNone},
		{"do you want", "Do you want me to also update the README?", domain.HaltAmbiguityDetected},
		{"confirm", "Please confirm before I change the schema.", domain.HaltAmbiguityDetected},
		{"let me know which", "Let me know which branch to target.", domain.HaltAmbiguityDetected},
		{"clean", "Updated the settings file as instructed.", domain.HaltNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			signal, _ := d.Detect(domain.ProviderResult{Stdout: tc.text}, domain.TaskTypeConfiguration)
			assert.Equal(t, tc.want, signal)
		})
	}
}

func TestDetect_BehavioralSkipsAmbiguity(t *testing.T) {
	t.Parallel()
	d := usecase.NewHaltDetector()

	signal, _ := d.Detect(domain.ProviderResult{
		Stdout: "Hello! Do you want to hear about our opening hours?",
	}, domain.TaskTypeBehavioral)
	assert.Equal(t, domain.HaltNone, signal)
}

func TestParseAgentReport(t *testing.T) {
	t.Parallel()

	report, ok := usecase.ParseAgentReport("```json\n{\"status\": \"completed\", \"summary\": \"done\", \"files_changed\": [\"a.ts\"]}\n```")
	assert.True(t, ok)
	assert.Equal(t, usecase.AgentStatusCompleted, report.Status)
	assert.Equal(t, []string{"a.ts"}, report.FilesChanged)

	_, ok = usecase.ParseAgentReport("no json here")
	assert.False(t, ok)

	_, ok = usecase.ParseAgentReport(`{"result": "missing status field"}`)
	assert.False(t, ok)
}
