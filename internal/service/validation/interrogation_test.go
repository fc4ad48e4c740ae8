package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAsk returns canned answers in order and records the prompts.
func scriptedAsk(prompts *[]string, answers ...string) AgentAsk {
	return func(_ context.Context, prompt string) (string, error) {
		*prompts = append(*prompts, prompt)
		idx := len(*prompts) - 1
		if idx >= len(answers) {
			return "", errors.New("no answer scripted")
		}
		return answers[idx], nil
	}
}

func TestInterrogator_AllAdmittedStopsAfterRoundOne(t *testing.T) {
	t.Parallel()
	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"login endpoint exists", "tokens are signed"},
		nil, t.TempDir(), 2,
		scriptedAsk(&prompts, "CRITERION 1: NOT_STARTED\nCRITERION 2: INCOMPLETE\n"))

	require.Len(t, prompts, 1)
	assert.ElementsMatch(t, []string{"login endpoint exists", "tokens are signed"}, res.Admitted)
	assert.Empty(t, res.Resolved)
	assert.Empty(t, res.Unresolved)
	require.Len(t, res.Rounds, 1)
}

func TestInterrogator_ImplementedWithExistingPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeWorkFile(t, dir, "src/auth.ts", "export const login = () => {};\n")

	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"login endpoint exists"},
		nil, dir, 2,
		scriptedAsk(&prompts, "CRITERION 1: IMPLEMENTED src/auth.ts\n"))

	require.Len(t, prompts, 1)
	assert.Equal(t, []string{"login endpoint exists"}, res.Resolved)
	assert.Empty(t, res.Unresolved)
	require.Len(t, res.Rounds, 1)
	assert.True(t, res.Rounds[0].Resolved)
}

func TestInterrogator_MissingPathEchoedInSecondRound(t *testing.T) {
	t.Parallel()
	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"login endpoint exists"},
		nil, t.TempDir(), 2,
		scriptedAsk(&prompts,
			"CRITERION 1: IMPLEMENTED src/ghost.ts\n",
			"CRITERION 1: INCOMPLETE\n"))

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "do not exist")
	assert.Contains(t, prompts[1], "src/ghost.ts")
	assert.Equal(t, []string{"login endpoint exists"}, res.Admitted)
	assert.Empty(t, res.Unresolved)
	require.Len(t, res.Rounds, 2)
}

func TestInterrogator_ClaimWithoutPathsStaysUnresolved(t *testing.T) {
	t.Parallel()
	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"login endpoint exists"},
		nil, t.TempDir(), 1,
		scriptedAsk(&prompts, "CRITERION 1: IMPLEMENTED\n"))

	assert.Equal(t, []string{"login endpoint exists"}, res.Unresolved)
	assert.Empty(t, res.Resolved)
}

func TestInterrogator_UnaddressedCriterionUnresolved(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeWorkFile(t, dir, "a.ts", "export {};\n")

	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"first", "second"},
		nil, dir, 1,
		scriptedAsk(&prompts, "CRITERION 1: IMPLEMENTED a.ts\n"))

	assert.Equal(t, []string{"first"}, res.Resolved)
	assert.Equal(t, []string{"second"}, res.Unresolved)
}

func TestInterrogator_LowercaseAndBacktickedAnswer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeWorkFile(t, dir, "src/db.ts", "export {};\n")

	var prompts []string
	res := NewInterrogator().Run(context.Background(),
		[]string{"db module exists"},
		nil, dir, 1,
		scriptedAsk(&prompts, "criterion 1: implemented `src/db.ts`\n"))

	assert.Equal(t, []string{"db module exists"}, res.Resolved)
}

func TestInterrogator_AskErrorStops(t *testing.T) {
	t.Parallel()
	res := NewInterrogator().Run(context.Background(),
		[]string{"first", "second"},
		nil, t.TempDir(), 3,
		func(_ context.Context, _ string) (string, error) {
			return "", errors.New("session gone")
		})

	assert.ElementsMatch(t, []string{"first", "second"}, res.Unresolved)
	require.Len(t, res.Rounds, 1)
	assert.Contains(t, res.Rounds[0].Answer, "ask failed")
}

func TestInterrogator_ZeroRounds(t *testing.T) {
	t.Parallel()
	called := false
	res := NewInterrogator().Run(context.Background(),
		[]string{"anything"},
		nil, t.TempDir(), 0,
		func(_ context.Context, _ string) (string, error) {
			called = true
			return "", nil
		})

	assert.False(t, called)
	assert.Equal(t, []string{"anything"}, res.Unresolved)
	assert.Empty(t, res.Rounds)
}

func TestInterrogator_EvidenceInPrompt(t *testing.T) {
	t.Parallel()
	var prompts []string
	NewInterrogator().Run(context.Background(),
		[]string{"config file present"},
		map[string]string{"config file present": "config.yaml not found"},
		t.TempDir(), 1,
		scriptedAsk(&prompts, "CRITERION 1: NOT_STARTED\n"))

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "CRITERION 1: config file present")
	assert.Contains(t, prompts[0], "evidence so far: config.yaml not found")
}
