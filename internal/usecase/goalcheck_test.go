package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/provider"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func TestGoalChecker_Completed(t *testing.T) {
	t.Parallel()
	stub := provider.NewStub("gemini_stub", provider.ScriptEntry{
		Stdout: "COMPLETED\nAll enqueued work landed and the login flow is live.",
	})
	checker := usecase.NewGoalChecker(time.Minute)

	goal := domain.Goal{Description: "ship login", ProjectID: "proj-1"}
	completed := []domain.CompletedTask{{TaskID: "t-1"}}

	out, err := checker.Check(context.Background(), stub, goal, completed, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, usecase.GoalCompleted, out.Verdict)
	assert.Contains(t, out.Prompt, "ship login")
	assert.Equal(t, 1, stub.Calls())
}

func TestGoalChecker_Incomplete(t *testing.T) {
	t.Parallel()
	stub := provider.NewStub("gemini_stub", provider.ScriptEntry{
		Stdout: "INCOMPLETE\nNo task addressed the logout path named in the goal.",
	})
	checker := usecase.NewGoalChecker(time.Minute)

	out, err := checker.Check(context.Background(), stub, domain.Goal{Description: "g"}, nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, usecase.GoalIncomplete, out.Verdict)
}

func TestGoalChecker_ProviderFailure(t *testing.T) {
	t.Parallel()
	stub := provider.NewStub("gemini_stub", provider.ScriptEntry{
		Stderr:   "boom",
		ExitCode: 1,
	})
	checker := usecase.NewGoalChecker(time.Minute)

	out, err := checker.Check(context.Background(), stub, domain.Goal{Description: "g"}, nil, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, usecase.GoalAmbiguous, out.Verdict)
}

func TestParseGoalVerdict(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		output string
		want   usecase.GoalVerdict
	}{
		{"completed", "COMPLETED\nlooks done", usecase.GoalCompleted},
		{"incomplete", "INCOMPLETE\nmissing logout", usecase.GoalIncomplete},
		{"ambiguous", "AMBIGUOUS\nthe goal does not say which env", usecase.GoalAmbiguous},
		{"lowercase", "completed. Everything shipped.", usecase.GoalCompleted},
		{"first line wins", "INCOMPLETE\nMost tasks are COMPLETED though.", usecase.GoalIncomplete},
		{"verdict later in text", "Verdict:\n\nCOMPLETED because every criterion passed.", usecase.GoalCompleted},
		{"no verdict", "I cannot tell.", usecase.GoalAmbiguous},
		{"empty", "", usecase.GoalAmbiguous},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, usecase.ParseGoalVerdict(tc.output))
		})
	}
}
