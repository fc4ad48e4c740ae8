package analytics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

func TestSummaryEmptyWhenFileMissing(t *testing.T) {
	t.Parallel()
	sink := NewFileSink(filepath.Join(t.TempDir(), "metrics.jsonl"))

	summary, err := sink.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TasksCompleted)
	assert.Zero(t, summary.TasksBlocked)
	assert.Empty(t, summary.ByType)
}

func TestWriteAndSummarize(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "metrics.jsonl")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.WriteTaskMetrics(ctx, domain.TaskMetrics{
		TaskID: "t-1", TaskType: domain.TaskTypeCoding, Outcome: domain.OutcomeCompleted,
		Attempts: 1, DurationSeconds: 12.5, InputTokens: 100, OutputTokens: 50,
	}))
	require.NoError(t, sink.WriteTaskMetrics(ctx, domain.TaskMetrics{
		TaskID: "t-2", TaskType: domain.TaskTypeCoding, Outcome: domain.OutcomeBlocked,
		Attempts: 3, DurationSeconds: 40, InputTokens: 300, OutputTokens: 120,
	}))
	require.NoError(t, sink.WriteTaskMetrics(ctx, domain.TaskMetrics{
		TaskID: "t-3", TaskType: domain.TaskTypeBehavioral, Outcome: domain.OutcomeCompleted,
		Attempts: 1, DurationSeconds: 2, InputTokens: 20, OutputTokens: 30,
	}))

	summary, err := sink.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TasksCompleted)
	assert.Equal(t, 1, summary.TasksBlocked)
	assert.Equal(t, 5, summary.TotalAttempts)
	assert.InDelta(t, 54.5, summary.TotalSeconds, 0.001)
	assert.Equal(t, 420, summary.InputTokens)
	assert.Equal(t, 200, summary.OutputTokens)
	assert.Equal(t, 2, summary.ByType[domain.TaskTypeCoding])
	assert.Equal(t, 1, summary.ByType[domain.TaskTypeBehavioral])
	assert.Equal(t, 2, summary.ByOutcome[domain.OutcomeCompleted])
}

func TestSummarySkipsCorruptLines(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "metrics.jsonl")
	sink := NewFileSink(path)
	ctx := context.Background()

	require.NoError(t, sink.WriteTaskMetrics(ctx, domain.TaskMetrics{
		TaskID: "t-1", TaskType: domain.TaskTypeCoding, Outcome: domain.OutcomeCompleted, Attempts: 1,
	}))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"task_id":"t-2","outco`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	summary, err := sink.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TasksCompleted)
}
