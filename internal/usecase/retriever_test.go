package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func TestRetriever_RecoversCurrentTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)
	require.NoError(t, q.Enqueue(ctx, queuedTask("t-queued")))

	st := freshState()
	st.CurrentTask = &domain.Task{TaskID: "t-inflight", AcceptanceCriteria: []string{"x"}}

	got, err := usecase.NewTaskRetriever(q).Retrieve(ctx, st)
	require.NoError(t, err)
	require.NotNil(t, got.Task)
	assert.Equal(t, "t-inflight", got.Task.TaskID)
	assert.Equal(t, usecase.SourceCurrentRecovery, got.Source)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "recovery must not touch the queue")
}

func TestRetriever_PendingRetryWins(t *testing.T) {
	t.Parallel()
	st := freshState()
	st.CurrentTask = &domain.Task{TaskID: "t-1", AcceptanceCriteria: []string{"x"}}
	st.SetProgress("t-1", domain.TaskProgress{RetryCount: 1, RetryPending: true, FixPrompt: "fix it"})

	q, _ := newTaskQueue(t)
	got, err := usecase.NewTaskRetriever(q).Retrieve(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, usecase.SourceRetryTask, got.Source)
	assert.Equal(t, "t-1", got.Task.TaskID)
}

func TestRetriever_PopsQueueInOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)
	require.NoError(t, q.Enqueue(ctx, queuedTask("t-1"), queuedTask("t-2")))

	got, err := usecase.NewTaskRetriever(q).Retrieve(ctx, freshState())
	require.NoError(t, err)
	assert.Equal(t, usecase.SourceQueue, got.Source)
	assert.Equal(t, "t-1", got.Task.TaskID)
	assert.False(t, got.QueueExhausted)
}

func TestRetriever_SkipsRetiredTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)
	require.NoError(t, q.Enqueue(ctx, queuedTask("t-done"), queuedTask("t-blocked"), queuedTask("t-new")))

	st := freshState()
	st.CompletedTasks = append(st.CompletedTasks, domain.CompletedTask{TaskID: "t-done"})
	st.BlockedTasks = append(st.BlockedTasks, domain.BlockedTask{
		Task: domain.Task{TaskID: "t-blocked", AcceptanceCriteria: []string{"x"}},
	})

	got, err := usecase.NewTaskRetriever(q).Retrieve(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "t-new", got.Task.TaskID)
	assert.Equal(t, []string{"t-done", "t-blocked"}, got.SkippedRetired)
}

func TestRetriever_EmptyQueueExhausted(t *testing.T) {
	t.Parallel()
	q, _ := newTaskQueue(t)

	got, err := usecase.NewTaskRetriever(q).Retrieve(context.Background(), freshState())
	require.NoError(t, err)
	assert.Nil(t, got.Task)
	assert.Equal(t, usecase.SourceNone, got.Source)
	assert.True(t, got.QueueExhausted)
}
