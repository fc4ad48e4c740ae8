package usecase_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/redisstore"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
	"github.com/ai-supervisor-foundry/foundry/internal/usecase"
)

func newTaskQueue(t *testing.T) (usecase.TaskQueue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := redisstore.New(redisstore.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })
	return usecase.NewTaskQueue(store, "tasks"), mr
}

func queuedTask(id string) domain.Task {
	return domain.Task{
		TaskID:             id,
		Intent:             "add an endpoint",
		AcceptanceCriteria: []string{"src/server.ts exists"},
	}
}

func TestTaskQueue_FIFO(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)

	require.NoError(t, q.Enqueue(ctx, queuedTask("t-1"), queuedTask("t-2"), queuedTask("t-3")))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	for _, want := range []string{"t-1", "t-2", "t-3"} {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want, got.TaskID)
	}
}

func TestTaskQueue_DequeueEmptyReturnsNil(t *testing.T) {
	t.Parallel()
	q, _ := newTaskQueue(t)

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskQueue_EnqueueNormalizes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)

	task := domain.Task{
		TaskID:             "t-1",
		Intent:             "write unit tests for the parser",
		AcceptanceCriteria: []string{"tests pass"},
	}
	require.NoError(t, q.Enqueue(ctx, task))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.TaskTypeTesting, got.TaskType)
	assert.Equal(t, domain.TaskPending, got.Status)
}

func TestTaskQueue_EnqueueRejectsInvalidTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)

	bad := domain.Task{TaskID: "t-bad", AcceptanceCriteria: nil}
	err := q.Enqueue(ctx, queuedTask("t-ok"), bad)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	// A bad task in the batch must keep the whole batch out.
	n, lenErr := q.Len(ctx)
	require.NoError(t, lenErr)
	assert.Zero(t, n)
}

func TestTaskQueue_EnqueueRejectsEscapingWorkDir(t *testing.T) {
	t.Parallel()
	q, _ := newTaskQueue(t)

	bad := queuedTask("t-1")
	bad.WorkingDirectory = "../outside"
	err := q.Enqueue(context.Background(), bad)
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestTaskQueue_DequeueCorruptPayload(t *testing.T) {
	t.Parallel()
	q, mr := newTaskQueue(t)

	_, err := mr.Lpush("tasks", `{"task_id": `)
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background())
	require.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestTaskQueue_PeekKeepsOrderAndEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q, _ := newTaskQueue(t)

	require.NoError(t, q.Enqueue(ctx, queuedTask("t-1"), queuedTask("t-2"), queuedTask("t-3")))

	peeked, err := q.Peek(ctx, 2)
	require.NoError(t, err)
	require.Len(t, peeked, 2)
	assert.Equal(t, "t-1", peeked[0].TaskID)
	assert.Equal(t, "t-2", peeked[1].TaskID)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "peek must not consume")
}
