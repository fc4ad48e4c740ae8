package usecase

import (
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// RetrieveSource tells the loop where the next task came from.
type RetrieveSource string

const (
	SourceCurrentRecovery RetrieveSource = "current_task_recovery"
	SourceRetryTask       RetrieveSource = "retry_task"
	SourceQueue           RetrieveSource = "queue"
	SourceNone            RetrieveSource = "none"
)

// Retrieval is the outcome of one task lookup.
type Retrieval struct {
	Task           *domain.Task
	Source         RetrieveSource
	QueueExhausted bool
	SkippedRetired []string
}

// TaskRetriever decides what the loop works on next. The ordering keeps at
// most one task in flight and makes crash recovery automatic: an in-flight
// task survives a process death because it was persisted as current_task
// before dispatch.
type TaskRetriever struct {
	Queue TaskQueue
}

// NewTaskRetriever constructs a TaskRetriever over the task queue.
func NewTaskRetriever(queue TaskQueue) TaskRetriever {
	return TaskRetriever{Queue: queue}
}

// Retrieve returns the in-flight task when one exists, a pending retry next,
// and otherwise pops the queue. Queue entries whose task_id already sits in
// completed or blocked history are skipped, so a duplicate enqueue can never
// complete twice.
func (r TaskRetriever) Retrieve(ctx domain.Context, st *domain.SupervisorState) (Retrieval, error) {
	if st.CurrentTask != nil {
		source := SourceCurrentRecovery
		if st.Progress(st.CurrentTask.TaskID).RetryPending {
			source = SourceRetryTask
		}
		return Retrieval{Task: st.CurrentTask, Source: source}, nil
	}
	var skipped []string
	for {
		task, err := r.Queue.Dequeue(ctx)
		if err != nil {
			return Retrieval{Source: SourceNone, SkippedRetired: skipped}, err
		}
		if task == nil {
			return Retrieval{Source: SourceNone, QueueExhausted: true, SkippedRetired: skipped}, nil
		}
		if st.TaskRetired(task.TaskID) {
			skipped = append(skipped, task.TaskID)
			continue
		}
		return Retrieval{Task: task, Source: SourceQueue, SkippedRetired: skipped}, nil
	}
}
