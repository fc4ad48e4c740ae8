package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

func runCLI(t *testing.T, mr *miniredis.Miniredis, args ...string) (int, string, string) {
	t.Helper()
	full := []string{"--redis-host", mr.Host(), "--redis-port", mr.Port(), "--sandbox-root", t.TempDir()}
	full = append(full, args...)
	var stdout, stderr bytes.Buffer
	code := run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func newRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr
}

func TestRun_Version(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "foundry version")
	assert.Empty(t, stderr.String())
}

func TestRun_InitStateLifecycle(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)

	code, stdout, _ := runCLI(t, mr, "init-state", "--goal", "ship the login feature", "--project-id", "proj-1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "initialized supervisor:state")

	// A second init against the same key must refuse, recoverably.
	code, _, stderr := runCLI(t, mr, "init-state", "--goal", "ship the login feature", "--project-id", "proj-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already initialized")

	code, stdout, _ = runCLI(t, mr, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "RUNNING")
	assert.Contains(t, stdout, "proj-1")

	code, stdout, _ = runCLI(t, mr, "halt", "--reason", "maintenance window")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "halted: maintenance window")

	code, stdout, _ = runCLI(t, mr, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "HALTED")
	assert.Contains(t, stdout, "maintenance window")

	code, stdout, _ = runCLI(t, mr, "resume")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "resumed")

	code, stdout, _ = runCLI(t, mr, "resume")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "already running")
}

func TestRun_SetGoalKeepsProject(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)

	code, _, _ := runCLI(t, mr, "init-state", "--goal", "first goal", "--project-id", "proj-1")
	require.Equal(t, 0, code)

	code, stdout, _ := runCLI(t, mr, "set-goal", "--description", "second goal")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "goal set for project proj-1")

	code, stdout, _ = runCLI(t, mr, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "second goal")
}

func TestRun_StatusShowsTrippedBreaker(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)

	code, _, _ := runCLI(t, mr, "init-state", "--goal", "g", "--project-id", "proj-1")
	require.Equal(t, 0, code)

	now := time.Now().UTC()
	raw, err := json.Marshal(domain.CircuitBreakerRecord{
		Provider:    domain.ProviderClaude,
		TriggeredAt: now,
		ExpiresAt:   now.Add(time.Hour),
		ErrorType:   "AUTH",
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set("circuit_breaker:claude", string(raw)))

	code, stdout, _ := runCLI(t, mr, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "claude tripped (AUTH)")
}

func TestRun_EnqueueJSONAndYAML(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)
	dir := t.TempDir()

	yamlFile := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte(`- task_id: t-1
  task_type: coding
  intent: add the http server entrypoint
  acceptance_criteria:
    - src/server.ts exists
- task_id: t-2
  acceptance_criteria:
    - README.md exists
`), 0o644))

	jsonFile := filepath.Join(dir, "task.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"task_id":"t-3","acceptance_criteria":["docs/API.md exists"]}`), 0o644))

	code, stdout, _ := runCLI(t, mr, "enqueue", "--task-file", yamlFile)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "enqueued 2 task(s); queue depth 2")

	code, stdout, _ = runCLI(t, mr, "enqueue", "--task-file", jsonFile)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "enqueued 1 task(s); queue depth 3")
}

func TestRun_EnqueueRejectsBadBatch(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)
	dir := t.TempDir()

	// Second entry is missing acceptance criteria, so nothing may be pushed.
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"task_id":"t-1","acceptance_criteria":["a"]},{"task_id":"t-2"}]`), 0o644))

	code, _, stderr := runCLI(t, mr, "enqueue", "--task-file", bad)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)

	code, stdout, _ := runCLI(t, mr, "init-state", "--goal", "g", "--project-id", "p")
	require.Equal(t, 0, code, stdout)
	code, stdout, _ = runCLI(t, mr, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "0 waiting")
}

func TestRun_CorruptStateExitsTwo(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)
	require.NoError(t, mr.Set("supervisor:state", "{not json"))

	code, _, stderr := runCLI(t, mr, "status")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "invariant violation")
}

func TestRun_RedisDownExitsOne(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)
	// Capture the address before Close: miniredis panics on Host()/Port()
	// once the listener is gone.
	host, port := mr.Host(), mr.Port()
	mr.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{"--redis-host", host, "--redis-port", port, "--sandbox-root", t.TempDir(), "status"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}

func TestDecodeTasks(t *testing.T) {
	t.Parallel()
	tasks, err := decodeTasks([]byte(`[{"task_id":"t-1","acceptance_criteria":["a"]}]`), "tasks.json")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-1", tasks[0].TaskID)

	tasks, err = decodeTasks([]byte("task_id: t-2\nacceptance_criteria:\n  - b\n"), "task.yml")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t-2", tasks[0].TaskID)
	assert.Equal(t, []string{"b"}, tasks[0].AcceptanceCriteria)

	_, err = decodeTasks([]byte("not a task"), "tasks.json")
	require.Error(t, err)
}

func TestRootOptions_FlagOverrides(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)

	// Same logical DB for state and queue must be rejected before any
	// command touches the store.
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"--redis-host", mr.Host(),
		"--redis-port", mr.Port(),
		"--state-db", "3",
		"--queue-db", "3",
		"status",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "must differ")
}

func TestStateKeyFlagOverride(t *testing.T) {
	t.Parallel()
	mr := newRedis(t)

	code, stdout, _ := runCLI(t, mr, "--state-key", "alt:state", "init-state", "--goal", "g", "--project-id", "p")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "initialized alt:state")
	require.True(t, mr.Exists("alt:state"))

	raw, err := mr.Get("alt:state")
	require.NoError(t, err)
	assert.Contains(t, raw, string(domain.StatusRunning))
}
