// Package analytics records per-task outcome metrics as JSONL and
// aggregates them into run summaries for the operator.
package analytics

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// FileSink writes one JSON line per retired task to metrics.jsonl.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink wires the sink to the project's metrics file.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// WriteTaskMetrics appends one metrics line.
func (s *FileSink) WriteTaskMetrics(_ context.Context, m domain.TaskMetrics) error {
	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	return nil
}

// Summary reads the whole metrics file back and aggregates it. A missing
// file is an empty run, not an error. Lines that fail to parse are skipped;
// a partially written final line must not poison the summary.
func (s *FileSink) Summary(_ context.Context) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		ByType:    map[domain.TaskType]int{},
		ByOutcome: map[string]int{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, nil
		}
		return summary, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var m domain.TaskMetrics
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			continue
		}
		switch m.Outcome {
		case domain.OutcomeCompleted:
			summary.TasksCompleted++
		case domain.OutcomeBlocked:
			summary.TasksBlocked++
		}
		summary.TotalAttempts += m.Attempts
		summary.TotalSeconds += m.DurationSeconds
		summary.InputTokens += m.InputTokens
		summary.OutputTokens += m.OutputTokens
		summary.ByType[m.TaskType]++
		summary.ByOutcome[m.Outcome]++
	}
	if err := sc.Err(); err != nil {
		return summary, fmt.Errorf("read %s: %w", s.path, err)
	}
	return summary, nil
}

var _ domain.AnalyticsSink = (*FileSink)(nil)
