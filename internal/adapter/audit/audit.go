// Package audit persists the append-only audit trail and prompt transcript
// as JSONL files inside the project sandbox.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// FileSink appends audit entries and prompt records to per-project files.
// Writes are serialized; each entry is one line of JSON.
type FileSink struct {
	mu          sync.Mutex
	auditPath   string
	promptsPath string
	runID       string
}

// NewFileSink wires the sink to its two output files. Parent directories
// are created on first write. A fresh run id is minted per sink so every
// entry written through it shares one correlation id.
func NewFileSink(auditPath, promptsPath string) *FileSink {
	return &FileSink{
		auditPath:   auditPath,
		promptsPath: promptsPath,
		runID:       uuid.New().String(),
	}
}

// Write appends one audit entry. A zero timestamp, a missing entry id, and
// an empty run id are stamped here. Halt and resume entries are synced to
// disk before returning; they are the lines an operator reads first after
// a crash.
func (s *FileSink) Write(_ context.Context, e domain.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.RunID == "" {
		e.RunID = s.runID
	}
	flush := e.Event == domain.AuditHalt || e.Event == domain.AuditResume
	return s.appendJSON(s.auditPath, e, flush)
}

// WritePrompt appends one prompt/response record.
func (s *FileSink) WritePrompt(_ context.Context, r domain.PromptRecord) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	return s.appendJSON(s.promptsPath, r, false)
}

func (s *FileSink) appendJSON(path string, v any, flush bool) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if flush {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("sync %s: %w", path, err)
		}
	}
	return nil
}

var _ domain.AuditSink = (*FileSink)(nil)
