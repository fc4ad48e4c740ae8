// Package sandbox confines all filesystem interaction to the per-project
// workspace. The control loop never writes project files itself; it only
// reads them for validation and appends to its own log files.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Sandbox resolves paths under one root directory.
type Sandbox struct {
	root string
}

// New resolves the root to an absolute path. The directory is created on
// first project use, not here.
func New(root string) (*Sandbox, error) {
	if root == "" {
		return nil, fmt.Errorf("sandbox root: %w", domain.ErrInvalidArgument)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root: %w", err)
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string { return s.root }

// ProjectDir returns the workspace directory for a project. Project ids are
// single path elements; anything else is an invariant violation.
func (s *Sandbox) ProjectDir(projectID string) (string, error) {
	if projectID == "" || strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return "", fmt.Errorf("project id %q: %w", projectID, domain.ErrInvariantViolation)
	}
	return filepath.Join(s.root, projectID), nil
}

// EnsureProject creates the project workspace and its logs directory.
func (s *Sandbox) EnsureProject(projectID string) (string, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, "logs"), 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}
	return dir, nil
}

// ResolveWorkDir joins a task's relative working directory onto the project
// workspace, rejecting any path that would escape it.
func (s *Sandbox) ResolveWorkDir(projectID, rel string) (string, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	if rel == "" || rel == "." {
		return dir, nil
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute working directory %q: %w", rel, domain.ErrInvariantViolation)
	}
	joined := filepath.Clean(filepath.Join(dir, rel))
	if joined != dir && !strings.HasPrefix(joined, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("working directory %q escapes sandbox: %w", rel, domain.ErrInvariantViolation)
	}
	return joined, nil
}

// EnsureWorkDir resolves a task working directory and creates it so the
// provider CLI has a cwd to land in.
func (s *Sandbox) EnsureWorkDir(projectID, rel string) (string, error) {
	dir, err := s.ResolveWorkDir(projectID, rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}
	return dir, nil
}

// AuditLogPath is the append-only audit log for a project.
func (s *Sandbox) AuditLogPath(projectID string) (string, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log.jsonl"), nil
}

// PromptsLogPath is the append-only prompt/response log for a project.
func (s *Sandbox) PromptsLogPath(projectID string) (string, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "prompts.log.jsonl"), nil
}

// MetricsPath is the analytics output file for a project.
func (s *Sandbox) MetricsPath(projectID string) (string, error) {
	dir, err := s.ProjectDir(projectID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "metrics.jsonl"), nil
}
