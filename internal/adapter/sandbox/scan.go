package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// ScanBounds cap how much of a workspace one check may touch.
type ScanBounds struct {
	MaxFiles int
	MaxBytes int64
}

// DefaultScanBounds match the deterministic validation limits.
var DefaultScanBounds = ScanBounds{MaxFiles: 2000, MaxBytes: 10 * 1024 * 1024}

// Directories never worth scanning.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	".next":        true,
	"__pycache__":  true,
	".venv":        true,
}

// Scanner runs bounded read-only scans over a directory tree.
type Scanner struct {
	bounds     ScanBounds
	useRipgrep bool
}

// NewScanner builds a scanner. Zero bounds fall back to the defaults.
func NewScanner(bounds ScanBounds, useRipgrep bool) *Scanner {
	if bounds.MaxFiles <= 0 {
		bounds.MaxFiles = DefaultScanBounds.MaxFiles
	}
	if bounds.MaxBytes <= 0 {
		bounds.MaxBytes = DefaultScanBounds.MaxBytes
	}
	return &Scanner{bounds: bounds, useRipgrep: useRipgrep}
}

// FileExists reports whether rel names a regular file under dir.
func FileExists(dir, rel string) bool {
	info, err := os.Stat(filepath.Join(dir, rel))
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether rel names a directory under dir.
func DirExists(dir, rel string) bool {
	info, err := os.Stat(filepath.Join(dir, rel))
	return err == nil && info.IsDir()
}

// ReadFileBounded reads at most maxBytes from a file. Larger files are
// truncated, not rejected; checks operate on the prefix.
func ReadFileBounded(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// GrepFile reports whether the pattern matches within the bounded prefix of
// one file. Binary files never match.
func (s *Scanner) GrepFile(path string, re *regexp.Regexp) (bool, error) {
	data, err := ReadFileBounded(path, s.bounds.MaxBytes)
	if err != nil {
		return false, err
	}
	if !textLike(data) {
		return false, nil
	}
	return re.Match(data), nil
}

// GrepTree returns the relative paths of files under dir whose bounded
// prefix matches the pattern. The walk stops after MaxFiles files have been
// examined. When ripgrep is enabled and installed it does the scan instead.
func (s *Scanner) GrepTree(ctx context.Context, dir string, re *regexp.Regexp) ([]string, error) {
	if s.useRipgrep {
		if rg, err := exec.LookPath("rg"); err == nil {
			return s.grepRipgrep(ctx, rg, dir, re)
		}
	}

	var matched []string
	examined := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if examined >= s.bounds.MaxFiles {
			return filepath.SkipAll
		}
		examined++

		ok, err := s.GrepFile(path, re)
		if err != nil {
			return nil
		}
		if ok {
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}
			matched = append(matched, rel)
		}
		return nil
	})
	if err != nil {
		return matched, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(matched)
	return matched, nil
}

func (s *Scanner) grepRipgrep(ctx context.Context, rg, dir string, re *regexp.Regexp) ([]string, error) {
	cmd := exec.CommandContext(ctx, rg,
		"--files-with-matches",
		"--max-count", "1",
		"--max-filesize", fmt.Sprintf("%d", s.bounds.MaxBytes),
		"--regexp", re.String(),
		".")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		// rg exits 1 on no matches; that is not a failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("ripgrep: %w", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var matched []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		matched = append(matched, filepath.Clean(l))
		if len(matched) >= s.bounds.MaxFiles {
			break
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// CountGlob counts files matching a doublestar pattern relative to dir.
// Directories swept up by ** are excluded so counts mean files.
func CountGlob(dir, pattern string) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("glob %q: %w", pattern, domain.ErrInvalidArgument)
	}
	return len(matches), nil
}

// TreeSummary renders an indented listing of the workspace, capped by depth
// and total entries, for inclusion in helper prompts.
func TreeSummary(dir string, maxDepth, maxEntries int) (string, error) {
	var b strings.Builder
	entries := 0

	var walk func(path string, depth int) error
	walk = func(path string, depth int) error {
		if depth > maxDepth || entries >= maxEntries {
			return nil
		}
		items, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })
		for _, item := range items {
			if entries >= maxEntries {
				b.WriteString(strings.Repeat("  ", depth) + "...\n")
				return nil
			}
			name := item.Name()
			if item.IsDir() && skipDirs[name] {
				continue
			}
			entries++
			indent := strings.Repeat("  ", depth)
			if item.IsDir() {
				b.WriteString(indent + name + "/\n")
				if err := walk(filepath.Join(path, name), depth+1); err != nil {
					return err
				}
			} else {
				b.WriteString(indent + name + "\n")
			}
		}
		return nil
	}

	if err := walk(dir, 0); err != nil {
		return "", fmt.Errorf("tree %s: %w", dir, err)
	}
	return b.String(), nil
}

// textLike sniffs content type on the data prefix; anything outside the
// text/plain hierarchy is treated as binary.
func textLike(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
