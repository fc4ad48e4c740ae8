package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/astquery"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Check kinds executed by the deterministic stage.
const (
	CheckFileExists    = "file_exists"
	CheckFileNotExists = "file_not_exists"
	CheckDirExists     = "directory_exists"
	CheckJSONContains  = "json_contains"
	CheckFileCount     = "file_count"
	CheckGrepFound     = "grep_found"
	CheckGrepNotFound  = "grep_not_found"
	CheckASTHas        = "ast_has"
)

// Check is one executable verification derived from an acceptance
// criterion. Only the fields relevant to Kind are set.
type Check struct {
	Kind       string
	Path       string
	KeyPath    string
	Value      string
	Pattern    string
	Glob       string
	Min        int
	Max        int
	SymbolKind string
	SymbolName string
}

// existence reports whether the check inspects file presence only. Those
// carry the highest confidence.
func (c Check) existence() bool {
	switch c.Kind {
	case CheckFileExists, CheckFileNotExists, CheckDirExists, CheckJSONContains:
		return true
	}
	return false
}

// Executor runs checks inside one task's working directory, within the
// shared scan bounds.
type Executor struct {
	scanner *sandbox.Scanner
	finder  *astquery.Finder
	bounds  sandbox.ScanBounds
}

// NewExecutor wires the sandbox scanner and the AST finder.
func NewExecutor(scanner *sandbox.Scanner, finder *astquery.Finder, bounds sandbox.ScanBounds) *Executor {
	if bounds.MaxFiles <= 0 {
		bounds.MaxFiles = sandbox.DefaultScanBounds.MaxFiles
	}
	if bounds.MaxBytes <= 0 {
		bounds.MaxBytes = sandbox.DefaultScanBounds.MaxBytes
	}
	return &Executor{scanner: scanner, finder: finder, bounds: bounds}
}

// Run executes one check and folds the outcome into a CheckResult.
func (e *Executor) Run(ctx context.Context, workDir, criterion string, c Check) domain.CheckResult {
	result := domain.CheckResult{Criterion: criterion, Kind: c.Kind}
	switch c.Kind {
	case CheckFileExists:
		result.Passed = sandbox.FileExists(workDir, c.Path)
		result.Detail = existDetail(c.Path, result.Passed)
	case CheckFileNotExists:
		result.Passed = !sandbox.FileExists(workDir, c.Path)
		if result.Passed {
			result.Detail = fmt.Sprintf("%s absent", c.Path)
		} else {
			result.Detail = fmt.Sprintf("%s still present", c.Path)
		}
	case CheckDirExists:
		result.Passed = sandbox.DirExists(workDir, c.Path)
		result.Detail = existDetail(c.Path, result.Passed)
	case CheckJSONContains:
		passed, detail := e.jsonContains(workDir, c)
		result.Passed, result.Detail = passed, detail
	case CheckFileCount:
		passed, detail := e.fileCount(workDir, c)
		result.Passed, result.Detail = passed, detail
	case CheckGrepFound, CheckGrepNotFound:
		passed, detail := e.grep(ctx, workDir, c)
		result.Passed, result.Detail = passed, detail
	case CheckASTHas:
		passed, detail := e.astHas(ctx, workDir, c)
		result.Passed, result.Detail = passed, detail
	default:
		result.Detail = fmt.Sprintf("unknown check kind %q", c.Kind)
	}
	return result
}

func existDetail(path string, found bool) string {
	if found {
		return fmt.Sprintf("%s present", path)
	}
	return fmt.Sprintf("%s not found", path)
}

// jsonContains parses the target file and walks the dotted key path,
// optionally comparing the leaf against an expected value.
func (e *Executor) jsonContains(workDir string, c Check) (bool, string) {
	data, err := sandbox.ReadFileBounded(filepath.Join(workDir, c.Path), e.bounds.MaxBytes)
	if err != nil {
		return false, fmt.Sprintf("read %s: %v", c.Path, err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Sprintf("%s is not valid JSON", c.Path)
	}
	leaf, ok := walkKeyPath(doc, c.KeyPath)
	if !ok {
		return false, fmt.Sprintf("%s missing key %s", c.Path, c.KeyPath)
	}
	if c.Value == "" {
		return true, fmt.Sprintf("%s has key %s", c.Path, c.KeyPath)
	}
	got := fmt.Sprintf("%v", leaf)
	if got == c.Value {
		return true, fmt.Sprintf("%s %s = %q", c.Path, c.KeyPath, got)
	}
	return false, fmt.Sprintf("%s %s = %q, want %q", c.Path, c.KeyPath, got, c.Value)
}

func walkKeyPath(doc interface{}, keyPath string) (interface{}, bool) {
	current := doc
	for _, key := range strings.Split(keyPath, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (e *Executor) fileCount(workDir string, c Check) (bool, string) {
	n, err := sandbox.CountGlob(workDir, c.Glob)
	if err != nil {
		return false, fmt.Sprintf("glob %s: %v", c.Glob, err)
	}
	if c.Min >= 0 && n < c.Min {
		return false, fmt.Sprintf("%d files match %s, want at least %d", n, c.Glob, c.Min)
	}
	if c.Max >= 0 && n > c.Max {
		return false, fmt.Sprintf("%d files match %s, want at most %d", n, c.Glob, c.Max)
	}
	return true, fmt.Sprintf("%d files match %s", n, c.Glob)
}

// grep matches either a single file or the whole tree when no path was
// named in the criterion.
func (e *Executor) grep(ctx context.Context, workDir string, c Check) (bool, string) {
	re, err := CompileSafe(c.Pattern)
	if err != nil {
		return false, err.Error()
	}
	var (
		found bool
		where string
	)
	if c.Path != "" {
		found, err = e.scanner.GrepFile(filepath.Join(workDir, c.Path), re)
		where = c.Path
	} else {
		var matches []string
		matches, err = e.scanner.GrepTree(ctx, workDir, re)
		found = len(matches) > 0
		if found {
			where = matches[0]
		}
	}
	if err != nil {
		return false, fmt.Sprintf("grep %q: %v", c.Pattern, err)
	}
	wantFound := c.Kind == CheckGrepFound
	if found == wantFound {
		if found {
			return true, fmt.Sprintf("pattern %q found in %s", c.Pattern, where)
		}
		return true, fmt.Sprintf("pattern %q absent", c.Pattern)
	}
	if found {
		return false, fmt.Sprintf("pattern %q unexpectedly present in %s", c.Pattern, where)
	}
	return false, fmt.Sprintf("pattern %q not found", c.Pattern)
}

// astHas resolves the symbol with tree-sitter; trees without any supported
// source fall back to a declaration-shaped content pattern.
func (e *Executor) astHas(ctx context.Context, workDir string, c Check) (bool, string) {
	sym, err := e.finder.Find(ctx, workDir, c.SymbolKind, c.SymbolName)
	if err != nil {
		return false, fmt.Sprintf("ast query: %v", err)
	}
	if sym != nil {
		return true, fmt.Sprintf("%s %s declared at %s:%d", sym.Kind, sym.Name, sym.Path, sym.Line)
	}

	re, err := CompileSafe(fmt.Sprintf(`(?:function|class|interface|enum|type|def|func|const|let|var)\s+%s\b`, escapeLiteral(c.SymbolName)))
	if err != nil {
		return false, fmt.Sprintf("ast fallback: %v", err)
	}
	matches, err := e.scanner.GrepTree(ctx, workDir, re)
	if err != nil {
		return false, fmt.Sprintf("ast fallback grep: %v", err)
	}
	if len(matches) > 0 {
		return true, fmt.Sprintf("%s %s matched by declaration pattern in %s", c.SymbolKind, c.SymbolName, matches[0])
	}
	return false, fmt.Sprintf("%s %s not declared", c.SymbolKind, c.SymbolName)
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
