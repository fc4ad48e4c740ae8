// Package astquery answers symbol-existence questions over TypeScript and
// JavaScript trees using tree-sitter. Other languages are handled upstream
// with content patterns.
package astquery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Symbol locates one declaration found in a source tree.
type Symbol struct {
	Kind string
	Name string
	Path string
	Line int
}

// Finder walks a project tree looking for declarations. Walks are bounded
// so a runaway workspace cannot stall validation.
type Finder struct {
	maxFiles int
	maxBytes int64
}

// NewFinder builds a Finder with the given bounds. Non-positive values get
// the defaults used by deterministic validation.
func NewFinder(maxFiles int, maxBytes int64) *Finder {
	if maxFiles <= 0 {
		maxFiles = 2000
	}
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &Finder{maxFiles: maxFiles, maxBytes: maxBytes}
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	"vendor":       true,
}

// SupportedFile reports whether path parses with one of the bundled
// grammars.
func SupportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs":
		return true
	}
	return false
}

func grammarFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// normalizeKind folds the accepted kind aliases onto canonical names.
func normalizeKind(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "function", "func":
		return "function", nil
	case "class":
		return "class", nil
	case "interface":
		return "interface", nil
	case "type", "type_alias":
		return "type", nil
	case "enum":
		return "enum", nil
	case "method":
		return "method", nil
	case "variable", "var", "const", "let":
		return "variable", nil
	default:
		return "", fmt.Errorf("symbol kind %q: %w", kind, domain.ErrInvalidArgument)
	}
}

// Find scans dir for a declaration of the given kind and name. It returns
// nil without error when no file declares the symbol within bounds.
func (f *Finder) Find(ctx context.Context, dir, kind, name string) (*Symbol, error) {
	canonical, err := normalizeKind(kind)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("symbol name empty: %w", domain.ErrInvalidArgument)
	}

	var files []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := d.Name()
			if path != dir && (skipDirs[base] || strings.HasPrefix(base, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if SupportedFile(path) {
			files = append(files, path)
		}
		if len(files) >= f.maxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	sort.Strings(files)

	var bytesRead int64
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if bytesRead+info.Size() > f.maxBytes {
			break
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		bytesRead += int64(len(content))

		sym, err := f.findInFile(ctx, path, content, canonical, name)
		if err != nil {
			return nil, err
		}
		if sym != nil {
			if rel, relErr := filepath.Rel(dir, path); relErr == nil {
				sym.Path = rel
			}
			return sym, nil
		}
	}
	return nil, nil
}

// findInFile parses one file and walks its tree for a matching declaration.
func (f *Finder) findInFile(ctx context.Context, path string, content []byte, kind, name string) (*Symbol, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(grammarFor(path))
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	cursor := sitter.NewTreeCursor(tree.RootNode())
	defer cursor.Close()
	return walkForSymbol(cursor, content, path, kind, name), nil
}

func walkForSymbol(cursor *sitter.TreeCursor, source []byte, path, kind, name string) *Symbol {
	node := cursor.CurrentNode()
	if sym := matchNode(node, source, path, kind, name); sym != nil {
		return sym
	}
	if cursor.GoToFirstChild() {
		defer cursor.GoToParent()
		for {
			if sym := walkForSymbol(cursor, source, path, kind, name); sym != nil {
				return sym
			}
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}
	return nil
}

// matchNode checks whether node declares the wanted symbol. Arrow functions
// bound to a const count as functions, matching how reviewers read modern
// TypeScript.
func matchNode(node *sitter.Node, source []byte, path, kind, name string) *Symbol {
	nodeType := node.Type()
	matched := false
	switch kind {
	case "function":
		switch nodeType {
		case "function_declaration", "generator_function_declaration":
			matched = namedAs(node, source, name)
		case "variable_declarator":
			value := node.ChildByFieldName("value")
			if value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression" || value.Type() == "function") {
				matched = namedAs(node, source, name)
			}
		}
	case "class":
		matched = nodeType == "class_declaration" && namedAs(node, source, name)
	case "interface":
		matched = nodeType == "interface_declaration" && namedAs(node, source, name)
	case "type":
		matched = nodeType == "type_alias_declaration" && namedAs(node, source, name)
	case "enum":
		matched = nodeType == "enum_declaration" && namedAs(node, source, name)
	case "method":
		matched = nodeType == "method_definition" && namedAs(node, source, name)
	case "variable":
		matched = nodeType == "variable_declarator" && namedAs(node, source, name)
	}
	if !matched {
		return nil
	}
	return &Symbol{
		Kind: kind,
		Name: name,
		Path: path,
		Line: int(node.StartPoint().Row) + 1,
	}
}

func namedAs(node *sitter.Node, source []byte, name string) bool {
	nameNode := node.ChildByFieldName("name")
	return nameNode != nil && nameNode.Content(source) == name
}
