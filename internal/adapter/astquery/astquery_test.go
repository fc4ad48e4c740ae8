package astquery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFinder_TypeScriptSymbols(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir, "src/auth.ts", `
export interface Credentials {
  user: string;
  token: string;
}

export type SessionID = string;

export enum Role {
  Admin,
  Member,
}

export class AuthService {
  login(creds: Credentials): SessionID {
    return "sess";
  }
}

export function hashPassword(raw: string): string {
  return raw;
}

export const validateToken = (token: string): boolean => token.length > 0;
`)

	f := NewFinder(0, 0)
	ctx := context.Background()

	tests := []struct {
		kind string
		name string
		want bool
	}{
		{"interface", "Credentials", true},
		{"type", "SessionID", true},
		{"enum", "Role", true},
		{"class", "AuthService", true},
		{"method", "login", true},
		{"function", "hashPassword", true},
		{"function", "validateToken", true},
		{"variable", "validateToken", true},
		{"class", "Credentials", false},
		{"function", "logout", false},
	}
	for _, tt := range tests {
		sym, err := f.Find(ctx, dir, tt.kind, tt.name)
		require.NoError(t, err, "%s %s", tt.kind, tt.name)
		if tt.want {
			require.NotNil(t, sym, "%s %s should be found", tt.kind, tt.name)
			assert.Equal(t, filepath.Join("src", "auth.ts"), sym.Path)
			assert.Positive(t, sym.Line)
		} else {
			assert.Nil(t, sym, "%s %s should be absent", tt.kind, tt.name)
		}
	}
}

func TestFinder_JavaScriptAndTSX(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir, "lib/util.js", `
function formatDate(d) { return d.toISOString(); }
const parseDate = (s) => new Date(s);
var legacyFlag = true;
`)
	writeSource(t, dir, "components/App.tsx", `
export function App(): JSX.Element {
  return <div>hello</div>;
}
`)

	f := NewFinder(0, 0)
	ctx := context.Background()

	sym, err := f.Find(ctx, dir, "function", "formatDate")
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, filepath.Join("lib", "util.js"), sym.Path)

	sym, err = f.Find(ctx, dir, "func", "parseDate")
	require.NoError(t, err)
	require.NotNil(t, sym)

	sym, err = f.Find(ctx, dir, "variable", "legacyFlag")
	require.NoError(t, err)
	require.NotNil(t, sym)

	sym, err = f.Find(ctx, dir, "function", "App")
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, filepath.Join("components", "App.tsx"), sym.Path)
}

func TestFinder_SkipsDependencyDirs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir, "node_modules/pkg/index.js", `function hidden() {}`)
	writeSource(t, dir, ".git/hooks/fake.js", `function alsoHidden() {}`)

	f := NewFinder(0, 0)
	sym, err := f.Find(context.Background(), dir, "function", "hidden")
	require.NoError(t, err)
	assert.Nil(t, sym)

	sym, err = f.Find(context.Background(), dir, "function", "alsoHidden")
	require.NoError(t, err)
	assert.Nil(t, sym)
}

func TestFinder_RejectsUnknownKind(t *testing.T) {
	t.Parallel()
	f := NewFinder(0, 0)
	_, err := f.Find(context.Background(), t.TempDir(), "macro", "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.Find(context.Background(), t.TempDir(), "function", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFinder_FileBound(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSource(t, dir, "a.ts", `export function first() {}`)
	writeSource(t, dir, "z.ts", `export function last() {}`)

	f := NewFinder(1, 0)
	sym, err := f.Find(context.Background(), dir, "function", "last")
	require.NoError(t, err)
	assert.Nil(t, sym, "second file is past the bound")

	sym, err = f.Find(context.Background(), dir, "function", "first")
	require.NoError(t, err)
	assert.NotNil(t, sym)
}

func TestSupportedFile(t *testing.T) {
	t.Parallel()
	assert.True(t, SupportedFile("a.ts"))
	assert.True(t, SupportedFile("a.tsx"))
	assert.True(t, SupportedFile("a.mjs"))
	assert.False(t, SupportedFile("a.py"))
	assert.False(t, SupportedFile("a.go"))
}
