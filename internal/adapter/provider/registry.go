package provider

import (
	"fmt"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// BinPaths maps provider names to their agent binaries. Empty entries fall
// back to the provider name itself.
type BinPaths struct {
	Claude  string
	Gemini  string
	Copilot string
	Codex   string
	Cursor  string
}

// Registry resolves provider names to implementations and keeps the
// operator-configured priority order.
type Registry struct {
	providers map[string]domain.Provider
	priority  []string
}

// NewRegistry wires the subprocess providers plus the dry-run stub.
// priority entries naming unknown providers are dropped; an empty or
// fully-unknown priority falls back to the default order.
func NewRegistry(paths BinPaths, priority []string) *Registry {
	orDefault := func(path, name string) string {
		if path == "" {
			return name
		}
		return path
	}
	providers := map[string]domain.Provider{
		domain.ProviderClaude:     NewCLI(domain.ProviderClaude, orDefault(paths.Claude, "claude")),
		domain.ProviderGemini:     NewCLI(domain.ProviderGemini, orDefault(paths.Gemini, "gemini")),
		domain.ProviderCopilot:    NewCLI(domain.ProviderCopilot, orDefault(paths.Copilot, "copilot")),
		domain.ProviderCodex:      NewCLI(domain.ProviderCodex, orDefault(paths.Codex, "codex")),
		domain.ProviderCursor:     NewCLI(domain.ProviderCursor, orDefault(paths.Cursor, "cursor-agent")),
		domain.ProviderGeminiStub: NewGeminiStub(),
	}
	r := &Registry{providers: providers}
	r.priority = r.filterPriority(priority)
	if len(r.priority) == 0 {
		r.priority = r.filterPriority(domain.DefaultProviderPriority())
	}
	return r
}

func (r *Registry) filterPriority(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := r.providers[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Register adds or replaces a provider under its own name. The priority
// order is fixed at construction and does not change here.
func (r *Registry) Register(p domain.Provider) {
	r.providers[p.Name()] = p
}

// Lookup returns the provider for name.
func (r *Registry) Lookup(name string) (domain.Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, domain.ErrProviderNotFound)
	}
	return p, nil
}

// Priority returns the resolved dispatch order.
func (r *Registry) Priority() []string {
	out := make([]string, len(r.priority))
	copy(out, r.priority)
	return out
}

var _ domain.ProviderRegistry = (*Registry)(nil)
