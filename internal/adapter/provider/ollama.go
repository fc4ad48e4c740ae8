package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Ollama talks to a local model server's chat endpoint. Used as the helper
// agent backend; it never touches the workspace.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllama builds an HTTP provider for the given server and model.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("Ollama %s %s", r.Method, r.URL.Host)
		}),
	)
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Name identifies this provider in priority lists and breaker keys.
func (o *Ollama) Name() string { return domain.ProviderOllama }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Execute sends one chat turn. Session ids are ignored since the server is
// stateless per request.
func (o *Ollama) Execute(ctx context.Context, req domain.ExecuteRequest) domain.ProviderResult {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	body, err := json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: []ollamaMessage{{Role: "user", Content: req.Prompt}},
		Stream:   false,
	})
	if err != nil {
		return domain.ProviderResult{ExitCode: -1, Err: fmt.Errorf("marshal chat request: %w", err)}
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(runCtx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.ProviderResult{ExitCode: -1, Err: fmt.Errorf("build chat request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return domain.ProviderResult{
			ExitCode: -1,
			Duration: time.Since(start),
			Err:      fmt.Errorf("ollama chat: %w: %w", domain.ErrTransient, err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return domain.ProviderResult{
			ExitCode: -1,
			Duration: time.Since(start),
			Err:      fmt.Errorf("read chat response: %w", err),
		}
	}
	if resp.StatusCode != http.StatusOK {
		res := domain.ProviderResult{
			Stderr:   string(raw),
			ExitCode: 1,
			Duration: time.Since(start),
			Err:      fmt.Errorf("ollama chat: unexpected status %d", resp.StatusCode),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			res.ErrorClass = domain.ErrorClassRateLimit
		}
		return res
	}

	var chat ollamaChatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return domain.ProviderResult{
			Stderr:   string(raw),
			ExitCode: 1,
			Duration: time.Since(start),
			Err:      fmt.Errorf("decode chat response: %w", err),
		}
	}

	return domain.ProviderResult{
		Stdout:   chat.Message.Content,
		Duration: time.Since(start),
		Usage: domain.Usage{
			InputTokens:  chat.PromptEvalCount,
			OutputTokens: chat.EvalCount,
		},
	}
}

var _ domain.Provider = (*Ollama)(nil)
