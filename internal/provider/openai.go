// OpenAI chat-completions client.
//
// This is the primary, higher-fidelity hosted provider. It talks to the
// chat completions endpoint directly over net/http so that HTTP status
// codes and the upstream error envelope can be classified into the precise
// failure kinds the orchestrator relies on; SDK wrappers flatten that
// detail away.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

const (
	openaiName           = "openai"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-3.5-turbo"

	// systemPrompt frames every request; kept identical across workflows so
	// template patterns stay the only per-workflow variable.
	systemPrompt = "You are a helpful AI assistant that provides accurate, well-structured responses. Format your responses with clear headings, bullet points, and proper structure when appropriate."
)

// OpenAI is a Provider backed by an OpenAI-compatible chat completions API.
// Construct it with NewOpenAI; the zero value is not usable.
type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAIOption customizes a client built by NewOpenAI.
type OpenAIOption func(*OpenAI)

// WithOpenAIBaseURL points the client at a different API root. Used by
// tests and by OpenAI-compatible gateways.
func WithOpenAIBaseURL(u string) OpenAIOption {
	return func(p *OpenAI) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithOpenAIModel overrides the default model identifier.
func WithOpenAIModel(m string) OpenAIOption {
	return func(p *OpenAI) {
		if m != "" {
			p.model = m
		}
	}
}

// WithOpenAIHTTPClient substitutes the underlying HTTP client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAI) {
		if c != nil {
			p.client = c
		}
	}
}

// NewOpenAI constructs the primary provider. The client is an explicitly
// injected dependency of the orchestrator, never a process-wide singleton.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	p := &OpenAI{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		model:   defaultOpenAIModel,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name implements Provider.
func (p *OpenAI) Name() string { return openaiName }

// chatRequest is the wire shape of a chat completions call.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// apiError is the upstream error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate implements Provider. Expected failure conditions come back as a
// *Failure; the only non-Failure errors are programming mistakes such as a
// non-serializable request body.
func (p *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int) (*domain.GenerationOutcome, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return nil, newFailure(openaiName, KindInvalidCredentials,
			"No API key configured. Add your OpenAI API key in settings.")
	}

	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newFailure(openaiName, KindNetworkError,
			"Network error. Please check your internet connection.")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, newFailure(openaiName, KindNetworkError,
			"Network error while reading the response.")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classify(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, newFailure(openaiName, KindServiceError,
			"The generation service returned an unreadable response.")
	}

	content := "No response generated"
	if len(out.Choices) > 0 && out.Choices[0].Message.Content != "" {
		content = out.Choices[0].Message.Content
	}
	return &domain.GenerationOutcome{
		Content:    content,
		TokenCount: out.Usage.TotalTokens,
	}, nil
}

// classify maps an HTTP error status plus the upstream envelope to a typed
// failure with a user-presentable message. The upstream message text is
// deliberately not forwarded.
func (p *OpenAI) classify(status int, raw []byte) *Failure {
	var env apiError
	_ = json.Unmarshal(raw, &env) // best effort; envelope may be absent
	code := env.Error.Code

	switch {
	case status == http.StatusUnauthorized || code == "invalid_api_key":
		return newFailure(openaiName, KindInvalidCredentials,
			"Invalid API key. Please check your OpenAI API key in settings.")
	case code == "insufficient_quota" || status == http.StatusPaymentRequired:
		return newFailure(openaiName, KindQuotaExceeded,
			"API quota exceeded. Please check your OpenAI account billing.")
	case status == http.StatusTooManyRequests:
		return newFailure(openaiName, KindRateLimited,
			"Rate limit exceeded. Please try again in a moment.")
	case status >= http.StatusInternalServerError:
		return newFailure(openaiName, KindServiceError,
			"The generation service is temporarily unavailable.")
	default:
		return newFailure(openaiName, KindServiceError,
			fmt.Sprintf("The generation service rejected the request (HTTP %d).", status))
	}
}
