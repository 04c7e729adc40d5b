package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrBlocked is returned when the API refuses to generate because the prompt
// or response tripped safety filters.
var ErrBlocked = errors.New("prompt blocked by safety settings")

// ErrNoAPIKey is returned by Generate when the client has no key configured.
var ErrNoAPIKey = errors.New("gemini API key is empty")

// Default Gemini configuration values
const (
	DefaultGeminiTimeout = 60 * time.Second
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
)

// GeminiLLM is a Generator implementation using the Gemini API.
type GeminiLLM struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// GeminiOption configures the Gemini client.
type GeminiOption func(*GeminiLLM)

// WithAPIKey sets the API key.
func WithAPIKey(key string) GeminiOption {
	return func(g *GeminiLLM) {
		g.apiKey = key
	}
}

// WithModel sets the model.
func WithModel(model string) GeminiOption {
	return func(g *GeminiLLM) {
		g.model = model
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) GeminiOption {
	return func(g *GeminiLLM) {
		g.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiLLM) {
		g.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(g *GeminiLLM) {
		g.httpClient = client
	}
}

// NewGemini creates a new Gemini client. Outbound requests are traced via
// otelhttp unless a custom HTTP client is supplied.
func NewGemini(opts ...GeminiOption) *GeminiLLM {
	g := &GeminiLLM{
		baseURL: DefaultGeminiBaseURL,
		model:   DefaultGeminiModel,
		httpClient: &http.Client{
			Timeout:   DefaultGeminiTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// geminiRequest is the generateContent request format.
type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the generateContent response format.
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends the prompts and returns the generated text.
func (g *GeminiLLM) Generate(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", ErrNoAPIKey
	}

	req := &geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	resp, err := g.doRequest(ctx, req)
	if err != nil {
		return "", err
	}
	return g.parseResponse(resp)
}

func (g *GeminiLLM) createHTTPRequest(ctx context.Context, req *geminiRequest) (*http.Request, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	return httpReq, nil
}

func (g *GeminiLLM) doRequest(ctx context.Context, req *geminiRequest) (*geminiResponse, error) {
	const maxRetries = 5

	for attempt := 0; attempt <= maxRetries; attempt++ {
		httpReq, err := g.createHTTPRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		httpResp, err := g.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}

		body, err := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if httpResp.StatusCode == http.StatusOK {
			var resp geminiResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("unmarshal response: %w", err)
			}
			return &resp, nil
		}

		// Retry on 429 (quota) and 503 (overloaded).
		if (httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode == http.StatusServiceUnavailable) && attempt < maxRetries {
			wait := retryAfterDelay(httpResp, attempt)
			slog.Warn("Gemini API rate limited, retrying", "status", httpResp.StatusCode, "attempt", attempt+1, "wait", wait)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return nil, fmt.Errorf("API error %d: %s", httpResp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("max retries exceeded")
}

// retryAfterDelay returns how long to wait before retrying a rate-limited request.
// It respects the Retry-After header if present, otherwise uses exponential backoff.
func retryAfterDelay(resp *http.Response, attempt int) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	// Exponential backoff: 5s, 10s, 20s, 40s, 60s
	wait := time.Duration(5<<uint(attempt)) * time.Second
	if wait > 60*time.Second {
		wait = 60 * time.Second
	}
	return wait
}

func (g *GeminiLLM) parseResponse(resp *geminiResponse) (string, error) {
	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return "", ErrBlocked
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("empty response text")
	}
	return text, nil
}
