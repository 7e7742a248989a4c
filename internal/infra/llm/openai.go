// OpenAI HTTP adapter. Calls the OpenAI REST API using stdlib net/http.
// Endpoints used:
//   - POST /v1/embeddings       — text embedding
//   - POST /v1/chat/completions — non-streaming chat completion
//   - GET  /v1/models           — health check
//
// The API key comes from configuration; it is never embedded in source.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	mimeJSON            = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
)

// OpenAIProvider implements Provider against the OpenAI API.
type OpenAIProvider struct {
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider with a 30s default timeout.
func NewOpenAIProvider(baseURL, apiKey, embedModel, chatModel string) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		embedModel: embedModel,
		chatModel:  chatModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ─── internal OpenAI JSON types ──────────────────────────────────────────────

type openaiEmbedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type openaiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openaiChatMessage `json:"messages"`
	Temperature float32             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openaiChatResponse struct {
	Choices []struct {
		Message      openaiChatMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// Embed computes embeddings via POST /v1/embeddings (one call per text).
func (p *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error) {
	if len(req.Texts) == 0 {
		return &EmbedResponse{Embeddings: [][]float64{}}, nil
	}

	model := req.Model
	if model == "" {
		model = p.embedModel
	}

	out := &EmbedResponse{Embeddings: make([][]float64, 0, len(req.Texts))}
	for _, text := range req.Texts {
		vec, tokens, err := p.embedOne(ctx, model, text)
		if err != nil {
			return nil, fmt.Errorf("openai embed: %w", err)
		}
		out.Embeddings = append(out.Embeddings, vec)
		out.Tokens += tokens
	}
	return out, nil
}

// embedOne sends a single /v1/embeddings call and returns the vector.
func (p *OpenAIProvider) embedOne(ctx context.Context, model, text string) ([]float64, int, error) {
	body, err := json.Marshal(openaiEmbedRequest{Input: text, Model: model})
	if err != nil {
		return nil, 0, err
	}

	respBody, postErr := p.doPost(ctx, "/v1/embeddings", body)
	if postErr != nil {
		return nil, 0, postErr
	}
	defer respBody.Close() //nolint:errcheck

	var resp openaiEmbedResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&resp); decodeErr != nil {
		return nil, 0, fmt.Errorf("decode embed response: %w", decodeErr)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, 0, fmt.Errorf("embed response has no embedding data")
	}
	return resp.Data[0].Embedding, resp.Usage.TotalTokens, nil
}

// ChatCompletion performs a non-streaming chat via POST /v1/chat/completions.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.chatModel
	}

	msgs := make([]openaiChatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openaiChatMessage(m)
	}

	body, err := json.Marshal(openaiChatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	respBody, postErr := p.doPost(ctx, "/v1/chat/completions", body)
	if postErr != nil {
		return nil, fmt.Errorf("openai chat: %w", postErr)
	}
	defer respBody.Close() //nolint:errcheck

	var resp openaiChatResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&resp); decodeErr != nil {
		return nil, fmt.Errorf("openai chat: decode response: %w", decodeErr)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: response has no choices")
	}
	return &ChatResponse{
		Content:    resp.Choices[0].Message.Content,
		StopReason: resp.Choices[0].FinishReason,
		Tokens:     resp.Usage.TotalTokens,
	}, nil
}

// ModelInfo returns static metadata for this provider.
func (p *OpenAIProvider) ModelInfo() ModelMeta {
	return ModelMeta{
		ID:        p.chatModel,
		Provider:  "openai",
		Version:   "v1",
		MaxTokens: 128000,
	}
}

// HealthCheck calls GET /v1/models — returns nil if the API is reachable and
// the key is accepted.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	url := p.baseURL + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("openai healthcheck: build request: %w", err)
	}
	req.Header.Set(headerAuthorization, "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai healthcheck: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai healthcheck: status %d", resp.StatusCode)
	}
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doPost sends an authenticated POST to baseURL+path and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (p *OpenAIProvider) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	url := p.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	req.Header.Set(headerAuthorization, "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}
