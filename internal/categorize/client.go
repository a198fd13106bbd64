// Package categorize owns the protocol contract with the external language
// model that splits a transcript into labeled activities. It can call the
// model directly or go through the credential-holding proxy; either way the
// validation and repair rules here apply to everything that comes back.
package categorize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/logging"
)

// DefaultModelURL is the chat-completions endpoint used when no override is
// configured.
const DefaultModelURL = "https://api.openai.com/v1/chat/completions"

// DefaultModel is the model id requested by default.
const DefaultModel = "gpt-4o-mini"

// requestTimeout bounds a single categorization round-trip. Failures are
// absorbed by the orchestrator into a degraded entry, never retried.
const requestTimeout = 30 * time.Second

// Categorizer is the contract the session orchestrator consumes.
type Categorizer interface {
	Categorize(ctx context.Context, transcript string, budgetMinutes int, categories []CategoryRef) ([]Activity, error)
	TestConnection(ctx context.Context) bool
}

// ModelClient calls the language model API directly with a local credential.
type ModelClient struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

// NewModelClient creates a direct model client. An empty url or model picks
// the defaults; the apiKey may be empty, in which case Categorize fails with
// errors.ErrConfigurationMissing before any I/O.
func NewModelClient(url, model, apiKey string) *ModelClient {
	if url == "" {
		url = DefaultModelURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &ModelClient{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// chat-completions wire shapes, trimmed to the fields used.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Categorize splits the transcript into activities within the elapsed-time
// budget. Empty transcripts short-circuit locally; nothing leaves the
// process.
func (c *ModelClient) Categorize(ctx context.Context, transcript string, budgetMinutes int, categories []CategoryRef) ([]Activity, error) {
	if strings.TrimSpace(transcript) == "" {
		return []Activity{NoSpeechActivity()}, nil
	}

	if c.apiKey == "" {
		return nil, apperrors.NewUserError(
			apperrors.ErrConfigurationMissing.Error(),
			"set VOICETIME_API_KEY or run: voicetime config set api_key <key>",
		)
	}

	req := Request{
		Transcript:             transcript,
		DefaultDurationMinutes: budgetMinutes,
		Categories:             categories,
	}

	content, err := c.complete(ctx, BuildPrompt(req))
	if err != nil {
		return nil, err
	}

	raw, err := ExtractJSONObject(content)
	if err != nil {
		return nil, err
	}

	activities, err := ParseActivities(raw, budgetMinutes)
	if err != nil {
		return nil, err
	}

	return RepairActivities(activities, categories), nil
}

// TestConnection performs a minimal round-trip and reports success only.
func (c *ModelClient) TestConnection(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}
	_, err := c.complete(ctx, `Reply with exactly: {"ok": true}`)
	if err != nil {
		logging.DebugLog("test connection failed", "error", err)
		return false
	}
	return true
}

// complete sends one prompt and returns the model's text content.
func (c *ModelClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "request failed")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Warn("model returned non-success status", "status", resp.StatusCode)
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, fmt.Sprintf("status %d", resp.StatusCode))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil || len(chat.Choices) == 0 {
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "unparsable response body")
	}

	return chat.Choices[0].Message.Content, nil
}

// ProxyClient sends the protocol request to the thin server-side proxy,
// which holds the API credential.
type ProxyClient struct {
	baseURL string
	client  *http.Client
}

// NewProxyClient creates a client talking to the proxy at baseURL.
func NewProxyClient(baseURL string) *ProxyClient {
	return &ProxyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Categorize forwards the protocol request to the proxy. The local
// short-circuit and repair rules still apply; the proxy's output is not
// trusted to be well-formed.
func (c *ProxyClient) Categorize(ctx context.Context, transcript string, budgetMinutes int, categories []CategoryRef) ([]Activity, error) {
	if strings.TrimSpace(transcript) == "" {
		return []Activity{NoSpeechActivity()}, nil
	}

	body, err := json.Marshal(Request{
		Transcript:             transcript,
		DefaultDurationMinutes: budgetMinutes,
		Categories:             categories,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, "encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/categorize", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, "request failed")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, fmt.Sprintf("status %d", resp.StatusCode))
	}

	raw, err := ExtractJSONObject(string(respBody))
	if err != nil {
		return nil, err
	}

	activities, err := ParseActivities(raw, budgetMinutes)
	if err != nil {
		return nil, err
	}

	return RepairActivities(activities, categories), nil
}

// TestConnection asks the proxy for a minimal round-trip.
func (c *ProxyClient) TestConnection(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/test-connection", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}
	return result.Success
}
