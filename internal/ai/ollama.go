package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient talks to a local Ollama server over its chat API.
type OllamaClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewOllamaClient(cfg Config) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *OllamaClient) Complete(ctx context.Context, systemPrompt string, history []Message, message string) (*Completion, error) {
	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": buildMessages(systemPrompt, history, message),
		"stream":   false,
	}
	if c.cfg.MaxTokens > 0 {
		reqBody["options"] = map[string]interface{}{"num_predict": c.cfg.MaxTokens}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build ollama request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, string(raw))
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		DoneReason      string `json:"done_reason"`
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse ollama json failed: %w", err)
	}

	text := strings.TrimSpace(parsed.Message.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: done_reason=%s", ErrEmptyOutput, parsed.DoneReason)
	}

	return &Completion{
		Text:         text,
		TokensUsed:   parsed.PromptEvalCount + parsed.EvalCount,
		FinishReason: parsed.DoneReason,
	}, nil
}
