// Package ai normalizes calls to the text-generation backends. The
// orchestrator only ever sees the Generator interface; provider shapes
// stay behind it.
package ai

import (
	"context"
	"errors"
	"fmt"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the normalized result of one generation call.
type Completion struct {
	Text         string
	TokensUsed   int
	FinishReason string
}

var (
	// ErrUnavailable: transport-level failure (refused, timeout). The
	// caller may retry.
	ErrUnavailable = errors.New("generation backend unavailable")
	// ErrRejected: the backend answered with an API-level error (quota,
	// auth, bad model). Retrying without operator action is pointless.
	ErrRejected = errors.New("generation backend rejected the request")
	// ErrEmptyOutput: the backend reported success but produced no
	// text, usually an output-budget misconfiguration.
	ErrEmptyOutput = errors.New("generation backend returned no text")
)

type Generator interface {
	Complete(ctx context.Context, systemPrompt string, history []Message, message string) (*Completion, error)
}

type Config struct {
	Provider  string
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
}

// NewGenerator picks the provider client from config. Provider branching
// lives here and nowhere else.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg), nil
	case "ollama":
		return NewOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// buildMessages assembles the provider-agnostic message list: system
// prompt, trimmed history, then the current user message.
func buildMessages(systemPrompt string, history []Message, message string) []Message {
	messages := make([]Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: message})
	return messages
}
