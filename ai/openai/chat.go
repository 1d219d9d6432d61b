package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel against OpenAI-compatible completion
// APIs (vLLM, Ollama, OpenAI).
type ChatModel struct {
	llm    *openai.LLM
	logger *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		llm:    llm,
		logger: slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new generation client using the provided
// configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Generate produces a completion for the prompt. The call is bounded by
// the caller's context; a cancelled or expired context surfaces as
// ErrChatUnavailable.
func (m *ChatModel) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.logger.Debug("generating response", "promptLength", len(prompt),
		"maxTokens", maxTokens, "temperature", temperature)

	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		m.logger.Error("generation failed", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrChatUnavailable, err)
	}

	if response == "" {
		m.logger.Warn("model returned empty response")
		return "", fmt.Errorf("%w: empty response", ai.ErrChatUnavailable)
	}

	return response, nil
}
