package mock

import (
	"context"
	"fmt"
)

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via a function field.
type MockChatModel struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	callCount  int
	lastPrompt string
	lastMaxTok int
	lastTemp   float64
}

// NewMockChatModel creates a mock chat model with default deterministic
// behavior. Note: returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Generate returns a deterministic response derived from the prompt length
// unless GenerateFunc is set.
func (m *MockChatModel) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	m.lastMaxTok = maxTokens
	m.lastTemp = temperature

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, maxTokens, temperature)
	}

	return fmt.Sprintf("mock response (prompt length %d)", len(prompt)), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// LastPrompt returns the prompt from the most recent Generate call.
func (m *MockChatModel) LastPrompt() string {
	return m.lastPrompt
}

// LastCallOptions returns the maxTokens and temperature from the most
// recent Generate call.
func (m *MockChatModel) LastCallOptions() (int, float64) {
	return m.lastMaxTok, m.lastTemp
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.lastMaxTok = 0
	m.lastTemp = 0
	m.GenerateFunc = nil
}
