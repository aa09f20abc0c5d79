package services

import (
	"context"
	"sync"
)

// MockOpenAIService is a mock implementation of OpenAIInterface for testing
type MockOpenAIService struct {
	response string
	err      error
	calls    []ChatRequest
	mu       sync.Mutex
}

// NewMockOpenAIService creates a new mock provider client
func NewMockOpenAIService() *MockOpenAIService {
	return &MockOpenAIService{}
}

// SetAsMockForTesting sets this mock as the global provider instance
func (m *MockOpenAIService) SetAsMockForTesting() {
	SetOpenAIService(m)
}

// RespondWith makes every subsequent call return the given content
func (m *MockOpenAIService) RespondWith(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = content
	m.err = nil
}

// FailWith makes every subsequent call fail with the given error, simulating
// a provider outage or timeout
func (m *MockOpenAIService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Chat records the request and returns the configured response or error
func (m *MockOpenAIService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// CallCount returns how many times the provider was contacted
func (m *MockOpenAIService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent request, or a zero request if none
func (m *MockOpenAIService) LastCall() ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ChatRequest{}
	}
	return m.calls[len(m.calls)-1]
}

// Clear resets recorded calls and configured behavior
func (m *MockOpenAIService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.response = ""
	m.err = nil
}
