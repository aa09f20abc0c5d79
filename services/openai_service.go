package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hantverkarai/hantverkar-api/config"
)

// ChatRequest describes one chat-completion call to the text-generation
// provider. JSONMode forces the provider to return a valid JSON document.
type ChatRequest struct {
	Model     string
	System    string
	User      string
	JSONMode  bool
	MaxTokens int
}

// OpenAIInterface defines the interface for text-generation provider calls
type OpenAIInterface interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// OpenAIService calls the OpenAI chat-completions REST API
type OpenAIService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var openAIServiceInstance OpenAIInterface

// InitOpenAIService initializes the provider client from configuration
func InitOpenAIService(cfg *config.Config) OpenAIInterface {
	openAIServiceInstance = &OpenAIService{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.OpenAITimeout,
		},
	}
	return openAIServiceInstance
}

// GetOpenAIService returns the initialized provider client instance
func GetOpenAIService() OpenAIInterface {
	return openAIServiceInstance
}

// SetOpenAIService sets the provider client instance (primarily for testing)
func SetOpenAIService(service OpenAIInterface) {
	openAIServiceInstance = service
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat performs a single chat-completion request and returns the content of
// the first choice. The client timeout bounds the call; the caller's context
// aborts it early when the caller disconnects.
func (s *OpenAIService) Chat(ctx context.Context, req ChatRequest) (string, error) {
	body := chatCompletionRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: 0.3,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := s.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completions endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
