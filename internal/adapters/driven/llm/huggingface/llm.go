// Package huggingface provides a generation service adapter using the
// HuggingFace Inference API. Aimed at small hosted models such as
// Mistral-7B-Instruct and Phi-3-mini.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://router.huggingface.co"
	DefaultModel   = "mistralai/Mistral-7B-Instruct-v0.3"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the HuggingFace generation service.
type Config struct {
	// APIToken is the HuggingFace API token (required).
	APIToken string

	// BaseURL is the inference router base URL (default: https://router.huggingface.co).
	BaseURL string

	// Model is the hosted model to use (default: Mistral-7B-Instruct-v0.3).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// GenerationService produces completions through the HuggingFace
// chat-completions endpoint.
type GenerationService struct {
	client  *http.Client
	baseURL string
	token   string
	model   string
}

// chatRequest is the chat-completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

// chatMessage is one conversation turn.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the chat-completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGenerationService creates a new HuggingFace generation service.
func NewGenerationService(cfg Config) (*GenerationService, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("huggingface: API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GenerationService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		model:   cfg.Model,
	}, nil
}

// Complete produces a text completion for the prompt. Small models
// tend to echo the prompt's trailing "ANSWER:" marker; any leading
// marker is stripped from the result.
func (s *GenerationService) Complete(ctx context.Context, prompt string, opts driven.GenerateOptions) (driven.Completion, error) {
	reqBody := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return driven.Completion{}, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return driven.Completion{}, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return driven.Completion{}, fmt.Errorf("huggingface error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return driven.Completion{}, fmt.Errorf("huggingface error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return driven.Completion{}, fmt.Errorf("huggingface: no choices returned")
	}

	model := chatResp.Model
	if model == "" {
		model = s.model
	}
	return driven.Completion{
		Text:       StripAnswerMarker(chatResp.Choices[0].Message.Content),
		Model:      model,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, nil
}

// StripAnswerMarker removes an echoed "ANSWER:" marker, keeping only
// the text after the last occurrence.
func StripAnswerMarker(text string) string {
	if idx := strings.LastIndex(text, "ANSWER:"); idx >= 0 {
		return strings.TrimSpace(text[idx+len("ANSWER:"):])
	}
	return strings.TrimSpace(text)
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the token and model with a one-token request.
func (s *GenerationService) Ping(ctx context.Context) error {
	_, err := s.Complete(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("huggingface: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}
