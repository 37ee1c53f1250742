package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"alfredoptarigan/talent-allocator/internal/config"
)

const openAIMaxTokens = 4096

type openAIService struct {
	client openai.Client
	model  string
}

// NewOpenAIService talks to any OpenAI-compatible chat completions endpoint.
func NewOpenAIService(apiKey, baseURL, model string) (TextGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &openAIService{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (s *openAIService) Provider() string { return config.ProviderOpenAI }
func (s *openAIService) Model() string    { return s.model }

func (s *openAIService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(float64(temperature)),
		MaxTokens:   openai.Int(openAIMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}

	text := response.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}
