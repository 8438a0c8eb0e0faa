// Package openai implementa pets.TextGenerator sobre chat completions.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-companion/internal/domain/pets"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4o-mini"

var ErrNoChoices = errors.New("openai: no choices")

type Client struct {
	api   openai.Client
	model string
}

type Options struct {
	APIKey  string
	BaseURL string // opcional (proxies / compatibles)
	Model   string
	Timeout time.Duration
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		// los reintentos los maneja el breaker
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &Client{
		api:   openai.NewClient(reqOpts...),
		model: model,
	}, nil
}

func (c *Client) GenerateText(ctx context.Context, req pets.TextRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
