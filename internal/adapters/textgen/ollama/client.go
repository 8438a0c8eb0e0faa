// Package ollama habla con un servidor Ollama local (/api/generate, sin streaming).
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-companion/internal/domain/pets"
	"pet-companion/internal/platform/httpclient"
)

const DefaultModel = "llama3.2"

var ErrEmptyResponse = errors.New("ollama: empty response")

type Client struct {
	http  *httpclient.Client
	model string
}

func New(baseURL, model string, timeout time.Duration) (*Client, error) {
	hc, err := httpclient.New(baseURL, timeout)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{http: hc, model: model}, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	// num_predict es el tope de tokens en Ollama.
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) GenerateText(ctx context.Context, req pets.TextRequest) (string, error) {
	var out generateResponse
	err := c.http.PostJSON(ctx, "/api/generate", generateRequest{
		Model:  c.model,
		System: req.System,
		Prompt: req.User,
		Stream: false,
		Options: generateOptions{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
