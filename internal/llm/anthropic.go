package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicWorker implements [Worker] against the Anthropic Messages API.
type AnthropicWorker struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicWorker creates a worker for the given model. The API key
// normally comes from configuration that read an environment variable;
// baseURL is optional and used for proxies.
func NewAnthropicWorker(apiKey, model string, maxTokens int, baseURL string) (*AnthropicWorker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic worker: missing API key")
	}
	if model == "" {
		return nil, fmt.Errorf("anthropic worker: missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicWorker{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Invoke sends one message exchange and returns the concatenated text
// blocks of the reply.
func (w *AnthropicWorker) Invoke(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = w.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = w.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := w.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic invoke: %w", err)
	}

	var content string
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("anthropic invoke: empty response")
	}

	return &Response{
		Content:      content,
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
