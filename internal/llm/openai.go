package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// OpenAIWorker implements [Worker] against the OpenAI Responses API.
type OpenAIWorker struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIWorker creates a worker for the given model.
func NewOpenAIWorker(apiKey, model string, maxTokens int, baseURL string) (*OpenAIWorker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai worker: missing API key")
	}
	if model == "" {
		return nil, fmt.Errorf("openai worker: missing model")
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

	client := openai.NewClient(opts...)
	return &OpenAIWorker{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Invoke sends one request and returns the response output text.
func (w *OpenAIWorker) Invoke(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = w.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = w.maxTokens
	}

	input := make(responses.ResponseInputParam, 0, 2)
	if req.System != "" {
		input = append(input, responses.ResponseInputItemParamOfMessage(req.System, responses.EasyInputMessageRoleSystem))
	}
	input = append(input, responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser))

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		MaxOutputTokens: openai.Int(int64(maxTokens)),
	}

	result, err := w.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai invoke: %w", err)
	}

	content := result.OutputText()
	if content == "" {
		return nil, fmt.Errorf("openai invoke: empty response")
	}

	return &Response{
		Content:      content,
		Model:        string(result.Model),
		InputTokens:  int(result.Usage.InputTokens),
		OutputTokens: int(result.Usage.OutputTokens),
	}, nil
}
