// Package llm abstracts the hosted language-model APIs that stage and
// supervisor workers run on.
//
// The engine treats a worker as an opaque request/response collaborator:
// prompt in, free text out. Two production implementations are provided,
// [AnthropicWorker] and [OpenAIWorker], plus a [MockWorker] for tests that
// replays canned responses without network access.
//
// Workers do not retry and do not interpret their output; parsing and
// validation belong to the callers (the router's decision parsing and the
// score extractor).
package llm

import "context"

// Request is one completion request to a worker.
type Request struct {
	// System is the role prompt for the worker (e.g., "You are a
	// professional translator...").
	System string

	// Prompt is the user-turn content.
	Prompt string

	// Model overrides the worker's configured model when non-empty.
	Model string

	// MaxTokens overrides the worker's configured completion budget when
	// positive.
	MaxTokens int
}

// Response is a worker's completion.
type Response struct {
	// Content is the concatenated text output.
	Content string

	// Model is the model that produced the completion.
	Model string

	// InputTokens and OutputTokens report usage when the provider exposes it.
	InputTokens  int
	OutputTokens int
}

// Worker executes completion requests against a hosted model.
//
// Invoke blocks until the provider responds or ctx is done. Implementations
// must surface provider failures (timeouts, empty responses) as errors and
// never substitute content.
type Worker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}
