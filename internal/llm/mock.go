package llm

import (
	"context"
	"fmt"
)

// MockWorker implements [Worker] for testing without network access.
//
// Responses are replayed in order; once exhausted, the last response
// repeats. Set Err to make every invocation fail, or ErrAfter to fail only
// from the nth call (1-based) onward.
type MockWorker struct {
	// Responses are the canned completion texts, replayed in order.
	Responses []string

	// Err, when set, is returned by every invocation.
	Err error

	// ErrAfter makes invocation n (1-based) and later return Err.
	// Zero disables the threshold.
	ErrAfter int

	// RecordedRequests captures every request for assertions.
	RecordedRequests []Request

	calls int
}

// Invoke records the request and replays the next canned response.
func (m *MockWorker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.calls++
	m.RecordedRequests = append(m.RecordedRequests, req)

	if m.Err != nil && (m.ErrAfter == 0 || m.calls >= m.ErrAfter) {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock worker: no responses configured")
	}

	idx := m.calls - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return &Response{Content: m.Responses[idx], Model: "mock"}, nil
}

// Calls returns how many times Invoke has been called.
func (m *MockWorker) Calls() int {
	return m.calls
}
