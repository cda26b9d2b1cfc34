package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agora/core"
)

// Request captures the normalized model input produced by the prompt builder.
type Request struct {
	Instructions string           `json:"instructions"` // System instructions for the model
	Contents     []core.Content   `json:"contents"`     // Conversation history converted to provider messages
	Settings     core.GenSettings `json:"settings"`     // Per-call generation settings
	Stream       bool             `json:"stream,omitempty"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	Partial      bool   `json:"partial"` // Indicates if this is a partial response
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"` // "stop", "length", etc.
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "ollama", etc.
}

// Model is the minimal interface required by the runner to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Scripted responses are consumed in FIFO order; once exhausted it falls back
// to a deterministic echo of the last user content.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	scripted  []string
	requests  []Request
	failWith  error
	blockCtx  bool
	chunkSize int
}

// NewMockModel constructs a MockModel that streams responses rune by rune.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		chunkSize: 1,
	}
}

// Script appends canned completions returned by successive Generate calls.
func (m *MockModel) Script(responses ...string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, responses...)
	return m
}

// FailWith makes every subsequent Generate call emit err instead of text.
func (m *MockModel) FailWith(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
	return m
}

// BlockUntilCancel makes Generate park until the context is cancelled,
// simulating a hung provider call.
func (m *MockModel) BlockUntilCancel() *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockCtx = true
	return m
}

// Requests returns a copy of every Request seen so far, in call order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockModel) next(req Request) (string, error, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.failWith != nil {
		return "", m.failWith, m.blockCtx
	}
	if len(m.scripted) > 0 {
		full := m.scripted[0]
		m.scripted = m.scripted[1:]
		return full, nil, m.blockCtx
	}
	var last string
	for _, c := range req.Contents {
		if c.Role == "user" {
			last = c.Text
		}
	}
	return fmt.Sprintf("Mock response to: %s", last), nil, m.blockCtx
}

// Generate implements Model; emits optional streaming rune chunks then a final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	full, err, block := m.next(req)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if block {
			<-ctx.Done()
			errCh <- ctx.Err()
			return
		}
		if err != nil {
			errCh <- err
			return
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		respCh <- Response{Partial: false, Text: full, FinishReason: "stop"}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
