// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/model"
)

// Options configures the Anthropic model adapter (model id, temperature,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements unified streaming / non-streaming generation.
// It adapts the Anthropic Messages API into model.Response events.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req)
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()

	return out, errCh
}

// buildParams assembles the Messages API parameters, applying per-call
// settings over the adapter defaults.
func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	temperature := m.opts.Temperature
	if req.Settings.Temperature != nil {
		temperature = *req.Settings.Temperature
	}
	maxTokens := m.opts.MaxTokens
	if req.Settings.MaxTokens > 0 {
		maxTokens = req.Settings.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req.Contents),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if systemBlocks := extractSystemBlocks(req); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	return params
}

// buildMessages converts role-tagged contents to the Anthropic message format.
// The Messages API requires strict user/assistant alternation, so consecutive
// blocks with the same role are merged.
func buildMessages(contents []core.Content) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	var pendingRole string
	var pending []string

	flush := func() {
		if len(pending) == 0 {
			return
		}
		text := strings.Join(pending, "\n\n")
		if pendingRole == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
		pending = pending[:0]
	}

	for _, c := range contents {
		if c.Role == "system" || c.Text == "" {
			continue
		}
		role := c.Role
		if role != "assistant" {
			role = "user"
		}
		if role != pendingRole {
			flush()
			pendingRole = role
		}
		pending = append(pending, c.Text)
	}
	flush()
	return messages
}

// extractSystemBlocks collects the instructions plus any system-role contents.
func extractSystemBlocks(req model.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.Instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.Instructions})
	}
	for _, c := range req.Contents {
		if c.Role == "system" && c.Text != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: c.Text})
		}
	}
	return blocks
}

// handleStreaming processes streaming events and forwards partial / final responses.
func (m *Model) handleStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Messages.NewStreaming(ctx, params)
	message := anthropic.Message{}
	var textBuilder strings.Builder

	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			errCh <- fmt.Errorf("anthropic accumulate error: %w", err)
			return
		}
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text != "" {
					textBuilder.WriteString(deltaVariant.Text)
					out <- model.Response{Partial: true, Text: deltaVariant.Text}
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("anthropic streaming error: %w", err)
		return
	}

	finishReason := "stop"
	if message.StopReason != "" {
		finishReason = string(message.StopReason)
	}
	out <- model.Response{Partial: false, Text: textBuilder.String(), FinishReason: finishReason}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params anthropic.MessageNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("anthropic api error: %w", err)
		return
	}

	var textBuilder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			textBuilder.WriteString(block.AsText().Text)
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}
	out <- model.Response{Partial: false, Text: textBuilder.String(), FinishReason: finishReason}
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     string(m.opts.Model),
		Provider: "anthropic",
	}
}
