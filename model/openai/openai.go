// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (streaming + non-streaming). It also serves
// OpenAI-compatible endpoints such as a local Ollama server via the BaseURL
// option.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agora/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Provider            string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Provider:            "openai",
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
}

// Generate implements unified streaming / non-streaming generation.
// It adapts OpenAI Chat Completions into model.Response events.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := m.buildParams(req)
		callOpts := m.requestOptions(req)
		if req.Stream {
			m.handleStreaming(ctx, params, callOpts, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, callOpts, out, errCh)
	}()
	return out, errCh
}

// requestOptions returns per-call request options. Ollama's OpenAI-compatible
// endpoint honors num_ctx as an extra body field; real OpenAI models have no
// context-size knob, so it is only sent on the ollama path.
func (m *Model) requestOptions(req model.Request) []option.RequestOption {
	var callOpts []option.RequestOption
	if m.opts.Provider == "ollama" && req.Settings.ContextSize > 0 {
		callOpts = append(callOpts, option.WithJSONSet("num_ctx", req.Settings.ContextSize))
	}
	return callOpts
}

// buildMessages converts normalized contents into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		if c.Text == "" {
			continue
		}
		switch c.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(c.Text))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(c.Text))
		default:
			messages = append(messages, openai.UserMessage(c.Text))
		}
	}
	return messages
}

// buildParams assembles the OpenAI request parameters, applying per-call
// settings over the adapter defaults.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	temperature := m.opts.Temperature
	if req.Settings.Temperature != nil {
		temperature = *req.Settings.Temperature
	}
	maxTokens := m.opts.MaxCompletionTokens
	if req.Settings.MaxTokens > 0 {
		maxTokens = req.Settings.MaxTokens
	}
	return openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
}

// handleStreaming processes streaming responses and forwards partial / final events.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	callOpts []option.RequestOption,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params, callOpts...)
	var textBuilder strings.Builder
	finishReason := ""
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{Partial: true, Text: ch.Delta.Content}
			}
			if ch.FinishReason != "" {
				finishReason = ch.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
		return
	}
	if finishReason == "" {
		finishReason = "stop"
	}
	out <- model.Response{Partial: false, Text: textBuilder.String(), FinishReason: finishReason}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	callOpts []option.RequestOption,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params, callOpts...)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	out <- model.Response{
		Partial:      false,
		Text:         ch0.Message.Content,
		FinishReason: ch0.FinishReason,
	}
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: m.opts.Provider,
	}
}
