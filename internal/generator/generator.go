// Package generator drives one query-answering round against the chat
// model: prompt assembly, tool-call detection and execution, and the
// forced terminal answer after at most one tool round.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/bull/course-rag/internal/searchtool"
)

// maxAnswerTokens caps the model's answer length.
const maxAnswerTokens = 800

// ChatClient abstracts the chat-completion provider so tests can fake it.
type ChatClient interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIChat is the production ChatClient backed by openai-go.
type OpenAIChat struct {
	api *openai.Client
}

// NewOpenAIChat wraps an OpenAI client as a ChatClient.
func NewOpenAIChat(api *openai.Client) *OpenAIChat {
	return &OpenAIChat{api: api}
}

func (c *OpenAIChat) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.api.Chat.Completions.New(ctx, params)
}

// Generator orchestrates the tool-round state machine. Provider failures
// propagate to the caller without retry; retries belong to the layer above.
type Generator struct {
	chat   ChatClient
	tools  *searchtool.Registry
	model  openai.ChatModel
	logger *slog.Logger
}

// New creates a Generator for the given model with the registered tools.
func New(chat ChatClient, tools *searchtool.Registry, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		chat:   chat,
		tools:  tools,
		model:  openai.ChatModel(model),
		logger: logger,
	}
}

// Generate answers one user query. history is the formatted prior
// transcript ("" for a fresh session). It returns the final answer plus
// the source labels accumulated from tool execution; a direct answer with
// no tool round returns no sources.
func (g *Generator) Generate(ctx context.Context, query, history string) (string, []string, error) {
	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	params := openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(query),
		},
		Tools:       g.tools.Definitions(),
		MaxTokens:   openai.Int(maxAnswerTokens),
		Temperature: openai.Float(0),
	}

	resp, err := g.chat.Complete(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return msg.Content, nil, nil
	}

	// Tool round: execute every requested call and feed the outcomes back.
	// Execution failures become model-visible tool outcomes so the model
	// can still produce a best-effort answer.
	params.Messages = append(params.Messages, msg.ToParam())
	var sources []string
	seen := make(map[string]bool)
	for _, call := range msg.ToolCalls {
		outcome, err := g.tools.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
		var text string
		if err != nil {
			g.logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err)
			text = fmt.Sprintf("Tool execution failed: %v", err)
		} else {
			text = outcome.Text
			// Separate calls can surface the same lesson; the caller-visible
			// list stays deduplicated across the whole round.
			for _, src := range outcome.Sources {
				if !seen[src] {
					seen[src] = true
					sources = append(sources, src)
				}
			}
		}
		params.Messages = append(params.Messages, openai.ToolMessage(text, call.ID))
	}

	// Resubmit without tools: the model must produce a direct answer, which
	// caps tool recursion at depth 1 per query.
	params.Tools = nil
	final, err := g.chat.Complete(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("chat completion after tool round: %w", err)
	}
	if len(final.Choices) == 0 {
		return "", nil, errors.New("chat completion returned no choices")
	}

	return final.Choices[0].Message.Content, sources, nil
}
