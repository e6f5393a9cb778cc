package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"google.golang.org/api/iterator"

	"github.com/haivivi/framegear/pkg/sentence"
)

// DefaultSystemPrompt describes the persona spoken through the glasses.
const DefaultSystemPrompt = "You are a helpful agent named Frame that runs on a set of advanced smart glasses. " +
	"You will respond in a cheeky but accurate way to user queries based on the provided context and history. " +
	"Do not use parentheses in your responses or emotes; what you say will be displayed on the smart glasses screen and spoken aloud."

// DefaultMaxHistory is the number of chat messages an Agent remembers.
const DefaultMaxHistory = 20

// maxToolRounds bounds the tool call round trips of one reply.
const maxToolRounds = 4

// ErrNoAgent is returned when a reply is requested without an agent.
var ErrNoAgent = errors.New("assistant: no agent configured")

// Responder answers a user utterance, feeding the reply to seg as it
// streams. It returns the full reply text.
type Responder interface {
	Respond(ctx context.Context, text string, seg *sentence.Segmenter) (string, error)
}

// AgentConfig configures an OpenAI compatible chat endpoint.
type AgentConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// SystemPrompt defaults to DefaultSystemPrompt.
	SystemPrompt string

	// MaxHistory defaults to DefaultMaxHistory.
	MaxHistory int

	Tools []Tool

	Options []option.RequestOption
}

// Agent is a chat agent streaming replies from an OpenAI compatible
// endpoint. It keeps the conversation history across replies; replies are
// serialized.
type Agent struct {
	client       openai.Client
	model        string
	systemPrompt string
	maxHistory   int
	tools        map[string]Tool
	toolParams   []openai.ChatCompletionToolParam

	Logger *slog.Logger

	mu      sync.Mutex
	history []openai.ChatCompletionMessageParamUnion
}

// NewAgent creates an Agent from cfg. A tool whose schema cannot be encoded
// is skipped with a warning.
func NewAgent(cfg AgentConfig) *Agent {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, cfg.Options...)

	a := &Agent{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxHistory:   cfg.MaxHistory,
		tools:        make(map[string]Tool),
	}
	if a.systemPrompt == "" {
		a.systemPrompt = DefaultSystemPrompt
	}
	if a.maxHistory <= 0 {
		a.maxHistory = DefaultMaxHistory
	}
	for _, t := range cfg.Tools {
		p, err := t.param()
		if err != nil {
			slog.Warn("assistant: tool skipped", "tool", t.Name, "error", err)
			continue
		}
		a.tools[t.Name] = t
		a.toolParams = append(a.toolParams, p)
	}
	return a
}

// Respond implements Responder.
func (a *Agent) Respond(ctx context.Context, text string, seg *sentence.Segmenter) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user := openai.UserMessage(text)
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(a.history)+2)
	msgs = append(msgs, openai.SystemMessage(a.systemPrompt))
	msgs = append(msgs, a.history...)
	msgs = append(msgs, user)

	var reply strings.Builder
	for round := 0; ; round++ {
		msg, err := a.stream(ctx, msgs, seg, &reply)
		if err != nil {
			seg.Reset()
			return "", err
		}
		if len(msg.ToolCalls) == 0 || round == maxToolRounds {
			break
		}
		msgs = append(msgs, msg.ToParam())
		for _, call := range msg.ToolCalls {
			msgs = append(msgs, openai.ToolMessage(a.callTool(ctx, call), call.ID))
		}
	}
	seg.End(ctx)

	out := stripReasoning(reply.String(), seg)
	a.remember(user, openai.AssistantMessage(out))
	return out, nil
}

func (a *Agent) stream(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion, seg *sentence.Segmenter, reply *strings.Builder) (openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    a.model,
		Tools:    a.toolParams,
	}
	stream := a.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	text := &chatText{stream: stream, reply: reply}
	if err := seg.FeedAll(ctx, text); err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(text.acc.Choices) == 0 {
		return openai.ChatCompletionMessage{}, nil
	}
	return text.acc.Choices[0].Message, nil
}

// chatText iterates the content deltas of a chat stream while accumulating
// the complete message. Next returns iterator.Done at the end of the stream.
type chatText struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	acc    openai.ChatCompletionAccumulator
	reply  *strings.Builder
}

func (c *chatText) Next() (string, error) {
	for c.stream.Next() {
		chunk := c.stream.Current()
		c.acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if s := chunk.Choices[0].Delta.Content; s != "" {
			c.reply.WriteString(s)
			return s, nil
		}
	}
	if err := c.stream.Err(); err != nil {
		return "", fmt.Errorf("assistant: chat stream: %w", err)
	}
	return "", iterator.Done
}

var _ sentence.TextIterator = (*chatText)(nil)

func (a *Agent) callTool(ctx context.Context, call openai.ChatCompletionMessageToolCall) string {
	tool, ok := a.tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf("unknown tool %q", call.Function.Name)
	}
	out, err := tool.Call(ctx, call.Function.Arguments)
	if err != nil {
		a.logger().Warn("assistant: tool failed", "tool", tool.Name, "error", err)
		return "error: " + err.Error()
	}
	a.logger().Debug("assistant: tool called", "tool", tool.Name, "result", out)
	return out
}

func (a *Agent) remember(msgs ...openai.ChatCompletionMessageParamUnion) {
	a.history = append(a.history, msgs...)
	if n := len(a.history) - a.maxHistory; n > 0 {
		a.history = append(a.history[:0:0], a.history[n:]...)
	}
}

// HistoryLen returns the number of remembered chat messages.
func (a *Agent) HistoryLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.history)
}

// ResetHistory forgets the conversation.
func (a *Agent) ResetHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// stripReasoning removes reasoning spans delimited by seg's markers.
func stripReasoning(s string, seg *sentence.Segmenter) string {
	start, end := seg.Markers()
	if i := strings.Index(s, end); i >= 0 && !strings.Contains(s[:i], start) {
		s = s[i+len(end):]
	}
	for {
		i := strings.Index(s, start)
		if i < 0 {
			break
		}
		j := strings.Index(s[i:], end)
		if j < 0 {
			s = s[:i]
			break
		}
		s = s[:i] + s[i+j+len(end):]
	}
	return strings.TrimSpace(s)
}

var _ Responder = (*Agent)(nil)
