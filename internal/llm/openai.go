package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// Message roles in generation order.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a generation request.
type Message struct {
	Role    string
	Content string
}

// ChatClient is the generation capability: it turns an ordered message
// sequence into a token stream for a given model.
type ChatClient interface {
	StreamChat(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int64) (Stream, error)
}

// OpenAIClient implements ChatClient on the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client using the given API key, falling back to
// the OPENAI_API_KEY environment variable.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}, nil
}

// Client returns the underlying OpenAI client so the embedding layer can
// share one connection.
func (c *OpenAIClient) Client() *openai.Client {
	return c.client
}

// StreamChat issues a streaming chat completion request.
func (c *OpenAIClient) StreamChat(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int64) (Stream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if temperature >= 0 {
		params.Temperature = openai.Float(temperature)
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}

	raw := c.client.Chat.Completions.NewStreaming(ctx, params)
	if err := raw.Err(); err != nil {
		return nil, ClassifyError(err)
	}
	return &openaiStream{raw: raw}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// openaiStream adapts the SSE chunk stream to the fragment Stream interface,
// skipping chunks that carry no content delta.
type openaiStream struct {
	raw *ssestream.Stream[openai.ChatCompletionChunk]
	cur string
}

func (s *openaiStream) Next() bool {
	for s.raw.Next() {
		chunk := s.raw.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.cur = chunk.Choices[0].Delta.Content
			return true
		}
	}
	return false
}

func (s *openaiStream) Current() string { return s.cur }

func (s *openaiStream) Err() error { return ClassifyError(s.raw.Err()) }

func (s *openaiStream) Close() error { return s.raw.Close() }
