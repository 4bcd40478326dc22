package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sakif/hike-planner/internal/apperror"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-8b-8192"
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// Config selects the OpenAI-compatible endpoint and generation settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OpenAIClient implements Assistant against any chat-completions API that
// speaks the OpenAI wire format (Groq by default).
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

var _ Assistant = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client; zero-valued Config fields take the defaults.
func NewOpenAIClient(cfg Config, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("assistant: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	logger.Info("initializing assistant client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
	)

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// Ask makes a single chat-completion call bounded by the configured timeout
// and returns the first choice's content verbatim.
func (c *OpenAIClient) Ask(ctx context.Context, message string, history []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    buildMessages(message, history),
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("assistant call failed",
			slog.String("model", c.model),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", apperror.Upstream("assistant", fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("assistant returned no choices", slog.String("model", c.model))
		return "", apperror.Upstream("assistant", errors.New("chat completion returned no choices"))
	}

	c.logger.Debug("assistant replied",
		slog.String("model", c.model),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, nil
}

// buildMessages lays out system prompt, earlier turns, then the new message.
func buildMessages(message string, history []Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt,
	})
	for _, h := range history {
		role := openai.ChatMessageRoleUser
		if h.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: h.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return msgs
}
