package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"docchat-backend/internal/llm"
)

const defaultTimeout = 120 * time.Second

// Config configures the OpenAI-backed provider.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	ChatModel string
	TTSModel  string
	TTSVoice  string
	STTModel  string
}

// Client implements llm.Provider on top of github.com/sashabaranov/go-openai.
type Client struct {
	api       *goopenai.Client
	chatModel string
	ttsModel  string
	ttsVoice  string
	sttModel  string
}

// NewClient constructs a new OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.ChatModel) == "" {
		return nil, fmt.Errorf("CHAT_MODEL is required for OpenAI")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:       goopenai.NewClientWithConfig(clientCfg),
		chatModel: cfg.ChatModel,
		ttsModel:  orDefault(cfg.TTSModel, string(goopenai.TTSModel1)),
		ttsVoice:  orDefault(cfg.TTSVoice, string(goopenai.VoiceAlloy)),
		sttModel:  orDefault(cfg.STTModel, goopenai.Whisper1),
	}, nil
}

// Complete sends a system message and one user message, with no history.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", wrapErr("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Synthesize requests mp3 speech for text and returns the response body.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          goopenai.SpeechVoice(c.ttsVoice),
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, wrapErr("speech", err)
	}
	return resp.ReadCloser, nil
}

// Transcribe uploads the audio file at path for speech-to-text.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.sttModel,
		FilePath: path,
	})
	if err != nil {
		return "", wrapErr("transcription", err)
	}
	return resp.Text, nil
}

func wrapErr(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai %s: status %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return fmt.Errorf("openai %s timeout: %w", op, err)
	}
	return fmt.Errorf("openai %s: %w", op, err)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

var _ llm.Provider = (*Client)(nil)
