package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/audio"
)

// OpenAIOptions configures an OpenAIClient.
type OpenAIOptions struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	ChatModel          string
	HTTPClient         *http.Client
	Logger             *zap.Logger
}

// OpenAIClient transcribes the memo with Whisper and asks a chat model for
// the items in a second round-trip.
type OpenAIClient struct {
	client     *openai.Client
	transcribe string
	chat       string
	log        *zap.Logger
}

func NewOpenAI(opts OpenAIOptions) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	c := &OpenAIClient{
		client:     openai.NewClientWithConfig(cfg),
		transcribe: opts.TranscriptionModel,
		chat:       opts.ChatModel,
		log:        opts.Logger,
	}
	if c.transcribe == "" {
		c.transcribe = openai.Whisper1
	}
	if c.chat == "" {
		c.chat = openai.GPT4oMini
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("openai")
	return c, nil
}

func (c *OpenAIClient) ExtractItems(ctx context.Context, memo audio.Payload) ([]string, error) {
	if len(memo.Data) == 0 {
		return nil, audio.ErrEmptyRecording
	}
	tr, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribe,
		FilePath: memo.Filename(),
		Reader:   bytes.NewReader(memo.Data),
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcribe: %w", err)
	}
	transcript := strings.TrimSpace(tr.Text)
	c.log.Debug("memo transcribed", zap.Int("chars", len(transcript)))
	if transcript == "" {
		return []string{}, nil
	}

	var out listItemsOutput
	err = c.complete(ctx, transcriptInstruction, transcript, "list_items", listItemsSchemaJSON, &out)
	if err != nil {
		return nil, fmt.Errorf("openai extract: %w", err)
	}
	return NormalizeItems(out.ListItems), nil
}

func (c *OpenAIClient) GenerateTitle(ctx context.Context, listContent string) (string, error) {
	var out titleOutput
	err := c.complete(ctx, titleInstruction, "List content: "+listContent, "list_title", titleSchemaJSON, &out)
	if err != nil {
		return "", fmt.Errorf("openai title: %w", err)
	}
	return strings.TrimSpace(out.Title), nil
}

func (c *OpenAIClient) complete(ctx context.Context, system, user, name string, schema json.RawMessage, v any) error {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chat,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
			},
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyResponse
	}
	return decodeJSON(resp.Choices[0].Message.Content, v)
}
