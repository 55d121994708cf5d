package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Makepad-fr/verbalist/internal/audio"
)

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// GeminiClient serves both capabilities from one Gemini model. The memo goes
// inline with the request, so no separate transcription step is needed.
type GeminiClient struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if opts.Model == "" {
		return nil, errors.New("gemini: model is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiClient{client: client, model: opts.Model, log: log.Named("gemini")}, nil
}

func (g *GeminiClient) ExtractItems(ctx context.Context, memo audio.Payload) ([]string, error) {
	if len(memo.Data) == 0 {
		return nil, audio.ErrEmptyRecording
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(memo.Data, memo.MIMEType),
		genai.NewPartFromText("Extract the list items from this voice memo."),
	}
	var out listItemsOutput
	if err := g.generate(ctx, extractInstruction, parts, listItemsSchema, &out); err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}
	items := NormalizeItems(out.ListItems)
	g.log.Debug("items extracted", zap.Int("count", len(items)), zap.Int("audio_bytes", len(memo.Data)))
	return items, nil
}

func (g *GeminiClient) GenerateTitle(ctx context.Context, listContent string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText("List content: " + listContent)}
	var out titleOutput
	if err := g.generate(ctx, titleInstruction, parts, titleSchema, &out); err != nil {
		return "", fmt.Errorf("gemini title: %w", err)
	}
	return strings.TrimSpace(out.Title), nil
}

func (g *GeminiClient) generate(ctx context.Context, instruction string, parts []*genai.Part, schema *jsonschema.Schema, v any) error {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    geminiSchema(schema),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		var ae genai.APIError
		if errors.As(err, &ae) {
			g.log.Warn("gemini api error", zap.Int("status", ae.Code), zap.String("reason", ae.Status))
		}
		return err
	}
	if len(resp.Candidates) == 0 {
		return ErrEmptyResponse
	}
	c := resp.Candidates[0]
	switch c.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	case genai.FinishReasonMaxTokens:
		return errors.New("max tokens")
	default:
		return fmt.Errorf("unexpected finish reason: %s", c.FinishReason)
	}
	if c.Content == nil {
		return ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return decodeJSON(sb.String(), v)
}
