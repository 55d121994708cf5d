package ai

import (
	"context"
	"fmt"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Providers lists the accepted provider names.
var Providers = []string{ProviderGemini, ProviderOpenAI}

// Options selects and configures a backend.
type Options struct {
	Provider string
	Gemini   GeminiOptions
	OpenAI   OpenAIOptions
}

// New builds the backend named by opts.Provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderGemini, "":
		return NewGemini(ctx, opts.Gemini)
	case ProviderOpenAI:
		return NewOpenAI(opts.OpenAI)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}
