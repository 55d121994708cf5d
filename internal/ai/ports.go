package ai

import (
	"context"
	"errors"

	"github.com/Makepad-fr/verbalist/internal/audio"
)

// Extractor turns a recorded voice memo into normalized list items.
// An empty result is a valid outcome, not an error.
type Extractor interface {
	ExtractItems(ctx context.Context, memo audio.Payload) ([]string, error)
}

// Titler names a list from its joined item text.
type Titler interface {
	GenerateTitle(ctx context.Context, listContent string) (string, error)
}

// Client is a backend serving both capabilities.
type Client interface {
	Extractor
	Titler
}

// ErrEmptyResponse reports a model reply without usable content.
var ErrEmptyResponse = errors.New("empty model response")
