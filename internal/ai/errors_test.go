package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"openai api error", fmt.Errorf("chat: %w", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}), 429},
		{"openai request error", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, 502},
		{"gemini api error", fmt.Errorf("gemini title: %w", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}), 403},
		{"status in message", errors.New("status code: 503, message: overloaded"), 503},
		{"plain", errors.New("connection reset"), 0},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("%s: StatusCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&openai.APIError{HTTPStatusCode: 401}, "the API key was rejected"},
		{&openai.APIError{HTTPStatusCode: 404}, "the model was not found"},
		{fmt.Errorf("extract: %w", context.DeadlineExceeded), "the model call timed out"},
		{ErrEmptyResponse, "the model returned no usable content"},
		{errors.New("status code: 500, message: boom"), "the provider had an internal error"},
	}
	for _, tt := range tests {
		if got := Diagnose(tt.err); got != tt.want {
			t.Errorf("Diagnose(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
