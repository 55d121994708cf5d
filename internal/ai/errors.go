package ai

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var statusPattern = regexp.MustCompile(`(?:Error |status code: |HTTP )(\d{3})\b`)

// StatusCode reports the HTTP status a backend answered with, or 0.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var ge genai.APIError
	if errors.As(err, &ge) && ge.Code > 0 {
		return ge.Code
	}
	var oa *openai.APIError
	if errors.As(err, &oa) && oa.HTTPStatusCode > 0 {
		return oa.HTTPStatusCode
	}
	var req *openai.RequestError
	if errors.As(err, &req) && req.HTTPStatusCode > 0 {
		return req.HTTPStatusCode
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// Diagnose gives a one-line operator hint for a failed model call.
func Diagnose(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "the model call timed out"
	case errors.Is(err, context.Canceled):
		return "the model call was canceled"
	case errors.Is(err, ErrEmptyResponse):
		return "the model returned no usable content"
	}
	switch code := StatusCode(err); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return "the API key was rejected"
	case code == http.StatusNotFound:
		return "the model was not found"
	case code == http.StatusTooManyRequests:
		return "the provider rate limit was exceeded"
	case code == http.StatusBadRequest:
		return "the provider rejected the request"
	case code >= 500:
		return "the provider had an internal error"
	}
	return "unknown provider error: " + err.Error()
}
