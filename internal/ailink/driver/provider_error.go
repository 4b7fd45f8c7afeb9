package driver

import (
	"fmt"
	"strings"
)

const maxErrorMessage = 512

// ProviderError is returned when a judge backend responds with a non-2xx
// status or an unusable body.
//
// RawResponse holds the response body bytes and must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

// NewProviderError builds a ProviderError, deriving the message from body
// when no explicit message is available.
func NewProviderError(provider string, status int, body []byte) *ProviderError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage] + "..."
	}
	if msg == "" {
		msg = "empty response body"
	}
	return &ProviderError{Provider: provider, StatusCode: status, Message: msg, RawResponse: body}
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}
