// Package llm wraps hosted chat-completion models behind a small client
// interface so pipeline stages can be tested without network calls.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Request is one structured-output completion call.
type Request struct {
	// Model is the provider-side model identifier.
	Model string
	// Temperature for the completion.
	Temperature float32
	// System is the system message.
	System string
	// User is the user message.
	User string
}

// Client issues a completion and returns the raw model output.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// DecodeJSON unmarshals a model response into out, tolerating the markdown
// code fences some models wrap around JSON despite instructions.
func DecodeJSON(response string, out any) error {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to decode model output as JSON: %w", err)
	}
	return nil
}
