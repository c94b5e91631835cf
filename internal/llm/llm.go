package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// Client is the minimal surface the dossier stages need from a model
// provider. Cross-cutting concerns (prompt assembly, caching) live in
// the callers.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt, input string) (string, error)
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// StripFences removes a single Markdown code fence wrapping a model
// response. Models asked for JSON or plain text still wrap the payload
// in ```json ... ``` often enough that every caller needs this.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
