// Package llm asks a language model to fabricate plausible false statements.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is a text completion backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete returns the model's answer to req
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is one prompt sent to a provider
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string // overrides Config.Model when set
	MaxTokens int
}

// CompletionResponse is a provider's answer
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI or compatible gateways
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	Timeout   int // seconds
	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the disabled configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 200,
	}
}

const liarSystemPrompt = "You rewrite true statements into believable false ones. " +
	"Answer with the rewritten statement only, on a single line, without quotes."

// BuildLiePrompt asks for a false variant of truth that keeps the shape of template
func BuildLiePrompt(template, truth string) string {
	var b strings.Builder
	b.WriteString("Here is a true statement:\n")
	fmt.Fprintf(&b, "%s\n\n", truth)
	if template != "" {
		fmt.Fprintf(&b, "It was produced from the template %q.\n", template)
		b.WriteString("Keep the same sentence structure and change only the values that fill the template.\n")
	}
	b.WriteString("Change it so it becomes false but stays plausible.")
	return b.String()
}

// cleanAnswer keeps the first non-empty line of a model answer and strips quoting
func cleanAnswer(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
