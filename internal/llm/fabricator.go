package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/truthslies/internal/engine"
)

// ErrNoProvider is returned when a fabricator is requested without a provider
var ErrNoProvider = errors.New("no LLM provider configured")

// Fabricator produces lies with a language model. It satisfies engine.Fabricator.
type Fabricator struct {
	provider Provider
	logger   *slog.Logger
}

var _ engine.Fabricator = (*Fabricator)(nil)

// NewFabricator creates a fabricator for the configured provider
func NewFabricator(config Config) (*Fabricator, error) {
	p, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoProvider
	}
	return NewFabricatorWithProvider(p, nil), nil
}

// NewFabricatorWithProvider wraps an existing provider
func NewFabricatorWithProvider(p Provider, logger *slog.Logger) *Fabricator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fabricator{provider: p, logger: logger}
}

// Lie asks the model to falsify the truth at index. An empty answer falls back
// to the generator's own lie.
func (f *Fabricator) Lie(ctx context.Context, g engine.Generator, index int) (string, error) {
	truth := g.Truth(index)

	resp, err := f.provider.Complete(ctx, CompletionRequest{
		System: liarSystemPrompt,
		Prompt: BuildLiePrompt(g.Config().TemplateString, truth),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", f.provider.Name(), err)
	}

	lie := cleanAnswer(resp.Text)
	if lie == "" {
		f.logger.Warn("empty LLM answer, using generator lie", "provider", f.provider.Name(), "model", resp.Model)
		return g.Lie(index), nil
	}

	f.logger.Debug("fabricated lie", "provider", f.provider.Name(), "model", resp.Model, "tokens", resp.TokensUsed)
	return lie, nil
}
