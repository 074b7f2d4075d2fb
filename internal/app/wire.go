package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/truthslies/internal/bind"
	"github.com/ppiankov/truthslies/internal/cache"
	"github.com/ppiankov/truthslies/internal/generation"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/request"
	"github.com/ppiankov/truthslies/internal/source"
	"github.com/ppiankov/truthslies/internal/store"
)

// FromConfig builds an App with the collaborators cfg selects.
// The returned close function releases the generation client.
func FromConfig(ctx context.Context, cfg *model.Config, logger *slog.Logger) (*App, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader, err := source.NewReader(ctx, cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("create source reader: %w", err)
	}

	policy, err := source.ParsePolicy(cfg.Source.FailurePolicy)
	if err != nil {
		return nil, nil, err
	}

	opts := []source.Option{source.WithPolicy(policy), source.WithLogger(logger)}
	if cfg.Cache.Enabled {
		c := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		opts = append(opts, source.WithCache(c, cfg.Cache.MemoryTTL))
	}
	adapter := source.NewAdapter(reader, opts...)

	slots, err := bind.SlotsFromConfig(cfg.Template.Slots)
	if err != nil {
		return nil, nil, fmt.Errorf("template slots: %w", err)
	}

	builder := request.NewBuilder(cfg.Template.String, cfg.Template.ClassName)
	builder.DefaultTruths = cfg.Defaults.Truths
	builder.DefaultLies = cfg.Defaults.Lies

	st, err := store.New(cfg.Source.StatePath)
	if err != nil {
		return nil, nil, err
	}

	client, closeFn, err := generation.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create generation client: %w", err)
	}

	a := New(Deps{
		Fetcher:      adapter,
		Binder:       bind.NewBinder(slots...),
		Builder:      builder,
		Client:       client,
		Store:        st,
		Logger:       logger,
		Range:        cfg.Source.Range,
		FetchTimeout: cfg.Source.Timeout,
	})
	return a, closeFn, nil
}
