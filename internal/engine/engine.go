package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/ppiankov/truthslies/internal/model"
)

// Fabricator produces the lie for argument set index of g
type Fabricator interface {
	Lie(ctx context.Context, g Generator, index int) (string, error)
}

// generatorLies asks the generator itself for a lie
type generatorLies struct{}

func (generatorLies) Lie(_ context.Context, g Generator, index int) (string, error) {
	return g.Lie(index), nil
}

// Engine picks truths and lies across the generators of a request
type Engine struct {
	maxRetries    int
	ensureNotTrue bool
	randomOrder   bool
	fabricator    Fabricator

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures an Engine
type Option func(*Engine)

// WithFabricator replaces the generators' own lies
func WithFabricator(f Fabricator) Option {
	return func(e *Engine) { e.fabricator = f }
}

// WithRand fixes the random source, mainly for tests
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

// New creates an engine from cfg
func New(cfg model.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		maxRetries:    cfg.MaxRetries,
		ensureNotTrue: cfg.EnsureNotTrue,
		randomOrder:   cfg.RandomOrder,
		fabricator:    generatorLies{},
		rnd:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	if e.maxRetries <= 0 {
		e.maxRetries = 10
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate returns req.TruthsCount truths and req.LiesCount lies with distinct text,
// sorted lexically unless the engine randomizes order.
func (e *Engine) Generate(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error) {
	rnd := e.callRand()

	wanted := int(req.TruthsCount) + int(req.LiesCount)
	if wanted == 0 {
		return []model.Statement{}, nil
	}

	gens := make([]Generator, 0, len(req.Configs))
	weights := make([]int, 0, len(req.Configs))
	total := 0
	for _, cfg := range req.Configs {
		g, err := NewGenerator(cfg, rnd)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
		weights = append(weights, g.Size())
		total += g.Size()
	}
	if total == 0 {
		return nil, ErrNoArguments
	}

	var known []*collection
	if e.ensureNotTrue {
		known = make([]*collection, len(gens))
		for i, g := range gens {
			known[i] = allTruths(g)
		}
	}

	pick := func() (int, int) {
		n := rnd.IntN(total)
		for gi, w := range weights {
			if n < w {
				return gi, n
			}
			n -= w
		}
		return len(weights) - 1, 0
	}

	out := newCollection()

	for i := 0; i < int(req.TruthsCount); i++ {
		accepted := false
		for attempt := 0; attempt <= e.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			gi, ai := pick()
			text := gens[gi].Truth(ai)
			if out.insert(model.Statement{Statement: text, Truth: true}) {
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, ErrTooManyDuplicates
		}
	}

	for i := 0; i < int(req.LiesCount); i++ {
		accepted := false
		for attempt := 0; attempt <= e.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			gi, ai := pick()
			text, err := e.fabricator.Lie(ctx, gens[gi], ai)
			if err != nil {
				return nil, fmt.Errorf("fabricate lie: %w", err)
			}
			if known != nil && known[gi].has(text) {
				continue
			}
			if out.insert(model.Statement{Statement: text, Truth: false}) {
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, ErrTooManyDuplicates
		}
	}

	if e.randomOrder {
		rnd.Shuffle(len(out.items), func(i, j int) {
			out.items[i], out.items[j] = out.items[j], out.items[i]
		})
	} else {
		out.sort()
	}
	return out.items, nil
}

// callRand derives a source for one call, so the fabricator runs unlocked
func (e *Engine) callRand() *rand.Rand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rand.New(rand.NewPCG(e.rnd.Uint64(), e.rnd.Uint64()))
}

func allTruths(g Generator) *collection {
	c := newCollection()
	for i := 0; i < g.Size(); i++ {
		c.insert(model.Statement{Statement: g.Truth(i), Truth: true})
	}
	return c
}
