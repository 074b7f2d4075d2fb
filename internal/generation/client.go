// Package generation talks to the statement generation service.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/truthslies/internal/engine"
	"github.com/ppiankov/truthslies/internal/llm"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/util"
	"github.com/ppiankov/truthslies/internal/worker"
)

// Client sends one generation request and returns the statements in service order
type Client interface {
	Generate(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error)
}

// New builds the client selected by cfg.Service.Transport.
// The returned close function releases connections and is never nil.
func New(cfg *model.Config) (Client, func() error, error) {
	noop := func() error { return nil }
	svc := cfg.Service

	var (
		client  Client
		closeFn = noop
		remote  bool
	)

	transport := strings.ToLower(svc.Transport)
	if (transport == "grpc" || transport == "http") && strings.TrimSpace(svc.Endpoint) == "" {
		return nil, noop, fmt.Errorf("the %s transport needs service.endpoint", transport)
	}

	switch transport {
	case "grpc":
		c, err := NewGRPCClient(svc.Endpoint, svc.Insecure, svc.Timeout)
		if err != nil {
			return nil, noop, err
		}
		client, closeFn, remote = c, c.Close, true

	case "http":
		client = NewHTTPClient(svc.Endpoint, svc.Timeout,
			util.NewProxyFunc(svc.HTTPProxy, svc.HTTPSProxy, svc.NoProxy))
		remote = true

	case "local", "":
		client = NewLocalClient(cfg.Engine)

	case "llm":
		fab, err := llm.NewFabricator(llm.ConfigFromModel(cfg.LLM, cfg.Service))
		if err != nil {
			return nil, noop, err
		}
		client = NewLocalClient(cfg.Engine, engine.WithFabricator(fab))
		remote = true

	default:
		return nil, noop, fmt.Errorf("unknown transport: %s (supported: grpc, http, local, llm)", svc.Transport)
	}

	if remote && svc.RequestsPerSecond > 0 {
		key := svc.Endpoint
		if strings.EqualFold(svc.Transport, "llm") {
			key = "llm:" + cfg.LLM.Provider
		}
		client = Throttle(client, worker.NewLimiter(svc.RequestsPerSecond, svc.BurstSize), key)
	}

	return client, closeFn, nil
}

// Throttle delays calls to next so they respect limiter's rate for key
func Throttle(next Client, limiter *worker.Limiter, key string) Client {
	return &throttled{next: next, limiter: limiter, key: key}
}

type throttled struct {
	next    Client
	limiter *worker.Limiter
	key     string
}

func (t *throttled) Generate(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error) {
	if err := t.limiter.Wait(ctx, t.key); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.Generate(ctx, req)
}
