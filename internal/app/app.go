// Package app wires fetch, bind, build and generate into the actions a player triggers.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/truthslies/internal/bind"
	"github.com/ppiankov/truthslies/internal/generation"
	"github.com/ppiankov/truthslies/internal/model"
	"github.com/ppiankov/truthslies/internal/present"
	"github.com/ppiankov/truthslies/internal/request"
	"github.com/ppiankov/truthslies/internal/source"
	"github.com/ppiankov/truthslies/internal/telemetry"
)

var (
	// ErrSourceUnavailable means the rows could not be fetched; no request was sent
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrGeneration means the generation call failed; the board is unchanged
	ErrGeneration = errors.New("generation failed")
	// ErrStale means a newer generate action superseded this one
	ErrStale = errors.New("superseded by a newer generate action")
)

// Fetcher returns the data rows of a source range
type Fetcher interface {
	FetchRows(ctx context.Context, sourceID, rng string) ([]model.DataRow, error)
}

// invalidator is implemented by fetchers that cache rows
type invalidator interface {
	Invalidate(sourceID, rng string) error
}

// Store persists the source id
type Store interface {
	Load() (string, error)
	Save(id string) error
}

// Deps are the collaborators of an App. Board and Logger may be nil.
type Deps struct {
	Fetcher Fetcher
	Binder  *bind.Binder
	Builder *request.Builder
	Client  generation.Client
	Store   Store
	Board   *present.Board
	Logger  *slog.Logger

	// Range read from the source when a round does not name one
	Range        string
	FetchTimeout time.Duration
}

// Input is what the player typed
type Input struct {
	SourceID string
	Truths   string
	Lies     string
}

// Outcome reports the visible effects of a generate action
type Outcome struct {
	RequestID string
	// SourceField is the new content of the source id field
	SourceField string
	// ReopenConfig asks the surface to bring the source field back into focus
	ReopenConfig bool
	Statements   []model.Statement
	Bind         bind.Report
}

// App is the orchestrator behind every trigger surface
type App struct {
	fetcher      Fetcher
	binder       *bind.Binder
	builder      *request.Builder
	client       generation.Client
	store        Store
	board        *present.Board
	logger       *slog.Logger
	tracer       trace.Tracer
	rng          string
	fetchTimeout time.Duration

	mu       sync.Mutex
	sourceID string
	seq      uint64
	cancel   context.CancelFunc
}

// New creates an App from d
func New(d Deps) *App {
	a := &App{
		fetcher:      d.Fetcher,
		binder:       d.Binder,
		builder:      d.Builder,
		client:       d.Client,
		store:        d.Store,
		board:        d.Board,
		logger:       d.Logger,
		tracer:       telemetry.Tracer(),
		rng:          d.Range,
		fetchTimeout: d.FetchTimeout,
	}
	if a.binder == nil {
		a.binder = bind.NewBinder()
	}
	if a.builder == nil {
		a.builder = request.NewBuilder(model.DefaultTemplate, model.DefaultClassName)
	}
	if a.board == nil {
		a.board = present.NewBoard()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Load fills the source field from the store
func (a *App) Load() error {
	if a.store == nil {
		return nil
	}
	id, err := a.store.Load()
	if err != nil {
		return fmt.Errorf("load source id: %w", err)
	}

	a.mu.Lock()
	a.sourceID = id
	a.mu.Unlock()
	return nil
}

// SourceID returns the current source field
func (a *App) SourceID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sourceID
}

// SetSourceID replaces the source field without persisting it
func (a *App) SetSourceID(id string) {
	a.mu.Lock()
	a.sourceID = id
	a.mu.Unlock()
}

// Board returns the presentation board
func (a *App) Board() *present.Board {
	return a.board
}

// Save persists id and makes it the current source field
func (a *App) Save(id string) error {
	a.mu.Lock()
	a.sourceID = id
	a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	if err := a.store.Save(id); err != nil {
		return fmt.Errorf("save source id: %w", err)
	}
	a.logger.Info("saved source id", "source", id)
	return nil
}

// Reveal colors the board; no service call
func (a *App) Reveal() {
	a.board.Reveal()
}

// Clear empties the board
func (a *App) Clear() {
	a.board.Clear()
}

// begin starts a new action and cancels the one in flight
func (a *App) begin(ctx context.Context, sourceID string) (context.Context, uint64, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	a.seq++
	seq := a.seq
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.sourceID = sourceID

	return ctx, seq, func() {
		a.mu.Lock()
		if a.seq == seq {
			a.cancel = nil
		}
		a.mu.Unlock()
		cancel()
	}
}

func (a *App) current(seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq == seq
}

// Generate fetches rows from in.SourceID, requests statements and appends them to the board.
// Only the most recent action may change the board; older ones return ErrStale.
func (a *App) Generate(ctx context.Context, in Input) (Outcome, error) {
	ctx, seq, done := a.begin(ctx, in.SourceID)
	defer done()

	out := Outcome{RequestID: uuid.NewString(), SourceField: in.SourceID}
	logger := a.logger.With("request_id", out.RequestID, "seq", seq)

	ctx, span := a.tracer.Start(ctx, "app.generate", trace.WithAttributes(
		attribute.String("request.id", out.RequestID),
		attribute.String("source.id", in.SourceID),
	))
	defer span.End()

	// Generate always re-reads the source; rounds may use cached rows.
	if inv, ok := a.fetcher.(invalidator); ok {
		if err := inv.Invalidate(in.SourceID, a.rng); err != nil {
			logger.Debug("cache invalidation failed", "source", in.SourceID, "error", err)
		}
	}

	rows, err := a.fetch(ctx, in.SourceID, a.rng)
	if err != nil {
		if !a.current(seq) {
			return out, ErrStale
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")

		var uerr *source.UnavailableError
		if errors.As(err, &uerr) {
			out.SourceField = fmt.Sprintf("%s (%s)", in.SourceID, uerr.Message)
			out.ReopenConfig = true

			a.mu.Lock()
			if a.seq == seq {
				a.sourceID = out.SourceField
			}
			a.mu.Unlock()

			logger.Warn("source unavailable", "source", in.SourceID, "reason", uerr.Message)
			return out, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		return out, err
	}

	sets, report := a.binder.Bind(rows)
	out.Bind = report
	if !report.Clean() || len(report.Ignored) > 0 {
		logger.Debug("rows bound with issues",
			"rows", len(rows),
			"missing", len(report.Missing),
			"invalid", len(report.Invalid),
			"ignored_columns", report.Ignored)
	}

	req := a.builder.BuildFromInput(in.Truths, in.Lies, sets)
	span.SetAttributes(
		attribute.Int("request.truths", int(req.TruthsCount)),
		attribute.Int("request.lies", int(req.LiesCount)),
		attribute.Int("request.arguments", req.ArgumentCount()),
	)

	statements, err := a.call(ctx, req)

	a.mu.Lock()
	if a.seq != seq {
		a.mu.Unlock()
		logger.Debug("discarding stale response")
		return out, ErrStale
	}
	if err != nil {
		a.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		body, _ := json.Marshal(req)
		logger.Error("generation failed", "request", string(body), "error", err)
		return out, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	a.board.Append(statements)
	a.mu.Unlock()

	out.Statements = statements
	logger.Info("generated statements", "count", len(statements), "source", in.SourceID)
	return out, nil
}

// Round runs fetch, bind, build and generate for sourceID without touching the board.
// An empty rng uses the app's default range.
func (a *App) Round(ctx context.Context, sourceID, rng string, truths, lies uint32) ([]model.Statement, error) {
	if rng == "" {
		rng = a.rng
	}

	ctx, span := a.tracer.Start(ctx, "app.round", trace.WithAttributes(
		attribute.String("source.id", sourceID),
		attribute.String("source.range", rng),
	))
	defer span.End()

	rows, err := a.fetch(ctx, sourceID, rng)
	if err != nil {
		span.RecordError(err)
		var uerr *source.UnavailableError
		if errors.As(err, &uerr) {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
		return nil, err
	}

	sets, _ := a.binder.Bind(rows)
	req := request.Build(truths, lies, a.builder.Template, a.builder.ClassName, sets)

	statements, err := a.call(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return statements, nil
}

// RunRound runs a round with the builder's default counts
func (a *App) RunRound(ctx context.Context, sourceID, rng string) ([]model.Statement, error) {
	return a.Round(ctx, sourceID, rng, a.builder.DefaultTruths, a.builder.DefaultLies)
}

func (a *App) fetch(ctx context.Context, sourceID, rng string) ([]model.DataRow, error) {
	if a.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
	}

	ctx, span := a.tracer.Start(ctx, "source.fetch")
	defer span.End()

	rows, err := a.fetcher.FetchRows(ctx, sourceID, rng)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("source.rows", len(rows)))
	return rows, nil
}

func (a *App) call(ctx context.Context, req *model.GenerationRequest) ([]model.Statement, error) {
	ctx, span := a.tracer.Start(ctx, "generation.generate")
	defer span.End()

	statements, err := a.client.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("statements", len(statements)))
	return statements, nil
}
