// Package source fetches tabular data and turns it into header-keyed rows.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/truthslies/internal/cache"
	"github.com/ppiankov/truthslies/internal/model"
	"google.golang.org/api/googleapi"
)

// Reader returns the raw cells of a rectangular region, first row = headers
type Reader interface {
	ReadValues(ctx context.Context, sourceID, rng string) ([][]string, error)
}

// Policy decides what FetchRows does when the source cannot be read
type Policy int

const (
	// PolicySurface returns an *UnavailableError to the caller
	PolicySurface Policy = iota
	// PolicySwallow logs the failure and returns no rows
	PolicySwallow
)

func (p Policy) String() string {
	if p == PolicySwallow {
		return "swallow"
	}
	return "surface"
}

// ParsePolicy parses "surface" or "swallow"; empty means surface
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "surface":
		return PolicySurface, nil
	case "swallow":
		return PolicySwallow, nil
	default:
		return PolicySurface, fmt.Errorf("unknown failure policy: %s (supported: surface, swallow)", s)
	}
}

// UnavailableError reports a failed fetch with a short human-readable message
type UnavailableError struct {
	SourceID string
	Range    string
	Message  string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %s", e.SourceID, e.Message)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Adapter fetches rows through a Reader, optionally caching raw values
type Adapter struct {
	reader   Reader
	cache    cache.Cache
	cacheTTL time.Duration
	policy   Policy
	logger   *slog.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithCache caches raw values under cache.Key(sourceID, range)
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(a *Adapter) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// WithPolicy sets the failure policy
func WithPolicy(p Policy) Option {
	return func(a *Adapter) { a.policy = p }
}

// WithLogger sets the logger used for swallowed failures and cache misses
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an Adapter around reader
func NewAdapter(reader Reader, opts ...Option) *Adapter {
	a := &Adapter{
		reader: reader,
		policy: PolicySurface,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the adapter's failure policy
func (a *Adapter) Policy() Policy {
	return a.policy
}

// FetchRows reads sourceID/rng and returns one DataRow per data row.
// Failures follow the adapter's policy.
func (a *Adapter) FetchRows(ctx context.Context, sourceID, rng string) ([]model.DataRow, error) {
	values, err := a.values(ctx, sourceID, rng)
	if err != nil {
		uerr := unavailable(sourceID, rng, err)
		if a.policy == PolicySwallow {
			a.logger.Error("error getting data",
				"source", sourceID,
				"range", rng,
				"error", err)
			return []model.DataRow{}, nil
		}
		return nil, uerr
	}
	return RowsFromValues(values), nil
}

// Invalidate drops the cached values for sourceID/rng
func (a *Adapter) Invalidate(sourceID, rng string) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete(cache.Key(sourceID, rng))
}

func (a *Adapter) values(ctx context.Context, sourceID, rng string) ([][]string, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, errNoSource
	}

	key := cache.Key(sourceID, rng)
	if a.cache != nil {
		if raw, ok := a.cache.Get(key); ok {
			var values [][]string
			if err := json.Unmarshal(raw, &values); err == nil {
				return values, nil
			}
			_ = a.cache.Delete(key)
		}
	}

	values, err := a.reader.ReadValues(ctx, sourceID, rng)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		raw, err := json.Marshal(values)
		if err == nil {
			if err := a.cache.Set(key, raw, a.cacheTTL); err != nil {
				a.logger.Debug("cache write failed", "source", sourceID, "error", err)
			}
		}
	}
	return values, nil
}

var errNoSource = errors.New("no source configured")

// unavailable converts any read error into an *UnavailableError.
// Google API errors carry their message nested in the error body.
func unavailable(sourceID, rng string, err error) *UnavailableError {
	var uerr *UnavailableError
	if errors.As(err, &uerr) {
		return uerr
	}

	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		msg = gerr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "timed out"
	}

	return &UnavailableError{
		SourceID: sourceID,
		Range:    rng,
		Message:  msg,
		Err:      err,
	}
}

// RowsFromValues keys every row after the first by the first row's cells.
// Short rows leave trailing columns empty; cells past the header width are dropped.
func RowsFromValues(values [][]string) []model.DataRow {
	if len(values) == 0 {
		return []model.DataRow{}
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]model.DataRow, 0, len(values)-1)
	for _, cells := range values[1:] {
		row := make(model.DataRow, len(headers))
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(cells) {
				row[h] = cells[j]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
