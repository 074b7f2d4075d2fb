package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/truthslies/internal/model"
)

// Runner runs one fetch→generate round against a source
type Runner interface {
	RunRound(ctx context.Context, sourceID, rng string) ([]model.Statement, error)
}

// Round names a source and range to generate statements from
type Round struct {
	SourceID string
	Range    string
}

func (r Round) String() string {
	if r.Range == "" {
		return r.SourceID
	}
	return r.SourceID + " " + r.Range
}

// RoundJob runs one round through a Runner
type RoundJob struct {
	Index   int
	Round   Round
	Runner  Runner
	Limiter *Limiter
}

// Execute waits for the source's rate limit and runs the round
func (j *RoundJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Round.SourceID); err != nil {
			return &RoundResult{Index: j.Index, Round: j.Round, Error: err}
		}
	}

	statements, err := j.Runner.RunRound(ctx, j.Round.SourceID, j.Round.Range)
	return &RoundResult{
		Index:      j.Index,
		Round:      j.Round,
		Statements: statements,
		Error:      err,
	}
}

// RoundResult is the outcome of one round
type RoundResult struct {
	Index      int
	Round      Round
	Statements []model.Statement
	Error      error
}

// GetError returns the round's error
func (r *RoundResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many rounds concurrently
type BatchProcessor struct {
	runner      Runner
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a processor. requestsPerSecond limits rounds per source; 0 disables limiting.
func NewBatchProcessor(runner Runner, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessRounds runs every round and returns results in input order
func (b *BatchProcessor) ProcessRounds(ctx context.Context, rounds []Round) []*RoundResult {
	if len(rounds) == 0 {
		return []*RoundResult{}
	}

	pool := NewSizedPool(ctx, b.concurrency, len(rounds))
	pool.Start()

	for i, round := range rounds {
		ok := pool.Submit(&RoundJob{
			Index:   i,
			Round:   round,
			Runner:  b.runner,
			Limiter: b.limiter,
		})
		if !ok {
			pool.Shutdown()
			break
		}
	}

	results := pool.Wait()

	seen := make(map[int]bool, len(results))
	out := make([]*RoundResult, 0, len(rounds))
	for _, r := range results {
		rr := r.(*RoundResult)
		seen[rr.Index] = true
		out = append(out, rr)
	}
	for i, round := range rounds {
		if !seen[i] {
			out = append(out, &RoundResult{Index: i, Round: round, Error: ctx.Err()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads rounds from path and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path, defaultRange string) ([]*RoundResult, error) {
	rounds, err := ReadRoundsFromFile(path, defaultRange)
	if err != nil {
		return nil, fmt.Errorf("read rounds: %w", err)
	}
	return b.ProcessRounds(ctx, rounds), nil
}

// ReadRoundsFromFile reads one "sourceID [range]" per line.
// Blank lines and # comments are skipped, duplicates dropped.
func ReadRoundsFromFile(path, defaultRange string) ([]Round, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var rounds []Round
	seen := make(map[Round]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, rng, _ := strings.Cut(line, " ")
		round := Round{SourceID: id, Range: strings.TrimSpace(rng)}
		if round.Range == "" {
			round.Range = defaultRange
		}

		if !seen[round] {
			seen[round] = true
			rounds = append(rounds, round)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return rounds, nil
}
