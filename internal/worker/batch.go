package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/vaultgate/internal/history"
	"github.com/ppiankov/vaultgate/internal/model"
)

// Decider evaluates one scenario end to end
type Decider interface {
	DecideScenario(ctx context.Context, s *history.Scenario) (*model.Decision, error)
}

// DecisionJob decides one scenario
type DecisionJob struct {
	Index    int
	Path     string
	Scenario *history.Scenario
	Decider  Decider
	Limiter  *Limiter
}

// Execute executes the decision job
func (j *DecisionJob) Execute(ctx context.Context) Result {
	res := &DecisionResult{Index: j.Index, Path: j.Path, Name: j.Scenario.Name, Expect: j.Scenario.Expect}
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Scenario.RequesterID); err != nil {
			res.Error = fmt.Errorf("%w: %v", model.ErrRateLimited, err)
			return res
		}
	}
	res.Decision, res.Error = j.Decider.DecideScenario(ctx, j.Scenario)
	return res
}

// DecisionResult is the outcome of one scenario. A fail-closed denial
// carries both a Decision and an Error.
type DecisionResult struct {
	Index    int
	Path     string
	Name     string
	Expect   model.Action
	Decision *model.Decision
	Error    error
}

// GetError returns the error from the decision
func (r *DecisionResult) GetError() error {
	return r.Error
}

// Matches reports whether the decision agrees with the scenario's stated
// expectation. Scenarios without one always match.
func (r *DecisionResult) Matches() bool {
	if r.Expect == "" {
		return true
	}
	return r.Decision != nil && r.Decision.Action == r.Expect
}

// BatchProcessor decides many scenarios concurrently
type BatchProcessor struct {
	decider     Decider
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. A positive requestsPerHour
// paces each requester; zero disables pacing.
func NewBatchProcessor(decider Decider, concurrency int, requestsPerHour float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		decider:     decider,
		concurrency: concurrency,
	}
	if requestsPerHour > 0 {
		b.limiter = NewLimiter(requestsPerHour, burst)
	}
	return b
}

// Process decides every scenario; results keep the input order
func (b *BatchProcessor) Process(ctx context.Context, scenarios []*history.Scenario) []*DecisionResult {
	jobs := make([]*DecisionJob, len(scenarios))
	for i, s := range scenarios {
		jobs[i] = &DecisionJob{Index: i, Scenario: s}
	}
	return b.run(ctx, jobs, nil)
}

// ProcessFiles loads and decides scenario files. A file that fails to load
// yields a result carrying the load error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*DecisionResult {
	var jobs []*DecisionJob
	var failed []*DecisionResult
	for i, path := range paths {
		s, err := history.LoadScenario(path)
		if err != nil {
			failed = append(failed, &DecisionResult{Index: i, Path: path, Name: filepath.Base(path), Error: err})
			continue
		}
		jobs = append(jobs, &DecisionJob{Index: i, Path: path, Scenario: s})
	}
	return b.run(ctx, jobs, failed)
}

func (b *BatchProcessor) run(ctx context.Context, jobs []*DecisionJob, results []*DecisionResult) []*DecisionResult {
	if len(jobs) > 0 {
		pool := NewPool(ctx, b.concurrency)
		pool.Start()

		for _, job := range jobs {
			job.Decider = b.decider
			job.Limiter = b.limiter
			if err := pool.Submit(job); err != nil {
				results = append(results, &DecisionResult{
					Index: job.Index, Path: job.Path, Name: job.Scenario.Name, Expect: job.Scenario.Expect, Error: err,
				})
			}
		}

		for _, r := range pool.Wait() {
			results = append(results, r.(*DecisionResult))
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	if results == nil {
		results = []*DecisionResult{}
	}
	return results
}

// ReadPathsFromFile reads scenario paths from a list file (one per line).
// Relative paths resolve against the list file's directory.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)
	dir := filepath.Dir(filePath)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
