// Package scan searches a seed range for randomized runs whose outcome
// matches a numeric target.
package scan

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MJE43/trainerrand/internal/runner"
)

// MaxSeeds bounds one scan.
const MaxSeeds = 100_000

const batchSize = 32

// Request represents a scan over SeedStart..SeedEnd inclusive. Base.Seed is ignored.
type Request struct {
	Base       runner.Request `json:"-"`
	SeedStart  int64          `json:"seed_start"`
	SeedEnd    int64          `json:"seed_end"`
	Metric     Metric         `json:"metric"`
	Species    int            `json:"target_species,omitempty"`
	TargetOp   TargetOp       `json:"target_op"`
	TargetVal  float64        `json:"target_val"`
	TargetVal2 float64        `json:"target_val2,omitempty"`
	Tolerance  float64        `json:"tolerance"`
	Limit      int            `json:"limit,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// Hit represents a single matching seed
type Hit struct {
	Seed   int64   `json:"seed"`
	Metric float64 `json:"metric"`
}

// Summary contains aggregate statistics over the hits
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	Failed         uint64  `json:"failed,omitempty"`
	HitsFound      int     `json:"hits_found"`
	MinMetric      float64 `json:"min_metric"`
	MaxMetric      float64 `json:"max_metric"`
	MeanMetric     float64 `json:"mean_metric"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

// Result holds hits in seed order, truncated to Limit
type Result struct {
	Hits    []Hit   `json:"hits"`
	Summary Summary `json:"summary"`
	Echo    Request `json:"echo"`
}

type job struct {
	start, end int64
}

// Scanner runs seeds in parallel. Each seed gets its own sequence source,
// so results do not depend on the worker count.
type Scanner struct {
	runner      *runner.Runner
	workerCount int
}

// NewScanner creates a scanner. workers <= 0 uses GOMAXPROCS.
func NewScanner(r *runner.Runner, workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{runner: r, workerCount: workers}
}

// Validate checks the parts of req that do not need a run
func (req *Request) Validate() (*TargetEvaluator, error) {
	if req.SeedEnd < req.SeedStart {
		return nil, fmt.Errorf("%w: end %d before start %d", ErrInvalidRange, req.SeedEnd, req.SeedStart)
	}
	if n := uint64(req.SeedEnd-req.SeedStart) + 1; n > MaxSeeds {
		return nil, fmt.Errorf("%w: %d seeds exceeds %d", ErrInvalidRange, n, MaxSeeds)
	}
	if !validMetric(req.Metric) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, req.Metric)
	}
	if req.Metric == MetricSpeciesCount && req.Species <= 0 {
		return nil, fmt.Errorf("%w: species_count needs a species", ErrInvalidTarget)
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidTarget)
	}
	return NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2, req.Tolerance)
}

// Scan evaluates every seed in the range. The first seed runs synchronously
// so request errors surface before any worker starts; later per-seed
// failures are counted in Summary.Failed.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	evaluator, err := req.Validate()
	if err != nil {
		return nil, err
	}
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	var (
		mu        sync.Mutex
		hits      []Hit
		evaluated uint64
		failed    uint64
	)
	record := func(seed int64, res *runner.Result) {
		atomic.AddUint64(&evaluated, 1)
		metric := measure(req.Metric, req.Species, res)
		if !evaluator.Matches(metric) {
			return
		}
		mu.Lock()
		hits = append(hits, Hit{Seed: seed, Metric: metric})
		mu.Unlock()
	}

	first, err := s.runSeed(req.Base, req.SeedStart)
	if err != nil {
		return nil, err
	}
	record(req.SeedStart, first)

	if req.SeedEnd > req.SeedStart {
		jobs := make(chan job, s.workerCount*2)
		var wg sync.WaitGroup
		for i := 0; i < s.workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range jobs {
					for seed := j.start; ; seed++ {
						if ctx.Err() != nil {
							return
						}
						res, err := s.runSeed(req.Base, seed)
						if err != nil {
							atomic.AddUint64(&failed, 1)
						} else {
							record(seed, res)
						}
						if seed == j.end {
							break
						}
					}
				}
			}()
		}
		generateJobs(ctx, jobs, req.SeedStart+1, req.SeedEnd)
		wg.Wait()
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Seed < hits[j].Seed })
	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	if hits == nil {
		hits = []Hit{}
	}

	return &Result{
		Hits:    hits,
		Summary: summarize(hits, atomic.LoadUint64(&evaluated), atomic.LoadUint64(&failed), ctx.Err() != nil),
		Echo:    req,
	}, nil
}

func (s *Scanner) runSeed(base runner.Request, seed int64) (res *runner.Result, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			res, err = nil, fmt.Errorf("scan: seed %d panicked: %v", seed, rvr)
		}
	}()
	base.Seed = &seed
	return s.runner.Run(base)
}

// generateJobs feeds inclusive seed batches until the range or ctx ends.
func generateJobs(ctx context.Context, jobs chan<- job, start, end int64) {
	defer close(jobs)
	for current := start; ; {
		batchEnd := end
		if end-current >= batchSize {
			batchEnd = current + batchSize - 1
		}
		select {
		case jobs <- job{start: current, end: batchEnd}:
		case <-ctx.Done():
			return
		}
		if batchEnd == end {
			return
		}
		current = batchEnd + 1
	}
}

func summarize(hits []Hit, evaluated, failed uint64, timedOut bool) Summary {
	summary := Summary{
		TotalEvaluated: evaluated,
		Failed:         failed,
		HitsFound:      len(hits),
		TimedOut:       timedOut,
	}
	if len(hits) == 0 {
		return summary
	}

	lo, hi, sum := hits[0].Metric, hits[0].Metric, 0.0
	for _, h := range hits {
		if h.Metric < lo {
			lo = h.Metric
		}
		if h.Metric > hi {
			hi = h.Metric
		}
		sum += h.Metric
	}
	summary.MinMetric = lo
	summary.MaxMetric = hi
	summary.MeanMetric = sum / float64(len(hits))
	return summary
}
