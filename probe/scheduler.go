package probe

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"iptv-channel-prober/config"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils/safemap"
)

// UnitRunner executes a single probe unit inside an already-held slot.
type UnitRunner interface {
	Run(ctx context.Context, req Request) Result
}

// Scheduler drives a fixed pool of workers over the request list. The
// pool size equals the slot cap: the provider counts connections, so
// extra workers would only pile up on Acquire. Launches are paced by a
// rate limiter (minimum interval between starts) plus a per-unit random
// jitter so eligible units never start in lockstep.
type Scheduler struct {
	settings *config.ProbeSettings
	slots    *SlotManager
	runner   UnitRunner
	limiter  *rate.Limiter
}

type indexedRequest struct {
	idx int
	req Request
}

type indexedResult struct {
	idx int
	res Result
}

func NewScheduler(settings *config.ProbeSettings, slots *SlotManager, runner UnitRunner) *Scheduler {
	limit := rate.Inf
	if settings.LaunchInterval > 0 {
		limit = rate.Every(settings.LaunchInterval)
	}

	return &Scheduler{
		settings: settings,
		slots:    slots,
		runner:   runner,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Run probes every request and streams results on the returned channel.
// In submission-order mode results are replayed in input order; in
// completion-order mode they are emitted as soon as each unit finishes.
// Cancellation stops new launches, already-started probes finish via
// their own timeouts, and the channel always closes.
func (s *Scheduler) Run(ctx context.Context, reqs []Request) <-chan Result {
	out := make(chan Result, len(reqs))
	jobs := make(chan indexedRequest)
	collected := make(chan indexedResult, len(reqs))

	go func() {
		defer close(jobs)
		for i, req := range reqs {
			select {
			case jobs <- indexedRequest{idx: i, req: req}:
			case <-ctx.Done():
				logger.Default.Debugf("Scheduler cancelled with %d units not dispatched", len(reqs)-i)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < s.settings.MaxConcurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, collected)
		}()
	}

	go func() {
		wg.Wait()
		s.slots.Drain()
		close(collected)
	}()

	go s.deliver(collected, out)

	return out
}

func (s *Scheduler) worker(ctx context.Context, jobs <-chan indexedRequest, collected chan<- indexedResult) {
	for job := range jobs {
		if err := s.limiter.Wait(ctx); err != nil {
			// Cancelled before launch: the unit is abandoned.
			continue
		}
		if !s.sleepJitter(ctx) {
			continue
		}

		release, err := s.slots.Acquire(ctx)
		if err != nil {
			continue
		}

		res := s.runner.Run(ctx, job.req)
		release()

		collected <- indexedResult{idx: job.idx, res: res}
	}
}

func (s *Scheduler) sleepJitter(ctx context.Context) bool {
	if s.settings.LaunchJitter <= 0 {
		return true
	}
	jitter := time.Duration(rand.Int63n(int64(s.settings.LaunchJitter)))
	select {
	case <-time.After(jitter):
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) deliver(collected <-chan indexedResult, out chan<- Result) {
	defer close(out)

	if !s.settings.PreserveOrder {
		for ir := range collected {
			out <- ir.res
		}
		return
	}

	// Submission-order replay: buffer out-of-order completions and
	// emit the longest in-order prefix available. Whatever remains
	// after cancellation is flushed by index so completed results are
	// never dropped.
	buffer := safemap.New[int, Result]()
	next := 0
	for ir := range collected {
		buffer.Set(ir.idx, ir.res)
		for {
			res, ok := buffer.GetAndDel(next)
			if !ok {
				break
			}
			out <- res
			next++
		}
	}

	if buffer.Len() > 0 {
		remaining := make([]indexedResult, 0, buffer.Len())
		buffer.ForEach(func(idx int, res Result) bool {
			remaining = append(remaining, indexedResult{idx: idx, res: res})
			return true
		})
		sort.Slice(remaining, func(i, j int) bool { return remaining[i].idx < remaining[j].idx })
		for _, ir := range remaining {
			out <- ir.res
		}
	}
}
