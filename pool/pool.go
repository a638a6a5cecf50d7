// Package pool runs extraction jobs on a fixed set of workers so the
// number of concurrent yt-dlp subprocesses and outbound API bursts stays
// bounded regardless of request volume.
package pool

import (
	"context"
	"sync"

	"ytscope/metadata"
)

// Job produces one extraction envelope.
type Job func(ctx context.Context) *metadata.ScrapeResult

// Pool is a fixed-size worker pool. Submitted jobs queue until a worker
// is free; results are delivered on per-job channels.
type Pool struct {
	jobs chan submission
	wg   sync.WaitGroup

	closeOnce sync.Once
}

type submission struct {
	ctx context.Context
	job Job
	out chan *metadata.ScrapeResult
}

// New starts a pool with the given number of workers.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{jobs: make(chan submission)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for s := range p.jobs {
		if err := s.ctx.Err(); err != nil {
			s.out <- metadata.Failed("", err.Error(), 0)
			continue
		}
		s.out <- s.job(s.ctx)
	}
}

// Submit queues a job and returns the channel its result will arrive on.
// The channel is buffered, so the result can be collected at any time.
func (p *Pool) Submit(ctx context.Context, job Job) <-chan *metadata.ScrapeResult {
	out := make(chan *metadata.ScrapeResult, 1)
	p.jobs <- submission{ctx: ctx, job: job, out: out}
	return out
}

// Run queues a job and blocks until its result is ready or the context
// ends.
func (p *Pool) Run(ctx context.Context, job Job) *metadata.ScrapeResult {
	select {
	case result := <-p.Submit(ctx, job):
		return result
	case <-ctx.Done():
		return metadata.Failed("", ctx.Err().Error(), 0)
	}
}

// RunAll queues every job and waits for all of them, preserving order.
func (p *Pool) RunAll(ctx context.Context, jobs []Job) []*metadata.ScrapeResult {
	outs := make([]<-chan *metadata.ScrapeResult, len(jobs))
	for i, job := range jobs {
		outs[i] = p.Submit(ctx, job)
	}
	results := make([]*metadata.ScrapeResult, len(jobs))
	for i, out := range outs {
		results[i] = <-out
	}
	return results
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
